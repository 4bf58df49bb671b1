package formula

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// readInt reads an int from r.
// 'b' is the last read byte. It can be a space, a '-' or a digit.
// The int can be negated.
// All spaces before the int value are ignored.
// Returns io.EOF iff the end of input was reached before any digit.
func readInt(b *byte, r *bufio.Reader) (res int, err error) {
	for err == nil && isSpace(*b) {
		*b, err = r.ReadByte()
	}
	if err == io.EOF {
		return res, io.EOF
	}
	if err != nil {
		return res, errors.Wrap(err, "could not read digit")
	}
	neg := 1
	if *b == '-' {
		neg = -1
		*b, err = r.ReadByte()
		if err != nil {
			return 0, errors.Errorf("cannot read int: %v", err)
		}
	}
	if *b < '0' || *b > '9' {
		return 0, errors.Errorf("cannot read int: %q is not a digit", *b)
	}
	for err == nil && *b >= '0' && *b <= '9' {
		res = 10*res + int(*b-'0')
		*b, err = r.ReadByte()
	}
	res *= neg
	if err == io.EOF {
		// The int was complete; pretend it had a trailing newline so the
		// next call reports a clean EOF.
		*b = '\n'
		return res, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "cannot read int")
	}
	if !isSpace(*b) {
		return 0, errors.Errorf("unexpected character %q after int", *b)
	}
	return res, nil
}

func parseHeader(r *bufio.Reader) (nbVars, nbClauses int, err error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, 0, errors.Wrap(err, "cannot read header")
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return 0, 0, errors.Errorf("invalid syntax %q in header", line)
	}
	nbVars, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, errors.Errorf("nbvars not an int : %q", fields[1])
	}
	nbClauses, err = strconv.Atoi(fields[2])
	if err != nil {
		return 0, 0, errors.Errorf("nbclauses not an int : %q", fields[2])
	}
	if nbVars <= 0 {
		return 0, 0, errors.Errorf("invalid number of variables %d in header", nbVars)
	}
	if nbClauses < 0 {
		return 0, 0, errors.Errorf("invalid number of clauses %d in header", nbClauses)
	}
	return nbVars, nbClauses, nil
}

// ParseCNF parses a weighted formula in extended DIMACS syntax and returns
// the corresponding Formula. 'c' and '%' start comment lines, the 'p cnf'
// header must precede clauses, and an optional 'w' line gives one weight per
// variable, terminated by 0. Without a 'w' line all weights default to 1.
// A clause terminator with no accumulated literals is ignored, so SATLIB
// files with their trailing lone 0 parse unchanged. Clauses are simplified
// as in New: duplicate literals are dropped and tautological clauses are
// removed.
func ParseCNF(f io.Reader) (*Formula, error) {
	r := bufio.NewReader(f)
	var res Formula
	sawHeader := false
	b, err := r.ReadByte()
	for err == nil {
		if b == 'c' || b == '%' { // Ignore comment
			b, err = r.ReadByte()
			for err == nil && b != '\n' {
				b, err = r.ReadByte()
			}
		} else if isSpace(b) { // Skip blanks between lines
		} else if b == 'p' { // Parse header
			if sawHeader {
				return nil, errors.New("duplicate header")
			}
			var nbClauses int
			res.NbVars, nbClauses, err = parseHeader(r)
			if err != nil {
				return nil, errors.Wrap(err, "cannot parse CNF header")
			}
			res.Clauses = make([]Clause, 0, nbClauses)
			sawHeader = true
		} else if b == 'w' { // Parse the weight line
			if !sawHeader {
				return nil, errors.New("weight line found before header")
			}
			if res.Weights != nil {
				return nil, errors.New("duplicate weight line")
			}
			if b, err = r.ReadByte(); err != nil {
				return nil, errors.Wrap(err, "cannot parse weight line")
			}
			res.Weights = make([]int, res.NbVars)
			for i := range res.Weights {
				weight, errRead := readInt(&b, r)
				if errRead != nil {
					return nil, errors.Wrap(errRead, "cannot parse weight line")
				}
				if weight < 0 {
					return nil, errors.Errorf("negative weight %d for variable %d", weight, i+1)
				}
				res.Weights[i] = weight
			}
			val, errRead := readInt(&b, r)
			if errRead != nil {
				return nil, errors.Wrap(errRead, "cannot parse weight line")
			}
			if val != 0 {
				return nil, errors.Errorf("weight line of a %d-var formula must end with 0, got %d", res.NbVars, val)
			}
		} else { // Parse a clause
			if !sawHeader {
				return nil, errors.New("clause found before header")
			}
			lits := make([]Lit, 0, 3) // Make room for some lits to improve performance
			for {
				val, errRead := readInt(&b, r)
				if errRead == io.EOF {
					if len(lits) != 0 { // This is not a trailing space at the end...
						return nil, errors.New("unfinished clause at end of input")
					}
					break
				}
				if errRead != nil {
					return nil, errors.Wrap(errRead, "cannot parse clause")
				}
				if val == 0 {
					if len(lits) != 0 { // A lone 0 is a SATLIB trailer, not an empty clause
						if c := simplify(Clause(lits)); c != nil {
							res.Clauses = append(res.Clauses, c)
						}
					}
					break
				}
				if val > res.NbVars || -val > res.NbVars {
					return nil, errors.Errorf("invalid literal %d for formula with %d vars only", val, res.NbVars)
				}
				lits = append(lits, IntToLit(val))
			}
		}
		b, err = r.ReadByte()
	}
	if err != io.EOF {
		return nil, err
	}
	if !sawHeader {
		return nil, errors.New("no header in formula input")
	}
	if res.Weights == nil {
		res.Weights = make([]int, res.NbVars)
		for i := range res.Weights {
			res.Weights[i] = 1
		}
	}
	return &res, nil
}
