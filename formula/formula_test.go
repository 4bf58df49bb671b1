package formula

import (
	"math/rand"
	"testing"
)

// example is the 3-variable formula (x1 ∨ ¬x2) ∧ (x2 ∨ x3) with
// weights 3, 5, 1.
func example(t *testing.T) *Formula {
	t.Helper()
	f, err := New(3, [][]int{{1, -2}, {2, 3}}, []int{3, 5, 1})
	if err != nil {
		t.Fatalf("could not build formula: %v", err)
	}
	return f
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name    string
		nbVars  int
		clauses [][]int
		weights []int
	}{
		{"no vars", 0, nil, nil},
		{"missing weights", 2, [][]int{{1, 2}}, []int{1}},
		{"negative weight", 2, [][]int{{1, 2}}, []int{1, -3}},
		{"empty clause", 2, [][]int{{}}, []int{1, 1}},
		{"null literal", 2, [][]int{{1, 0}}, []int{1, 1}},
		{"literal out of range", 2, [][]int{{1, 3}}, []int{1, 1}},
		{"negated literal out of range", 2, [][]int{{1, -3}}, []int{1, 1}},
	}
	for _, test := range tests {
		if _, err := New(test.nbVars, test.clauses, test.weights); err == nil {
			t.Errorf("%s: expected an error, got none", test.name)
		}
	}
}

func TestNewSimplifiesClauses(t *testing.T) {
	// (x1 ∨ ¬x1) constrains nothing and (x2 ∨ x2) is just (x2).
	f, err := New(2, [][]int{{1, -1}, {2, 2}}, []int{3, 5})
	if err != nil {
		t.Fatalf("could not build formula: %v", err)
	}
	if len(f.Clauses) != 1 {
		t.Fatalf("invalid number of clauses: expected 1, got %d", len(f.Clauses))
	}
	if got := f.Clauses[0].CNF(); got != "2 0" {
		t.Errorf("invalid simplified clause: expected %q, got %q", "2 0", got)
	}
	if !f.Satisfied(Model{false, true}) {
		t.Error("expected the formula to hold once x2 is true")
	}
	occ := f.Occurrences()
	if len(occ.Pos[1]) != 1 {
		t.Errorf("expected one positive occurrence of x2, got %v", occ.Pos[1])
	}
}

func TestEvaluation(t *testing.T) {
	f := example(t)
	if total := f.TotalWeight(); total != 9 {
		t.Errorf("invalid total weight: expected 9, got %d", total)
	}
	tests := []struct {
		model   Model
		sat     bool
		weight  int
		nbUnsat int
	}{
		{Model{true, true, true}, true, 9, 0},
		{Model{true, true, false}, true, 8, 0},
		{Model{false, true, false}, false, 5, 1},
		{Model{false, false, false}, false, 0, 1},
		{Model{false, false, true}, true, 1, 0},
	}
	for _, test := range tests {
		if sat := f.Satisfied(test.model); sat != test.sat {
			t.Errorf("invalid Satisfied(%v): expected %v, got %v", test.model, test.sat, sat)
		}
		if weight := f.Weight(test.model); weight != test.weight {
			t.Errorf("invalid Weight(%v): expected %d, got %d", test.model, test.weight, weight)
		}
		if nb := f.NbUnsat(test.model); nb != test.nbUnsat {
			t.Errorf("invalid NbUnsat(%v): expected %d, got %d", test.model, test.nbUnsat, nb)
		}
	}
}

func TestClauseStatus(t *testing.T) {
	clause := Clause{IntToLit(1), IntToLit(-2), IntToLit(3)}
	tests := []struct {
		name   string
		pm     PartialModel
		status Status
		unit   Lit
	}{
		{"all unbound", PartialModel{0, 0, 0}, Many, 0},
		{"satisfied by x1", PartialModel{1, 0, 0}, Sat, 0},
		{"satisfied by -x2", PartialModel{0, -1, 0}, Sat, 0},
		{"unit on x3", PartialModel{-1, 1, 0}, Unit, IntToLit(3)},
		{"unit on -x2", PartialModel{-1, 0, -1}, Unit, IntToLit(-2)},
		{"falsified", PartialModel{-1, 1, -1}, Unsat, 0},
		{"two unbound", PartialModel{-1, 0, 0}, Many, 0},
	}
	for _, test := range tests {
		status, unit := clause.Status(test.pm)
		if status != test.status {
			t.Errorf("%s: expected status %v, got %v", test.name, test.status, status)
		}
		if status == Unit && unit != test.unit {
			t.Errorf("%s: expected unit literal %d, got %d", test.name, test.unit.Int(), unit.Int())
		}
	}
}

func TestLitStatus(t *testing.T) {
	pm := PartialModel{1, -1, 0}
	tests := []struct {
		lit    int
		status Status
	}{
		{1, Sat}, {-1, Unsat},
		{2, Unsat}, {-2, Sat},
		{3, Indet}, {-3, Indet},
	}
	for _, test := range tests {
		if status := pm.LitStatus(IntToLit(test.lit)); status != test.status {
			t.Errorf("invalid status for literal %d: expected %v, got %v", test.lit, test.status, status)
		}
	}
}

func TestOccurrences(t *testing.T) {
	f := example(t)
	occ := f.Occurrences()
	for v := 0; v < f.NbVars; v++ {
		var pos, neg []int32
		for i, clause := range f.Clauses {
			for _, lit := range clause {
				if lit.Var() != Var(v) {
					continue
				}
				if lit.IsPositive() {
					pos = append(pos, int32(i))
				} else {
					neg = append(neg, int32(i))
				}
			}
		}
		if !equalInt32s(occ.Pos[v], pos) {
			t.Errorf("invalid positive occurrences for var %d: expected %v, got %v", v+1, pos, occ.Pos[v])
		}
		if !equalInt32s(occ.Neg[v], neg) {
			t.Errorf("invalid negative occurrences for var %d: expected %v, got %v", v+1, neg, occ.Neg[v])
		}
	}
}

func equalInt32s(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestModelString(t *testing.T) {
	m := Model{true, false, true}
	if s := m.String(); s != "1 -2 3" {
		t.Errorf("invalid model string: expected %q, got %q", "1 -2 3", s)
	}
}

func TestLitEncoding(t *testing.T) {
	for _, i := range []int{1, -1, 3, -3, 42, -42} {
		lit := IntToLit(i)
		if lit.Int() != i {
			t.Errorf("roundtrip failed for literal %d: got %d", i, lit.Int())
		}
		if lit.IsPositive() != (i > 0) {
			t.Errorf("invalid sign for literal %d", i)
		}
		if lit.Negation().Int() != -i {
			t.Errorf("invalid negation for literal %d: got %d", i, lit.Negation().Int())
		}
		wantVar := i
		if wantVar < 0 {
			wantVar = -wantVar
		}
		if lit.Var() != Var(wantVar-1) {
			t.Errorf("invalid var for literal %d: got %d", i, lit.Var())
		}
	}
}

func TestRand(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	f := Rand(rng, 20, 50, 3, 10)
	if f.NbVars != 20 || len(f.Clauses) != 50 || len(f.Weights) != 20 {
		t.Fatalf("invalid random formula shape: %d vars, %d clauses, %d weights", f.NbVars, len(f.Clauses), len(f.Weights))
	}
	for i, weight := range f.Weights {
		if weight < 1 || weight > 10 {
			t.Errorf("weight %d of variable %d out of [1, 10]", weight, i+1)
		}
	}
	for i, clause := range f.Clauses {
		if len(clause) != 3 {
			t.Errorf("clause %d has %d literals, expected 3", i, len(clause))
		}
		seen := map[Var]bool{}
		for _, lit := range clause {
			if lit.Var() < 0 || int(lit.Var()) >= f.NbVars {
				t.Errorf("clause %d contains out-of-range literal %d", i, lit.Int())
			}
			if seen[lit.Var()] {
				t.Errorf("clause %d repeats variable %d", i, int(lit.Var())+1)
			}
			seen[lit.Var()] = true
		}
	}
	// Same seed, same formula.
	again := Rand(rand.New(rand.NewSource(7)), 20, 50, 3, 10)
	if again.CNF() != f.CNF() {
		t.Error("two generations with the same seed differ")
	}
}
