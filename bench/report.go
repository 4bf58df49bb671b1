package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

var csvHeader = []string{
	"instance", "engine", "runs",
	"optimal", "sat", "unsat", "unknown", "errors",
	"weight_best", "weight_mean", "weight_std",
	"time_best_s", "time_mean_s", "time_std_s",
}

// WriteCSV writes one row per record at path, creating the parent directory
// when needed.
func WriteCSV(path string, records []Record) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for i := range records {
		r := &records[i]
		row := []string{
			r.Instance,
			r.Engine,
			itoa(r.Runs),

			itoa(r.NbOptimal),
			itoa(r.NbSat),
			itoa(r.NbUnsat),
			itoa(r.NbUnknown),
			itoa(r.NbErrors),

			itoa(r.Weights.Best),
			ftoa(r.Weights.Mean),
			ftoa(r.Weights.Std),

			ftoa(r.Times.Best),
			ftoa(r.Times.Mean),
			ftoa(r.Times.Std),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteTable renders the records as a fixed-width text table.
func WriteTable(w io.Writer, records []Record) error {
	_, err := fmt.Fprintf(w, "%-24s %-12s %5s %5s %5s %5s %5s %5s %10s %12s %12s\n",
		"instance", "engine", "runs", "opt", "sat", "uns", "unk", "err",
		"best", "mean weight", "mean time")
	if err != nil {
		return err
	}
	for i := range records {
		r := &records[i]
		_, err := fmt.Fprintf(w, "%-24s %-12s %5d %5d %5d %5d %5d %5d %10d %12.2f %11.4fs\n",
			r.Instance, r.Engine, r.Runs,
			r.NbOptimal, r.NbSat, r.NbUnsat, r.NbUnknown, r.NbErrors,
			r.Weights.Best, r.Weights.Mean, r.Times.Mean)
		if err != nil {
			return err
		}
	}
	return nil
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
