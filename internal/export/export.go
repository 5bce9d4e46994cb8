// Package export turns a perceptron training log into rows for tabular sinks.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/perceptron/internal/perceptron"
)

// Header is the first row of every exported table.
var Header = []string{"Generation", "Inputs", "Expected", "Predicted", "Weights", "Bias"}

// #region sink
// Sink persists a training log.
type Sink interface {
	Export(entries []perceptron.LogEntry) error
}

// CSVFile writes the table to a CSV file at Path.
type CSVFile struct {
	Path string
}

// Export implements Sink.
func (c CSVFile) Export(entries []perceptron.LogEntry) error {
	f, err := os.Create(c.Path)
	if err != nil {
		return fmt.Errorf("create %s: %w", c.Path, err)
	}
	if err := WriteCSV(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
// #endregion sink

// #region table
// Table returns the header followed by one row per entry, in log order.
func Table(entries []perceptron.LogEntry) [][]string {
	rows := make([][]string, 0, len(entries)+1)
	rows = append(rows, append([]string(nil), Header...))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Generation),
			FormatVector(e.Inputs),
			strconv.Itoa(int(e.Expected)),
			strconv.Itoa(int(e.Predicted)),
			FormatVector(e.Weights),
			formatFloat(e.Bias),
		})
	}
	return rows
}

// FormatVector joins values with commas using the shortest decimal form that
// round-trips.
func FormatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = formatFloat(x)
	}
	return strings.Join(parts, ",")
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
// #endregion table

// #region csv
// WriteCSV writes the table to w.
func WriteCSV(w io.Writer, entries []perceptron.LogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Table(entries)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
// #endregion csv
