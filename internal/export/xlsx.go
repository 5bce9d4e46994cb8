package export

import (
	"fmt"

	"github.com/danielpatrickdp/perceptron/internal/perceptron"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet name used when none is given.
const DefaultSheet = "training"

// XLSXFile writes the table to a workbook at Path.
type XLSXFile struct {
	Path  string
	Sheet string
}

// Export implements Sink.
func (x XLSXFile) Export(entries []perceptron.LogEntry) error {
	return WriteXLSX(x.Path, x.Sheet, entries)
}

// WriteXLSX saves a single-sheet workbook. Generation, labels and bias are
// numeric cells; the vectors keep their comma-joined text form.
func WriteXLSX(path, sheet string, entries []perceptron.LogEntry) error {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		row := []interface{}{
			e.Generation,
			FormatVector(e.Inputs),
			int(e.Expected),
			int(e.Predicted),
			FormatVector(e.Weights),
			e.Bias,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
