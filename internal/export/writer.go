package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
)

// SheetName is the single worksheet every export contains.
const SheetName = "Sheet1"

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet is the tabular form of one export, before it is written.
type Sheet struct {
	Header []string
	Rows   []Row
}

// Build flattens data into a sheet. With no submissions the sheet has
// neither header nor rows.
func Build(titles Titles, data []models.ResearchData) Sheet {
	if len(data) == 0 {
		return Sheet{}
	}
	schema := BuildSchema(titles, data)
	sheet := Sheet{
		Header: Headers(schema, titles),
		Rows:   make([]Row, 0, len(data)),
	}
	for _, d := range data {
		sheet.Rows = append(sheet.Rows, Flatten(d, schema))
	}
	return sheet
}

// Write encodes the sheet as an xlsx workbook into w.
func Write(w io.Writer, sheet Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("export: stream writer: %w", err)
	}

	if len(sheet.Header) > 0 {
		header := make([]any, len(sheet.Header))
		for i, h := range sheet.Header {
			header[i] = h
		}
		if err := setRow(sw, 1, header); err != nil {
			return err
		}
		for i, row := range sheet.Rows {
			if err := setRow(sw, i+2, row.Values()); err != nil {
				return err
			}
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("export: flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func setRow(sw *excelize.StreamWriter, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("export: row %d: %w", rowNum, err)
	}
	if err := sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("export: row %d: %w", rowNum, err)
	}
	return nil
}
