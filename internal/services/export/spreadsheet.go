package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName = ReportTitle

	spreadsheetColumnWidth = 22
)

type gridStyle int

const (
	styleBody gridStyle = iota
	styleTitle
	styleHeader
	styleSpacer
)

// gridRow is one worksheet row. Row numbers are implicit: the index in the
// grid plus one.
type gridRow struct {
	Style gridStyle
	Cells []string
}

// layoutGrid stacks the sections vertically: title, header, data rows and a
// blank spacer. Empty sections keep their title and header.
func layoutGrid(sections []Section) ([]gridRow, error) {
	var grid []gridRow
	for _, s := range sections {
		cells, err := s.Cells(SpreadsheetPlaceholder)
		if err != nil {
			return nil, err
		}

		grid = append(grid,
			gridRow{Style: styleTitle, Cells: []string{s.Title}},
			gridRow{Style: styleHeader, Cells: s.Headers()},
		)
		for _, c := range cells {
			grid = append(grid, gridRow{Style: styleBody, Cells: c})
		}
		grid = append(grid, gridRow{Style: styleSpacer})
	}
	return grid, nil
}

// RenderSpreadsheet writes an XLSX workbook with a single sheet holding all
// sections. The workbook is assembled in memory and written to w in one
// piece, so nothing reaches w when rendering fails.
func RenderSpreadsheet(w io.Writer, sections []Section) error {
	grid, err := layoutGrid(sections)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	styles, err := newGridStyles(f)
	if err != nil {
		return err
	}

	widest := 1
	for i, row := range grid {
		if len(row.Cells) == 0 {
			continue
		}
		widest = max(widest, len(row.Cells))

		start, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, start, &row.Cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}

		styleID, ok := styles[row.Style]
		if !ok {
			continue
		}
		end, err := excelize.CoordinatesToCellName(len(row.Cells), i+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, start, end, styleID); err != nil {
			return fmt.Errorf("style row %d: %w", i+1, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(widest)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, spreadsheetColumnWidth); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func newGridStyles(f *excelize.File) (map[gridStyle]int, error) {
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("title style: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	return map[gridStyle]int{styleTitle: title, styleHeader: header}, nil
}
