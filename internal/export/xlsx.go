package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/docquiz/internal/questiongen"
)

const sheetName = "Questions"

var xlsxHeaders = []string{"Type", "Question", "Option A", "Option B", "Option C", "Option D", "Answer"}

// WriteXLSX writes one row per question to a single "Questions" sheet.
func WriteXLSX(w io.Writer, source string, questions []questiongen.Question) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       "Questions Generated from: " + source,
		Subject:     source,
		Creator:     "docquiz",
		Description: fmt.Sprintf("%d questions", len(questions)),
	}); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}

	for i, header := range xlsxHeaders {
		if err := setCell(f, i+1, 1, header); err != nil {
			return err
		}
	}

	for rowIndex, q := range questions {
		row := make([]string, len(xlsxHeaders))
		row[0] = q.Type
		row[1] = q.Question
		for j := 0; j < 4 && j < len(q.Options); j++ {
			row[2+j] = q.Options[j]
		}
		row[6] = q.Answer

		for colIndex, value := range row {
			if err := setCell(f, colIndex+1, rowIndex+2, value); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheetName, cell, value)
}
