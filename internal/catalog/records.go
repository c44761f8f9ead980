package catalog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/msepahkar/platenest/internal/model"
)

// readRecords loads the record file of one job folder. found is false
// when the folder has no record file. The returned skip count covers
// rows that failed to parse.
func readRecords(folder string) (records []model.PartRecord, skipped int, found bool) {
	csvPath := filepath.Join(folder, RecordFileCSV)
	if rows, ok := readCSVRows(csvPath); ok {
		records, skipped = parseRows(rows, folder)
		return records, skipped, true
	}

	xlsxPath := filepath.Join(folder, RecordFileExcel)
	if rows, ok := readExcelRows(xlsxPath); ok {
		records, skipped = parseRows(rows, folder)
		return records, skipped, true
	}

	return nil, 0, false
}

// readCSVRows reads all rows of a CSV file. ok is false if the file does
// not exist or cannot be read.
func readCSVRows(path string) ([][]string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows are validated individually
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, false
	}
	return rows, true
}

// readExcelRows reads all rows of the first sheet of an Excel workbook.
func readExcelRows(path string) ([][]string, bool) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, false
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, false
	}
	return rows, true
}

// parseRows converts data rows into part records. The first row is the
// header and is always skipped; each remaining row parses independently
// and malformed rows are counted, not surfaced.
func parseRows(rows [][]string, folder string) ([]model.PartRecord, int) {
	if len(rows) <= 1 {
		return nil, 0
	}

	var records []model.PartRecord
	skipped := 0
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		rec, ok := parseRow(row, folder)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

// parseRow parses one data row: fileName, thicknessMm, quantity.
// Thickness is a culture-invariant decimal; quantity a non-negative
// integer.
func parseRow(row []string, folder string) (model.PartRecord, bool) {
	if len(row) < 3 {
		return model.PartRecord{}, false
	}

	fileName := strings.TrimSpace(row[0])
	if fileName == "" {
		return model.PartRecord{}, false
	}

	thickness, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	if err != nil {
		return model.PartRecord{}, false
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil || quantity < 0 {
		return model.PartRecord{}, false
	}

	return model.PartRecord{
		FileName:     fileName,
		ThicknessMm:  thickness,
		Quantity:     quantity,
		SourceFolder: folder,
		SourcePath:   filepath.Join(folder, fileName),
	}, true
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
