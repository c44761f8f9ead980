package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeJobFolder creates a job folder with a CSV record file containing
// the given data rows (a header row is prepended).
func writeJobFolder(t *testing.T, baseDir, name string, rows ...string) string {
	t.Helper()
	folder := filepath.Join(baseDir, name)
	require.NoError(t, os.MkdirAll(folder, 0755))

	content := "FileName,PlateThickness_mm,Quantity\n"
	for _, r := range rows {
		content += r + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(folder, RecordFileCSV), []byte(content), 0644))
	return folder
}

func TestAggregate_MergesQuantitiesAcrossFolders(t *testing.T) {
	dir := t.TempDir()
	folderA := writeJobFolder(t, dir, "jobA", "plateX.dwg,3,2", "plateY.dwg,5,1")
	writeJobFolder(t, dir, "jobB", "plateX.dwg,3,3")

	res, err := Aggregate(dir, nil)
	require.NoError(t, err)
	require.Len(t, res.Parts, 2)

	// Sorted: plateX (thickness 3) before plateY (thickness 5).
	assert.Equal(t, "plateX.dwg", res.Parts[0].FileName)
	assert.Equal(t, 5, res.Parts[0].TotalQuantity, "quantities must sum exactly")
	assert.Equal(t, folderA, res.Parts[0].SourceFolder, "representative comes from the first-seen record")

	assert.Equal(t, "plateY.dwg", res.Parts[1].FileName)
	assert.Equal(t, 1, res.Parts[1].TotalQuantity)

	assert.Equal(t, 2, res.FoldersScanned)
	assert.Equal(t, 3, res.RowsRead)
	assert.Equal(t, 0, res.RowsSkipped)
}

func TestAggregate_KeyIgnoresCaseAndSubMillidecimals(t *testing.T) {
	dir := t.TempDir()
	writeJobFolder(t, dir, "jobA", "Plate.dwg,3.0,2")
	writeJobFolder(t, dir, "jobB", "PLATE.DWG,3.0004,4")

	res, err := Aggregate(dir, nil)
	require.NoError(t, err)
	require.Len(t, res.Parts, 1)
	assert.Equal(t, 6, res.Parts[0].TotalQuantity)
	// First-seen spelling wins.
	assert.Equal(t, "Plate.dwg", res.Parts[0].FileName)
}

func TestAggregate_ThirdDecimalSeparatesKeys(t *testing.T) {
	dir := t.TempDir()
	writeJobFolder(t, dir, "jobA", "plate.dwg,3.0,1", "plate.dwg,3.01,1")

	res, err := Aggregate(dir, nil)
	require.NoError(t, err)
	assert.Len(t, res.Parts, 2)
}

func TestAggregate_SkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	writeJobFolder(t, dir, "jobA",
		"good.dwg,3,1",
		"missingcolumns.dwg,3", // too few columns
		"badthickness.dwg,abc,1",
		"badqty.dwg,3,many",
		"negqty.dwg,3,-1",
		",3,1", // empty file name
	)

	res, err := Aggregate(dir, nil)
	require.NoError(t, err)
	require.Len(t, res.Parts, 1)
	assert.Equal(t, "good.dwg", res.Parts[0].FileName)
	assert.Equal(t, 5, res.RowsSkipped)
}

func TestAggregate_SkipsFoldersWithoutRecords(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0755))
	// Header-only record file contributes nothing.
	writeJobFolder(t, dir, "headeronly")
	writeJobFolder(t, dir, "jobA", "plate.dwg,3,1")

	res, err := Aggregate(dir, nil)
	require.NoError(t, err)
	assert.Len(t, res.Parts, 1)
	assert.Equal(t, 3, res.FoldersScanned)
	assert.Equal(t, 2, res.FoldersSkipped)
}

func TestAggregate_NoData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0755))

	res, err := Aggregate(dir, nil)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Empty(t, res.Parts)
}

func TestAggregate_OrderingIndependentOfFolderOrder(t *testing.T) {
	// The same records distributed differently over folders must yield
	// the same sorted catalog.
	dirA := t.TempDir()
	writeJobFolder(t, dirA, "a", "zeta.dwg,3,1", "Alpha.dwg,5,1")
	writeJobFolder(t, dirA, "b", "beta.dwg,3,1")

	dirB := t.TempDir()
	writeJobFolder(t, dirB, "a", "beta.dwg,3,1")
	writeJobFolder(t, dirB, "b", "Alpha.dwg,5,1", "zeta.dwg,3,1")

	resA, err := Aggregate(dirA, nil)
	require.NoError(t, err)
	resB, err := Aggregate(dirB, nil)
	require.NoError(t, err)

	var namesA, namesB []string
	for _, p := range resA.Parts {
		namesA = append(namesA, p.FileName)
	}
	for _, p := range resB.Parts {
		namesB = append(namesB, p.FileName)
	}
	assert.Equal(t, []string{"beta.dwg", "zeta.dwg", "Alpha.dwg"}, namesA)
	assert.Equal(t, namesA, namesB)
}

func TestAggregate_ReadsExcelRecords(t *testing.T) {
	dir := t.TempDir()
	folder := filepath.Join(dir, "jobA")
	require.NoError(t, os.MkdirAll(folder, 0755))

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"FileName", "PlateThickness_mm", "Quantity"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"plate.dwg", 2.5, 4}))
	require.NoError(t, f.SaveAs(filepath.Join(folder, RecordFileExcel)))
	require.NoError(t, f.Close())

	res, err := Aggregate(dir, nil)
	require.NoError(t, err)
	require.Len(t, res.Parts, 1)
	assert.Equal(t, "plate.dwg", res.Parts[0].FileName)
	assert.Equal(t, 2.5, res.Parts[0].ThicknessMm)
	assert.Equal(t, 4, res.Parts[0].TotalQuantity)
}

func TestAggregate_CacheMemoizesPerDirectory(t *testing.T) {
	dir := t.TempDir()
	writeJobFolder(t, dir, "jobA", "plate.dwg,3,1")

	cache := NewCache()
	first, err := Aggregate(dir, cache)
	require.NoError(t, err)

	// New records appear only after invalidation.
	writeJobFolder(t, dir, "jobB", "other.dwg,3,1")

	cached, err := Aggregate(dir, cache)
	require.NoError(t, err)
	assert.Len(t, cached.Parts, len(first.Parts))

	cache.Invalidate(dir)
	fresh, err := Aggregate(dir, cache)
	require.NoError(t, err)
	assert.Len(t, fresh.Parts, 2)
}

func TestWriteSummary_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeJobFolder(t, dir, "jobA", "plateX.dwg,3,2", "plateY.dwg,6.5,1")

	res, err := Aggregate(dir, nil)
	require.NoError(t, err)

	pathA := filepath.Join(t.TempDir(), "a.csv")
	pathB := filepath.Join(t.TempDir(), "b.csv")
	require.NoError(t, WriteSummary(pathA, res.Parts))
	require.NoError(t, WriteSummary(pathB, res.Parts))

	a, err := os.ReadFile(pathA)
	require.NoError(t, err)
	b, err := os.ReadFile(pathB)
	require.NoError(t, err)
	assert.Equal(t, a, b, "summary must be byte-identical across runs")

	assert.Contains(t, string(a), "FileName,PlateThickness_mm,Quantity,Folder")
	assert.Contains(t, string(a), "plateY.dwg,6.5,1,")
	assert.Contains(t, string(a), "plateX.dwg,3,2,")
}
