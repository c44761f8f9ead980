// Package catalog aggregates per-job part records into a deduplicated,
// quantity-weighted catalog of unique parts.
//
// Each job folder may contain a record file (PartsList.csv or
// PartsList.xlsx) with a header row followed by rows of
// fileName,thicknessMm,quantity. Folders without a record file, and rows
// that fail to parse, are skipped without aborting the run.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/msepahkar/platenest/internal/model"
)

const (
	// RecordFileCSV is the per-folder CSV record file name.
	RecordFileCSV = "PartsList.csv"
	// RecordFileExcel is the per-folder Excel record file name, used
	// when no CSV is present.
	RecordFileExcel = "PartsList.xlsx"
	// SummaryFileName is the aggregated catalog written next to the job
	// folders.
	SummaryFileName = "PartsSummary.csv"
)

// ErrNoData reports that aggregation found zero usable part records.
var ErrNoData = errors.New("catalog: no part records found")

// Result is the outcome of one aggregation run. Parts are sorted
// ascending by thickness, then case-insensitive ascending by file name.
type Result struct {
	Parts []model.UniquePart

	FoldersScanned int
	FoldersSkipped int // folders without a record file or with only a header
	RowsRead       int
	RowsSkipped    int // malformed rows
}

// Cache memoizes aggregation results per base directory. It replaces the
// original design's process-wide ambient cache with an explicit object
// the caller owns and passes in.
type Cache struct {
	entries map[string]Result
}

// NewCache returns an empty aggregation cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Result)}
}

func (c *Cache) get(baseDir string) (Result, bool) {
	if c == nil {
		return Result{}, false
	}
	r, ok := c.entries[baseDir]
	return r, ok
}

func (c *Cache) put(baseDir string, r Result) {
	if c == nil {
		return
	}
	c.entries[baseDir] = r
}

// Invalidate drops the cached result for a base directory.
func (c *Cache) Invalidate(baseDir string) {
	if c != nil {
		delete(c.entries, baseDir)
	}
}

// Aggregate scans the job folders under baseDir in name order, merges
// their part records into unique parts, and returns the sorted catalog.
// A nil cache disables memoization. Returns ErrNoData when no usable
// records exist.
func Aggregate(baseDir string, cache *Cache) (Result, error) {
	if cached, ok := cache.get(baseDir); ok {
		return cached, nil
	}

	dirEntries, err := os.ReadDir(baseDir)
	if err != nil {
		return Result{}, fmt.Errorf("catalog: %w", err)
	}

	res := Result{}
	byKey := make(map[string]*model.UniquePart)
	var order []string // first-seen key order, resorted below

	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		folder := filepath.Join(baseDir, de.Name())
		res.FoldersScanned++

		records, skipped, found := readRecords(folder)
		res.RowsSkipped += skipped
		if !found || len(records) == 0 {
			res.FoldersSkipped++
			continue
		}
		res.RowsRead += len(records)

		for _, rec := range records {
			key := model.PartKey(rec.FileName, rec.ThicknessMm)
			if existing, ok := byKey[key]; ok {
				existing.TotalQuantity += rec.Quantity
				continue
			}
			byKey[key] = &model.UniquePart{
				FileName:      rec.FileName,
				ThicknessMm:   rec.ThicknessMm,
				TotalQuantity: rec.Quantity,
				SourceFolder:  rec.SourceFolder,
				SourcePath:    rec.SourcePath,
			}
			order = append(order, key)
		}
	}

	for _, key := range order {
		res.Parts = append(res.Parts, *byKey[key])
	}
	sortParts(res.Parts)

	if len(res.Parts) == 0 {
		return res, ErrNoData
	}

	cache.put(baseDir, res)
	return res, nil
}

// sortParts orders the catalog ascending by rounded thickness, then
// case-insensitive ascending by file name, independent of input order.
func sortParts(parts []model.UniquePart) {
	sort.SliceStable(parts, func(i, j int) bool {
		ti := model.Round3(parts[i].ThicknessMm)
		tj := model.Round3(parts[j].ThicknessMm)
		if ti != tj {
			return ti < tj
		}
		return strings.ToLower(parts[i].FileName) < strings.ToLower(parts[j].FileName)
	})
}

// WriteSummary writes the catalog summary table. The caller treats a
// failure as a persistence problem to log, not a reason to abort.
func WriteSummary(path string, parts []model.UniquePart) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"FileName", "PlateThickness_mm", "Quantity", "Folder"}); err != nil {
		return err
	}
	for _, p := range parts {
		row := []string{
			p.FileName,
			model.FormatThickness(p.ThicknessMm),
			fmt.Sprintf("%d", p.TotalQuantity),
			p.SourceFolder,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
