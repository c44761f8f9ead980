package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msepahkar/platenest/internal/docstore"
	"github.com/msepahkar/platenest/internal/extract"
	"github.com/msepahkar/platenest/internal/model"
)

// writeJob creates one job folder holding a part record file and the
// referenced source drawing (a closed rectangle, JSON format).
func writeJob(t *testing.T, jobsDir, job, partFile string, thickness string, qty string, w, h float64) {
	t.Helper()
	folder := filepath.Join(jobsDir, job)
	require.NoError(t, os.MkdirAll(folder, 0755))

	csv := "FileName,PlateThickness_mm,Quantity\n" + partFile + "," + thickness + "," + qty + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(folder, "PartsList.csv"), []byte(csv), 0644))

	doc := docstore.NewDocument()
	doc.Model = append(doc.Model, docstore.Polyline{
		Points: model.Outline{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}},
		Closed: true,
	})
	require.NoError(t, docstore.SavePath(doc, filepath.Join(folder, partFile)))
}

func TestAggregateThenNest_EndToEnd(t *testing.T) {
	jobsDir := t.TempDir()
	writeJob(t, jobsDir, "jobA", "bracket.json", "3", "2", 300, 200)
	writeJob(t, jobsDir, "jobB", "bracket.json", "3", "3", 300, 200)

	outDir := t.TempDir()
	ctx := context.Background()

	require.NoError(t, runAggregate(ctx, jobsDir, aggregateOpts{
		outDir: outDir, format: "json", colorSeed: 1,
	}))

	// Summary catalog and one consolidated drawing for thickness 3.
	_, err := os.Stat(filepath.Join(outDir, "PartsSummary.csv"))
	assert.NoError(t, err)

	consolidated := filepath.Join(outDir, "plates_3.json")
	doc, err := docstore.OpenPath(consolidated)
	require.NoError(t, err)

	plates := extract.Plates(doc)
	require.Len(t, plates, 1, "both jobs merge into one unique part")
	assert.Equal(t, 5, plates[0].Quantity, "group name carries the merged quantity")

	require.NoError(t, runNest(ctx, consolidated, nestOpts{}))

	nested := filepath.Join(outDir, "plates_3_nested.json")
	out, err := docstore.OpenPath(nested)
	require.NoError(t, err)
	assert.Len(t, out.Inserts, 5, "one insert per physical instance")
}

func TestRunAggregate_EmptyJobsDirIsNotAnError(t *testing.T) {
	jobsDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(jobsDir, "empty"), 0755))

	err := runAggregate(context.Background(), jobsDir, aggregateOpts{format: "json"})
	assert.NoError(t, err)
}

func TestRunAggregate_RejectsUnknownFormat(t *testing.T) {
	err := runAggregate(context.Background(), t.TempDir(), aggregateOpts{format: "svg"})
	assert.ErrorContains(t, err, "unsupported format")
}

func TestRunNest_OversizedPlateFails(t *testing.T) {
	jobsDir := t.TempDir()
	writeJob(t, jobsDir, "jobA", "huge.json", "3", "1", 5000, 2000)

	outDir := t.TempDir()
	ctx := context.Background()
	require.NoError(t, runAggregate(ctx, jobsDir, aggregateOpts{
		outDir: outDir, format: "json", colorSeed: 1,
	}))

	err := runNest(ctx, filepath.Join(outDir, "plates_3.json"), nestOpts{})
	assert.Error(t, err, "a plate larger than the usable sheet aborts the run")
}

func TestFormatExt(t *testing.T) {
	ext, err := formatExt("json")
	require.NoError(t, err)
	assert.Equal(t, ".json", ext)

	ext, err = formatExt("dxf")
	require.NoError(t, err)
	assert.Equal(t, ".dxf", ext)

	_, err = formatExt("pdf")
	assert.Error(t, err)
}
