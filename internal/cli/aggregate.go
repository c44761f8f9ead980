package cli

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/msepahkar/platenest/internal/assemble"
	"github.com/msepahkar/platenest/internal/catalog"
	"github.com/msepahkar/platenest/internal/config"
	"github.com/msepahkar/platenest/internal/docstore"
)

// aggregateOpts holds the flags for the aggregate command.
type aggregateOpts struct {
	outDir     string // output directory (jobs dir if empty)
	configPath string // settings file path
	format     string // consolidated drawing format: json or dxf
	colorSeed  int64  // seed for group color assignment
}

// newAggregateCmd creates the aggregate command: scan job folders,
// merge part records, write the summary catalog, and build one
// consolidated drawing per thickness.
func newAggregateCmd() *cobra.Command {
	opts := aggregateOpts{format: "json", colorSeed: 1}

	cmd := &cobra.Command{
		Use:   "aggregate <jobs-dir>",
		Short: "Merge job part lists and build per-thickness drawings",
		Long: `Aggregate scans the job folders under <jobs-dir> in name order, merges
their part records (PartsList.csv or PartsList.xlsx) into a deduplicated
catalog, writes the PartsSummary.csv table, and builds one consolidated
drawing per material thickness.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runAggregate(c.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "output", "o", "", "output directory (defaults to the jobs dir)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "settings file (defaults to ./platenest.toml)")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "consolidated drawing format: json or dxf")
	cmd.Flags().Int64Var(&opts.colorSeed, "color-seed", opts.colorSeed, "seed for group color assignment")

	return cmd
}

func runAggregate(ctx context.Context, jobsDir string, opts aggregateOpts) error {
	logger := loggerFromContext(ctx)

	settings, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	ext, err := formatExt(opts.format)
	if err != nil {
		return err
	}

	outDir := opts.outDir
	if outDir == "" {
		outDir = jobsDir
	}

	cache := catalog.NewCache()
	res, err := catalog.Aggregate(jobsDir, cache)
	if errors.Is(err, catalog.ErrNoData) {
		logger.Info("No part records found, nothing to do", "folders", res.FoldersScanned)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("Aggregated part catalog",
		"unique_parts", len(res.Parts),
		"rows", res.RowsRead,
		"rows_skipped", res.RowsSkipped,
		"folders", res.FoldersScanned,
		"folders_skipped", res.FoldersSkipped)

	summaryPath := filepath.Join(outDir, catalog.SummaryFileName)
	if err := catalog.WriteSummary(summaryPath, res.Parts); err != nil {
		// Persistence failure: the in-memory catalog is still usable.
		logger.Error("Cannot write summary catalog", "path", summaryPath, "err", err)
	} else {
		logger.Info("Wrote summary catalog", "path", summaryPath)
	}

	assembler := assemble.New(settings)
	assembler.Colors = docstore.NewPaletteColors(opts.colorSeed)

	for _, group := range assemble.GroupByThickness(res.Parts) {
		doc, stats := assembler.Assemble(group)
		if stats.PartsSkipped > 0 {
			logger.Warn("Skipped parts with unavailable geometry",
				"thickness", group.Thickness, "skipped", stats.PartsSkipped)
		}
		if stats.PartsPlaced == 0 {
			logger.Warn("No usable parts for thickness, drawing not written", "thickness", group.Thickness)
			continue
		}

		outPath := filepath.Join(outDir, assemble.OutputName(group.Thickness, ext))
		if err := docstore.SavePath(doc, outPath); err != nil {
			logger.Error("Cannot write consolidated drawing", "path", outPath, "err", err)
			continue
		}
		logger.Info("Wrote consolidated drawing",
			"thickness", group.Thickness, "parts", stats.PartsPlaced, "path", outPath)
	}

	return nil
}

// formatExt maps a format flag value to a file extension.
func formatExt(format string) (string, error) {
	switch format {
	case "json":
		return ".json", nil
	case "dxf":
		return ".dxf", nil
	default:
		return "", errors.New("unsupported format " + format + " (want json or dxf)")
	}
}
