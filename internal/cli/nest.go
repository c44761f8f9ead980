package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/msepahkar/platenest/internal/config"
	"github.com/msepahkar/platenest/internal/docstore"
	"github.com/msepahkar/platenest/internal/engine"
	"github.com/msepahkar/platenest/internal/extract"
	"github.com/msepahkar/platenest/internal/render"
)

// nestOpts holds the flags for the nest command.
type nestOpts struct {
	configPath  string
	sheetWidth  float64 // overrides config when > 0
	sheetHeight float64 // overrides config when > 0
	outPath     string  // nested output path (derived from source if empty)
	pdfPath     string  // optional PDF report
	labelsPath  string  // optional QR label sheet
}

// newNestCmd creates the nest command: read a consolidated drawing,
// pack its plates onto stock sheets, and write the nested output.
func newNestCmd() *cobra.Command {
	opts := nestOpts{}

	cmd := &cobra.Command{
		Use:   "nest <consolidated-drawing>",
		Short: "Nest the plates of a consolidated drawing onto stock sheets",
		Long: `Nest reads the plate groups of a consolidated drawing, expands them by
their declared quantities, packs the instances onto fixed-size stock
sheets using greedy shelf packing, and writes the nested output drawing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runNest(c.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "settings file (defaults to ./platenest.toml)")
	cmd.Flags().Float64Var(&opts.sheetWidth, "sheet-width", 0, "stock sheet width in mm (overrides config)")
	cmd.Flags().Float64Var(&opts.sheetHeight, "sheet-height", 0, "stock sheet height in mm (overrides config)")
	cmd.Flags().StringVarP(&opts.outPath, "output", "o", "", "nested output path (defaults to <src>_nested)")
	cmd.Flags().StringVar(&opts.pdfPath, "pdf", "", "also write a PDF report to this path")
	cmd.Flags().StringVar(&opts.labelsPath, "labels", "", "also write QR part labels to this path")

	return cmd
}

func runNest(ctx context.Context, srcPath string, opts nestOpts) error {
	logger := loggerFromContext(ctx)

	settings, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.sheetWidth > 0 {
		settings.SheetWidth = opts.sheetWidth
	}
	if opts.sheetHeight > 0 {
		settings.SheetHeight = opts.sheetHeight
	}

	doc, err := docstore.OpenPath(srcPath)
	if err != nil {
		return err
	}

	plates := extract.Plates(doc)
	logger.Info("Extracted plate catalog",
		"plates", len(plates), "instances", extract.TotalInstances(plates))

	eng := engine.New(settings)
	eng.Progress = func(placed, total int) {
		logger.Debug("Placed instance", "placed", placed, "total", total)
	}

	layout, err := eng.Nest(plates)
	if errors.Is(err, engine.ErrNothingToNest) {
		logger.Info("Nothing to nest, no output written")
		return nil
	}
	if err != nil {
		// FitError or ConfigurationError: the run aborted with no
		// partial layout.
		return err
	}
	logger.Info("Nesting complete",
		"sheets", len(layout.Sheets),
		"placed", len(layout.Placements),
		"efficiency", layout.TotalEfficiency())

	out, err := render.New(settings).Render(doc, layout)
	if err != nil {
		return err
	}

	outPath := opts.outPath
	if outPath == "" {
		outPath = render.OutputName(srcPath)
	}
	if err := docstore.SavePath(out, outPath); err != nil {
		// The layout is already reported above; only the artifact is
		// missing.
		logger.Error("Cannot write nested drawing", "path", outPath, "err", err)
	} else {
		logger.Info("Wrote nested drawing", "path", outPath)
	}

	if opts.pdfPath != "" {
		if err := render.WritePDF(opts.pdfPath, layout); err != nil {
			logger.Error("Cannot write PDF report", "path", opts.pdfPath, "err", err)
		} else {
			logger.Info("Wrote PDF report", "path", opts.pdfPath)
		}
	}
	if opts.labelsPath != "" {
		if err := render.WriteLabels(opts.labelsPath, layout); err != nil {
			logger.Error("Cannot write labels", "path", opts.labelsPath, "err", err)
		} else {
			logger.Info("Wrote labels", "path", opts.labelsPath)
		}
	}

	return nil
}
