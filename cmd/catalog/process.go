package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/autoparts-catalog/internal/catalog"
	"github.com/Veraticus/autoparts-catalog/internal/cli"
	"github.com/Veraticus/autoparts-catalog/internal/common"
	"github.com/Veraticus/autoparts-catalog/internal/config"
	"github.com/Veraticus/autoparts-catalog/internal/export"
	"github.com/Veraticus/autoparts-catalog/internal/model"
	"github.com/Veraticus/autoparts-catalog/internal/source"
	"github.com/Veraticus/autoparts-catalog/internal/storage"
	"github.com/spf13/cobra"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <files...>",
		Short: "Normalize supplier price lists into a JSON catalog",
		Long: `Extract every table from the given PDF, Excel or CSV files, normalize the
headers, fold brand and model banners into the part rows, parse prices and
validate the result.

Glob patterns are expanded. With a single input --output names the output
file; with several inputs it names a directory and each input is written to
<output>/<input name>.json.`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(cmd, map[string]string{
				"mapping":                    "mapping",
				"output":                     "output",
				"rejects_output":             "rejects",
				"dry_run":                    "dry-run",
				"pipeline.collision_policy":  "collision",
				"pipeline.allow_zero_prices": "allow-zero-prices",
				"pipeline.infer_placement":   "infer-placement",
				"source.sheet":               "sheet",
				"source.header_row":          "header-row",
				"logging.extraction_file":    "extraction-log",
				"logging.validation_file":    "validation-log",
			})
		},
		RunE: runProcess,
	}

	// Flags
	cmd.Flags().String("mapping", "", "JSON alias file extending the built-in header aliases")
	cmd.Flags().StringP("output", "o", "", "output file (one input) or directory (several inputs)")
	cmd.Flags().String("rejects", "", "write rejected rows with their reason to this file or directory")
	cmd.Flags().Bool("dry-run", false, "run the pipeline and print the report without writing anything")
	cmd.Flags().String("collision", "", "header collision policy (overwrite, warn, error)")
	cmd.Flags().Bool("allow-zero-prices", false, "keep zero prices instead of treating them as missing")
	cmd.Flags().Bool("infer-placement", false, "derive posicion and lado from the part description")
	cmd.Flags().String("sheet", "", "Excel sheet to read (default: first, \"*\" for all)")
	cmd.Flags().Int("header-row", 0, "1-based header row for CSV and Excel sources")
	cmd.Flags().String("extraction-log", "", "append extraction facts to this log file")
	cmd.Flags().String("validation-log", "", "append validation facts to this log file")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	inputs, err := expandInputs(args)
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(cmd.Context(), len(inputs) > 1)
	defer stop()

	p := &processor{
		cfg:      cfg,
		out:      cmd.OutOrStdout(),
		progress: cmd.ErrOrStderr(),
	}
	return p.processAll(ctx, inputs)
}

// processor runs the pipeline over a list of inputs with shared settings.
type processor struct {
	cfg      *config.Config
	store    *storage.SQLiteStorage
	out      io.Writer
	progress io.Writer
}

func (p *processor) processAll(ctx context.Context, inputs []string) error {
	aliases, err := loadAliases(p.cfg)
	if err != nil {
		return err
	}

	if !p.cfg.DryRun && p.store == nil {
		store, err := initStorage(ctx, p.cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer func() { _ = store.Close() }()
		p.store = store
	}

	level, err := common.ParseLevel(p.cfg.Logging.Level)
	if err != nil {
		return err
	}
	extractionLog, closeExtraction, err := common.NewFileLogger(p.cfg.Logging.ExtractionFile, level, p.cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = closeExtraction() }()
	validationLog, closeValidation, err := common.NewFileLogger(p.cfg.Logging.ValidationFile, level, p.cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = closeValidation() }()

	multi := len(inputs) > 1
	for _, input := range inputs {
		run, err := p.processOne(ctx, input, aliases, multi, extractionLog, validationLog)
		if err != nil {
			common.LogError(extractionLog, err, "Processing failed", common.Fields{"source": input})
			if common.IsFatal(err) {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintln(p.out, cli.RenderRunSummary(*run)); err != nil {
			slog.Warn("Failed to write summary", "error", err)
		}
	}
	return nil
}

func (p *processor) processOne(ctx context.Context, input string, aliases catalog.AliasMap, multi bool,
	extractionLog, validationLog *slog.Logger,
) (*model.Run, error) {
	run := storage.NewRun(input)

	src, err := source.Open(input, sourceOptions(p.cfg))
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("cannot read %s", input), err)
	}

	policy, err := catalog.ParseCollisionPolicy(p.cfg.Pipeline.CollisionPolicy)
	if err != nil {
		return nil, err
	}

	progress := cli.NewTableProgress(p.progress, filepath.Base(input))
	pipeline := catalog.NewPipeline()
	pipeline.Observer = progress
	pipeline.Aliases = aliases
	pipeline.Collision = policy
	pipeline.PriceColumns = p.cfg.Pipeline.PriceColumns
	pipeline.Required = p.cfg.Pipeline.RequiredFields
	pipeline.AllowZeroPrices = p.cfg.Pipeline.AllowZeroPrices
	pipeline.InferPlacement = p.cfg.Pipeline.InferPlacement
	pipeline.DropUnnamed = p.cfg.Pipeline.DropUnnamed

	res, err := pipeline.Run(ctx, src)
	progress.Finish()
	if err != nil {
		return nil, err
	}

	common.LogInfo(extractionLog, "Extraction finished", common.Fields{
		"source":    input,
		"tables":    res.Extraction.Tables,
		"processed": res.Extraction.Processed,
		"failed":    res.Extraction.Failed,
		"rows":      res.Extraction.Rows,
		"empty":     res.Empty,
	})
	common.LogInfo(validationLog, "Validation finished", common.Fields{
		"source":   input,
		"total":    res.Report.Total,
		"valid":    res.Report.Valid,
		"rejected": res.Report.Rejected,
		"reasons":  res.Report.Reasons,
	})

	fillRun(run, res)

	if p.cfg.DryRun {
		run.FinishedAt = time.Now().UTC()
		return run, nil
	}

	run.Output = outputPath(p.cfg.Output, input, multi, ".json")
	if err := export.WriteFile(run.Output, res.Records); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", run.Output, err)
	}
	if p.cfg.RejectsOutput != "" && len(res.Rejections) > 0 {
		path := outputPath(p.cfg.RejectsOutput, input, multi, ".rejects.json")
		if err := export.WriteRejectsFile(path, res.Records.Columns, res.Rejections); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	run.FinishedAt = time.Now().UTC()
	if p.store != nil {
		err := common.WithRetry(ctx, func() error {
			err := p.store.SaveRun(ctx, run, res.Records)
			if err != nil && !storage.IsBusy(err) {
				return common.Permanent(err)
			}
			return err
		}, common.RetryOptions{MaxAttempts: 3})
		if err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}
	return run, nil
}

func fillRun(run *model.Run, res *catalog.Result) {
	run.Tables = res.Extraction.Tables
	run.Processed = res.Extraction.Processed
	run.Failed = res.Extraction.Failed
	run.Total = res.Report.Total
	run.Valid = res.Report.Valid
	run.Rejected = res.Report.Rejected
	run.Reasons = maps.Clone(res.Report.Reasons)
	if run.Reasons == nil {
		run.Reasons = make(map[string]int)
	}
}

func sourceOptions(cfg *config.Config) source.Options {
	opts := source.Options{
		Sheet:     cfg.Source.Sheet,
		Encoding:  cfg.Source.Encoding,
		HeaderRow: cfg.Source.HeaderRow,
		PDF: source.PDFOptions{
			Columns:    cfg.PDF.Columns,
			YTolerance: cfg.PDF.YTolerance,
			HeaderBand: cfg.PDF.HeaderBand,
			GlyphGap:   cfg.PDF.GlyphGap,
		},
	}
	if r := []rune(cfg.Source.CSVDelimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	return opts
}

// expandInputs resolves glob patterns and drops repeated paths. A pattern
// that matches nothing is an error; a plain path is passed through so the
// source reports it as unavailable.
func expandInputs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var inputs []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			inputs = append(inputs, path)
		}
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			add(arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, common.NewUserError(fmt.Sprintf("bad pattern %q", arg), err)
		}
		if len(matches) == 0 {
			return nil, common.NewUserError(fmt.Sprintf("no files match %q", arg), common.ErrSourceUnavailable)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return inputs, nil
}

// outputPath decides where an input's output goes. With one input a
// configured target is a file; with several it is a directory. Without a
// target the output sits next to the input.
func outputPath(target, input string, multi bool, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	switch {
	case target == "":
		return filepath.Join(filepath.Dir(input), base+suffix)
	case multi:
		return filepath.Join(target, base+suffix)
	default:
		if info, err := os.Stat(target); err == nil && info.IsDir() {
			return filepath.Join(target, base+suffix)
		}
		return target
	}
}
