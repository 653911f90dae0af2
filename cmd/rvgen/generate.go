package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/rvforms/internal/core"
	"github.com/JonMunkholm/rvforms/internal/core/templates"
	"github.com/JonMunkholm/rvforms/internal/logging"
	"github.com/JonMunkholm/rvforms/internal/workbook"
	"github.com/spf13/cobra"
)

var genFlags struct {
	input     string
	outputDir string
	template  string
	project   string
	client    string
	reference string
	revision  string
	headerRow string
	logFile   string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one form sheet per instrument or valve",
	Example: `  rvgen generate --input schedule.xlsm --template Valve \
    --project "Harbour Tower" --client Acme --reference BMS-001 --revision B`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genFlags.input, "input", "i", "", "input workbook (.xlsx or .xlsm)")
	f.StringVarP(&genFlags.outputDir, "output-dir", "o", "", "output directory (default: the input's directory)")
	f.StringVarP(&genFlags.template, "template", "t", string(core.VariantInstrument), "template type: Instrument or Valve")
	f.StringVar(&genFlags.project, "project", "", "project name")
	f.StringVar(&genFlags.client, "client", "", "client name")
	f.StringVar(&genFlags.reference, "reference", "", "reference document")
	f.StringVar(&genFlags.revision, "revision", "", "document revision")
	f.StringVar(&genFlags.headerRow, "header-row", "", "fallback header row when detection fails")
	f.StringVar(&genFlags.logFile, "log-file", "", "run log (default: rv_generator_log.txt in the output directory)")
	_ = generateCmd.MarkFlagRequired("input")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	headerRow, err := core.ParseHeaderRow(genFlags.headerRow)
	if err != nil {
		return err
	}

	opts := core.Options{
		Variant:   core.TemplateVariant(genFlags.template),
		Project:   genFlags.project,
		Client:    genFlags.client,
		Reference: genFlags.reference,
		Revision:  genFlags.revision,
		HeaderRow: headerRow,
		FileName:  filepath.Base(genFlags.input),
	}
	if err := core.ValidateOptions(opts); err != nil {
		return err
	}

	outDir := genFlags.outputDir
	if outDir == "" {
		outDir = filepath.Dir(genFlags.input)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	outPath := filepath.Join(outDir, core.OutputFileName(opts.Project, opts.FileName))

	logPath := genFlags.logFile
	if logPath == "" {
		logPath = filepath.Join(outDir, filepath.Base(cfg.Generator.LogFile))
	}
	runLog, closer, err := logging.OpenRunLog(logPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	wb, err := workbook.Open(genFlags.input)
	if err != nil {
		return err
	}
	defer wb.Close()

	gen := core.NewGenerator(templates.Default(), core.GeneratorConfig{
		HeaderScanRows: cfg.Generator.HeaderScanRows,
		FontSize:       cfg.Generator.FontSize,
		DateFormat:     cfg.Generator.DateFormat,
	})

	out := cmd.ErrOrStderr()
	lastPct := -1
	res, err := gen.Run(context.Background(), core.RunRequest{
		Document: wb,
		Options:  opts,
		Save:     workbook.SaveTo(outPath),
		Log:      runLog,
		Progress: func(p core.Progress) {
			if pct := int(p.Percent()); pct != lastPct && p.Phase == core.PhaseEmitting {
				lastPct = pct
				fmt.Fprintf(out, "\r%3d%% (%d/%d rows)", pct, p.Current, p.Total)
			}
		},
	})
	if lastPct >= 0 {
		fmt.Fprintln(out)
	}
	if err != nil {
		return fmt.Errorf("%s\n  %s", core.FormatUserError(err), err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Header row: %d", res.HeaderRow)
	if res.HeaderFallback {
		fmt.Fprint(w, " (fallback)")
	}
	fmt.Fprintln(w)
	for _, warning := range res.Warnings {
		fmt.Fprintln(w, "Warning:", warning)
	}
	for _, o := range res.Outcomes {
		if o.Kind == core.OutcomeFailed {
			fmt.Fprintf(w, "Row %d failed: %v\n", o.Row, o.Err)
		}
	}
	fmt.Fprintf(w, "Generated %d forms (%s), skipped %d rows, %d rows failed\n",
		res.Emitted(), strings.Join(res.Forms, ", "), res.Skipped, res.Failed)
	fmt.Fprintf(w, "Saved to %s\n", outPath)
	return nil
}
