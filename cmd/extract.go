package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/edamaster-cli/internal/batch"
	"github.com/KaramelBytes/edamaster-cli/internal/export"
	"github.com/KaramelBytes/edamaster-cli/internal/metrics"
	"github.com/KaramelBytes/edamaster-cli/internal/parser"
	"github.com/KaramelBytes/edamaster-cli/internal/table"
	"github.com/spf13/cobra"
)

// runFlags are shared by extract and preview.
type runFlags struct {
	delimiter   string
	suffix      string
	previewRows int
	sheetName   string
	sheetIndex  int
	quiet       bool
}

var (
	exRun       runFlags
	exOutput    string
	exFormat    string
	exNoPreview bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <files...>",
	Short: "Build the EDA master sheet from participant summary files",
	Example: `  edamaster extract data/*_period_analysis_summary.csv
  edamaster extract P01.csv P02.csv -o out/master.csv
  edamaster extract data/*.xlsx --format xlsx --quiet`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		session, err := runExtraction(cmd, args, exRun)
		if err != nil {
			return err
		}

		if !exNoPreview && !exRun.quiet {
			fmt.Fprintln(out, export.Preview(session.Records, previewRows(cmd, exRun)).Markdown())
		}

		path, format, err := outputTarget(cmd)
		if err != nil {
			return err
		}
		var written bool
		switch format {
		case "xlsx":
			written, err = export.WriteXLSX(path, session.Records)
		default:
			written, err = export.WriteFile(path, session.Records)
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		if !written {
			fmt.Fprintln(out, "⚠ Nothing to export")
			return nil
		}
		if !exRun.quiet {
			fmt.Fprintf(out, "✓ Wrote %d participants to %s\n", len(session.Records), path)
		}
		return nil
	},
}

// runExtraction expands args, parses and extracts every file in order.
func runExtraction(cmd *cobra.Command, args []string, rf runFlags) (*batch.Session, error) {
	files := batch.ExpandArgs(args)
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}

	opt := parser.DefaultOptions()
	delim := cfg.Delimiter
	if cmd.Flags().Changed("delimiter") {
		delim = rf.delimiter
	}
	d, err := parser.ParseDelimiter(delim)
	if err != nil {
		return nil, fmt.Errorf("unsupported --delimiter: %s", delim)
	}
	opt.Delimiter = d
	opt.SheetName = rf.sheetName
	if rf.sheetIndex > 0 {
		opt.SheetIndex = rf.sheetIndex
	}

	suffix := cfg.FilenameSuffix
	if cmd.Flags().Changed("suffix") {
		suffix = rf.suffix
	}

	out := cmd.OutOrStdout()
	runner := batch.NewRunner(
		func(name string, r io.Reader) ([]table.Row, error) { return parser.Parse(name, r, opt) },
		metrics.NewExtractor(metrics.WithSuffix(suffix)),
		batch.WithLogger(slog.Default()),
		batch.WithProgress(func(current, total int, name string) {
			if !rf.quiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", current, total, name)
			}
		}),
	)
	session := runner.Run(batch.FileInputs(files))
	for _, name := range session.Failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Could not read %s; exported with empty cells\n", name)
	}
	return session, nil
}

func previewRows(cmd *cobra.Command, rf runFlags) int {
	if cmd.Flags().Changed("preview-rows") {
		return rf.previewRows
	}
	return cfg.PreviewRows
}

// outputTarget resolves the output path and format. An explicit --format
// wins, then a .xlsx output extension, then the configured format. Asking
// for xlsx with the default csv file name switches the extension.
func outputTarget(cmd *cobra.Command) (path, format string, err error) {
	path = cfg.OutputFile
	if cmd.Flags().Changed("output") {
		path = exOutput
	}
	switch {
	case cmd.Flags().Changed("format"):
		format = strings.ToLower(exFormat)
	case strings.EqualFold(filepath.Ext(path), ".xlsx"):
		format = "xlsx"
	default:
		format = cfg.OutputFormat
	}
	switch format {
	case "csv":
	case "xlsx":
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + ".xlsx"
		}
	default:
		return "", "", fmt.Errorf("unsupported --format: %s (use csv|xlsx)", format)
	}
	return path, format, nil
}

func addRunFlags(c *cobra.Command, rf *runFlags) {
	c.Flags().StringVar(&rf.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default by extension)")
	c.Flags().StringVar(&rf.suffix, "suffix", metrics.DefaultSuffix, "file name suffix removed to form the participant id")
	c.Flags().IntVar(&rf.previewRows, "preview-rows", export.DefaultPreviewRows, "number of participants shown in the preview")
	c.Flags().StringVar(&rf.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	c.Flags().IntVar(&rf.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	c.Flags().BoolVar(&rf.quiet, "quiet", false, "suppress progress and non-essential output")
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addRunFlags(extractCmd, &exRun)
	extractCmd.Flags().StringVarP(&exOutput, "output", "o", export.DefaultFilename, "output file")
	extractCmd.Flags().StringVar(&exFormat, "format", "csv", "output format: csv|xlsx")
	extractCmd.Flags().BoolVar(&exNoPreview, "no-preview", false, "do not print the preview table")
}
