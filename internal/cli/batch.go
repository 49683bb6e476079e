package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/linkclean/internal/batch"
	"github.com/law-makers/linkclean/internal/ui"
	"github.com/law-makers/linkclean/internal/utils/output"
	"github.com/law-makers/linkclean/pkg/models"
)

var (
	batchPreview     bool
	batchConcurrency int
	batchOutput      string
	batchFormat      string
	batchNoProgress  bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file|->",
	Short: "Clean (and optionally preview) a list of links",
	Long: `Reads one link per line from a file, or from stdin when the argument
is "-". Blank lines and lines starting with # are skipped.

Links are processed concurrently; results keep the input order. With
--preview each cleaned link is fetched once, throttled per domain and
cached, so duplicates cost a single request.`,
	Example: `  # Clean every link in a file
  linkclean batch links.txt

  # Clean and preview, saving a CSV report
  linkclean batch links.txt --preview --output report.csv

  # Read from stdin
  cat links.txt | linkclean batch - --format=json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().BoolVarP(&batchPreview, "preview", "p", false, "Fetch a preview for every cleaned link")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "Number of concurrent workers (0 = auto)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "Save results to a file (.csv, .json or .md)")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "text", "Stdout format when --output is not set: text, json or csv")
	batchCmd.Flags().BoolVar(&batchNoProgress, "no-progress", false, "Disable the progress bar")
}

func runBatch(cmd *cobra.Command, args []string) error {
	switch batchFormat {
	case "text", "json", "csv":
	default:
		return fmt.Errorf("invalid format: %s (must be text, json or csv)", batchFormat)
	}

	inputs, err := readBatchInput(cmd, args[0])
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No links to process.")
		return nil
	}

	a := GetAppFromCmd(cmd)

	var bar *progressbar.ProgressBar
	if showProgress(cmd) {
		bar = progressbar.NewOptions(len(inputs),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("Cleaning"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}

	runner := a.BatchRunner(batchPreview, batchConcurrency, func(models.BatchItem) {
		if bar != nil {
			_ = bar.Add(1)
		}
	})

	items, err := runner.Run(cmd.Context(), inputs)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}

	if batchOutput != "" {
		if err := saveBatch(items, batchOutput); err != nil {
			return fmt.Errorf("failed to save output: %w", err)
		}
		log.Info().Str("file", batchOutput).Int("items", len(items)).Msg("Batch results saved")
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Saved %d results to %s\n", ui.Success("✓"), len(items), batchOutput)
	} else if err := writeBatch(cmd.OutOrStdout(), items); err != nil {
		return err
	}

	printBatchSummary(cmd.ErrOrStderr(), items)
	return nil
}

func readBatchInput(cmd *cobra.Command, path string) ([]string, error) {
	if path == "-" {
		return batch.ReadLines(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return batch.ReadLines(f)
}

func showProgress(cmd *cobra.Command) bool {
	if batchNoProgress {
		return false
	}
	if f, ok := cmd.ErrOrStderr().(*os.File); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

func saveBatch(items []models.BatchItem, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return output.SaveCSV(items, path)
	case ".json":
		return output.SaveJSON(items, path)
	case ".md", ".markdown":
		content, err := output.BatchMarkdown(items)
		if err != nil {
			return err
		}
		return output.SaveMarkdown(content, path)
	default:
		return fmt.Errorf("unsupported output extension %q (use .csv, .json or .md)", filepath.Ext(path))
	}
}

func writeBatch(w io.Writer, items []models.BatchItem) error {
	switch batchFormat {
	case "json":
		return output.WriteJSON(w, items)
	case "csv":
		return output.WriteCSV(w, items)
	}

	for _, item := range items {
		if !item.Result.OK() {
			fmt.Fprintf(w, "%s\t%s\n", item.Input, ui.Error(string(item.Result.ErrorKind)))
			continue
		}
		line := item.Result.CleanedURL
		if item.Preview != nil && item.Preview.Record != nil && item.Preview.Record.Title != "" {
			line += "\t" + ui.Dim(item.Preview.Record.Title)
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func printBatchSummary(w io.Writer, items []models.BatchItem) {
	var modified, failed, previewErrors int
	for _, item := range items {
		switch {
		case !item.Result.OK():
			failed++
		case item.Result.WasModified:
			modified++
		}
		if item.Preview != nil && previewFailed(*item.Preview) {
			previewErrors++
		}
	}

	fmt.Fprintf(w, "\n%s %d links, %d cleaned, %d unchanged, %d invalid",
		ui.Bold("Summary:"), len(items), modified, len(items)-modified-failed, failed)
	if batchPreview {
		fmt.Fprintf(w, ", %d previews failed", previewErrors)
	}
	fmt.Fprintln(w)

	top := batch.TopDomains(items)
	if len(top) > 5 {
		top = top[:5]
	}
	for _, d := range top {
		fmt.Fprintf(w, "  %-30s %d\n", d.Domain, d.Count)
	}
}
