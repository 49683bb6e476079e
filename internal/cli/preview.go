package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/linkclean/internal/preview"
	"github.com/law-makers/linkclean/internal/sanitize"
	"github.com/law-makers/linkclean/internal/utils/headers"
	"github.com/law-makers/linkclean/pkg/models"
)

var (
	previewHeaders []string
	previewFormat  string
)

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview <url>",
	Short: "Fetch a link preview (title, description, image, icon)",
	Long: `Cleans the URL, then issues a single GET request and extracts the
OpenGraph, Twitter card and standard meta tags from the response.

Direct image links get an image-only preview. Non-HTML responses,
timeouts and network failures are reported, never fatal.`,
	Example: `  # Preview a page
  linkclean preview https://go.dev/blog

  # Send extra headers with the request
  linkclean preview https://example.com -H "Accept-Language: de"`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringArrayVarP(&previewHeaders, "header", "H", []string{}, "Custom headers (e.g., -H \"Accept-Language: de\")")
	previewCmd.Flags().StringVarP(&previewFormat, "format", "f", "text", "Output format: text, json or markdown")
}

func runPreview(cmd *cobra.Command, args []string) error {
	if err := validFormat(previewFormat); err != nil {
		return err
	}

	hdrs, err := headers.ParseHeaders(previewHeaders)
	if err != nil {
		return err
	}

	a := GetAppFromCmd(cmd)
	input := args[0]
	res := sanitize.Sanitize(input, a.Session.BlockList())
	if !res.OK() {
		if err := render(cmd.OutOrStdout(), previewFormat, newCleanReport(input, res, nil)); err != nil {
			return err
		}
		return fmt.Errorf("cannot preview %q: %s", input, res.ErrorKind)
	}

	fetcher := preview.Fetcher(a.Extractor)
	if len(hdrs) > 0 {
		fetcher = preview.New(a.HTTPClient, preview.Options{
			UserAgent:    a.Config.UserAgent,
			Timeout:      a.Config.PreviewTimeout,
			MaxBodyBytes: a.Config.MaxBodyBytes,
			Headers:      hdrs,
		})
	}

	p := fetcher.Fetch(cmd.Context(), res.CleanedURL)
	return render(cmd.OutOrStdout(), previewFormat, newCleanReport(input, res, &p))
}

func previewFailed(p models.PreviewResult) bool {
	return p.Record == nil && p.Message != ""
}
