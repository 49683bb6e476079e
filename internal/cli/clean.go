package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/law-makers/linkclean/internal/session"
	"github.com/law-makers/linkclean/pkg/models"
)

var (
	cleanPreview bool
	cleanFormat  string
)

// errInvalidURL makes the process exit non-zero for malformed input
var errInvalidURL = errors.New("invalid URL")

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean <url>",
	Short: "Remove tracking parameters from a URL",
	Long: `Removes every blocked query parameter from the URL and prints the
cleaned link. Everything else (path, other parameters, fragment) is kept
exactly as written. A YouTube start time (t=) is always preserved.

Links without a scheme are treated as https.`,
	Example: `  # Clean a link
  linkclean clean "https://example.com/post?utm_source=news&id=7"

  # Clean and fetch a preview
  linkclean clean "youtu.be/abc?si=x&t=90" --preview

  # Machine-readable output
  linkclean clean "example.com/?fbclid=1" --format=json`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().BoolVarP(&cleanPreview, "preview", "p", false, "Fetch a link preview for the cleaned URL")
	cleanCmd.Flags().StringVarP(&cleanFormat, "format", "f", "text", "Output format: text, json or markdown")
}

func runClean(cmd *cobra.Command, args []string) error {
	if err := validFormat(cleanFormat); err != nil {
		return err
	}

	a := GetAppFromCmd(cmd)
	input := args[0]
	res := a.Session.Update(input)

	var pr *models.PreviewResult
	if cleanPreview {
		p, ok, err := a.Session.Preview(cmd.Context())
		if err != nil && !errors.Is(err, session.ErrStale) {
			return err
		}
		if ok {
			pr = &p
		}
	}

	if err := render(cmd.OutOrStdout(), cleanFormat, newCleanReport(input, res, pr)); err != nil {
		return err
	}

	if res.ErrorKind == models.ErrorKindMalformed {
		return errInvalidURL
	}
	return nil
}
