package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/law-makers/linkclean/internal/sanitize"
	"github.com/law-makers/linkclean/internal/ui"
	"github.com/law-makers/linkclean/internal/utils/output"
	"github.com/law-makers/linkclean/pkg/models"
)

// cleanReport is the JSON shape of a single clean/preview run
type cleanReport struct {
	Input   string                `json:"input"`
	Result  models.SanitizeResult `json:"result"`
	Message string                `json:"message"`
	Preview *models.PreviewResult `json:"preview,omitempty"`
}

func newCleanReport(input string, res models.SanitizeResult, pr *models.PreviewResult) cleanReport {
	return cleanReport{
		Input:   input,
		Result:  res,
		Message: sanitize.Message(res.ErrorKind, res.WasModified),
		Preview: pr,
	}
}

func validFormat(format string) error {
	switch format {
	case "text", "json", "markdown", "md":
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be text, json or markdown)", format)
}

// render writes a report in the requested format
func render(w io.Writer, format string, report cleanReport) error {
	switch format {
	case "json":
		return output.WriteJSON(w, report)
	case "markdown", "md":
		if !report.Result.OK() {
			fmt.Fprintln(w, report.Message)
			return nil
		}
		md, err := output.Markdown(report.Result, report.Preview)
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
		_, err = io.WriteString(w, md)
		return err
	default:
		printResult(w, report)
		if report.Preview != nil {
			printPreview(w, *report.Preview)
		}
		return nil
	}
}

func printResult(w io.Writer, report cleanReport) {
	res := report.Result

	switch res.ErrorKind {
	case models.ErrorKindMalformed:
		fmt.Fprintf(w, "%s %s\n", ui.Error("✗"), report.Message)
		return
	case models.ErrorKindUnsupportedScheme:
		fmt.Fprintf(w, "%s %s\n", ui.Warn("!"), report.Message)
		fmt.Fprintln(w, res.CleanedURL)
		return
	}

	fmt.Fprintln(w, res.CleanedURL)
	if res.WasModified {
		fmt.Fprintf(w, "%s %s\n", ui.Success("✓"), report.Message)
	} else {
		fmt.Fprintln(w, ui.Dim(report.Message))
	}

	if res.HasTimestamp {
		fmt.Fprintf(w, "⏱  YouTube timestamp preserved: %s\n", ui.Bold(res.TimestampDisplay()))
	}

	if len(res.DiscoveredKeys) > 0 {
		fmt.Fprintf(w, "%s %s\n", ui.Info("Other parameters kept:"), strings.Join(res.DiscoveredKeys, ", "))
		fmt.Fprintln(w, ui.Dim("  Block them with: linkclean params add "+strings.Join(res.DiscoveredKeys, " ")))
	}
}

func printPreview(w io.Writer, p models.PreviewResult) {
	fmt.Fprintf(w, "\n%s\n", ui.Bold("Preview"))
	if p.Record != nil {
		rec := p.Record
		field := func(label, value string) {
			if value != "" {
				fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
			}
		}
		field("Title", rec.Title)
		field("Description", rec.Description)
		field("Site", rec.SiteName)
		field("Image", rec.ImageURL)
		field("Icon", rec.IconURL)
	}
	if p.Message != "" {
		fmt.Fprintf(w, "  %s\n", ui.Warn(p.Message))
	}
}
