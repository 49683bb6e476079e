package output

import (
	"fmt"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/law-makers/linkclean/internal/utils/url"
	"github.com/law-makers/linkclean/pkg/models"
)

func newConverter(base string) *md.Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	// Resolve relative links against the page they came from
	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}

			resolved := urlutil.ResolveURL(base, href)
			title, hasTitle := selec.Attr("title")
			var titlePart string
			if hasTitle {
				titlePart = fmt.Sprintf(" %q", title)
			}
			str := fmt.Sprintf("[%s](%s)%s", selec.Text(), resolved, titlePart)
			return &str
		},
	})
	return converter
}

// Markdown renders a cleaned link and its optional preview as a Markdown card
func Markdown(res models.SanitizeResult, p *models.PreviewResult) (string, error) {
	card, err := RenderCard(res, p)
	if err != nil {
		return "", err
	}

	cleaned, err := CleanHTML(card)
	if err != nil {
		return "", err
	}

	mdStr, err := newConverter(res.CleanedURL).ConvertString(cleaned)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(mdStr))
	sb.WriteString("\n")
	if res.HasTimestamp {
		fmt.Fprintf(&sb, "\nStarts at %s\n", res.TimestampDisplay())
	}
	return sb.String(), nil
}

// BatchMarkdown renders every cleaned item of a batch as consecutive cards
func BatchMarkdown(items []models.BatchItem) (string, error) {
	var sb strings.Builder
	for _, item := range items {
		if !item.Result.OK() {
			fmt.Fprintf(&sb, "- `%s`: %s\n\n", item.Input, item.Result.ErrorKind)
			continue
		}
		card, err := Markdown(item.Result, item.Preview)
		if err != nil {
			return "", fmt.Errorf("item %d: %w", item.Index, err)
		}
		sb.WriteString(card)
		sb.WriteString("\n---\n\n")
	}
	return sb.String(), nil
}

// SaveMarkdown writes rendered Markdown to filepath
func SaveMarkdown(content, filepath string) error {
	return os.WriteFile(filepath, []byte(content), 0644)
}
