package output

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/law-makers/linkclean/pkg/models"
)

// CleanHTML removes unwanted elements and attributes to produce a safe HTML excerpt
func CleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, canvas").Remove()

	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		var kept []html.Attribute
		for _, attr := range node.Attr {
			switch {
			case node.Data == "a" && (attr.Key == "href" || attr.Key == "title"):
			case node.Data == "img" && (attr.Key == "src" || attr.Key == "alt" || attr.Key == "title"):
			default:
				continue
			}
			if isSafeURLAttr(attr) {
				kept = append(kept, attr)
			}
		}
		node.Attr = kept
	})

	htmlStr, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(htmlStr), nil
}

// isSafeURLAttr rejects javascript: and data: URLs in href/src
func isSafeURLAttr(attr html.Attribute) bool {
	if attr.Key != "href" && attr.Key != "src" {
		return true
	}
	v := strings.ToLower(strings.TrimSpace(attr.Val))
	return !strings.HasPrefix(v, "javascript:") && !strings.HasPrefix(v, "data:")
}

// RenderCard renders a cleaned link and its optional preview as an HTML fragment
func RenderCard(res models.SanitizeResult, p *models.PreviewResult) (string, error) {
	article := element(atom.Article)

	title := res.CleanedURL
	var rec *models.PreviewRecord
	if p != nil && p.Record != nil {
		rec = p.Record
		if rec.Title != "" {
			title = rec.Title
		}
	}

	heading := element(atom.H2)
	if res.CleanedURL != "" {
		heading.AppendChild(link(res.CleanedURL, title))
	} else {
		heading.AppendChild(text(title))
	}
	article.AppendChild(heading)

	if rec != nil {
		if rec.Description != "" {
			article.AppendChild(paragraph(text(rec.Description)))
		}
		if rec.ImageURL != "" {
			img := element(atom.Img,
				html.Attribute{Key: "src", Val: rec.ImageURL},
				html.Attribute{Key: "alt", Val: title},
			)
			article.AppendChild(paragraph(img))
		}
		if rec.SiteName != "" {
			em := element(atom.Em)
			em.AppendChild(text(rec.SiteName))
			article.AppendChild(paragraph(em))
		}
	}
	if p != nil && p.Message != "" {
		article.AppendChild(paragraph(text(p.Message)))
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, article); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func paragraph(child *html.Node) *html.Node {
	p := element(atom.P)
	p.AppendChild(child)
	return p
}

func link(href, label string) *html.Node {
	a := element(atom.A, html.Attribute{Key: "href", Val: href})
	a.AppendChild(text(label))
	return a
}
