package preview

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	urlutil "github.com/law-makers/linkclean/internal/utils/url"
	"github.com/law-makers/linkclean/pkg/models"
)

// metaIndex holds the first non-empty content per lowercased meta name and property
type metaIndex struct {
	names      map[string]string
	properties map[string]string
}

func indexMeta(doc *goquery.Document) metaIndex {
	idx := metaIndex{
		names:      make(map[string]string),
		properties: make(map[string]string),
	}
	doc.Find("meta").Each(func(i int, sel *goquery.Selection) {
		content := strings.TrimSpace(sel.AttrOr("content", ""))
		if content == "" {
			return
		}
		if name, exists := sel.Attr("name"); exists {
			key := strings.ToLower(strings.TrimSpace(name))
			if _, seen := idx.names[key]; !seen {
				idx.names[key] = content
			}
		}
		if property, exists := sel.Attr("property"); exists {
			key := strings.ToLower(strings.TrimSpace(property))
			if _, seen := idx.properties[key]; !seen {
				idx.properties[key] = content
			}
		}
	})
	return idx
}

// lookup applies the fallback chain: name=X, og:X, twitter:X.
// Twitter cards are commonly published under name= as well as property=.
func (m metaIndex) lookup(field string) string {
	candidates := []string{
		m.names[field],
		m.properties["og:"+field],
		m.properties["twitter:"+field],
		m.names["twitter:"+field],
	}
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// Extract builds a preview record from a parsed document.
//
// docURL is the URL the document was served from and is used to resolve
// relative image and icon references; host is the request hostname used for
// fallbacks. found reports whether any field came from the document itself
// rather than from a fallback.
func Extract(doc *goquery.Document, docURL *url.URL, host string) (record models.PreviewRecord, found bool) {
	if doc == nil {
		return models.PreviewRecord{}, false
	}

	meta := indexMeta(doc)

	record.Title = meta.lookup("title")
	if record.Title == "" {
		record.Title = collapseSpace(doc.Find("title").First().Text())
	}
	record.Description = meta.lookup("description")
	record.SiteName = meta.lookup("site_name")

	if image := meta.lookup("image"); image != "" {
		resolved, err := urlutil.ResolveAbsolute(docURL, image)
		if err != nil {
			log.Debug().Err(err).Str("href", image).Msg("Dropping unresolvable preview image")
		} else {
			record.ImageURL = resolved
		}
	}

	if icon := findIcon(doc); icon != "" {
		resolved, err := urlutil.ResolveAbsolute(docURL, icon)
		if err != nil {
			log.Debug().Err(err).Str("href", icon).Msg("Dropping unresolvable icon")
		} else {
			record.IconURL = resolved
		}
	}

	found = record.Title != "" || record.Description != "" || record.SiteName != "" ||
		record.ImageURL != "" || record.IconURL != ""

	if record.SiteName == "" {
		record.SiteName = host
	}
	if record.IconURL == "" {
		record.IconURL = fallbackIcon(docURL)
	}

	return record, found
}

// findIcon returns the href of the first rel="shortcut icon" link, else the
// first rel="icon" link
func findIcon(doc *goquery.Document) string {
	var shortcut, icon string
	doc.Find("link[rel][href]").Each(func(i int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			return
		}
		rel := strings.Join(strings.Fields(strings.ToLower(sel.AttrOr("rel", ""))), " ")
		switch rel {
		case "shortcut icon":
			if shortcut == "" {
				shortcut = href
			}
		case "icon":
			if icon == "" {
				icon = href
			}
		}
	})
	if shortcut != "" {
		return shortcut
	}
	return icon
}

// fallbackIcon guesses /favicon.ico at the document root. Existence is not checked.
func fallbackIcon(docURL *url.URL) string {
	resolved, err := urlutil.ResolveAbsolute(docURL, "/favicon.ico")
	if err != nil {
		return ""
	}
	return resolved
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
