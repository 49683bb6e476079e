package preview

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("bad url: %v", err)
	}
	return u
}

func TestExtract_FallbackOrder(t *testing.T) {
	base := mustURL(t, "https://example.com/a/page")

	tests := []struct {
		name string
		html string
		want string
	}{
		{"name wins", `<meta name="title" content="N"><meta property="og:title" content="O"><meta property="twitter:title" content="T"><title>D</title>`, "N"},
		{"og second", `<meta property="og:title" content="O"><meta property="twitter:title" content="T"><title>D</title>`, "O"},
		{"twitter third", `<meta property="twitter:title" content="T"><title>D</title>`, "T"},
		{"twitter as name", `<meta name="twitter:title" content="TN"><title>D</title>`, "TN"},
		{"document title", `<title>  Doc
			Title </title>`, "Doc Title"},
		{"empty content skipped", `<meta name="title" content="  "><meta property="og:title" content="O">`, "O"},
		{"case-insensitive attrs", `<meta property="OG:Title" content="Upper">`, "Upper"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, found := Extract(parseDoc(t, "<html><head>"+tt.html+"</head></html>"), base, "example.com")
			if !found {
				t.Fatal("Expected metadata to be found")
			}
			if record.Title != tt.want {
				t.Errorf("Expected title %q, got %q", tt.want, record.Title)
			}
		})
	}
}

func TestExtract_Fallbacks(t *testing.T) {
	base := mustURL(t, "https://example.com/blog/post?x=1")
	record, found := Extract(parseDoc(t, `<html><head><meta name="description" content="Only desc"></head></html>`), base, "example.com")

	if !found {
		t.Fatal("Expected description to count as found")
	}
	if record.SiteName != "example.com" {
		t.Errorf("Expected hostname site name, got %q", record.SiteName)
	}
	if record.IconURL != "https://example.com/favicon.ico" {
		t.Errorf("Expected favicon fallback, got %q", record.IconURL)
	}
	if record.ImageURL != "" {
		t.Errorf("Expected no image, got %q", record.ImageURL)
	}
}

func TestExtract_DropsUnresolvableImage(t *testing.T) {
	base := mustURL(t, "https://example.com/")
	record, _ := Extract(parseDoc(t, `<html><head>
<title>T</title>
<meta property="og:image" content="http://[::1">
<link rel="icon" href="%zz">
</head></html>`), base, "example.com")

	if record.ImageURL != "" {
		t.Errorf("Expected malformed image to be dropped, got %q", record.ImageURL)
	}
	if record.IconURL != "https://example.com/favicon.ico" {
		t.Errorf("Expected favicon fallback after bad icon, got %q", record.IconURL)
	}
	if record.Title != "T" {
		t.Errorf("Expected title to survive, got %q", record.Title)
	}
}

func TestExtract_NothingFound(t *testing.T) {
	base := mustURL(t, "https://example.com/")
	record, found := Extract(parseDoc(t, `<html><body>text only</body></html>`), base, "example.com")

	if found {
		t.Errorf("Expected nothing found, got %+v", record)
	}
}

func TestFindIcon_PrefersShortcut(t *testing.T) {
	doc := parseDoc(t, `<html><head>
<link rel="icon" href="/a.png">
<link rel="Shortcut  Icon" href="/b.ico">
</head></html>`)
	if got := findIcon(doc); got != "/b.ico" {
		t.Errorf("Expected shortcut icon, got %q", got)
	}
}

func TestExtract_NilDocument(t *testing.T) {
	if _, found := Extract(nil, nil, ""); found {
		t.Error("Expected nil document to yield nothing")
	}
}
