package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/law-makers/linkclean/pkg/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func htmlHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}
}

func hostOf(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("bad test url %s: %v", raw, err)
	}
	return u.Hostname()
}

func TestFetch_FullMetadata(t *testing.T) {
	server := newTestServer(t, htmlHandler(`<!DOCTYPE html>
<html>
<head>
	<title>Fallback Title</title>
	<meta property="og:title" content="OG Title">
	<meta name="description" content="Plain description">
	<meta property="og:description" content="OG description">
	<meta property="og:image" content="/images/cover.png">
	<meta property="og:site_name" content="Example Site">
	<link rel="icon" href="/icon.png">
	<link rel="shortcut icon" href="/favicon-shortcut.ico">
</head>
<body><p>Hello</p></body>
</html>`))

	result := New(server.Client(), Options{}).Fetch(context.Background(), server.URL+"/post")

	if result.Message != "" || result.Kind != models.ErrorKindNone {
		t.Fatalf("Expected no error, got %s (%s)", result.Message, result.Kind)
	}
	want := &models.PreviewRecord{
		Title:       "OG Title",
		Description: "Plain description",
		SiteName:    "Example Site",
		ImageURL:    server.URL + "/images/cover.png",
		IconURL:     server.URL + "/favicon-shortcut.ico",
	}
	if diff := cmp.Diff(want, result.Record); diff != "" {
		t.Errorf("Record mismatch (-want +got):\n%s", diff)
	}
}

func TestFetch_SendsHeaders(t *testing.T) {
	var gotUA, gotAccept, gotCustom string
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotCustom = r.Header.Get("X-Test")
		htmlHandler("<title>x</title>")(w, r)
	})

	New(server.Client(), Options{Headers: map[string]string{"X-Test": "1"}}).Fetch(context.Background(), server.URL)

	if gotUA != DefaultUserAgent {
		t.Errorf("Expected default user agent, got %q", gotUA)
	}
	if !strings.HasPrefix(gotAccept, "text/html") {
		t.Errorf("Expected Accept to favour HTML, got %q", gotAccept)
	}
	if gotCustom != "1" {
		t.Errorf("Expected custom header, got %q", gotCustom)
	}
}

func TestFetch_TwitterOnlyTitle(t *testing.T) {
	server := newTestServer(t, htmlHandler(`<html><head>
<meta property="twitter:title" content="Tweet Title">
</head><body></body></html>`))

	result := New(server.Client(), Options{}).Fetch(context.Background(), server.URL)

	if result.Record == nil || result.Record.Title != "Tweet Title" {
		t.Fatalf("Expected twitter title, got %+v", result.Record)
	}
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	result := New(server.Client(), Options{}).Fetch(context.Background(), server.URL)

	if result.Record != nil {
		t.Errorf("Expected no record, got %+v", result.Record)
	}
	if result.Message != "Failed to fetch URL: Status 404" {
		t.Errorf("Unexpected message %q", result.Message)
	}
	if result.Kind != models.ErrorKindFetchFailed {
		t.Errorf("Expected FetchFailed, got %s", result.Kind)
	}
}

func TestFetch_NotHTML(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"nope"}`))
	})

	result := New(server.Client(), Options{}).Fetch(context.Background(), server.URL)

	if result.Record != nil || result.Message != MsgNotHTML {
		t.Errorf("Expected not-HTML rejection, got %+v / %q", result.Record, result.Message)
	}
	if result.Kind != models.ErrorKindUnsupportedContentType {
		t.Errorf("Expected UnsupportedContentType, got %s", result.Kind)
	}
}

func TestFetch_Image(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	})

	target := server.URL + "/gallery/cat.png"
	result := New(server.Client(), Options{}).Fetch(context.Background(), target)

	want := &models.PreviewRecord{ImageURL: target, Title: "cat.png"}
	if diff := cmp.Diff(want, result.Record); diff != "" {
		t.Errorf("Image record mismatch (-want +got):\n%s", diff)
	}
	if result.Message != "" {
		t.Errorf("Expected no message, got %q", result.Message)
	}
}

func TestFetch_NoMetadata(t *testing.T) {
	server := newTestServer(t, htmlHandler(`<html><body><p>bare</p></body></html>`))

	result := New(server.Client(), Options{}).Fetch(context.Background(), server.URL)

	host := hostOf(t, server.URL)
	want := &models.PreviewRecord{
		Title:    host,
		SiteName: host,
		IconURL:  server.URL + "/favicon.ico",
	}
	if diff := cmp.Diff(want, result.Record); diff != "" {
		t.Errorf("Degenerate record mismatch (-want +got):\n%s", diff)
	}
	if result.Message != MsgNoMetadata || result.Kind != models.ErrorKindNoMetadataFound {
		t.Errorf("Unexpected message/kind: %q / %s", result.Message, result.Kind)
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	result := New(server.Client(), Options{Timeout: 50 * time.Millisecond}).Fetch(context.Background(), server.URL)

	if result.Message != MsgTimeout || result.Kind != models.ErrorKindTimeout {
		t.Errorf("Expected timeout, got %q / %s", result.Message, result.Kind)
	}
}

func TestFetch_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	result := New(nil, Options{Timeout: time.Second}).Fetch(context.Background(), target)

	if result.Record != nil || result.Message != MsgNetworkError {
		t.Errorf("Expected generic network error, got %+v / %q", result.Record, result.Message)
	}
}

func TestFetch_RejectsNonWebURL(t *testing.T) {
	result := New(nil, Options{}).Fetch(context.Background(), "ftp://example.com/file")
	if result.Kind != models.ErrorKindNetworkError {
		t.Errorf("Expected network error kind, got %s", result.Kind)
	}
}

func TestFetch_FollowsRedirectAndResolvesAgainstFinalURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/articles/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/articles/new", htmlHandler(`<html><head>
<meta name="title" content="Moved">
<meta property="og:image" content="hero.jpg">
</head></html>`))
	server := newTestServer(t, mux.ServeHTTP)

	result := New(server.Client(), Options{}).Fetch(context.Background(), server.URL+"/old")

	if result.Record == nil {
		t.Fatalf("Expected record, got message %q", result.Message)
	}
	if result.Record.Title != "Moved" {
		t.Errorf("Expected title Moved, got %q", result.Record.Title)
	}
	if result.Record.ImageURL != server.URL+"/articles/hero.jpg" {
		t.Errorf("Unexpected image URL %q", result.Record.ImageURL)
	}
}

func TestNew_ClampsTimeout(t *testing.T) {
	e := New(nil, Options{Timeout: time.Minute})
	if e.timeout != MaxTimeout {
		t.Errorf("Expected timeout clamped to %v, got %v", MaxTimeout, e.timeout)
	}
}
