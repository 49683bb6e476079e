package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/linkclean/internal/app"
	"github.com/law-makers/linkclean/internal/store"
	"github.com/law-makers/linkclean/internal/ui"
)

// resetCommands restores every flag in the command tree to its default and
// drops contexts left behind by failed runs, so package-level state does not
// leak between tests
func resetCommands(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	cmd.SetContext(context.Background())
	for _, c := range cmd.Commands() {
		resetCommands(c)
	}
}

func run(t *testing.T, dir string, stdin string, args ...string) (string, error) {
	t.Helper()

	ui.Enabled = false
	appOptions = []app.Option{app.WithKV(store.FileKV{Dir: dir})}
	t.Cleanup(func() { appOptions = nil })

	resetCommands(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestClean_Text(t *testing.T) {
	out, err := run(t, t.TempDir(), "", "clean", "example.com/page?utm_source=x&lang=en")
	require.NoError(t, err)

	assert.Contains(t, out, "https://example.com/page?lang=en")
	assert.Contains(t, out, "Tracking parameters removed successfully.")
	assert.Contains(t, out, "linkclean params add lang")
}

func TestClean_YouTubeTimestamp(t *testing.T) {
	out, err := run(t, t.TempDir(), "", "clean", "https://youtu.be/abc?si=xyz&t=3725")
	require.NoError(t, err)

	assert.Contains(t, out, "https://youtu.be/abc?t=3725")
	assert.Contains(t, out, "01:02:05")
}

func TestClean_JSON(t *testing.T) {
	out, err := run(t, t.TempDir(), "", "clean", "--format", "json", "https://a.com/?fbclid=1")
	require.NoError(t, err)

	var report cleanReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "https://a.com/", report.Result.CleanedURL)
	assert.True(t, report.Result.WasModified)
}

func TestClean_Malformed(t *testing.T) {
	out, err := run(t, t.TempDir(), "", "clean", "not a url at all ???")
	assert.ErrorIs(t, err, errInvalidURL)
	assert.Contains(t, out, "Invalid URL format.")
}

func TestClean_UnsupportedSchemeShowsOriginal(t *testing.T) {
	out, err := run(t, t.TempDir(), "", "clean", "mailto:test@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Could not process this URL type. Displaying original.")
	assert.Contains(t, out, "mailto:test@example.com")
}

func TestClean_InvalidFormat(t *testing.T) {
	_, err := run(t, t.TempDir(), "", "clean", "--format", "xml", "a.com")
	assert.Error(t, err)
}

func TestClean_WithPreview(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><meta property="og:title" content="Served Title"></head></html>`))
	}))
	defer server.Close()

	out, err := run(t, t.TempDir(), "", "clean", "--preview", server.URL+"/?utm_source=x")
	require.NoError(t, err)
	assert.Contains(t, out, "Served Title")
}

func TestParams_Lifecycle(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "params", "add", "My_Tracker", "utm_source", " ")
	require.NoError(t, err)
	assert.Contains(t, out, `Parameter "my_tracker" added.`)
	assert.Contains(t, out, `Parameter "utm_source" is already in the list.`)
	assert.Contains(t, out, "Parameter cannot be empty.")

	out, err = run(t, dir, "", "clean", "https://a.com/?my_tracker=1&x=2")
	require.NoError(t, err)
	assert.Contains(t, out, "https://a.com/?x=2")

	out, err = run(t, dir, "", "params", "remove", "MY_TRACKER", "ghost")
	require.NoError(t, err)
	assert.Contains(t, out, `Parameter "my_tracker" removed.`)
	assert.Contains(t, out, `Parameter "ghost" is not in the list.`)

	out, err = run(t, dir, "", "params", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Currently Blocked Parameters (49)")
	assert.NotContains(t, out, "my_tracker")

	out, err = run(t, dir, "", "params", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Tracking parameters reset to defaults.")
}

func TestParams_ResetClear(t *testing.T) {
	dir := t.TempDir()
	saved := filepath.Join(dir, store.BlockListKey+".json")

	_, err := run(t, dir, "", "params", "add", "my_tracker")
	require.NoError(t, err)
	require.FileExists(t, saved)

	out, err := run(t, dir, "", "params", "reset", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved tracking parameters cleared. Defaults apply.")
	assert.NoFileExists(t, saved)

	out, err = run(t, dir, "", "params", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Currently Blocked Parameters (49)")
	assert.NotContains(t, out, "my_tracker")
}

func TestParams_SuggestAdd(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "params", "suggest", "--add", "https://a.com/?lang=1&src=2&utm_source=3")
	require.NoError(t, err)
	assert.Contains(t, out, `Parameter "lang" added.`)
	assert.Contains(t, out, `Parameter "src" added.`)
	assert.Contains(t, out, "https://a.com/")

	data, err := os.ReadFile(filepath.Join(dir, store.BlockListKey+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"lang"`)
}

func TestBatch_StdinText(t *testing.T) {
	stdin := "https://a.com/?utm_source=1\n# comment\n\nmailto:x@y.z\nb.org/?gclid=2\n"
	out, err := run(t, t.TempDir(), stdin, "batch", "-", "--no-progress")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "https://a.com/", lines[0])
	assert.Contains(t, lines[1], "UNSUPPORTED_SCHEME")
	assert.Equal(t, "https://b.org/", lines[2])
}

func TestBatch_OutputFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "links.txt")
	require.NoError(t, os.WriteFile(input, []byte("a.com/?fbclid=1\nb.com\n"), 0600))
	report := filepath.Join(dir, "report.json")

	_, err := run(t, dir, "", "batch", input, "--output", report, "--no-progress")
	require.NoError(t, err)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(data, &items))
	assert.Len(t, items, 2)
}

func TestBatch_BadExtension(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "links.txt")
	require.NoError(t, os.WriteFile(input, []byte("a.com\n"), 0600))

	_, err := run(t, dir, "", "batch", input, "--output", filepath.Join(dir, "out.xml"), "--no-progress")
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	out, err := run(t, t.TempDir(), "a.com/?utm_source=1\n\nnot a url ???\n", "watch")
	require.NoError(t, err)
	assert.Contains(t, out, "https://a.com/")
	assert.Contains(t, out, "Invalid URL format.")
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four\n- bullet\n\nsecond paragraph", 9)
	assert.Equal(t, "one two\nthree\nfour\n- bullet\n\nsecond\nparagraph", got)
}
