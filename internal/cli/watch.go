package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/linkclean/internal/session"
	"github.com/law-makers/linkclean/internal/ui"
)

var watchPreview bool

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Clean links from stdin as they arrive",
	Long: `Reads links from stdin one line at a time and prints each cleaned link
immediately. With --preview a preview is fetched in the background; when
a new link arrives before the previous preview finished, the old one is
cancelled and its result is dropped.`,
	Example: `  # Clean links as you paste them
  linkclean watch --preview`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVarP(&watchPreview, "preview", "p", false, "Fetch previews in the background")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	var mu sync.Mutex
	var wg sync.WaitGroup
	printf := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format, args...)
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		res := a.Session.Update(line)
		report := newCleanReport(line, res, nil)
		if !res.OK() {
			printf("%s %s\n", ui.Warn("!"), report.Message)
			continue
		}
		printf("%s\n", res.CleanedURL)

		if !watchPreview {
			continue
		}
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			p, ok, err := a.Session.Preview(ctx)
			if errors.Is(err, session.ErrStale) {
				log.Debug().Str("url", url).Msg("Preview superseded")
				return
			}
			if !ok {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(w, "%s\n", ui.Dim(p.URL))
			printPreview(w, p)
		}(res.CleanedURL)
	}

	wg.Wait()
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	return nil
}
