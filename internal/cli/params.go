package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/linkclean/internal/sanitize"
	"github.com/law-makers/linkclean/internal/session"
	"github.com/law-makers/linkclean/internal/ui"
)

var (
	suggestAdd bool
	resetClear bool
)

// paramsCmd represents the params command
var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Manage the list of blocked tracking parameters",
	Long: `List, add, remove and reset the query parameters that linkclean strips.

Names are case-insensitive and stored lowercase. Every change is saved
immediately to your OS keyring (or ~/.linkclean when no keyring is available).`,
	Example: `  # Show the blocked parameters
  linkclean params list

  # Block two more parameters
  linkclean params add my_tracker campaign_id

  # Stop blocking a parameter
  linkclean params remove ref

  # Find parameters a link still carries and block them all
  linkclean params suggest "https://example.com/?lang=en&id=2" --add

  # Restore the built-in list
  linkclean params reset

  # Forget the saved list entirely
  linkclean params reset --clear`,
}

var paramsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blocked parameters",
	Args:  cobra.NoArgs,
	RunE:  runParamsList,
}

var paramsAddCmd = &cobra.Command{
	Use:   "add <name>...",
	Short: "Block one or more parameters",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParamsAdd,
}

var paramsRemoveCmd = &cobra.Command{
	Use:     "remove <name>...",
	Aliases: []string{"rm"},
	Short:   "Stop blocking one or more parameters",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runParamsRemove,
}

var paramsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default parameter list",
	Args:  cobra.NoArgs,
	RunE:  runParamsReset,
}

var paramsSuggestCmd = &cobra.Command{
	Use:   "suggest <url>",
	Short: "Show parameters a link keeps after cleaning",
	Args:  cobra.ExactArgs(1),
	RunE:  runParamsSuggest,
}

func init() {
	rootCmd.AddCommand(paramsCmd)
	paramsCmd.AddCommand(paramsListCmd)
	paramsCmd.AddCommand(paramsAddCmd)
	paramsCmd.AddCommand(paramsRemoveCmd)
	paramsCmd.AddCommand(paramsResetCmd)
	paramsCmd.AddCommand(paramsSuggestCmd)

	paramsResetCmd.Flags().BoolVar(&resetClear, "clear", false, "Delete the saved list instead of saving the defaults")
	paramsSuggestCmd.Flags().BoolVar(&suggestAdd, "add", false, "Block every suggested parameter")
}

func runParamsList(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	names := GetAppFromCmd(cmd).Session.Params()

	if len(names) == 0 {
		fmt.Fprintln(w, "No tracking parameters are currently being blocked.")
		fmt.Fprintln(w, ui.Dim("Restore the defaults with: linkclean params reset"))
		return nil
	}

	fmt.Fprintf(w, "Currently Blocked Parameters (%d)\n", len(names))
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", name)
	}
	return nil
}

func runParamsAdd(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	_, added, err := GetAppFromCmd(cmd).Session.AddParams(args...)

	for _, name := range added {
		fmt.Fprintf(w, "%s Parameter %q added.\n", ui.Success("✓"), name)
	}
	return reportParamErrors(cmd, err)
}

func runParamsRemove(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	_, removed, err := GetAppFromCmd(cmd).Session.RemoveParams(args...)

	gone := make(map[string]bool, len(removed))
	for _, name := range removed {
		gone[name] = true
		fmt.Fprintf(w, "%s Parameter %q removed.\n", ui.Success("✓"), name)
	}
	for _, arg := range args {
		if name := sanitize.NormalizeParam(arg); !gone[name] {
			fmt.Fprintf(w, "%s Parameter %q is not in the list.\n", ui.Warn("!"), name)
		}
	}
	return err
}

func runParamsReset(cmd *cobra.Command, args []string) error {
	s := GetAppFromCmd(cmd).Session
	if resetClear {
		if _, err := s.ClearParams(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Saved tracking parameters cleared. Defaults apply.\n", ui.Success("✓"))
		return nil
	}

	if _, err := s.ResetParams(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Tracking parameters reset to defaults.\n", ui.Success("✓"))
	return nil
}

func runParamsSuggest(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	s := GetAppFromCmd(cmd).Session

	res := s.Update(args[0])
	if !res.OK() {
		fmt.Fprintln(w, sanitize.Message(res.ErrorKind, false))
		return nil
	}
	if len(res.DiscoveredKeys) == 0 {
		fmt.Fprintln(w, "No other parameters found.")
		return nil
	}

	if !suggestAdd {
		fmt.Fprintf(w, "Parameters kept after cleaning: %s\n", strings.Join(res.DiscoveredKeys, ", "))
		fmt.Fprintln(w, ui.Dim("Block them all with --add"))
		return nil
	}

	res, added, err := s.AddParams(res.DiscoveredKeys...)
	for _, name := range added {
		fmt.Fprintf(w, "%s Parameter %q added.\n", ui.Success("✓"), name)
	}
	fmt.Fprintln(w, res.CleanedURL)
	return err
}

// reportParamErrors prints friendly lines for duplicate and empty names and
// returns only errors that are not about user input
func reportParamErrors(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	w := cmd.OutOrStdout()

	var rest []error
	for _, e := range unwrapAll(err) {
		var perr *session.ParamError
		switch {
		case errors.As(e, &perr) && errors.Is(perr, sanitize.ErrDuplicateParam):
			fmt.Fprintf(w, "%s Parameter %q is already in the list.\n", ui.Warn("!"), perr.Name)
		case errors.Is(e, sanitize.ErrEmptyParam):
			fmt.Fprintf(w, "%s Parameter cannot be empty.\n", ui.Error("✗"))
		default:
			rest = append(rest, e)
		}
	}
	return errors.Join(rest...)
}

func unwrapAll(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
