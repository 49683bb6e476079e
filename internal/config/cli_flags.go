package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Log in JSON format")
	cmd.PersistentFlags().String("proxy", "", "Fetch previews through a proxy (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("timeout", DefaultPreviewTimeout.String(), "Preview fetch timeout (max 8s)")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent for preview fetches")
	cmd.PersistentFlags().String("config", "", "Path to a YAML configuration file (optional)")
	cmd.PersistentFlags().String("store", DefaultStoreBackend, "Block-list storage: auto, keyring or file")
	cmd.PersistentFlags().String("store-dir", "", "Directory for file storage (default ~/.linkclean)")
}
