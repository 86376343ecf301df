package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/matzehuels/stamboom/internal/cli.Version=v1.0.0" and
// likewise for Commit and Date.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func versionTemplate() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// versionCommand prints build information together with the storage and
// cache the current configuration resolves to.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and configuration details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s (commit %s, built %s)\n", appName, Version, Commit, Date)
			fmt.Fprintf(w, "storage: %s\n", c.cfg.Storage.Backend)
			switch {
			case c.cfg.Cache.Disabled:
				fmt.Fprintln(w, "cache: disabled")
			case c.cfg.Cache.RedisURL != "":
				fmt.Fprintln(w, "cache: redis")
			default:
				dir, err := c.cfg.CacheDir()
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "cache: %s\n", dir)
			}
			return nil
		},
	}
}
