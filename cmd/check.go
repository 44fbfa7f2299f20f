/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sony-level/step-builder/internal/guard"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <path>...",
	Short: "Show whether paths would be written",
	Long: `Classify literal paths the way a step does before writing: unsafe paths
(containing "..", starting with "/" or "\", or containing ":") and paths
outside the output directory and state file are denied.

Exits non-zero when any path is denied.

Examples:
  builder check output/app/main.go progress.json
  builder check ../secrets.txt C:/Windows/win.ini`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		g, err := guard.New(cfg.Project.Policy(), afero.NewMemMapFs(), guard.WithDryRun(true))
		if err != nil {
			return err
		}

		denied := 0
		for _, p := range args {
			d := g.Check(p)
			if !d.Allowed {
				denied++
			}
			renderDecision(cmd.OutOrStdout(), d, "")
		}
		if denied > 0 {
			return fmt.Errorf("%d of %d path(s) denied", denied, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
