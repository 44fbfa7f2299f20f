/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sony-level/step-builder/internal/backend"
	"github.com/sony-level/step-builder/internal/prompt"
	"github.com/sony-level/step-builder/internal/vcs"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that a step can run",
	Long: `Verify the project inputs exist, the backend is reachable and the
output directory is usable, without invoking the backend.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		project := &cfg.Project
		out := cmd.OutOrStdout()
		osFs := afero.NewOsFs()

		fmt.Fprintln(out, headerStyle.Render("Project ")+project.BaseDir)

		// Inputs
		fmt.Fprintln(out, headerStyle.Render("\n[1/3] Inputs"))
		assembler := prompt.NewAssembler(osFs, project.Inputs())
		missing := map[string]bool{}
		for _, in := range assembler.Missing() {
			missing[in.Path] = true
		}
		var checks []backend.Check
		for _, in := range assembler.Inputs() {
			c := backend.Check{Name: in.Name, OK: !missing[in.Path], Detail: in.Path}
			if !c.OK {
				c.Detail = "missing: " + in.Path
			}
			checks = append(checks, c)
		}
		renderChecks(out, checks)
		ready := len(missing) == 0

		// Backend
		fmt.Fprintln(out, headerStyle.Render("\n[2/3] Backend ")+string(cfg.Backend.Kind))
		preflight := backend.Preflight(&cfg.Backend)
		renderChecks(out, preflight)
		ready = ready && backend.Ready(preflight)

		// Output
		fmt.Fprintln(out, headerStyle.Render("\n[3/3] Output"))
		outputDir := project.Path(project.OutputDir)
		exists, err := afero.DirExists(osFs, outputDir)
		if err != nil {
			return err
		}
		detail := outputDir
		if !exists {
			detail += " (created on first step)"
		}
		outputChecks := []backend.Check{{Name: "output " + project.OutputDir + "/", OK: true, Detail: detail}}

		gitCheck := backend.Check{Name: "git", OK: true, Detail: "written files are annotated with their git state"}
		if _, err := vcs.Status(project.BaseDir, nil); err != nil {
			gitCheck.Detail = "not a repository"
			if !errors.Is(err, vcs.ErrNotRepository) {
				gitCheck.Detail = err.Error()
			}
		}
		outputChecks = append(outputChecks, gitCheck)
		renderChecks(out, outputChecks)

		if !ready {
			return errors.New("project is not ready for a step")
		}
		fmt.Fprintln(out, successStyle.Render("\nReady."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
