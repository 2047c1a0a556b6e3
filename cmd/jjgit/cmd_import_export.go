package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jjvcs/gitbridge/internal/gitexport"
	"github.com/jjvcs/gitbridge/internal/gitimport"
)

var importCmd = &cobra.Command{
	Use:     "import",
	GroupID: "sync",
	Short:   "Reconcile Git's refs into the native view",
	Long: `import runs gitbridge's import algorithm directly against the
repository's current Git refs, without talking to any remote: it is what
fetch runs internally after downloading, and what a colocated workflow
runs after the user makes changes with plain git commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := loadSettings(repoPathFlag, settingsPathFlag)
		if err != nil {
			fatalf("%v", err)
		}

		git, mutRepo, err := openEngine(repoPathFlag)
		if err != nil {
			fatalf("%v", err)
		}

		importSettings := gitimport.Settings{AutoLocalBranch: settings.AutoLocalBranch}
		if err := gitimport.Import(repoPathFlag, git, mutRepo, importSettings, gitimport.AcceptAll); err != nil {
			fatalf("import: %v", err)
		}

		printBranches(mutRepo)
	},
}

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "sync",
	Short:   "Push the native view's branch state onto Git's real refs",
	Long: `export writes every branch movement gitbridge's native view has
accumulated onto the repository's actual refs/heads/* refs, detaching
HEAD first if needed. Branches that are themselves conflicted, or whose
Git ref moved concurrently, are reported as failed rather than aborting
the whole run.`,
	Run: func(cmd *cobra.Command, args []string) {
		git, mutRepo, err := openEngine(repoPathFlag)
		if err != nil {
			fatalf("%v", err)
		}

		failed, err := gitexport.Export(repoPathFlag, git, mutRepo)
		if err != nil {
			fatalf("export: %v", err)
		}

		if len(failed) > 0 {
			sort.Strings(failed)
			fmt.Printf("failed to export %d branch(es):\n", len(failed))
			for _, name := range failed {
				fmt.Printf("  %s\n", name)
			}
		} else {
			fmt.Println("export complete")
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd, exportCmd)
}
