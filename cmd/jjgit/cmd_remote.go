package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var remoteCmd = &cobra.Command{
	Use:     "remote",
	GroupID: "maint",
	Short:   "Inspect configured Git remotes",
}

var remoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured remotes and their fetch URLs",
	Run: func(cmd *cobra.Command, args []string) {
		git, _, err := openEngine(repoPathFlag)
		if err != nil {
			fatalf("%v", err)
		}

		remotes, err := git.Underlying().Remotes()
		if err != nil {
			fatalf("list remotes: %v", err)
		}

		type entry struct{ name, url string }
		var entries []entry
		for _, r := range remotes {
			cfg := r.Config()
			url := ""
			if len(cfg.URLs) > 0 {
				url = cfg.URLs[0]
			}
			entries = append(entries, entry{cfg.Name, url})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

		for _, e := range entries {
			fmt.Printf("%s\t%s\n", e.name, e.url)
		}
	},
}

func init() {
	remoteCmd.AddCommand(remoteListCmd)
	rootCmd.AddCommand(remoteCmd)
}
