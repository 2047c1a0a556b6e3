package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

var gcCmd = &cobra.Command{
	Use:     "gc",
	GroupID: "maint",
	Short:   "Inspect gitbridge's GC-pin namespace",
}

var gcPinsCmd = &cobra.Command{
	Use:   "pins",
	Short: "List the refs/jj/keep/* sentinels currently protecting commits",
	Long: `gc pins lists the sentinel refs import has written under
refs/jj/keep/ to keep imported commits alive against Git's own garbage
collector. Cleaning up pins for commits the native repo no longer
references is a separate maintenance pass, out of scope here (spec.md
§9) — this command only reports the current state.`,
	Run: func(cmd *cobra.Command, args []string) {
		git, _, err := openEngine(repoPathFlag)
		if err != nil {
			fatalf("%v", err)
		}

		pins, err := listPins(git.Underlying())
		if err != nil {
			fatalf("gc pins: %v", err)
		}

		if len(pins) == 0 {
			fmt.Println("no GC pins")
			return
		}
		sort.Strings(pins)
		for _, hex := range pins {
			fmt.Println(hex)
		}
	},
}

func listPins(g *gogit.Repository) ([]string, error) {
	const prefix = "refs/jj/keep/"

	iter, err := g.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer iter.Close()

	var pins []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().String()
		if strings.HasPrefix(name, prefix) {
			pins = append(pins, strings.TrimPrefix(name, prefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan gc pins: %w", err)
	}
	return pins, nil
}

func init() {
	gcCmd.AddCommand(gcPinsCmd)
	rootCmd.AddCommand(gcCmd)
}
