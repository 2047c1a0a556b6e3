package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jjvcs/gitbridge/internal/gitimport"
	"github.com/jjvcs/gitbridge/internal/gitrepo"
	"github.com/jjvcs/gitbridge/internal/refname"
	"github.com/jjvcs/gitbridge/internal/remote"
	"github.com/jjvcs/gitbridge/internal/repo"
)

var (
	fetchRemoteFlag string
	fetchGlobsFlag  []string
	fetchPruneFlag  bool
)

var fetchCmd = &cobra.Command{
	Use:     "fetch",
	GroupID: "sync",
	Short:   "Download refs from a remote, then import them",
	Long: `fetch downloads refs/heads/* from the named remote into
refs/remotes/<remote>/*, optionally pruning deleted branches, then runs
import scoped to whichever branches match --branch (default "*").`,
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := loadSettings(repoPathFlag, settingsPathFlag)
		if err != nil {
			fatalf("%v", err)
		}

		git, mutRepo, err := openEngine(repoPathFlag)
		if err != nil {
			fatalf("%v", err)
		}

		creds := credsForRemote(settings, fetchRemoteFlag)

		result, err := remote.Fetch(context.Background(), repoPathFlag, git, mutRepo, remote.FetchOptions{
			RemoteName:     fetchRemoteFlag,
			Globs:          fetchGlobsFlag,
			Prune:          fetchPruneFlag,
			Creds:          creds,
			ImportSettings: gitimport.Settings{AutoLocalBranch: settings.AutoLocalBranch},
			Progress:       os.Stderr,
		})
		if err != nil {
			fatalf("fetch: %v", err)
		}

		if result.DefaultBranch != "" {
			fmt.Printf("default branch: %s\n", result.DefaultBranch)
		}
		printBranches(mutRepo)
	},
}

var (
	pushRemoteFlag string
	pushBranchFlag []string
	pushForceFlag  bool
)

var pushCmd = &cobra.Command{
	Use:     "push",
	GroupID: "sync",
	Short:   "Push native branch movements onto a remote",
	Long: `push sends each named branch's current native target to the
remote via a temporary refs/jj/git-push/<hex> ref. It does not compare
against the last-seen sidecar: a branch absent from the native view is
pushed as a deletion, and a conflicted branch is skipped. Branches not
named by --branch are left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := loadSettings(repoPathFlag, settingsPathFlag)
		if err != nil {
			fatalf("%v", err)
		}

		git, mutRepo, err := openEngine(repoPathFlag)
		if err != nil {
			fatalf("%v", err)
		}

		updates, err := buildPushUpdates(git, mutRepo, pushBranchFlag, pushForceFlag)
		if err != nil {
			fatalf("push: %v", err)
		}
		if len(updates) == 0 {
			fmt.Println("nothing to push")
			return
		}

		creds := credsForRemote(settings, pushRemoteFlag)
		if err := remote.Push(context.Background(), git, remote.PushOptions{
			RemoteName: pushRemoteFlag,
			Updates:    updates,
			Creds:      creds,
			Progress:   os.Stderr,
		}); err != nil {
			fatalf("push: %v", err)
		}
		fmt.Printf("pushed %d branch(es) to %s\n", len(updates), pushRemoteFlag)
	},
}

// buildPushUpdates resolves each requested branch's current native target
// into the RefUpdate list remote.Push expects. A branch whose native
// value is itself a conflict is skipped with a warning rather than
// pushed; export's per-branch CAS is what actually guards against races,
// this is just the CLI's translation of "push these branches" into
// "here's each one's current state".
func buildPushUpdates(git *gitrepo.Repo, mutRepo repo.MutableRepo, branches []string, force bool) ([]remote.RefUpdate, error) {
	if len(branches) == 0 {
		return nil, fmt.Errorf("--branch is required (no default: pushing every branch unconditionally is unsafe)")
	}

	view := mutRepo.View()
	var updates []remote.RefUpdate
	for _, name := range branches {
		local := view.Branches[name].Local
		if local.IsConflict() {
			fmt.Printf("skipping %s: conflicted\n", name)
			continue
		}

		qualified := refname.RenderLocal(name)
		if local.IsAbsent() {
			updates = append(updates, remote.RefUpdate{QualifiedName: qualified, NewTarget: repo.ZeroCommitID})
			continue
		}

		id, _ := local.AsNormal()
		updates = append(updates, remote.RefUpdate{QualifiedName: qualified, Force: force, NewTarget: id})
	}
	return updates, nil
}

func init() {
	fetchCmd.Flags().StringVar(&fetchRemoteFlag, "remote", "origin", "remote to fetch from")
	fetchCmd.Flags().StringSliceVar(&fetchGlobsFlag, "branch", nil, "branch glob(s) to fetch (default *)")
	fetchCmd.Flags().BoolVar(&fetchPruneFlag, "prune", false, "remove local remote-tracking refs deleted upstream")

	pushCmd.Flags().StringVar(&pushRemoteFlag, "remote", "origin", "remote to push to")
	pushCmd.Flags().StringSliceVar(&pushBranchFlag, "branch", nil, "branch(es) to push (required)")
	pushCmd.Flags().BoolVar(&pushForceFlag, "force", false, "allow non-fast-forward updates")

	rootCmd.AddCommand(fetchCmd, pushCmd)
}
