package main

import (
	"fmt"
	"sort"

	"github.com/jjvcs/gitbridge/internal/repo"
)

// printBranches reports the native view's branch state after an import or
// fetch, flagging conflicted branches so the user knows to resolve them
// before the next export.
func printBranches(mutRepo repo.MutableRepo) {
	view := mutRepo.View()
	names := make([]string, 0, len(view.Branches))
	for name := range view.Branches {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		fmt.Println("no branches")
		return
	}

	for _, name := range names {
		local := view.Branches[name].Local
		switch {
		case local.IsAbsent():
			continue
		case local.IsConflict():
			fmt.Printf("%s: conflict %v\n", name, local.AddedCommits())
		default:
			id, _ := local.AsNormal()
			fmt.Printf("%s: %s\n", name, id)
		}
	}
}
