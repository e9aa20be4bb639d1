package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fbkclanna/unidep/internal/git"
	"github.com/fbkclanna/unidep/internal/manifest"
	"github.com/fbkclanna/unidep/internal/patch"
	"github.com/fbkclanna/unidep/internal/ui"
	"github.com/fbkclanna/unidep/internal/unify"
	"github.com/fbkclanna/unidep/internal/workspace"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func runConsolidate(cmd *cobra.Command, args []string) error {
	allowDirty, _ := cmd.Flags().GetBool("allow-dirty")
	allowStaged, _ := cmd.Flags().GetBool("allow-staged")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")

	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	manifestPath, err := workspace.ResolveTarget(target)
	if err != nil {
		return err
	}

	if !dryRun {
		if err := checkTree(filepath.Dir(manifestPath), allowDirty, allowStaged); err != nil {
			return err
		}
	}

	ctx, err := workspace.Load(manifestPath)
	if err != nil {
		return err
	}

	groups := ctx.NewDependencies()
	out := cmd.OutOrStdout()
	if groups.Len() == 0 {
		_, _ = fmt.Fprintln(out, "Nothing to consolidate.")
		return nil
	}

	table, err := unify.Unify(groups)
	if err != nil {
		return err
	}

	plan, err := patch.Build(ctx, table)
	if err != nil {
		return err
	}

	tbl := ui.NewTable(out, "DEPENDENCY", "VERSION", "MEMBERS")
	for _, name := range table.Names() {
		dep, _ := table.Get(name)
		version, ok := manifest.Version(dep)
		if !ok {
			version = "-"
		}
		tbl.Row(name, version, fmt.Sprintf("%d", len(groups.Specs(name))))
	}
	if err := tbl.Flush(); err != nil {
		return err
	}

	changed := plan.Changed()
	_, _ = fmt.Fprintf(out, "\n%d file(s) to update\n", changed)
	if changed == 0 {
		return nil
	}

	if dryRun {
		for _, c := range plan.Changes {
			if c.Changed() {
				_, _ = fmt.Fprintf(out, "  would update %s\n", relPath(ctx.Root, c.Path))
			}
		}
		return nil
	}

	if !yes && term.IsTerminal(int(os.Stdin.Fd())) {
		ok, err := promptConfirm(fmt.Sprintf("Update %d file(s)?", changed), true)
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := plan.Commit(); err != nil {
		return err
	}
	for _, c := range plan.Changes {
		if c.Changed() {
			_, _ = fmt.Fprintf(out, "  updated %s\n", relPath(ctx.Root, c.Path))
		}
	}
	return nil
}

// checkTree refuses to run on a git working tree with pending changes
// unless the matching override flag is set. Trees outside git are fine.
func checkTree(dir string, allowDirty, allowStaged bool) error {
	if !git.IsGitInstalled() || !git.IsRepo(dir) {
		return nil
	}
	if !allowDirty {
		dirty, err := git.IsDirty(dir)
		if err != nil {
			return err
		}
		if dirty {
			return fmt.Errorf("working tree has uncommitted changes (use --allow-dirty to override)")
		}
	}
	if !allowStaged {
		staged, err := git.HasStaged(dir)
		if err != nil {
			return err
		}
		if staged {
			return fmt.Errorf("index has staged changes (use --allow-staged to override)")
		}
	}
	return nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
