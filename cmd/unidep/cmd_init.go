package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fbkclanna/unidep/internal/tomldoc"
	"github.com/fbkclanna/unidep/internal/workspace"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a root manifest listing every subproject as a member",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}
	cmd.Flags().String("name", "", "Workspace package name to record in the root manifest")
	cmd.Flags().Bool("force", false, "Overwrite an existing root manifest")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	force, _ := cmd.Flags().GetBool("force")

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving target directory: %w", err)
	}

	manifestPath := filepath.Join(dir, workspace.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", manifestPath)
	}

	members, err := discoverMembers(dir)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return fmt.Errorf("no subprojects with a %s found under %s", workspace.ManifestName, dir)
	}

	if name == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		name, err = promptInput("Workspace name (empty to skip)", filepath.Base(dir), nil)
		if err != nil {
			return fmt.Errorf("interactive setup: %w", err)
		}
		name = strings.TrimSpace(name)
	}

	data := buildRootManifest(name, members)
	if err := os.WriteFile(manifestPath, []byte(data), 0644); err != nil { //nolint:gosec // manifest needs to be readable
		return fmt.Errorf("writing root manifest: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d member(s)\n", manifestPath, len(members))
	return nil
}

// discoverMembers returns the immediate subdirectories of dir that carry
// their own manifest, sorted by name.
func discoverMembers(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	var members []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		candidate := filepath.Join(dir, e.Name(), workspace.ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			members = append(members, e.Name())
		}
	}
	sort.Strings(members)
	return members, nil
}

// buildRootManifest renders a fresh root manifest. The shared dependency
// table starts empty; a consolidation run fills it in.
func buildRootManifest(name string, members []string) string {
	var b strings.Builder
	if name != "" {
		b.WriteString("[package]\n")
		b.WriteString("name = " + tomldoc.Quote(name) + "\n\n")
	}
	b.WriteString("[workspace]\n")
	b.WriteString("members = [")
	for i, m := range members {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tomldoc.Quote(m))
	}
	b.WriteString("]\n\n[workspace.dependencies]\n")
	return b.String()
}
