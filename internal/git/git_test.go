package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fbkclanna/unidep/internal/testutil"
)

func requireGit(t *testing.T) {
	t.Helper()
	if !IsGitInstalled() {
		t.Skip("git not installed")
	}
}

func TestIsRepo(t *testing.T) {
	requireGit(t)

	dir := testutil.WriteTree(t, map[string]string{"README.md": "# test\n"})
	if IsRepo(dir) {
		t.Error("expected plain directory to not be a repo")
	}

	testutil.InitRepo(t, dir)
	if !IsRepo(dir) {
		t.Error("expected IsRepo after init")
	}
}

func TestIsDirty(t *testing.T) {
	requireGit(t)

	dir := testutil.WriteTree(t, map[string]string{"README.md": "# test\n"})
	testutil.InitRepo(t, dir)

	dirty, err := IsDirty(dir)
	if err != nil {
		t.Fatal(err)
	}
	if dirty {
		t.Error("fresh commit should be clean")
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed\n"), 0644); err != nil {
		t.Fatal(err)
	}
	dirty, err = IsDirty(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !dirty {
		t.Error("modified tracked file should be dirty")
	}
}

func TestIsDirty_untracked(t *testing.T) {
	requireGit(t)

	dir := testutil.WriteTree(t, map[string]string{"README.md": "# test\n"})
	testutil.InitRepo(t, dir)

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	dirty, err := IsDirty(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !dirty {
		t.Error("untracked file should count as dirty")
	}
}

func TestHasStaged(t *testing.T) {
	requireGit(t)

	dir := testutil.WriteTree(t, map[string]string{"README.md": "# test\n"})
	testutil.InitRepo(t, dir)

	staged, err := HasStaged(dir)
	if err != nil {
		t.Fatal(err)
	}
	if staged {
		t.Error("fresh commit should have nothing staged")
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed\n"), 0644); err != nil {
		t.Fatal(err)
	}
	testutil.GitAdd(t, dir, "README.md")

	staged, err = HasStaged(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !staged {
		t.Error("expected staged change after git add")
	}

	// Once staged, the worktree matches the index again.
	dirty, err := IsDirty(dir)
	if err != nil {
		t.Fatal(err)
	}
	if dirty {
		t.Error("fully staged change should not count as dirty")
	}
}
