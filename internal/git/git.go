package git

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// IsGitInstalled returns true if git is available on the system PATH.
func IsGitInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsRepo reports whether dir is inside a git working tree.
func IsRepo(dir string) bool {
	out, err := output(dir, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) == "true"
}

// IsDirty reports whether the working tree has unstaged or untracked
// changes. Fully staged entries do not count; those are covered by
// HasStaged.
func IsDirty(dir string) (bool, error) {
	out, err := output(dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 2 {
			continue
		}
		if strings.HasPrefix(line, "??") || line[1] != ' ' {
			return true, nil
		}
	}
	return false, nil
}

// HasStaged reports whether the index holds changes not yet committed.
func HasStaged(dir string) (bool, error) {
	cmd := exec.Command("git", "diff", "--cached", "--quiet")
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		if isExitError(err) {
			return true, nil
		}
		return false, fmt.Errorf("git diff --cached: %w", err)
	}
	return false, nil
}

func isExitError(err error) bool {
	_, ok := err.(*exec.ExitError)
	return ok
}

// output executes a git command and returns its stdout without printing
// to the console.
func output(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}
