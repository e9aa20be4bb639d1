package patch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fbkclanna/unidep/internal/testutil"
	"github.com/fbkclanna/unidep/internal/unify"
	"github.com/fbkclanna/unidep/internal/workspace"
)

const rootSrc = `# build tree root
[workspace]
members = ["core", "api"]

[workspace.dependencies]
log = "0.4"
`

const coreSrc = `[package]
name = "core"

# runtime deps
[dependencies]
serde = "1.0" # serialization
log = { workspace = true }
`

const apiSrc = `[package]
name = "api"

[dependencies]
serde = { version = "1.0.5", features = ["derive"] }
tokio = "1.2"
`

func buildPlan(t *testing.T, files map[string]string) (*workspace.Context, *Plan) {
	t.Helper()
	root := testutil.WriteTree(t, files)

	ctx, err := workspace.Load(filepath.Join(root, workspace.ManifestName))
	if err != nil {
		t.Fatal(err)
	}
	table, err := unify.Unify(ctx.NewDependencies())
	if err != nil {
		t.Fatal(err)
	}
	plan, err := Build(ctx, table)
	if err != nil {
		t.Fatal(err)
	}
	return ctx, plan
}

func changeFor(t *testing.T, plan *Plan, path string) FileChange {
	t.Helper()
	for _, c := range plan.Changes {
		if c.Path == path {
			return c
		}
	}
	t.Fatalf("no change buffered for %s", path)
	return FileChange{}
}

func TestBuild_consolidatesIntoRoot(t *testing.T) {
	ctx, plan := buildPlan(t, map[string]string{
		"project.toml":      rootSrc,
		"core/project.toml": coreSrc,
		"api/project.toml":  apiSrc,
	})

	root := string(changeFor(t, plan, ctx.ManifestPath).After)
	if !strings.Contains(root, `serde = { version = "1.0, 1.0.5", features = ["derive"] }`) {
		t.Errorf("root missing merged serde entry:\n%s", root)
	}
	if !strings.Contains(root, `tokio = "1.2"`) {
		t.Errorf("root missing tokio entry:\n%s", root)
	}
	// The existing shared entry stays untouched.
	if !strings.Contains(root, `log = "0.4"`) {
		t.Errorf("root lost existing log entry:\n%s", root)
	}
	// Comments survive the rewrite.
	if !strings.Contains(root, "# build tree root") {
		t.Errorf("root lost leading comment:\n%s", root)
	}
}

func TestBuild_rewritesMembers(t *testing.T) {
	ctx, plan := buildPlan(t, map[string]string{
		"project.toml":      rootSrc,
		"core/project.toml": coreSrc,
		"api/project.toml":  apiSrc,
	})

	core := string(changeFor(t, plan, ctx.Members[0].ManifestPath).After)
	if !strings.Contains(core, `serde = "1.0, 1.0.5" # serialization`) {
		t.Errorf("core serde not rewritten, comment must survive:\n%s", core)
	}
	// Inherited entries in members are left alone.
	if !strings.Contains(core, `log = { workspace = true }`) {
		t.Errorf("core log entry should be untouched:\n%s", core)
	}
	if !strings.Contains(core, "# runtime deps") {
		t.Errorf("core lost comment:\n%s", core)
	}

	api := string(changeFor(t, plan, ctx.Members[1].ManifestPath).After)
	// Only the version field changes; other attributes stay in place.
	if !strings.Contains(api, `serde = { version = "1.0, 1.0.5", features = ["derive"] }`) {
		t.Errorf("api serde version not rewritten in place:\n%s", api)
	}
	if !strings.Contains(api, `tokio = "1.2"`) {
		t.Errorf("api tokio should keep its spelling:\n%s", api)
	}
}

func TestBuild_createsSharedTable(t *testing.T) {
	ctx, plan := buildPlan(t, map[string]string{
		"project.toml":   "[workspace]\nmembers = [\"m\"]\n",
		"m/project.toml": "[dependencies]\nserde = \"1.0\"\n",
	})

	root := string(changeFor(t, plan, ctx.ManifestPath).After)
	if !strings.Contains(root, "[workspace.dependencies]\nserde = \"1.0\"\n") {
		t.Errorf("missing created shared table:\n%s", root)
	}
}

func TestBuild_identityOutsideEdits(t *testing.T) {
	ctx, plan := buildPlan(t, map[string]string{
		"project.toml":      rootSrc,
		"core/project.toml": coreSrc,
		"api/project.toml":  apiSrc,
	})

	api := changeFor(t, plan, ctx.Members[1].ManifestPath)
	before := string(api.Before)
	after := string(api.After)
	// Everything up to the first rewritten value is byte-identical.
	idx := strings.Index(before, `"1.0.5"`)
	if idx < 0 {
		t.Fatal("fixture changed")
	}
	if !strings.HasPrefix(after, before[:idx]) {
		t.Errorf("prefix before first edit changed:\nbefore: %q\nafter:  %q", before, after)
	}
}

func TestBuild_memberWithoutVersionField(t *testing.T) {
	ctx, plan := buildPlan(t, map[string]string{
		"project.toml":   "[workspace]\nmembers = [\"a\", \"b\"]\n",
		"a/project.toml": "[dependencies]\nserde = \"1.0\"\n",
		"b/project.toml": "[dependencies]\nserde = { git = \"https://example.com/serde\" }\n",
	})

	// The table-like entry has no version field, so it is skipped.
	b := string(changeFor(t, plan, ctx.Members[1].ManifestPath).After)
	if !strings.Contains(b, `serde = { git = "https://example.com/serde" }`) {
		t.Errorf("versionless entry should be untouched:\n%s", b)
	}
}

func TestBuild_inheritedAborts(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"project.toml":   "[workspace]\nmembers = [\"m\"]\n",
		"m/project.toml": "[dependencies]\nserde = { workspace = true }\n",
	})
	ctx, err := workspace.Load(filepath.Join(root, workspace.ManifestName))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := unify.Unify(ctx.NewDependencies()); !errors.Is(err, unify.ErrInherited) {
		t.Fatalf("err = %v, want ErrInherited", err)
	}
}

func TestPlan_commitWritesOnlyChanged(t *testing.T) {
	files := map[string]string{
		"project.toml":      rootSrc,
		"core/project.toml": coreSrc,
		"api/project.toml":  apiSrc,
	}
	ctx, plan := buildPlan(t, files)

	if err := plan.Commit(); err != nil {
		t.Fatal(err)
	}

	for _, c := range plan.Changes {
		got, err := os.ReadFile(c.Path)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(c.After) {
			t.Errorf("%s: on-disk content does not match plan", c.Path)
		}
	}

	// A second run over the committed tree is a no-op.
	ctx2, err := workspace.Load(ctx.ManifestPath)
	if err != nil {
		t.Fatal(err)
	}
	table2, err := unify.Unify(ctx2.NewDependencies())
	if err != nil {
		t.Fatal(err)
	}
	plan2, err := Build(ctx2, table2)
	if err != nil {
		t.Fatal(err)
	}
	if n := plan2.Changed(); n != 0 {
		t.Errorf("second run changed %d files, want 0", n)
	}
}

func TestBuild_noWritesBeforeCommit(t *testing.T) {
	files := map[string]string{
		"project.toml":      rootSrc,
		"core/project.toml": coreSrc,
		"api/project.toml":  apiSrc,
	}
	ctx, _ := buildPlan(t, files)

	got, err := os.ReadFile(ctx.ManifestPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != rootSrc {
		t.Error("Build must not touch files on disk")
	}
}

func TestBuild_changedCount(t *testing.T) {
	_, plan := buildPlan(t, map[string]string{
		"project.toml":      rootSrc,
		"core/project.toml": coreSrc,
		"api/project.toml":  apiSrc,
	})
	// Root, core and api all change: serde merges to "1.0, 1.0.5".
	if n := plan.Changed(); n != 3 {
		t.Errorf("changed = %d, want 3", n)
	}
}
