package diffsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestPathProviderReadsInOrder(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"b.js": "let b = 2;\n",
		"a.js": "let a = 1;\n",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
	}

	p := &PathProvider{Paths: []string{
		filepath.Join(dir, "b.js"),
		filepath.Join(dir, "a.js"),
	}}

	files, err := p.Changeset(context.Background())
	if err != nil {
		t.Fatalf("Changeset returned error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	// explicit paths keep their given order
	if filepath.Base(files[0].Path) != "b.js" || filepath.Base(files[1].Path) != "a.js" {
		t.Errorf("order not preserved: %s, %s", files[0].Path, files[1].Path)
	}
	if string(files[1].Content) != "let a = 1;\n" {
		t.Errorf("unexpected content: %q", files[1].Content)
	}
}

func TestPathProviderMissingFile(t *testing.T) {
	p := &PathProvider{Paths: []string{filepath.Join(t.TempDir(), "missing.js")}}
	if _, err := p.Changeset(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func testSignature() *object.Signature {
	return &object.Signature{
		Name:  "test",
		Email: "test@example.com",
		When:  time.Now(),
	}
}

func commitFile(t *testing.T, wt *git.Worktree, dir, name, content, message string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	if _, err := wt.Add(name); err != nil {
		t.Fatalf("failed to stage %s: %v", name, err)
	}
	if _, err := wt.Commit(message, &git.CommitOptions{Author: testSignature()}); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
}

func TestStagedProvider(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to open worktree: %v", err)
	}

	commitFile(t, wt, dir, "committed.js", "let a = 1;\n", "initial")

	// stage a new file without committing it
	if err := os.WriteFile(filepath.Join(dir, "staged.js"), []byte("eval(x);\n"), 0644); err != nil {
		t.Fatalf("failed to write staged file: %v", err)
	}
	if _, err := wt.Add("staged.js"); err != nil {
		t.Fatalf("failed to stage file: %v", err)
	}

	// an untracked file must not appear
	if err := os.WriteFile(filepath.Join(dir, "untracked.js"), []byte("let u = 1;\n"), 0644); err != nil {
		t.Fatalf("failed to write untracked file: %v", err)
	}

	p := &StagedProvider{Root: dir}
	files, err := p.Changeset(context.Background())
	if err != nil {
		t.Fatalf("Changeset returned error: %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("expected 1 staged file, got %d: %+v", len(files), files)
	}
	if files[0].Path != "staged.js" {
		t.Errorf("path = %s, want staged.js", files[0].Path)
	}
	if string(files[0].Content) != "eval(x);\n" {
		t.Errorf("unexpected content: %q", files[0].Content)
	}
}

func TestDiffProvider(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to open worktree: %v", err)
	}

	commitFile(t, wt, dir, "a.js", "let a = 1;\n", "initial")
	baseRef, err := repo.Head()
	if err != nil {
		t.Fatalf("failed to read HEAD: %v", err)
	}
	base := baseRef.Hash().String()

	commitFile(t, wt, dir, "a.js", "let a = 2;\n", "modify a")
	commitFile(t, wt, dir, "b.js", "let b = 1;\n", "add b")

	p := &DiffProvider{Root: dir, Base: base}
	files, err := p.Changeset(context.Background())
	if err != nil {
		t.Fatalf("Changeset returned error: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 changed files, got %d: %+v", len(files), files)
	}
	// paths come back sorted
	if files[0].Path != "a.js" || files[1].Path != "b.js" {
		t.Errorf("unexpected paths: %s, %s", files[0].Path, files[1].Path)
	}
	if string(files[0].Content) != "let a = 2;\n" {
		t.Errorf("diff must carry the HEAD-side content, got %q", files[0].Content)
	}
}

func TestDiffProviderBadRevision(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to open worktree: %v", err)
	}
	commitFile(t, wt, dir, "a.js", "let a = 1;\n", "initial")

	p := &DiffProvider{Root: dir, Base: "no-such-revision"}
	if _, err := p.Changeset(context.Background()); err == nil {
		t.Fatal("expected error for unknown base revision")
	}
}

func TestOpenRepoOutsideRepository(t *testing.T) {
	p := &StagedProvider{Root: os.TempDir()}
	if _, err := p.Changeset(context.Background()); err == nil {
		t.Skip("test environment is itself inside a git repository")
	}
}
