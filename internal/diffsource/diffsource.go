// Package diffsource supplies changesets to the review engine. Providers
// are the only components that touch the filesystem or the repository; the
// engine consumes (path, content) pairs through the domain contract.
package diffsource

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/ludo-technologies/revet/domain"
)

// PathProvider builds a changeset from explicit file paths
type PathProvider struct {
	Paths []string
}

// Changeset reads each path from disk, preserving the given order
func (p *PathProvider) Changeset(_ context.Context) ([]domain.ChangedFile, error) {
	files := make([]domain.ChangedFile, 0, len(p.Paths))
	for _, path := range p.Paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, domain.ChangedFile{Path: path, Content: content})
	}
	return files, nil
}

// StagedProvider builds a changeset from the files staged in the git index
type StagedProvider struct {
	Root string
}

// Changeset lists staged paths and reads their current contents
func (p *StagedProvider) Changeset(_ context.Context) ([]domain.ChangedFile, error) {
	repo, err := openRepo(p.Root)
	if err != nil {
		return nil, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}

	var paths []string
	for path, fileStatus := range status {
		switch fileStatus.Staging {
		case git.Added, git.Modified, git.Renamed, git.Copied:
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	files := make([]domain.ChangedFile, 0, len(paths))
	for _, path := range paths {
		f, err := worktree.Filesystem.Open(path)
		if err != nil {
			continue // staged deletion or unreadable entry
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read staged %s: %w", path, err)
		}
		files = append(files, domain.ChangedFile{Path: path, Content: content})
	}
	return files, nil
}

// DiffProvider builds a changeset from the files that differ between a
// base revision and HEAD
type DiffProvider struct {
	Root string
	Base string
}

// Changeset diffs the base tree against HEAD and returns the HEAD-side
// contents of every added or modified file
func (p *DiffProvider) Changeset(_ context.Context) ([]domain.ChangedFile, error) {
	repo, err := openRepo(p.Root)
	if err != nil {
		return nil, err
	}

	baseTree, err := treeAt(repo, p.Base)
	if err != nil {
		return nil, err
	}
	headTree, err := treeAt(repo, "HEAD")
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTree(baseTree, headTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	var paths []string
	for _, change := range changes {
		// deletions have no HEAD-side content to review
		if change.To.Name == "" {
			continue
		}
		paths = append(paths, change.To.Name)
	}
	sort.Strings(paths)

	files := make([]domain.ChangedFile, 0, len(paths))
	for _, path := range paths {
		f, err := headTree.File(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s at HEAD: %w", path, err)
		}
		content, err := f.Contents()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s at HEAD: %w", path, err)
		}
		files = append(files, domain.ChangedFile{Path: path, Content: []byte(content)})
	}
	return files, nil
}

func openRepo(root string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", root, err)
	}
	return repo, nil
}

func treeAt(repo *git.Repository, rev string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %q: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree for %s: %w", hash, err)
	}
	return tree, nil
}
