package gitver

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		tags    []string
		want    string
		wantErr error
	}{
		{
			name: "single tag",
			tags: []string{"1.2.0"},
			want: "v1.2.0",
		},
		{
			name: "single tag with whitespace",
			tags: []string{" 2.0.0 "},
			want: "v2.0.0",
		},
		{
			name:    "no tags",
			tags:    nil,
			wantErr: ErrNoTag,
		},
		{
			name:    "empty slice",
			tags:    []string{},
			wantErr: ErrNoTag,
		},
		{
			name:    "two tags",
			tags:    []string{"1.0.0", "1.0.1"},
			wantErr: ErrAmbiguousTag,
		},
		{
			name:    "three tags",
			tags:    []string{"1.0.0", "1.0.1", "2.0.0"},
			wantErr: ErrAmbiguousTag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.tags)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%v) error = %v; want %v", tt.tags, err, tt.wantErr)
				}
				if got != "" {
					t.Errorf("Resolve(%v) = %q on error; want empty", tt.tags, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%v) unexpected error: %v", tt.tags, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%v) = %q; want %q", tt.tags, got, tt.want)
			}
		})
	}
}

// initRepo creates a repository with one commit and returns it with the
// commit hash, so tests can hang tags off it.
func initRepo(t *testing.T) (*gogit.Repository, plumbing.Hash, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add("file.txt"); err != nil {
		t.Fatalf("add: %v", err)
	}
	sig := &object.Signature{Name: "test", Email: "test@example.invalid", When: time.Now()}
	hash, err := wt.Commit("initial", &gogit.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return repo, hash, dir
}

func TestTags(t *testing.T) {
	t.Run("no tags", func(t *testing.T) {
		_, _, dir := initRepo(t)
		tags, err := Tags(dir)
		if err != nil {
			t.Fatalf("Tags: %v", err)
		}
		if len(tags) != 0 {
			t.Errorf("Tags = %v; want none", tags)
		}
	})

	t.Run("two tags", func(t *testing.T) {
		repo, hash, dir := initRepo(t)
		for _, name := range []string{"1.0.0", "1.0.1"} {
			if _, err := repo.CreateTag(name, hash, nil); err != nil {
				t.Fatalf("create tag %s: %v", name, err)
			}
		}
		tags, err := Tags(dir)
		if err != nil {
			t.Fatalf("Tags: %v", err)
		}
		sort.Strings(tags)
		want := []string{"1.0.0", "1.0.1"}
		if len(tags) != len(want) || tags[0] != want[0] || tags[1] != want[1] {
			t.Errorf("Tags = %v; want %v", tags, want)
		}
	})

	t.Run("not a repository", func(t *testing.T) {
		if _, err := Tags(t.TempDir()); err == nil {
			t.Error("Tags on a non-repo dir: expected error, got none")
		}
	})
}
