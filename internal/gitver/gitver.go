// internal/gitver/gitver.go
//
// Resolves the release version to stamp into a build from the tags of
// the local checkout. Publish builds demand exactly one tag; anything
// else is an operator problem, never guessed around. Local builds use
// a fixed throwaway identifier and don't look at tags at all.

package gitver

import (
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Local is the version sentinel for local test builds.
const Local = "local"

var (
	ErrNoTag        = errors.New("no version available: a tag is required to publish")
	ErrAmbiguousTag = errors.New("ambiguous version: more than one tag present")
)

// Tags returns the names of every tag visible in the repository at dir.
// Read-only; the order is not meaningful.
func Tags(dir string) ([]string, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return names, nil
}

// Resolve maps the tag set to the publish version string: exactly one
// tag, normalized with the "v" prefix. Zero or multiple tags fail fast.
func Resolve(tags []string) (string, error) {
	switch len(tags) {
	case 0:
		return "", ErrNoTag
	case 1:
		return "v" + strings.TrimSpace(tags[0]), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousTag, strings.Join(tags, ", "))
	}
}
