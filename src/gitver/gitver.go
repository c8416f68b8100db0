// Package gitver resolves version metadata from the git repository so the
// orchestrator can default its docker tag and release-train flags when the
// environment does not provide them.
package gitver

import (
	"fmt"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Info holds resolved version metadata.
type Info struct {
	Version   *masterminds.Version // highest semver tag, nil when the repo has none
	Tag       string               // raw name of that tag
	SHA       string               // short HEAD hash
	Branch    string               // empty on detached HEAD
	IsRelease bool                 // the highest tag points at HEAD

	tags []*masterminds.Version // every semver tag, for tip-of-train checks
}

// Detect opens the repository at or above rootDir and reads HEAD plus tags.
func Detect(rootDir string) (*Info, error) {
	repo, err := git.PlainOpenWithOptions(rootDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("reading HEAD: %w", err)
	}

	info := &Info{SHA: head.Hash().String()[:7]}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("reading tags: %w", err)
	}
	defer iter.Close()

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		v, parseErr := masterminds.NewVersion(strings.TrimPrefix(ref.Name().Short(), "v"))
		if parseErr != nil {
			return nil // non-semver tag, not a release line
		}
		info.tags = append(info.tags, v)

		// Annotated tags point at a tag object; peel to the commit.
		target := ref.Hash()
		if obj, tagErr := repo.TagObject(ref.Hash()); tagErr == nil {
			target = obj.Target
		}

		if info.Version == nil || v.GreaterThan(info.Version) {
			info.Version = v
			info.Tag = ref.Name().Short()
			info.IsRelease = target == head.Hash()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return info, nil
}

// DockerTag returns the primary tag this checkout should produce: the
// version for a release checkout, otherwise a dev tag carrying the SHA.
func (i *Info) DockerTag() string {
	if i.Version == nil {
		return fmt.Sprintf("0.0.0-dev.%s", i.SHA)
	}
	if i.IsRelease {
		return i.Version.String()
	}
	return fmt.Sprintf("%s-dev.%s", i.Version, i.SHA)
}

// MajorMinor returns the floating-tag value, empty when no version is known.
func (i *Info) MajorMinor() string {
	if i.Version == nil {
		return ""
	}
	return fmt.Sprintf("%d.%d", i.Version.Major(), i.Version.Minor())
}

// TipOfTrain reports whether the detected version is the newest on its
// major.minor release train.
func (i *Info) TipOfTrain() bool {
	if i.Version == nil {
		return false
	}
	return TipOfTrain(i.Version, i.tags)
}

// TipOfTrain reports whether v is the greatest version among tags sharing
// its major.minor train. Tags on other trains never disqualify v.
func TipOfTrain(v *masterminds.Version, tags []*masterminds.Version) bool {
	for _, t := range tags {
		if t.Major() == v.Major() && t.Minor() == v.Minor() && t.GreaterThan(v) {
			return false
		}
	}
	return true
}
