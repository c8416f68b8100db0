package gitver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	masterminds "github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func mustVersion(t *testing.T, s string) *masterminds.Version {
	t.Helper()
	v, err := masterminds.NewVersion(s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return v
}

func versions(t *testing.T, ss ...string) []*masterminds.Version {
	t.Helper()
	out := make([]*masterminds.Version, 0, len(ss))
	for _, s := range ss {
		out = append(out, mustVersion(t, s))
	}
	return out
}

func TestTipOfTrain(t *testing.T) {
	tags := versions(t, "6.1.0", "6.1.4", "6.2.0", "6.2.9", "7.0.1")

	cases := []struct {
		version string
		want    bool
	}{
		{"6.2.9", true},   // newest on 6.2
		{"6.2.0", false},  // 6.2.9 exists
		{"6.1.4", true},   // 6.2 and 7.0 are other trains
		{"7.0.1", true},
		{"6.3.0", true},   // no tags on 6.3 at all
	}
	for _, tc := range cases {
		if got := TipOfTrain(mustVersion(t, tc.version), tags); got != tc.want {
			t.Errorf("TipOfTrain(%s) = %v, want %v", tc.version, got, tc.want)
		}
	}
}

func TestDockerTagFallbacks(t *testing.T) {
	noTags := &Info{SHA: "abc1234"}
	if got := noTags.DockerTag(); got != "0.0.0-dev.abc1234" {
		t.Errorf("DockerTag() = %q", got)
	}
	if got := noTags.MajorMinor(); got != "" {
		t.Errorf("MajorMinor() = %q, want empty", got)
	}

	offRelease := &Info{SHA: "abc1234", Version: mustVersion(t, "6.2.9")}
	if got := offRelease.DockerTag(); got != "6.2.9-dev.abc1234" {
		t.Errorf("DockerTag() = %q", got)
	}

	release := &Info{SHA: "abc1234", Version: mustVersion(t, "6.2.9"), IsRelease: true}
	if got := release.DockerTag(); got != "6.2.9" {
		t.Errorf("DockerTag() = %q", got)
	}
	if got := release.MajorMinor(); got != "6.2" {
		t.Errorf("MajorMinor() = %q", got)
	}
}

func commit(t *testing.T, wt *git.Worktree, dir, msg string) plumbing.Hash {
	t.Helper()

	path := filepath.Join(dir, "CHANGES")
	if err := os.WriteFile(path, []byte(msg+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := wt.Add("CHANGES"); err != nil {
		t.Fatalf("add: %v", err)
	}
	h, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return h
}

func TestDetectReadsTagsAndHead(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}

	first := commit(t, wt, dir, "first")
	if _, err := repo.CreateTag("v6.2.3", first, nil); err != nil {
		t.Fatalf("tag: %v", err)
	}

	head := commit(t, wt, dir, "second")
	if _, err := repo.CreateTag("v6.2.9", head, nil); err != nil {
		t.Fatalf("tag: %v", err)
	}
	if _, err := repo.CreateTag("nightly", head, nil); err != nil { // non-semver, ignored
		t.Fatalf("tag: %v", err)
	}

	info, err := Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.Version == nil || info.Version.String() != "6.2.9" {
		t.Fatalf("Version = %v, want 6.2.9", info.Version)
	}
	if !info.IsRelease {
		t.Error("IsRelease = false, want true (highest tag is HEAD)")
	}
	if info.DockerTag() != "6.2.9" || info.MajorMinor() != "6.2" {
		t.Errorf("DockerTag/MajorMinor = %q/%q", info.DockerTag(), info.MajorMinor())
	}
	if !info.TipOfTrain() {
		t.Error("TipOfTrain = false, want true")
	}
	if len(info.SHA) != 7 {
		t.Errorf("SHA = %q, want 7-char short hash", info.SHA)
	}
}

func TestDetectOffReleaseCheckout(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}

	tagged := commit(t, wt, dir, "release")
	if _, err := repo.CreateTag("v1.0.0", tagged, nil); err != nil {
		t.Fatalf("tag: %v", err)
	}
	commit(t, wt, dir, "after release")

	info, err := Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.IsRelease {
		t.Error("IsRelease = true for a commit past the tag")
	}
	if got := info.DockerTag(); got != "1.0.0-dev."+info.SHA {
		t.Errorf("DockerTag() = %q", got)
	}
}
