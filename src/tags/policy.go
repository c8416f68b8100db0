// Package tags computes the set of tags applied to built images.
package tags

// Policy holds the inputs of the tagging decision. Resolve is a pure
// function over these fields; it never fails.
type Policy struct {
	DockerTag  string // primary tag, always applied
	MajorMinor string // floating tag, e.g. "6.2"; empty disables it
	TipOfTrain bool   // version is the newest on its major.minor train
	CI         bool   // running inside a CI pipeline
}

// TagSet is the ordered result of a tagging decision, primary first.
type TagSet struct {
	Primary string
	Extra   []string
}

// Resolve computes the tags to apply.
//
// The floating major.minor tag is created when the build is either local
// (outside CI, where a developer wants the moving tag for convenience) or a
// CI build of the tip of its release train. CI builds of older patch levels
// must not move the floating tag backwards.
func (p Policy) Resolve() TagSet {
	ts := TagSet{Primary: p.DockerTag}

	floating := (p.CI && p.TipOfTrain) || !p.CI
	if floating && p.MajorMinor != "" && p.MajorMinor != p.DockerTag {
		ts.Extra = append(ts.Extra, p.MajorMinor)
	}
	return ts
}

// All returns every tag in order, primary first.
func (t TagSet) All() []string {
	return append([]string{t.Primary}, t.Extra...)
}
