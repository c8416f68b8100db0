package plan

import (
	"fmt"

	"github.com/nedforge/nedforge/src/tags"
	"github.com/nedforge/nedforge/src/variant"
)

// Inputs carries everything the builder needs to expand a target.
type Inputs struct {
	Repo      string // image name prefix, e.g. "registry.example.com/nso"
	TagSet    tags.TagSet
	Variants  []variant.Variant
	BuildArgs map[string]string // shared --build-arg values (resolved dependency images)
}

// variantArg is the build arg that filters a package/netsim build down to a
// single variant. The all-variant package image is built by omitting it.
var variantArg = "NED_ID"

// Build expands a parsed target into a topologically ordered plan.
func Build(t Target, in Inputs) (*Plan, error) {
	b := &builder{in: in, plan: &Plan{Target: t.String()}}

	scoped := in.Variants
	if t.Variant != "" {
		v, err := variant.Find(in.Variants, t.Variant)
		if err != nil {
			return nil, err
		}
		scoped = []variant.Variant{v}
	}

	switch t.Verb {
	case "build":
		if err := b.buildMatrix(t, scoped); err != nil {
			return nil, err
		}
	case "tag-release":
		b.tagRelease(b.releaseImages(t, scoped))
	case "push":
		for _, img := range b.releaseImages(t, scoped) {
			b.push(img, in.TagSet.Primary, nil)
		}
	case "push-release":
		b.pushRelease(b.releaseImages(t, scoped))
	default:
		return nil, &UsageError{Target: t.String()}
	}

	return b.plan, nil
}

type builder struct {
	in   Inputs
	plan *Plan
}

func (b *builder) add(op Operation) string {
	b.plan.Ops = append(b.plan.Ops, op)
	return op.ID
}

// ref renders "<repo>/<name>:<tag>".
func (b *builder) ref(name, tag string) string {
	return fmt.Sprintf("%s/%s:%s", b.in.Repo, name, tag)
}

// buildMatrix emits the full build chain:
// build -> configurator -> nso -> package(all) -> per variant netsim -> package,
// closed by tagging the latest variant's netsim image as the unqualified one.
func (b *builder) buildMatrix(t Target, scoped []variant.Variant) error {
	primary := b.in.TagSet.Primary

	prev := ""
	for _, st := range []Stage{StageBuild, StageConfigurator, StageNSO} {
		op := Operation{
			ID:        "build-" + string(st),
			Kind:      KindBuild,
			Stage:     st,
			Image:     b.ref(string(st), primary),
			Tags:      []string{b.ref(string(st), primary)},
			BuildArgs: b.in.BuildArgs,
			Target:    string(st),
		}
		if prev != "" {
			op.Deps = []string{prev}
		}
		prev = b.add(op)
	}

	// All-variant package image: deliberately no variant filter arg, so the
	// engine packages every variant into one image.
	packageAll := b.add(Operation{
		ID:        "build-package",
		Kind:      KindBuild,
		Stage:     StagePackage,
		Image:     b.ref("package", primary),
		Tags:      []string{b.ref("package", primary)},
		BuildArgs: b.in.BuildArgs,
		Target:    string(StagePackage),
		Deps:      []string{prev},
	})

	netsimIDs := make(map[string]string, len(scoped))
	for _, v := range scoped {
		args := b.variantArgs(v)

		netsimID := b.add(Operation{
			ID:        "build-netsim-" + v.Name,
			Kind:      KindBuild,
			Stage:     StageNetsim,
			Variant:   v.Name,
			Image:     b.ref("netsim-"+v.Name, primary),
			Tags:      []string{b.ref("netsim-"+v.Name, primary)},
			BuildArgs: args,
			Target:    string(StageNetsim),
			Deps:      []string{packageAll},
		})
		netsimIDs[v.Name] = netsimID

		b.add(Operation{
			ID:        "build-package-" + v.Name,
			Kind:      KindBuild,
			Stage:     StagePackage,
			Variant:   v.Name,
			Image:     b.ref("package-"+v.Name, primary),
			Tags:      []string{b.ref("package-"+v.Name, primary)},
			BuildArgs: args,
			Target:    string(StagePackage),
			Deps:      []string{netsimID},
		})
	}

	// Full-matrix builds close by pointing the unqualified netsim ref at
	// the latest variant's image.
	if t.Variant == "" {
		latest, err := variant.Latest(scoped)
		if err != nil {
			return err
		}
		b.add(Operation{
			ID:      "tag-netsim",
			Kind:    KindTag,
			Stage:   StageNetsim,
			Variant: latest.Name,
			Image:   b.ref("netsim-"+latest.Name, primary),
			Tags:    []string{b.ref("netsim", primary)},
			Deps:    []string{netsimIDs[latest.Name]},
		})
	}

	return nil
}

// variantArgs merges shared build args, the variant filter, and any
// manifest-declared extras.
func (b *builder) variantArgs(v variant.Variant) map[string]string {
	args := make(map[string]string, len(b.in.BuildArgs)+2)
	for k, val := range b.in.BuildArgs {
		args[k] = val
	}
	if v.Manifest != nil {
		for k, val := range v.Manifest.BuildArgs {
			args[k] = val
		}
	}
	args[variantArg] = v.Name
	return args
}

// releaseImage is an already-built image the release verbs operate on.
type releaseImage struct {
	name    string // ref name without tag
	variant string
	stage   Stage
}

// releaseImages lists the images a release verb touches. The full matrix
// covers the all-variant package, the unqualified netsim, and both
// per-variant images; the single-variant form only the latter two.
func (b *builder) releaseImages(t Target, scoped []variant.Variant) []releaseImage {
	var images []releaseImage
	if t.Variant == "" {
		images = append(images,
			releaseImage{name: "package", stage: StagePackage},
			releaseImage{name: "netsim", stage: StageNetsim},
		)
	}
	for _, v := range scoped {
		images = append(images,
			releaseImage{name: "netsim-" + v.Name, variant: v.Name, stage: StageNetsim},
			releaseImage{name: "package-" + v.Name, variant: v.Name, stage: StagePackage},
		)
	}
	return images
}

// tagRelease emits one tag operation per image, applying every floating tag
// to the primary-tagged image. Operations are mutually independent.
func (b *builder) tagRelease(images []releaseImage) {
	for _, img := range images {
		b.tagExtras(img)
	}
}

// tagExtras emits the floating-tag operation for img, returning its ID or
// "" when the tag set has no extras.
func (b *builder) tagExtras(img releaseImage) string {
	if len(b.in.TagSet.Extra) == 0 {
		return ""
	}
	dsts := make([]string, 0, len(b.in.TagSet.Extra))
	for _, tag := range b.in.TagSet.Extra {
		dsts = append(dsts, b.ref(img.name, tag))
	}
	return b.add(Operation{
		ID:      "tag-" + img.name,
		Kind:    KindTag,
		Stage:   img.stage,
		Variant: img.variant,
		Image:   b.ref(img.name, b.in.TagSet.Primary),
		Tags:    dsts,
	})
}

func (b *builder) push(img releaseImage, tag string, deps []string) string {
	return b.add(Operation{
		ID:      "push-" + img.name + ":" + tag,
		Kind:    KindPush,
		Stage:   img.stage,
		Variant: img.variant,
		Image:   b.ref(img.name, tag),
		Deps:    deps,
	})
}

// pushRelease retags then pushes every tag of every image. Pushes of
// floating tags wait for their tag operation; primary pushes are
// independent.
func (b *builder) pushRelease(images []releaseImage) {
	for _, img := range images {
		tagID := b.tagExtras(img)

		b.push(img, b.in.TagSet.Primary, nil)
		for _, tag := range b.in.TagSet.Extra {
			var deps []string
			if tagID != "" {
				deps = []string{tagID}
			}
			b.push(img, tag, deps)
		}
	}
}
