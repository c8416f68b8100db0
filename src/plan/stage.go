// Package plan expands a requested target into an ordered list of container
// build/tag/push operations over the stage × variant matrix.
package plan

// Stage is a distinct build phase producing a distinct image type.
type Stage string

const (
	StageBuild        Stage = "build"        // build environment
	StageConfigurator Stage = "configurator" // configuration tooling layer
	StageNSO          Stage = "nso"          // runtime layer
	StagePackage      Stage = "package"      // packaged artifact (all variants or one)
	StageNetsim       Stage = "netsim"       // device simulator
)

// Stages lists all stages in dependency order.
var Stages = []Stage{StageBuild, StageConfigurator, StageNSO, StagePackage, StageNetsim}

// StageDeps declares which stage must complete before another starts.
// netsim depends on the all-variant package image; the per-variant package
// image is layered on its netsim image.
var StageDeps = map[Stage][]Stage{
	StageBuild:        nil,
	StageConfigurator: {StageBuild},
	StageNSO:          {StageConfigurator},
	StagePackage:      {StageNSO},
	StageNetsim:       {StagePackage},
}

// IsStage reports whether s names a known stage.
func IsStage(s string) bool {
	for _, st := range Stages {
		if Stage(s) == st {
			return true
		}
	}
	return false
}
