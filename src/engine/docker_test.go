package engine

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildArgsOrdering(t *testing.T) {
	spec := BuildSpec{
		Dockerfile: "Dockerfile",
		Context:    "packages",
		Target:     "netsim",
		Tags:       []string{"nso/netsim-ios-1.0:6.2.9"},
		BuildArgs: map[string]string{
			"NSO_IMAGE": "nso/base:6.2",
			"NED_ID":    "ios-1.0",
		},
		CacheFrom: []string{"nso/netsim-ios-1.0:6.2"},
	}

	want := []string{
		"build",
		"--file", "Dockerfile",
		"--target", "netsim",
		"--build-arg", "NED_ID=ios-1.0",
		"--build-arg", "NSO_IMAGE=nso/base:6.2",
		"--cache-from", "nso/netsim-ios-1.0:6.2",
		"--tag", "nso/netsim-ios-1.0:6.2.9",
		"packages",
	}
	if got := buildArgs(spec); !reflect.DeepEqual(got, want) {
		t.Errorf("buildArgs =\n  %v\nwant\n  %v", got, want)
	}
}

func TestBuildArgsDefaultContext(t *testing.T) {
	got := buildArgs(BuildSpec{Tags: []string{"x:1"}})
	if got[len(got)-1] != "." {
		t.Errorf("context = %q, want .", got[len(got)-1])
	}
}

func TestExternalToolErrorMessage(t *testing.T) {
	err := &ExternalToolError{
		Op:     "push",
		Ref:    "nso/package:6.2.9",
		Output: "preparing layers\ndenied: requested access to the resource is denied\n",
		Err:    errExit1(),
	}
	msg := err.Error()
	if want := "denied: requested access"; !strings.Contains(msg, want) {
		t.Errorf("Error() = %q, want the tool's last stderr line", msg)
	}
	if !strings.Contains(msg, "push nso/package:6.2.9") {
		t.Errorf("Error() = %q, want op and ref named", msg)
	}
}

func errExit1() error { return errConst("exit status 1") }

type errConst string

func (e errConst) Error() string { return string(e) }
