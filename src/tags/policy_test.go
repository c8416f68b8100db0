package tags

import (
	"reflect"
	"testing"
)

func TestResolveGating(t *testing.T) {
	cases := []struct {
		name string
		p    Policy
		want []string
	}{
		{
			name: "local build always floats",
			p:    Policy{DockerTag: "6.2.9", MajorMinor: "6.2", CI: false, TipOfTrain: false},
			want: []string{"6.2.9", "6.2"},
		},
		{
			name: "ci tip of train floats",
			p:    Policy{DockerTag: "6.2.9", MajorMinor: "6.2", CI: true, TipOfTrain: true},
			want: []string{"6.2.9", "6.2"},
		},
		{
			name: "ci off-tip never floats",
			p:    Policy{DockerTag: "6.2.3", MajorMinor: "6.2", CI: true, TipOfTrain: false},
			want: []string{"6.2.3"},
		},
		{
			name: "empty major minor disables floating",
			p:    Policy{DockerTag: "latest", CI: false},
			want: []string{"latest"},
		},
		{
			name: "floating equal to primary is dropped",
			p:    Policy{DockerTag: "6.2", MajorMinor: "6.2", CI: false},
			want: []string{"6.2"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.p.Resolve().All()
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Resolve().All() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestResolveIsStable(t *testing.T) {
	p := Policy{DockerTag: "1.2.3", MajorMinor: "1.2", CI: true, TipOfTrain: true}
	first := p.Resolve()
	for i := 0; i < 10; i++ {
		if got := p.Resolve(); !reflect.DeepEqual(got, first) {
			t.Fatalf("Resolve not stable: %v != %v", got, first)
		}
	}
	if first.Primary != "1.2.3" {
		t.Errorf("primary = %q, want 1.2.3 first", first.Primary)
	}
}
