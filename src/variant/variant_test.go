package variant

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeVariant creates <root>/<name>/src/<marker> so discovery picks it up.
func writeVariant(t *testing.T, root, name, marker string) string {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", marker), []byte("<ned/>\n"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	return dir
}

func TestDiscoverFindsOnlyMarkedDirs(t *testing.T) {
	root := t.TempDir()
	writeVariant(t, root, "ios-1.0", DefaultMarkerFile)
	writeVariant(t, root, "junos-1.0", DefaultMarkerFile)

	// Unmarked directory and a plain file must be ignored.
	if err := os.MkdirAll(filepath.Join(root, "not-a-variant", "src"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Discover(root, "")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if want := []string{"ios-1.0", "junos-1.0"}; !reflect.DeepEqual(Names(got), want) {
		t.Errorf("Names = %v, want %v", Names(got), want)
	}
}

func TestDiscoverEmptyTreeIsNotAnError(t *testing.T) {
	got, err := Discover(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no variants, got %v", Names(got))
	}
}

func TestLatestIsVersionAware(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"ios-9.10", "ios-10.2"} {
		writeVariant(t, root, name, DefaultMarkerFile)
	}

	variants, err := Discover(root, "")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	latest, err := Latest(variants)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Name != "ios-10.2" {
		t.Errorf("latest = %s, want ios-10.2 (10.2 > 9.10 numerically)", latest.Name)
	}
}

func TestLatestAcrossFamiliesOrdersByVersionFirst(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"ios-1.0", "ios-2.0", "junos-1.0"} {
		writeVariant(t, root, name, DefaultMarkerFile)
	}

	variants, err := Discover(root, "")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(variants) != 3 {
		t.Fatalf("got %d variants, want 3", len(variants))
	}

	latest, err := Latest(variants)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Name != "ios-2.0" {
		t.Errorf("latest = %s, want ios-2.0 (highest version wins over family name)", latest.Name)
	}
}

func TestLatestEmptyReturnsNotFound(t *testing.T) {
	_, err := Latest(nil)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Latest(nil) err = %v, want *NotFoundError", err)
	}
}

func TestFindUnknownVariant(t *testing.T) {
	variants := []Variant{parseName("ios-1.0")}
	_, err := Find(variants, "nx-3.1")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Find err = %v, want *NotFoundError", err)
	}
	if nf.Name != "nx-3.1" {
		t.Errorf("NotFoundError.Name = %q, want nx-3.1", nf.Name)
	}
}

func TestParseNameWithoutVersionSuffix(t *testing.T) {
	v := parseName("netsim")
	if v.Family != "netsim" || v.Version != nil {
		t.Errorf("parseName(netsim) = %+v, want family netsim, nil version", v)
	}

	// Unversioned variants sort below versioned ones.
	if !Less(v, parseName("ios-0.1")) {
		t.Error("unversioned variant should sort below versioned")
	}
}

func TestManifestSkipAndBuildArgs(t *testing.T) {
	root := t.TempDir()
	keep := writeVariant(t, root, "ios-1.0", DefaultMarkerFile)
	skipped := writeVariant(t, root, "ios-2.0", DefaultMarkerFile)

	manifest := "display = \"Cisco IOS\"\n\n[build_args]\nNED_FLAVOR = \"classic\"\n"
	if err := os.WriteFile(filepath.Join(keep, "ned.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(skipped, "ned.toml"), []byte("skip = true\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	variants, err := Discover(root, "")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if want := []string{"ios-1.0"}; !reflect.DeepEqual(Names(variants), want) {
		t.Fatalf("Names = %v, want %v (skip = true excludes)", Names(variants), want)
	}

	m := variants[0].Manifest
	if m == nil || m.Display != "Cisco IOS" || m.BuildArgs["NED_FLAVOR"] != "classic" {
		t.Errorf("manifest = %+v, want display + build_args parsed", m)
	}
}
