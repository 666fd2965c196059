package platform

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	target, err := Parse("linux/amd64")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if target.OS != "linux" || target.Architecture != "amd64" {
		t.Fatalf("target = %+v, want linux/amd64", target)
	}
	if target.Variant != "" {
		t.Fatalf("variant = %q, want empty", target.Variant)
	}
}

func TestParseNormalizesAliases(t *testing.T) {
	target, err := Parse("linux/aarch64")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if target.Architecture != "arm64" {
		t.Fatalf("architecture = %q, want arm64", target.Architecture)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse("not a platform!"); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("err = %v, want ErrInvalidTarget", err)
	}
}

func TestParseAllPreservesOrder(t *testing.T) {
	targets, err := ParseAll([]string{"linux/arm64", "linux/amd64"})
	if err != nil {
		t.Fatalf("ParseAll failed: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("len = %d, want 2", len(targets))
	}
	if targets[0].Architecture != "arm64" || targets[1].Architecture != "amd64" {
		t.Fatalf("targets = %v, order not preserved", targets)
	}
}

func TestParseAllRejectsDuplicates(t *testing.T) {
	_, err := ParseAll([]string{"linux/amd64", "linux/amd64"})
	if !errors.Is(err, ErrDuplicateTarget) {
		t.Fatalf("err = %v, want ErrDuplicateTarget", err)
	}
}

func TestParseAllRejectsNormalizedDuplicates(t *testing.T) {
	// aarch64 normalizes to arm64, so these collide.
	_, err := ParseAll([]string{"linux/arm64", "linux/aarch64"})
	if !errors.Is(err, ErrDuplicateTarget) {
		t.Fatalf("err = %v, want ErrDuplicateTarget", err)
	}
}

func TestSlug(t *testing.T) {
	target, err := Parse("linux/amd64")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if slug := target.Slug(); slug != "linux-amd64" {
		t.Fatalf("slug = %q, want linux-amd64", slug)
	}
}

func TestOCI(t *testing.T) {
	target := Target{OS: "linux", Architecture: "arm", Variant: "v7"}
	p := target.OCI()
	if p.OS != "linux" || p.Architecture != "arm" || p.Variant != "v7" {
		t.Fatalf("OCI platform = %+v", p)
	}
}
