package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeYAML(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	p := writeYAML(t, dir, "rpminspect.yaml", `
common:
  workdir: /var/tmp/work
vendor:
  vendor_data_dir: /usr/share/rpminspect/data
inspections:
  elf: true
  metadata: false
elf:
  include_path: '\.so'
badwords:
  - badword1
  - badword2
not_a_real_section:
  foo: bar
`)
	cfg, err := Load(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Common.Workdir != "/var/tmp/work" {
		t.Errorf("Common.Workdir = %q", cfg.Common.Workdir)
	}
	if cfg.Vendor.VendorDataDir != "/usr/share/rpminspect/data" {
		t.Errorf("Vendor.VendorDataDir = %q", cfg.Vendor.VendorDataDir)
	}
	if !cfg.Inspections["elf"] || cfg.Inspections["metadata"] {
		t.Errorf("unexpected Inspections: %+v", cfg.Inspections)
	}
	if cfg.Elf.IncludePath != `\.so` {
		t.Errorf("Elf.IncludePath = %q", cfg.Elf.IncludePath)
	}
	if len(cfg.Badwords) != 2 {
		t.Errorf("Badwords = %v", cfg.Badwords)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	if _, err := Load(context.Background(), "/nonexistent/rpminspect.yaml"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestOverlayMergesKeyByKey(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	base := writeYAML(t, dir, "rpminspect.yaml", `
inspections:
  elf: true
  metadata: true
common:
  workdir: /base/work
  profiledir: /base/profiles
`)
	profile := writeYAML(t, dir, "strict.yaml", `
inspections:
  metadata: false
common:
  workdir: /override/work
`)

	cfg, err := Load(context.Background(), base)
	if err != nil {
		t.Fatal(err)
	}
	if err := Overlay(context.Background(), cfg, profile); err != nil {
		t.Fatal(err)
	}

	if !cfg.Inspections["elf"] {
		t.Error("expected the profile overlay to leave unmentioned keys alone")
	}
	if cfg.Inspections["metadata"] {
		t.Error("expected the profile overlay to override the metadata key")
	}
	if cfg.Common.Workdir != "/override/work" {
		t.Errorf("Common.Workdir = %q, want override", cfg.Common.Workdir)
	}
	if cfg.Common.Profiledir != "/base/profiles" {
		t.Errorf("Common.Profiledir = %q, want it preserved from the base document", cfg.Common.Profiledir)
	}
}

func TestFileSizeSectionThreshold(t *testing.T) {
	t.Parallel()
	tt := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"info", -1, false},
		{"info-only", -1, false},
		{"info_only", -1, false},
		{"1048576", 1048576, false},
		{"not-a-number", 0, true},
	}
	for _, tc := range tt {
		s := FileSizeSection{SizeThresholdRaw: tc.raw}
		got, err := s.Threshold()
		if (err != nil) != tc.wantErr {
			t.Errorf("Threshold(%q) error = %v, wantErr %v", tc.raw, err, tc.wantErr)
			continue
		}
		if err == nil && got != tc.want {
			t.Errorf("Threshold(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
