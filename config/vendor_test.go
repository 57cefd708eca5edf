package config

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestParseMode10(t *testing.T) {
	t.Parallel()
	tt := []struct {
		in   string
		want fs.FileMode
	}{
		{"-rw-r--r--", 0644},
		{"drwxr-xr-x", fs.ModeDir | 0755},
		{"lrwxrwxrwx", fs.ModeSymlink | 0777},
		{"-rwsr-xr-x", fs.ModeSetuid | 0755},
		{"-rwxr-sr-x", fs.ModeSetgid | 0755},
		{"-rwxr-xr-t", fs.ModeSticky | 0755},
		{"-rwSr--r--", fs.ModeSetuid | 0644},
	}
	for _, tc := range tt {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseMode10(tc.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("parseMode10(%q) = %#o, want %#o", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseMode10Errors(t *testing.T) {
	t.Parallel()
	if _, err := parseMode10("short"); err == nil {
		t.Error("expected an error for a too-short mode string")
	}
	if _, err := parseMode10("?rwxr-xr-x"); err == nil {
		t.Error("expected an error for an unrecognized type character")
	}
	if _, err := parseMode10("-rwxrqxr-x"); err == nil {
		t.Error("expected an error for an unrecognized permission character")
	}
}

func TestLoadVendorData(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeVendorFile(t, dir, "fileinfo", "fc40", "-rw-r--r-- root root /etc/foo.conf\n")
	writeVendorFile(t, dir, "capabilities", "fc40", "foo /usr/bin/foo cap_net_bind_service=ep\n")
	writeVendorFile(t, dir, "rebaseable", "fc40", "foo\nbar\n")
	writeVendorFile(t, dir, "politics", "fc40", "*.so.* abcdef allow\n")
	writeVendorFile(t, dir, "security", "fc40", "/usr/bin/foo foo 1.0 1.fc40 caps=verify,relro=fail\n")

	if err := os.MkdirAll(filepath.Join(dir, "licenses"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "licenses", "fc40"), []byte("MIT\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	vd, err := LoadVendorData(context.Background(), dir, "fc40")
	if err != nil {
		t.Fatal(err)
	}

	if len(vd.FileInfo) != 1 || vd.FileInfo[0].Path != "/etc/foo.conf" {
		t.Errorf("unexpected FileInfo: %+v", vd.FileInfo)
	}
	if len(vd.Capabilities["foo"]) != 1 {
		t.Errorf("unexpected Capabilities: %+v", vd.Capabilities)
	}
	if !vd.Rebaseable["foo"] || !vd.Rebaseable["bar"] {
		t.Errorf("unexpected Rebaseable: %+v", vd.Rebaseable)
	}
	if len(vd.Politics) != 1 || !vd.Politics[0].Allow {
		t.Errorf("unexpected Politics: %+v", vd.Politics)
	}
	if len(vd.Security) != 1 || vd.Security[0].Rules[SecurityCaps] != ActionVerify {
		t.Errorf("unexpected Security: %+v", vd.Security)
	}
	if vd.LicenseDBPath == "" {
		t.Error("expected a resolved license db path")
	}
}

func TestLoadVendorDataMissingFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	vd, err := LoadVendorData(context.Background(), dir, "fc40")
	if err != nil {
		t.Fatal(err)
	}
	if len(vd.FileInfo) != 0 || len(vd.Capabilities) != 0 || len(vd.Rebaseable) != 0 {
		t.Errorf("expected an empty VendorData for a tree with no files, got %+v", vd)
	}
}

func writeVendorFile(t *testing.T, root, subdir, productRelease, content string) {
	t.Helper()
	dir := filepath.Join(root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, productRelease), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
