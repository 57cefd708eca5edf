// Package config loads rpminspect's nested configuration documents and
// overlays named profile documents on top, producing the option tree a
// [RunCtx] is built from.
//
// The document grammar is a closed set of top-level sections; unknown
// sections are logged and ignored rather than rejected. Unknown keys within
// a known section are dropped by the decoder without a warning.
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/quay/zlog"
	"gopkg.in/yaml.v3"
)

// Config is the fully parsed, profile-overlaid configuration document.
type Config struct {
	Common              Common                  `yaml:"common"`
	Koji                Koji                    `yaml:"koji"`
	Commands            map[string]string       `yaml:"commands"`
	Vendor              Vendor                  `yaml:"vendor"`
	Inspections         map[string]bool         `yaml:"inspections"`
	Products            map[string]string        `yaml:"products"`
	Ignore              []string                `yaml:"ignore"`
	SecurityPathPrefix  []string                `yaml:"security_path_prefix"`
	Badwords            []string                `yaml:"badwords"`
	Metadata            MetadataSection         `yaml:"metadata"`
	Elf                 RegexSection            `yaml:"elf"`
	Manpage             RegexSection            `yaml:"manpage"`
	XML                 RegexSection            `yaml:"xml"`
	Desktop              IgnoreSection          `yaml:"desktop"`
	ChangedFiles         IgnoreSection          `yaml:"changedfiles"`
	AddedFiles           IgnoreSection          `yaml:"addedfiles"`
	Ownership            IgnoreSection          `yaml:"ownership"`
	ShellSyntax          ShellSyntaxSection     `yaml:"shellsyntax"`
	FileSize             FileSizeSection        `yaml:"filesize"`
	LTO                  IgnoreSection          `yaml:"lto"`
	SpecName             SpecNameSection        `yaml:"specname"`
	AnnoCheck             IgnoreSection         `yaml:"annocheck"`
	JavaByteCode         IgnoreSection          `yaml:"javabytecode"`
	PathMigration        PathMigrationSection   `yaml:"pathmigration"`
	Files                IgnoreSection          `yaml:"files"`
	Abidiff              AbidiffSection         `yaml:"abidiff"`
	Kmidiff              KmidiffSection         `yaml:"kmidiff"`
	Patches              PatchesSection         `yaml:"patches"`
	BadFuncs             IgnoreSection          `yaml:"badfuncs"`
	RunPath              IgnoreSection          `yaml:"runpath"`
	EmptyRPM             IgnoreSection          `yaml:"emptyrpm"`
	Types                IgnoreSection          `yaml:"types"`

	// VendorData is the resolved vendor_data_dir tree, loaded separately
	// by [LoadVendorData] once the product release is known.
	VendorData *VendorData `yaml:"-"`
}

// Common is the "common" section.
type Common struct {
	Workdir    string `yaml:"workdir"`
	Profiledir string `yaml:"profiledir"`
}

// Koji is the "koji" section: endpoints for the external BuildSource
// collaborator. The wire protocol itself is out of scope for this module;
// this just carries the configured endpoints through.
type Koji struct {
	Hub     string `yaml:"hub"`
	Topurl  string `yaml:"topurl"`
}

// Vendor is the "vendor" section.
type Vendor struct {
	VendorDataDir string `yaml:"vendor_data_dir"`
	FavorRelease  string `yaml:"favor_release"` // none, oldest, newest
}

// IgnoreSection is the common shape of a section whose only recognized key
// is a per-inspection "ignore" sequence.
type IgnoreSection struct {
	Ignore []string `yaml:"ignore"`
}

// RegexSection is the shape shared by elf/manpage/xml: include/exclude path
// regexes plus a per-inspection ignore list.
type RegexSection struct {
	IncludePath string   `yaml:"include_path"`
	ExcludePath string   `yaml:"exclude_path"`
	Ignore      []string `yaml:"ignore"`
}

// MetadataSection is the "metadata" section.
type MetadataSection struct {
	Vendor             string   `yaml:"vendor"`
	BuildhostSubdomain []string `yaml:"buildhost_subdomain"`
	Ignore             []string `yaml:"ignore"`
}

// ShellSyntaxSection is the "shellsyntax" section.
type ShellSyntaxSection struct {
	Shells []string `yaml:"shells"`
	Ignore []string `yaml:"ignore"`
}

// FileSizeSection is the "filesize" section.
//
// The threshold decoded from SizeThresholdRaw by [FileSizeSection.Threshold]
// is either a positive byte count, or -1 when the document
// spelled "info"/"info-only"/"info_only" (report size changes
// informationally only).
type FileSizeSection struct {
	SizeThresholdRaw string   `yaml:"size_threshold"`
	Ignore           []string `yaml:"ignore"`
}

// Threshold decodes SizeThresholdRaw per §4.1: a positive integer, or -1 for
// the "info"/"info-only"/"info_only" literal.
func (s FileSizeSection) Threshold() (int64, error) {
	switch s.SizeThresholdRaw {
	case "":
		return 0, nil
	case "info", "info-only", "info_only":
		return -1, nil
	}
	var n int64
	if _, err := fmt.Sscanf(s.SizeThresholdRaw, "%d", &n); err != nil {
		return 0, fmt.Errorf("config: filesize.size_threshold: %q is not an integer or info literal", s.SizeThresholdRaw)
	}
	return n, nil
}

// SpecNameSection is the "specname" section.
type SpecNameSection struct {
	Match   string   `yaml:"match"`   // full, prefix, suffix
	Primary string   `yaml:"primary"` // name, filename
	Ignore  []string `yaml:"ignore"`
}

// PathMigrationSection is the "pathmigration" section: two disjoint
// sub-blocks.
type PathMigrationSection struct {
	MigratedPaths map[string]string `yaml:"migrated_paths"`
	ExcludedPaths []string          `yaml:"excluded_paths"`
	Ignore        []string          `yaml:"ignore"`
}

// AbidiffSection is the "abidiff" section.
type AbidiffSection struct {
	SecurityLevelThreshold int      `yaml:"security_level_threshold"`
	ExtraArgs              string   `yaml:"extra_args"`
	SuppressionFile        string   `yaml:"suppression_file"`
	DebuginfoPath          string   `yaml:"debuginfo_path"`
	IncludePath            string   `yaml:"include_path"`
	Ignore                 []string `yaml:"ignore"`
}

// KmidiffSection is the "kmidiff" section.
type KmidiffSection struct {
	ExtraArgs       string   `yaml:"extra_args"`
	SuppressionFile string   `yaml:"suppression_file"`
	DebuginfoPath   string   `yaml:"debuginfo_path"`
	KabiDir         string   `yaml:"kabi_dir"`
	KabiFilename    string   `yaml:"kabi_filename"`
	Ignore          []string `yaml:"ignore"`
}

// PatchesSection is the "patches" section.
type PatchesSection struct {
	FileCountThreshold int      `yaml:"file_count_threshold"`
	LineCountThreshold int      `yaml:"line_count_threshold"`
	Ignore             []string `yaml:"ignore"`
}

// recognizedSections is the closed set of top-level section names.
var recognizedSections = map[string]struct{}{
	"common": {}, "koji": {}, "commands": {}, "vendor": {}, "inspections": {},
	"products": {}, "ignore": {}, "security_path_prefix": {}, "badwords": {},
	"metadata": {}, "elf": {}, "manpage": {}, "xml": {}, "desktop": {},
	"changedfiles": {}, "addedfiles": {}, "ownership": {}, "shellsyntax": {},
	"filesize": {}, "lto": {}, "specname": {}, "annocheck": {}, "javabytecode": {},
	"pathmigration": {}, "files": {}, "abidiff": {}, "kmidiff": {}, "patches": {},
	"badfuncs": {}, "runpath": {}, "emptyrpm": {}, "types": {},
}

// Load parses the primary configuration document at "path".
func Load(ctx context.Context, path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %q: %w", path, err)
	}
	cfg := &Config{}
	if err := decodeInto(ctx, cfg, b); err != nil {
		return nil, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// decodeInto parses "b" as a YAML document, warns about unrecognized
// top-level sections, and merges the rest into "cfg" per the overlay rules
// in §4.1 (scalars and sequences replace, mappings merge key-by-key).
func decodeInto(ctx context.Context, cfg *Config, b []byte) error {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("malformed document: %w", err)
	}
	for name, node := range raw {
		if _, ok := recognizedSections[name]; !ok {
			zlog.Warn(ctx).Str("section", name).Msg("unrecognized configuration section, ignoring")
			continue
		}
		if err := mergeSection(cfg, name, &node); err != nil {
			zlog.Warn(ctx).Err(err).Str("section", name).Msg("malformed configuration section, ignoring")
		}
	}
	return nil
}

// Overlay re-enters the parser with the same destination Config, applying
// a named profile document on top: the profile file at
// "<profiledir>/<name>.yaml" is merged per §4.1's overlay rules.
func Overlay(ctx context.Context, cfg *Config, profilePath string) error {
	b, err := os.ReadFile(profilePath)
	if err != nil {
		return fmt.Errorf("config: unable to read profile %q: %w", profilePath, err)
	}
	if err := decodeInto(ctx, cfg, b); err != nil {
		return fmt.Errorf("config: profile %q: %w", profilePath, err)
	}
	return nil
}
