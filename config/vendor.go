package config

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/quay/zlog"
)

// VendorData is the resolved tree of external data files read from
// "<vendor_data_dir>/<subdir>/<product_release>" (§4.1).
type VendorData struct {
	FileInfo     []FileInfoEntry
	Capabilities map[string][]CapabilityEntry // keyed by package name
	Rebaseable   map[string]bool              // package name set
	Politics     []PoliticsEntry
	Security     []SecurityEntry
	LicenseDBPath string // opaque to the framework; handed to the license inspection
}

// FileInfoEntry is one parsed "fileinfo" line.
type FileInfoEntry struct {
	Mode  fs.FileMode
	Owner string
	Group string
	Path  string
}

// CapabilityEntry is one parsed "capabilities" line.
type CapabilityEntry struct {
	Path         string
	Capabilities string
}

// PoliticsEntry is one parsed "politics" line.
type PoliticsEntry struct {
	Pattern string
	Digest  string
	Allow   bool
}

// SecurityRule names one of the closed set of security-file rule kinds.
type SecurityRule string

const (
	SecurityCaps           SecurityRule = "caps"
	SecurityExecstack      SecurityRule = "execstack"
	SecurityRelro          SecurityRule = "relro"
	SecurityFortifySource  SecurityRule = "fortifysource"
	SecurityPIC            SecurityRule = "pic"
	SecurityTextrel        SecurityRule = "textrel"
	SecuritySetuid         SecurityRule = "setuid"
	SecurityWorldwritable  SecurityRule = "worldwritable"
	SecurityPath           SecurityRule = "securitypath"
	SecurityModes          SecurityRule = "modes"
)

// SecurityAction is one of the closed set of security-file actions.
type SecurityAction string

const (
	ActionSkip   SecurityAction = "skip"
	ActionInform SecurityAction = "inform"
	ActionVerify SecurityAction = "verify"
	ActionFail   SecurityAction = "fail"
)

// SecurityEntry is one parsed "security" line.
type SecurityEntry struct {
	Path    string
	Pkg     string
	Version string
	Release string
	Rules   map[SecurityRule]SecurityAction
}

// LoadVendorData reads the vendor data tree rooted at "dir" for the given
// product release (e.g. "fc40", "el9"), per §4.1/§6.
func LoadVendorData(ctx context.Context, dir, productRelease string) (*VendorData, error) {
	vd := &VendorData{
		Capabilities: make(map[string][]CapabilityEntry),
		Rebaseable:   make(map[string]bool),
	}

	if err := loadLines(dir, "fileinfo", productRelease, func(line string) error {
		e, err := parseFileInfoLine(line)
		if err != nil {
			return err
		}
		vd.FileInfo = append(vd.FileInfo, e)
		return nil
	}, ctx); err != nil {
		return nil, err
	}

	if err := loadLines(dir, "capabilities", productRelease, func(line string) error {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return fmt.Errorf("capabilities: expected 3 fields, got %d", len(fields))
		}
		pkg := fields[0]
		vd.Capabilities[pkg] = append(vd.Capabilities[pkg], CapabilityEntry{
			Path:         fields[1],
			Capabilities: strings.Join(fields[2:], " "),
		})
		return nil
	}, ctx); err != nil {
		return nil, err
	}

	if err := loadLines(dir, "rebaseable", productRelease, func(line string) error {
		vd.Rebaseable[strings.TrimSpace(line)] = true
		return nil
	}, ctx); err != nil {
		return nil, err
	}

	if err := loadLines(dir, "politics", productRelease, func(line string) error {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return fmt.Errorf("politics: expected 3 fields, got %d", len(fields))
		}
		allow, err := parseAllowDeny(fields[2])
		if err != nil {
			return err
		}
		vd.Politics = append(vd.Politics, PoliticsEntry{Pattern: fields[0], Digest: fields[1], Allow: allow})
		return nil
	}, ctx); err != nil {
		return nil, err
	}

	if err := loadLines(dir, "security", productRelease, func(line string) error {
		e, err := parseSecurityLine(ctx, line)
		if err != nil {
			return err
		}
		vd.Security = append(vd.Security, e)
		return nil
	}, ctx); err != nil {
		return nil, err
	}

	if p := filepath.Join(dir, "licenses", productRelease); fileExists(p) {
		vd.LicenseDBPath = p
	}

	return vd, nil
}

func parseAllowDeny(s string) (bool, error) {
	switch s {
	case "allow":
		return true, nil
	case "deny":
		return false, nil
	default:
		return false, fmt.Errorf("politics: unrecognized action %q", s)
	}
}

func parseSecurityLine(ctx context.Context, line string) (SecurityEntry, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return SecurityEntry{}, fmt.Errorf("security: expected 5 fields, got %d", len(fields))
	}
	e := SecurityEntry{
		Path:    fields[0],
		Pkg:     fields[1],
		Version: fields[2],
		Release: fields[3],
		Rules:   make(map[SecurityRule]SecurityAction),
	}
	for _, pair := range strings.Split(fields[4], ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			zlog.Warn(ctx).Str("token", pair).Msg("security: malformed rule=action token, skipping")
			continue
		}
		rule, action := SecurityRule(kv[0]), SecurityAction(kv[1])
		if !validSecurityRule(rule) || !validSecurityAction(action) {
			zlog.Warn(ctx).Str("token", pair).Msg("security: unrecognized rule or action, skipping")
			continue
		}
		e.Rules[rule] = action
	}
	return e, nil
}

func validSecurityRule(r SecurityRule) bool {
	switch r {
	case SecurityCaps, SecurityExecstack, SecurityRelro, SecurityFortifySource,
		SecurityPIC, SecurityTextrel, SecuritySetuid, SecurityWorldwritable,
		SecurityPath, SecurityModes:
		return true
	default:
		return false
	}
}

func validSecurityAction(a SecurityAction) bool {
	switch a {
	case ActionSkip, ActionInform, ActionVerify, ActionFail:
		return true
	default:
		return false
	}
}

// parseFileInfoLine parses "<mode10><ws><owner><ws><group><ws><path>" per §6.
func parseFileInfoLine(line string) (FileInfoEntry, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return FileInfoEntry{}, fmt.Errorf("fileinfo: expected 4 fields, got %d", len(fields))
	}
	mode, err := parseMode10(fields[0])
	if err != nil {
		return FileInfoEntry{}, fmt.Errorf("fileinfo: %w", err)
	}
	return FileInfoEntry{
		Mode:  mode,
		Owner: fields[1],
		Group: fields[2],
		Path:  strings.Join(fields[3:], " "),
	}, nil
}

// parseMode10 decodes a ten-character ls -l style mode string ("-rwxr-xr-x",
// "drwxr-xr-x", "lrwxrwxrwx", ...) into POSIX mode bits.
func parseMode10(s string) (fs.FileMode, error) {
	if len(s) != 10 {
		return 0, fmt.Errorf("mode string %q is not 10 characters", s)
	}
	var mode fs.FileMode
	switch s[0] {
	case '-':
	case 'd':
		mode |= fs.ModeDir
	case 'l':
		mode |= fs.ModeSymlink
	case 'c':
		mode |= fs.ModeCharDevice | fs.ModeDevice
	case 'b':
		mode |= fs.ModeDevice
	case 's':
		mode |= fs.ModeSocket
	case 'p':
		mode |= fs.ModeNamedPipe
	case 'w':
		// Whiteout marker; there's no dedicated fs.FileMode bit for it, so
		// reuse ModeIrregular, which otherwise has no meaning in a fileinfo
		// line.
		mode |= fs.ModeIrregular
	default:
		return 0, fmt.Errorf("unrecognized file-type character %q", s[0:1])
	}

	// [1..3]: owner rwx, with 's'/'S' collapsing setuid+execute.
	if err := applyTriad(s[1:4], fs.FileMode(0400), fs.FileMode(0200), fs.FileMode(0100), fs.ModeSetuid, &mode); err != nil {
		return 0, err
	}
	// [4..6]: group rwx, with 's'/'S' collapsing setgid+execute.
	if err := applyTriad(s[4:7], fs.FileMode(0040), fs.FileMode(0020), fs.FileMode(0010), fs.ModeSetgid, &mode); err != nil {
		return 0, err
	}
	// [7..9]: other rwx, with 't'/'T' collapsing sticky+execute.
	if err := applyTriad(s[7:10], fs.FileMode(0004), fs.FileMode(0002), fs.FileMode(0001), fs.ModeSticky, &mode); err != nil {
		return 0, err
	}
	return mode, nil
}

// applyTriad decodes one "rwx"-shaped three-character group, folding a
// special execute-position character ('s'/'S' for setuid/setgid, 't'/'T'
// for sticky) into "special" in addition to the plain execute bit.
func applyTriad(triad string, r, w, x, special fs.FileMode, mode *fs.FileMode) error {
	switch triad[0] {
	case '-':
	case 'r':
		*mode |= r
	default:
		return fmt.Errorf("unrecognized permission character %q", triad[0:1])
	}
	switch triad[1] {
	case '-':
	case 'w':
		*mode |= w
	default:
		return fmt.Errorf("unrecognized permission character %q", triad[1:2])
	}
	switch triad[2] {
	case '-':
	case 'x':
		*mode |= x
	case 's', 't':
		*mode |= x | special
	case 'S', 'T':
		*mode |= special
	default:
		return fmt.Errorf("unrecognized permission character %q", triad[2:3])
	}
	return nil
}

// loadLines opens "<dir>/<subdir>/<productRelease>" if present and calls fn
// for each non-blank, non-comment line. Missing files are not an error: a
// vendor data tree need not define every subdirectory.
func loadLines(dir, subdir, productRelease string, fn func(string) error, ctx context.Context) error {
	path := filepath.Join(dir, subdir, productRelease)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: vendor data %q: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(line); err != nil {
			zlog.Warn(ctx).Err(err).Str("file", path).Int("line", lineNo).Msg("malformed vendor data line, skipping")
		}
	}
	return sc.Err()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
