// Command rpminspect runs the inspection battery against a single build,
// or diffs two builds, and renders the accumulated results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/quay/zlog"
	"github.com/rs/zerolog"

	"github.com/rpminspect/rpminspect"
	"github.com/rpminspect/rpminspect/acquire"
	"github.com/rpminspect/rpminspect/config"
	"github.com/rpminspect/rpminspect/inspect"
	"github.com/rpminspect/rpminspect/inspections"
	"github.com/rpminspect/rpminspect/peer"
	"github.com/rpminspect/rpminspect/pkg/tmp"
	"github.com/rpminspect/rpminspect/report"
)

// Exit codes, per §6: 0 is reserved for "worst severity below threshold".
const (
	exitInspectionFailure = 1 // RI_INSPECTION_FAILURE: a result at or above --threshold was emitted
	exitProgramError      = 2 // RI_PROGRAM_ERROR: bad config, unreadable build, or another framework error
)

func main() {
	os.Exit(run(os.Args[1:]))
}

type options struct {
	configPath     string
	profile        string
	workdir        string
	arches         string
	tests          string
	exclude        string
	threshold      string
	output         string
	format         string
	keep           bool
	verbose        bool
	fetchOnly      bool
	listProfiles   bool
	listInspections bool
}

func run(args []string) int {
	var opt options
	fs := flag.NewFlagSet("rpminspect", flag.ContinueOnError)
	fs.StringVar(&opt.configPath, "config", "", "path to the primary configuration document")
	fs.StringVar(&opt.profile, "profile", "", "named profile document to overlay on the primary config")
	fs.StringVar(&opt.workdir, "workdir", "", "directory to extract builds under (overrides common.workdir)")
	fs.StringVar(&opt.arches, "arches", "all", "comma-separated architecture allowlist, or \"all\"")
	fs.StringVar(&opt.tests, "tests", "", "comma-separated inspection names to run; empty means all enabled")
	fs.StringVar(&opt.exclude, "exclude", "", "comma-separated inspection names to skip")
	fs.StringVar(&opt.threshold, "threshold", "VERIFY", "minimum severity that fails the run")
	fs.StringVar(&opt.output, "output", "", "file to write the report to (default: stdout)")
	fs.StringVar(&opt.format, "format", "text", "text, json, xml, yaml, markdown, or summary")
	fs.BoolVar(&opt.keep, "keep", false, "retain the extraction workdir on exit")
	fs.BoolVar(&opt.verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&opt.fetchOnly, "fetch-only", false, "acquire builds and exit without running inspections")
	fs.BoolVar(&opt.listProfiles, "list-profiles", false, "list available profiles and exit")
	fs.BoolVar(&opt.listInspections, "list-inspections", false, "list every registered inspection and exit")
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [options] [before] after\n\n", fs.Name())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitProgramError
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger()
	if opt.verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}
	zlog.Set(&log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		cancel()
	}()

	registry := inspections.NewRegistry()

	if opt.listInspections {
		for _, n := range registry.Names() {
			fmt.Println(n)
		}
		return 0
	}

	if opt.listProfiles {
		return listProfiles(opt)
	}

	cfg, err := loadConfig(ctx, opt)
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return exitProgramError
	}

	positional := fs.Args()
	var beforeSpec, afterSpec string
	switch len(positional) {
	case 1:
		afterSpec = positional[0]
	case 2:
		beforeSpec, afterSpec = positional[0], positional[1]
	default:
		fs.Usage()
		return exitProgramError
	}

	workdir := cfg.Common.Workdir
	if opt.workdir != "" {
		workdir = opt.workdir
	}
	if workdir == "" {
		workdir = os.TempDir()
	}

	rc, err := buildRunCtx(ctx, cfg, registry, opt, beforeSpec, afterSpec, workdir)
	if err != nil {
		log.Error().Err(err).Msg("failed to acquire builds")
		return exitProgramError
	}
	if !opt.keep {
		defer rc.Free(ctx)
	}

	if opt.fetchOnly {
		return 0
	}

	if err := registry.Run(ctx, rc, rc.EnabledMask); err != nil {
		log.Error().Err(err).Msg("inspection run failed")
		return exitProgramError
	}

	threshold, err := parseSeverity(opt.threshold)
	if err != nil {
		log.Error().Err(err).Msg("invalid --threshold")
		return exitProgramError
	}
	rc.Threshold = threshold

	doc := report.Build(rc.Results(), rc.Worst())
	if opt.output == "" {
		if err := report.Render(os.Stdout, doc, opt.format); err != nil {
			log.Error().Err(err).Msg("failed to render report")
			return exitProgramError
		}
	} else {
		scratch, err := tmp.New(opt.output)
		if err != nil {
			log.Error().Err(err).Msg("failed to open --output")
			return exitProgramError
		}
		defer scratch.Close()
		if err := report.Render(scratch, doc, opt.format); err != nil {
			log.Error().Err(err).Msg("failed to render report")
			return exitProgramError
		}
		if err := scratch.Commit(opt.output); err != nil {
			log.Error().Err(err).Msg("failed to publish --output")
			return exitProgramError
		}
	}

	if rc.Worst().Ranked() && rc.Worst() >= threshold {
		return exitInspectionFailure
	}
	return 0
}

func loadConfig(ctx context.Context, opt options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opt.configPath != "" {
		cfg, err = config.Load(ctx, opt.configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = &config.Config{}
	}
	if opt.profile != "" {
		profileDir := cfg.Common.Profiledir
		if profileDir == "" {
			profileDir = "."
		}
		if err := config.Overlay(ctx, cfg, filepath.Join(profileDir, opt.profile+".yaml")); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func listProfiles(opt options) int {
	cfg, err := loadConfig(context.Background(), options{configPath: opt.configPath})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitProgramError
	}
	dir := cfg.Common.Profiledir
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitProgramError
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			fmt.Println(strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	return 0
}

// buildRunCtx acquires and extracts the before/after builds, peers their
// packages and files, resolves the product release and vendor data tree,
// and assembles the [rpminspect.RunCtx] an inspection run operates on.
func buildRunCtx(ctx context.Context, cfg *config.Config, registry *inspect.Registry, opt options, beforeSpec, afterSpec, workdir string) (*rpminspect.RunCtx, error) {
	rc := rpminspect.NewRunCtx(beforeSpec, afterSpec)
	rc.Options = cfg
	rc.GlobalIgnore = cfg.Ignore
	rc.ToolPaths = cfg.Commands
	rc.Arches = splitCSV(opt.arches)

	afterPkgs, err := acquireBuild(ctx, afterSpec, workdir, rc.Arches)
	if err != nil {
		return nil, fmt.Errorf("acquiring after-build %q: %w", afterSpec, err)
	}
	var beforePkgs []*rpminspect.Pkg
	if beforeSpec != "" {
		beforePkgs, err = acquireBuild(ctx, beforeSpec, workdir, rc.Arches)
		if err != nil {
			return nil, fmt.Errorf("acquiring before-build %q: %w", beforeSpec, err)
		}
	}

	rc.Peers = peer.Packages(beforePkgs, afterPkgs)
	for _, p := range rc.Peers {
		peer.Files(p)
	}

	if len(afterPkgs) > 0 {
		release := afterPkgs[0].Release
		if product, err := config.ResolveProduct(cfg, release); err == nil {
			rc.Product = product
		}
	}
	if cfg.Vendor.VendorDataDir != "" && rc.Product != "" {
		vd, err := config.LoadVendorData(ctx, cfg.Vendor.VendorDataDir, rc.Product)
		if err != nil {
			return nil, fmt.Errorf("loading vendor data: %w", err)
		}
		cfg.VendorData = vd
		rc.VendorData = vd
	}

	rc.PerInspectionIgnore = perInspectionIgnore(cfg)
	rc.EnabledMask = enabledMask(registry, cfg, opt)
	return rc, nil
}

func acquireBuild(ctx context.Context, spec, workdir string, arches []string) ([]*rpminspect.Pkg, error) {
	files, _, err := acquire.LocalDirSource{}.Resolve(ctx, spec)
	if err != nil {
		return nil, err
	}
	files, err = acquire.FilterArches(ctx, files, arches)
	if err != nil {
		return nil, err
	}
	pkgs := make([]*rpminspect.Pkg, 0, len(files))
	for _, f := range files {
		p, err := acquire.Open(ctx, f)
		if err != nil {
			return nil, err
		}
		if err := acquire.Extract(ctx, p, workdir); err != nil {
			return nil, err
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}

// perInspectionIgnore gathers every config section's "ignore" sub-sequence,
// keyed by the canonical registry inspection name it configures.
func perInspectionIgnore(cfg *config.Config) map[string][]string {
	out := make(map[string][]string)
	add := func(name string, ignore []string) {
		if len(ignore) > 0 {
			out[inspect.Canonicalize(name)] = ignore
		}
	}
	add("metadata", cfg.Metadata.Ignore)
	add("elf", cfg.Elf.Ignore)
	add("manpage", cfg.Manpage.Ignore)
	add("xml", cfg.XML.Ignore)
	add("desktop", cfg.Desktop.Ignore)
	add("changedfiles", cfg.ChangedFiles.Ignore)
	add("addedfiles", cfg.AddedFiles.Ignore)
	add("ownership", cfg.Ownership.Ignore)
	add("shellsyntax", cfg.ShellSyntax.Ignore)
	add("filesize", cfg.FileSize.Ignore)
	add("lto", cfg.LTO.Ignore)
	add("specname", cfg.SpecName.Ignore)
	add("annocheck", cfg.AnnoCheck.Ignore)
	add("javabytecode", cfg.JavaByteCode.Ignore)
	add("pathmigration", cfg.PathMigration.Ignore)
	add("files", cfg.Files.Ignore)
	add("abidiff", cfg.Abidiff.Ignore)
	add("kmidiff", cfg.Kmidiff.Ignore)
	add("patches", cfg.Patches.Ignore)
	add("badfuncs", cfg.BadFuncs.Ignore)
	add("runpath", cfg.RunPath.Ignore)
	add("emptyrpm", cfg.EmptyRPM.Ignore)
	add("types", cfg.Types.Ignore)
	return out
}

func enabledMask(registry *inspect.Registry, cfg *config.Config, opt options) uint64 {
	enabled := make(map[string]bool, len(cfg.Inspections))
	for k, v := range cfg.Inspections {
		enabled[k] = v
	}
	if csv := splitCSV(opt.tests); len(csv) > 0 {
		names := make(map[string]bool, len(csv))
		for _, n := range csv {
			names[n] = true
		}
		for _, n := range registry.Names() {
			enabled[n] = names[n]
		}
	}
	for _, n := range splitCSV(opt.exclude) {
		enabled[n] = false
	}
	return registry.Mask(enabled, false)
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseSeverity(s string) (rpminspect.Severity, error) {
	var sev rpminspect.Severity
	if err := sev.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		if n, nerr := strconv.Atoi(s); nerr == nil {
			return rpminspect.Severity(n), nil
		}
		return 0, err
	}
	return sev, nil
}
