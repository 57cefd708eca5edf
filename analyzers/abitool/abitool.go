// Package abitool drives the external abidiff/kmidiff comparison tools
// (§4.6): it composes a per-architecture command line from configured
// suppression/debug/header-dir arguments and decodes the tools' bitfield
// exit status into a [Status].
//
// Grounded in the Design Notes' "exit-code bitfields from external tools
// treated as booleans" re-architecture note: the source treats libabigail's
// exit code as a set of independent bits rather than a boolean, so this
// package decodes it once, at the tool boundary, into a named struct
// (ToolStatus in the spec's own terminology) instead of letting every
// caller re-derive bit masks.
package abitool

import (
	"context"
	"fmt"

	"github.com/rpminspect/rpminspect/parallel"
)

// libabigail's documented abidiff/kmidiff exit status bits.
const (
	bitError              = 1 << 0
	bitUsageError          = 1 << 1
	bitABIChange           = 1 << 2
	bitABIIncompatibleChange = 1 << 3
)

// Status decodes the tool's bitfield exit code into named booleans.
type Status struct {
	Error              bool
	UsageError         bool
	ABIChange          bool
	ABIIncompatibleChange bool
}

// Decode interprets a raw exit code per libabigail's documented bitfield.
func Decode(exitCode int) Status {
	return Status{
		Error:                 exitCode&bitError != 0,
		UsageError:            exitCode&bitUsageError != 0,
		ABIChange:             exitCode&bitABIChange != 0,
		ABIIncompatibleChange: exitCode&bitABIIncompatibleChange != 0,
	}
}

// Args are the per-architecture inputs to one abidiff/kmidiff invocation.
type Args struct {
	Tool            string // path to abidiff or kmidiff
	Arch            string
	Before, After   string // paths to the before/after binaries being compared
	SuppressionFile string
	DebuginfoPath   string
	IncludePath     string // abidiff's --headers-dir1/2
	KabiDir         string // kmidiff-only
	KabiFilename    string // kmidiff-only
	ExtraArgs       []string
}

// commandLine composes the argv for one comparison, keyed by architecture
// so a multi-arch package can run several comparisons concurrently through
// the parallel package.
func (a Args) commandLine() []string {
	var args []string
	if a.SuppressionFile != "" {
		args = append(args, "--suppressions", a.SuppressionFile)
	}
	if a.DebuginfoPath != "" {
		args = append(args, "--debug-info-dir1", a.DebuginfoPath, "--debug-info-dir2", a.DebuginfoPath)
	}
	if a.IncludePath != "" {
		args = append(args, "--headers-dir1", a.IncludePath, "--headers-dir2", a.IncludePath)
	}
	if a.KabiDir != "" {
		args = append(args, "--kmi-whitelist", a.KabiDir)
	}
	if a.KabiFilename != "" {
		args = append(args, "--vmlinux", a.KabiFilename)
	}
	args = append(args, a.ExtraArgs...)
	args = append(args, a.Before, a.After)
	return args
}

// Run executes one or more architecture-keyed comparisons through the
// bounded parallel driver, returning a decoded [Status] per architecture.
func Run(ctx context.Context, capacity int, compares []Args) (map[string]Status, map[string]string, error) {
	cmds := make([]parallel.Command, len(compares))
	for i, c := range compares {
		cmds[i] = parallel.Command{Label: c.Arch, Path: c.Tool, Args: c.commandLine()}
	}
	slots, err := parallel.Pool(ctx, capacity, cmds)
	if err != nil {
		return nil, nil, fmt.Errorf("abitool: %w", err)
	}
	statuses := make(map[string]Status, len(slots))
	outputs := make(map[string]string, len(slots))
	for _, s := range slots {
		statuses[s.Label] = Decode(s.ExitCode)
		outputs[s.Label] = string(s.Output)
	}
	return statuses, outputs, nil
}
