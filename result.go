package rpminspect

// Result is one finding emitted by an inspection.
//
// Results are appended to a [RunCtx] in the order inspections run; that
// order is preserved through to the renderer. [RunCtx.AddResult] is the
// aggregator that owns this invariant.
type Result struct {
	Severity    Severity
	WaiverAuth  WaiverAuthority
	Inspection  string
	Message     string
	Details     any
	Remedy      string
	Verb        string
	Noun        string
	Arch        string
	File        string
}

// Params is the input to adding a [Result]; see [RunCtx.AddResult].
type Params struct {
	Severity   Severity
	WaiverAuth WaiverAuthority
	Inspection string
	Message    string
	Details    any
	Remedy     string
	Verb       string
	Noun       string
	Arch       string
	File       string
}
