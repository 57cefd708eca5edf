package rpminspect

// DepKind identifies one of RPM's eight dependency tag families.
type DepKind uint

const (
	_ DepKind = iota
	Requires
	Provides
	Conflicts
	Obsoletes
	Enhances
	Recommends
	Suggests
	Supplements
)

func (k DepKind) String() string {
	switch k {
	case Requires:
		return "Requires"
	case Provides:
		return "Provides"
	case Conflicts:
		return "Conflicts"
	case Obsoletes:
		return "Obsoletes"
	case Enhances:
		return "Enhances"
	case Recommends:
		return "Recommends"
	case Suggests:
		return "Suggests"
	case Supplements:
		return "Supplements"
	default:
		return "Unknown"
	}
}

// DepKinds is every [DepKind], in declaration order.
var DepKinds = [...]DepKind{Requires, Provides, Conflicts, Obsoletes, Enhances, Recommends, Suggests, Supplements}

// Op is a dependency version-comparison operator, decoded from RPM sense
// flags.
type Op uint

const (
	OpNone Op = iota
	OpEQ
	OpLT
	OpLE
	OpGT
	OpGE
)

func (o Op) String() string {
	switch o {
	case OpEQ:
		return "="
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpGT:
		return ">"
	case OpGE:
		return ">="
	default:
		return ""
	}
}

// DepRule is one normalized row of a package's RPM dependency metadata.
//
// Peer is symmetric: if a.Peer == b then b.Peer == a. See the deprules
// package for collection and peering.
type DepRule struct {
	Kind    DepKind
	Name    string
	Op      Op
	Version string

	Explicit bool // an explicit (spec-authored), not auto-generated, dependency
	Rich     bool // a "rich"/boolean dependency expression

	// Providers lists subpackage names, within the same build, known to
	// provide Name. Populated by cross-subpackage provider analysis and
	// only meaningful for Kind == Requires rows naming a shared-library
	// soname.
	Providers []string

	Pkg  *Pkg
	Peer *DepRule
}

// String renders the rule the way rpmdeps messages quote it, e.g.
// `Requires: libfoo.so.0()(64bit)` or `Requires: bar >= 1.0-1`.
func (r *DepRule) String() string {
	s := r.Kind.String() + ": " + r.Name
	if r.Op != OpNone {
		s += " " + r.Op.String() + " " + r.Version
	}
	return s
}
