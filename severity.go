package rpminspect

import "fmt"

// Severity classifies a [Result].
//
// OK, Info, Verify, and Bad form a total order used for the run's watermark
// and for threshold comparisons. Skip and Diagnostic are orthogonal: Skip
// records that an inspection did not run at all (for example, a
// single-build-only inspection given only one build), and Diagnostic
// records an inspection-internal problem (a missing helper binary,
// malformed input) that is always emitted and never suppressed.
type Severity uint

const (
	Unset Severity = iota
	OK
	Info
	Verify
	Bad
	Skip
	Diagnostic
)

func (s Severity) String() string {
	switch s {
	case Unset:
		return "unset"
	case OK:
		return "OK"
	case Info:
		return "INFO"
	case Verify:
		return "VERIFY"
	case Bad:
		return "BAD"
	case Skip:
		return "SKIP"
	case Diagnostic:
		return "DIAGNOSTIC"
	default:
		return fmt.Sprintf("Severity(%d)", uint(s))
	}
}

// Ranked reports whether the severity participates in the OK<Info<Verify<Bad
// total order used by the watermark and threshold comparisons.
func (s Severity) Ranked() bool {
	switch s {
	case OK, Info, Verify, Bad:
		return true
	default:
		return false
	}
}

// Worse reports whether "s" should replace "watermark" as the run's worst
// severity seen so far. Skip and Diagnostic never move the watermark.
func (s Severity) Worse(watermark Severity) bool {
	return s.Ranked() && s > watermark
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "unset":
		*s = Unset
	case "OK":
		*s = OK
	case "INFO":
		*s = Info
	case "VERIFY":
		*s = Verify
	case "BAD":
		*s = Bad
	case "SKIP":
		*s = Skip
	case "DIAGNOSTIC":
		*s = Diagnostic
	default:
		return fmt.Errorf("rpminspect: unknown severity %q", string(b))
	}
	return nil
}

// WaiverAuthority names who may waive a [Result].
type WaiverAuthority uint

const (
	NotWaivable WaiverAuthority = iota
	Anyone
	Security
)

func (w WaiverAuthority) String() string {
	switch w {
	case NotWaivable:
		return "not-waivable"
	case Anyone:
		return "anyone"
	case Security:
		return "security"
	default:
		return fmt.Sprintf("WaiverAuthority(%d)", uint(w))
	}
}
