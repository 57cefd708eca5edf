package inspections

import (
	"context"

	"github.com/rpminspect/rpminspect"
	"github.com/rpminspect/rpminspect/inspect"
)

// notImplemented returns a driver that always emits a single Skip result
// naming "name". It exists so --list-inspections reflects the full closed
// set of registry names even for inspections this module hasn't grown a
// real driver for yet.
func notImplemented(name string) inspect.Driver {
	return func(ctx context.Context, rc *rpminspect.RunCtx) (bool, error) {
		rc.AddResult(rpminspect.Params{
			Severity:   rpminspect.Skip,
			Inspection: name,
			Message:    name + ": not implemented",
		})
		return true, nil
	}
}
