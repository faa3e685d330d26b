package namespace

import "sync"

// Named fault-injection points, grounded on spec.md §9: "model as a process-wide toggle map
// keyed by name." Two points are named in the spec; both are consulted inline at the point
// they're meaningful rather than threaded through every call signature.
const (
	FaultWriteConflictInCopyToTmp         = "writeConflictInRenameCollCopyToTmp"
	FaultUseRenamePathThroughConfigServer = "useRenameCollectionPathThroughConfigsvr"
)

var (
	faultMu      sync.Mutex
	faultEnabled = map[string]bool{}
)

// SetFault enables or disables a named fault-injection point, for tests exercising spec.md §8
// scenario 5 ("copy interrupted by write conflict at batch boundary").
func SetFault(name string, enabled bool) {
	faultMu.Lock()
	defer faultMu.Unlock()
	faultEnabled[name] = enabled
}

func faultActive(name string) bool {
	faultMu.Lock()
	defer faultMu.Unlock()
	return faultEnabled[name]
}

// ConsumeFault reports whether the named fault is active and, if so, disables it -- a
// fault fires once per activation, matching how a test would force exactly one induced
// conflict at a specific batch boundary.
func ConsumeFault(name string) bool {
	faultMu.Lock()
	defer faultMu.Unlock()
	if faultEnabled[name] {
		faultEnabled[name] = false
		return true
	}
	return false
}
