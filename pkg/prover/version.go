package prover

// version is set once at process startup (by the build, or left at its
// default for local builds) and never reassigned afterward. Every
// CoordinatorClient reads it through Version() rather than each worker
// tracking its own copy.
var version = "dev"

// Version returns the process-wide prover version string reported with
// every login.
func Version() string {
	return version
}

// SetVersion sets the process-wide version once, before any worker is
// built. Calling it after Run has started is a programming error: the
// version is meant to be a once-initialized constant, not a live value.
func SetVersion(v string) {
	version = v
}
