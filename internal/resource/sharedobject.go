package resource

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// RuntimeVersionForABICompatibility is the runtime version the shipped
// custom ops were compiled against. Hosts whose runtime version does not
// share this prefix get an advisory warning on first load.
const RuntimeVersionForABICompatibility = "2.17"

// ABIGuard owns the ABI-compatibility warning state. The mismatch warning is
// advisory only and fires at most once per guard, no matter how many shared
// objects consult it. Handles that should share the at-most-once behavior
// must share a guard.
type ABIGuard struct {
	runtimeVersion string
	once           sync.Once

	// warnFn is swappable for tests; defaults to stderr.
	warnFn func(string)
}

// NewABIGuard creates a guard for the observed host runtime version.
func NewABIGuard(runtimeVersion string) *ABIGuard {
	return &ABIGuard{
		runtimeVersion: runtimeVersion,
		warnFn: func(msg string) {
			fmt.Fprintln(os.Stderr, msg)
		},
	}
}

// DefaultGuard is the process-wide guard consulted by shared objects created
// without an explicit guard. It starts out observing the pinned compatible
// version, so it never warns until SetDefaultRuntimeVersion records the real
// host runtime version.
var DefaultGuard = NewABIGuard(RuntimeVersionForABICompatibility)

// SetDefaultRuntimeVersion replaces the process-wide default guard with one
// observing the given host runtime version. Call it once, before any shared
// object is resolved.
func SetDefaultRuntimeVersion(version string) {
	DefaultGuard = NewABIGuard(version)
}

// Compatible reports whether the host runtime version matches the pinned
// compatible version (prefix match).
func (g *ABIGuard) Compatible() bool {
	return strings.HasPrefix(g.runtimeVersion, RuntimeVersionForABICompatibility)
}

// WarnIfIncompatible emits the one-time advisory warning when the host
// runtime version does not match the pinned compatible version. It never
// blocks loading.
func (g *ABIGuard) WarnIfIncompatible() {
	if g.Compatible() {
		return
	}
	g.once.Do(func() {
		g.warnFn(fmt.Sprintf(
			"Warning: you are currently using runtime version %s while the shipped custom ops "+
				"were compiled against %s. There are no compatibility guarantees between the two "+
				"versions; loading the ops may fail with low-level errors.",
			g.runtimeVersion, RuntimeVersionForABICompatibility,
		))
	})
}

// SharedObject is a lazily-resolved handle to a compiled custom-op library.
// The path is resolved on first access and cached; the ABI guard is
// consulted before the first resolution.
type SharedObject struct {
	locator *Locator
	rel     string
	guard   *ABIGuard

	once sync.Once
	path string
	err  error
}

// NewSharedObject creates a handle for the shared object at rel (relative to
// the locator's package root). A nil guard means DefaultGuard, so handles
// created without an explicit guard still warn at most once per process;
// pass a dedicated guard to scope the warning more narrowly.
func NewSharedObject(locator *Locator, rel string, guard *ABIGuard) *SharedObject {
	return &SharedObject{locator: locator, rel: rel, guard: guard}
}

// Path resolves and returns the absolute path of the shared object.
// Resolution happens at most once; subsequent calls return the cached
// result. The ABI warning, if due, is emitted before resolving.
func (s *SharedObject) Path() (string, error) {
	s.once.Do(func() {
		guard := s.guard
		if guard == nil {
			guard = DefaultGuard
		}
		guard.WarnIfIncompatible()
		s.path, s.err = s.locator.Resolve(s.rel)
	})
	return s.path, s.err
}
