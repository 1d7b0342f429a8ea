// Package introspect renders canonical textual descriptions of a
// database's schema and constraints for inspection tooling. The engine
// itself is schemaless at the block layer; "schema" here is the set of
// document shapes a verifier (package verify) has been configured to
// enforce, which is the only structure the engine is in a position to
// describe.
package introspect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hyperpolymath/lithoglyph/internal/engine/verify"
)

// Schema returns a canonical, sorted textual listing of every proof type
// registered with reg, one per line: "<proof_type>".
func Schema(reg *verify.Registry) string {
	names := reg.Names()
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s\n", name)
	}
	return b.String()
}

// Constraints returns a canonical description of the invariants each
// registered verifier enforces, derived from its Describe method.
func Constraints(reg *verify.Registry) string {
	names := reg.Names()
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\n", name, reg.Describe(name))
	}
	return b.String()
}
