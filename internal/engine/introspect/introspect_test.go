package introspect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperpolymath/lithoglyph/internal/engine/verify"
)

func TestSchemaListsRegisteredProofTypesSorted(t *testing.T) {
	r := verify.NewRegistry()
	verify.InitBuiltins(r)

	out := Schema(r)
	require.Equal(t, "denormalization\nfd-holds\nnormalization\n", out)
}

func TestConstraintsIncludesDescriptions(t *testing.T) {
	r := verify.NewRegistry()
	verify.InitBuiltins(r)

	out := Constraints(r)
	require.Contains(t, out, "fd-holds: payload is non-empty and valid UTF-8")
}
