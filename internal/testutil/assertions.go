package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stmtreactor/internal/diag"
)

// AssertLogContains checks that the captured log output of a run contains
// every given substring.
func AssertLogContains(t *testing.T, result *HarnessResult, substrings ...string) {
	t.Helper()
	for _, s := range substrings {
		require.True(t, strings.Contains(result.LogOutput, s),
			"expected log output to contain %q", s)
	}
}

// RequireUnresolved asserts that err is an unresolved-obligation aggregate
// and returns it.
func RequireUnresolved(t *testing.T, err error) *diag.UnresolvedObligationError {
	t.Helper()
	require.Error(t, err)
	u, ok := diag.AsUnresolved(err)
	require.True(t, ok, "expected unresolved obligations, got %T: %v", err, err)
	return u
}
