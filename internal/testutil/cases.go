package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stmtreactor/internal/app"
)

// ModelTestCase defines a single scenario run through the whole application.
type ModelTestCase struct {
	Name string
	// Files are written as in RunIntegrationTest. Contents may be indented.
	Files     map[string]string
	Configure func(*app.Config)
	// ErrContains, when set, is a substring the run error must contain.
	ErrContains string
	// Validate performs assertions on a successful run. It is only called if
	// ErrContains is empty.
	Validate func(t *testing.T, r *HarnessResult)
}

// RunModelTests runs a table of application scenarios.
func RunModelTests(t *testing.T, cases []ModelTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			result := RunIntegrationTest(t, tc.Files, tc.Configure)

			if tc.ErrContains != "" {
				require.Error(t, result.Err, "expected the run to fail, but it succeeded")
				require.Contains(t, result.Err.Error(), tc.ErrContains, "error message did not contain the expected text")
				return
			}

			require.NoError(t, result.Err, "expected a successful run")
			if tc.Validate != nil {
				tc.Validate(t, result)
			}
		})
	}
}

// Unindent removes common leading whitespace from a multi-line string,
// allowing readable, indented documents in Go tests.
func Unindent(s string) string {
	lines := strings.Split(s, "\n")
	if strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return strings.Join(lines, "\n") + "\n"
	}

	var b strings.Builder
	for _, line := range lines {
		if len(line) >= minIndent {
			b.WriteString(line[minIndent:])
		} else {
			b.WriteString(strings.TrimSpace(line))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
