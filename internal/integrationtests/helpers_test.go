package integrationtests

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
	"github.com/specialistvlad/stmtreactor/internal/testutil"
)

var modA = stmtid.NewModule("urn:test:a", "")

// onlyModel returns the single model of a non-isolated run.
func onlyModel(t *testing.T, r *testutil.HarnessResult) *model.Model {
	t.Helper()
	models := r.App.Models()
	require.Len(t, models, 1)
	return models[0]
}

func schemaNode(t *testing.T, m *model.Model, mod stmtid.Module, locals ...string) *model.Effective {
	t.Helper()
	e, ok := m.FindSchema(stmtid.PathIn(mod, locals...))
	require.True(t, ok, "no schema node at %v", locals)
	return e
}

// summarize lists every module and schema node of m with its position
// relative to the document's directory, so runs in different temporary
// directories compare equal.
func summarize(m *model.Model) []string {
	var out []string
	for _, mod := range m.Modules() {
		out = append(out, fmt.Sprintf("module %s %s", mod.Source, mod.Identity))
	}
	for _, p := range m.SchemaPaths() {
		e, _ := m.FindSchema(p)
		line := fmt.Sprintf("%s %s %q %s:%d:%d", p, e.Keyword, e.ArgumentString(), filepath.Base(e.Ref.File), e.Ref.Line, e.Ref.Column)
		if typ, ok := e.Find(stmtid.Builtin("type")); ok {
			line += fmt.Sprintf(" type=%v", typ.Value)
		}
		out = append(out, line)
	}
	return out
}
