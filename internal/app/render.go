package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/stmtreactor/internal/diag"
	"github.com/specialistvlad/stmtreactor/internal/model"
)

// report is the structured form of the published models.
type report struct {
	Models []modelDoc `json:"models" yaml:"models"`
}

type modelDoc struct {
	Phase   string      `json:"phase" yaml:"phase"`
	Modules []moduleDoc `json:"modules" yaml:"modules"`
	Schema  []string    `json:"schema,omitempty" yaml:"schema,omitempty"`
	Data    []string    `json:"data,omitempty" yaml:"data,omitempty"`
}

type moduleDoc struct {
	Name      string   `json:"name" yaml:"name"`
	Revision  string   `json:"revision,omitempty" yaml:"revision,omitempty"`
	Namespace string   `json:"namespace" yaml:"namespace"`
	Root      *stmtDoc `json:"root" yaml:"root"`
}

type stmtDoc struct {
	Keyword       string     `json:"keyword" yaml:"keyword"`
	Argument      string     `json:"argument,omitempty" yaml:"argument,omitempty"`
	Value         string     `json:"value,omitempty" yaml:"value,omitempty"`
	Path          string     `json:"path,omitempty" yaml:"path,omitempty"`
	From          string     `json:"from,omitempty" yaml:"from,omitempty"`
	Ref           string     `json:"ref,omitempty" yaml:"ref,omitempty"`
	Substatements []*stmtDoc `json:"substatements,omitempty" yaml:"substatements,omitempty"`
}

func newReport(models []*model.Model) report {
	var r report
	for _, m := range models {
		doc := modelDoc{Phase: m.Phase().String()}
		for _, mod := range m.Modules() {
			md := moduleDoc{
				Name:      mod.Name,
				Revision:  mod.Source.Revision,
				Namespace: mod.Identity.Namespace,
			}
			if mod.Effective != nil {
				md.Root = effectiveDoc(mod.Effective)
			} else {
				md.Root = declaredDoc(mod.Declared)
			}
			doc.Modules = append(doc.Modules, md)
		}
		for _, p := range m.SchemaPaths() {
			doc.Schema = append(doc.Schema, p.String())
		}
		for _, p := range m.DataPaths() {
			doc.Data = append(doc.Data, p.String())
		}
		r.Models = append(r.Models, doc)
	}
	return r
}

func effectiveDoc(e *model.Effective) *stmtDoc {
	d := &stmtDoc{
		Keyword:  e.Keyword.String(),
		Argument: formatValue(e.Argument),
		Value:    formatValue(e.Value),
		Ref:      e.Ref.String(),
	}
	if d.Value == d.Argument {
		d.Value = ""
	}
	if len(e.Path) > 0 {
		d.Path = e.Path.String()
	}
	if in := e.Instantiation; in != nil {
		d.From = fmt.Sprintf("%s at %s", in.Kind, in.Ref)
	}
	for _, s := range e.Substatements {
		d.Substatements = append(d.Substatements, effectiveDoc(s))
	}
	return d
}

func declaredDoc(decl *model.Declared) *stmtDoc {
	d := &stmtDoc{
		Keyword:  decl.Keyword.String(),
		Argument: decl.RawArgument,
		Ref:      decl.Ref.String(),
	}
	for _, s := range decl.Substatements {
		d.Substatements = append(d.Substatements, declaredDoc(s))
	}
	return d
}

// formatValue renders an argument or computed value for display.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case cty.Value:
		if v.IsNull() || !v.IsKnown() {
			return ""
		}
		s, err := convert.Convert(v, cty.String)
		if err != nil {
			return v.GoString()
		}
		return s.AsString()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func (a *App) render(models []*model.Model) error {
	r := newReport(models)
	switch a.config.Output {
	case OutputJSON:
		enc := json.NewEncoder(a.outW)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case OutputYAML:
		enc := yaml.NewEncoder(a.outW)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderText(a.outW, r)
	}
}

func renderText(w io.Writer, r report) error {
	header := color.New(color.Bold)
	for i, m := range r.Models {
		if i > 0 {
			fmt.Fprintln(w)
		}
		for _, mod := range m.Modules {
			id := mod.Name
			if mod.Revision != "" {
				id += "@" + mod.Revision
			}
			header.Fprintf(w, "%s (%s, %s)\n", id, mod.Namespace, m.Phase)
			writeStatement(w, mod.Root, 1)
		}
		if len(m.Schema) > 0 {
			header.Fprintln(w, "schema tree:")
			for _, p := range m.Schema {
				fmt.Fprintf(w, "  %s\n", p)
			}
		}
		if len(m.Data) > 0 {
			header.Fprintln(w, "data tree:")
			for _, p := range m.Data {
				fmt.Fprintf(w, "  %s\n", p)
			}
		}
	}
	return nil
}

func writeStatement(w io.Writer, d *stmtDoc, depth int) {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(d.Keyword)
	if d.Argument != "" {
		fmt.Fprintf(&sb, " %q", d.Argument)
	}
	if d.Value != "" {
		fmt.Fprintf(&sb, " => %s", d.Value)
	}
	if d.From != "" {
		fmt.Fprintf(&sb, " (%s)", d.From)
	}
	fmt.Fprintln(w, sb.String())
	for _, s := range d.Substatements {
		writeStatement(w, s, depth+1)
	}
}

// renderError writes a failed build as a diagnostic in text mode.
// Structured output modes leave error reporting to the caller.
func (a *App) renderError(err error) {
	if a.config.Output != OutputText {
		return
	}
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)

	ue, ok := diag.AsUnresolved(err)
	if !ok {
		red.Fprint(a.outW, "error: ")
		fmt.Fprintln(a.outW, err)
		return
	}
	red.Fprintf(a.outW, "error: %d unresolved obligation(s)\n", len(ue.Obligations))
	for _, o := range ue.Obligations {
		fmt.Fprintf(a.outW, "  %s\n", o)
	}
	if len(ue.Excluded) > 0 {
		yellow.Fprintf(a.outW, "%d excluded statement(s)\n", len(ue.Excluded))
		for _, x := range ue.Excluded {
			fmt.Fprintf(a.outW, "  %s\n", x)
		}
	}
}
