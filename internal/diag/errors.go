package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/source"
)

// ArgumentSyntaxError reports a raw argument its statement support could not
// parse.
type ArgumentSyntaxError struct {
	Site     Site
	Keyword  string
	Argument string
	Err      error
}

func (e *ArgumentSyntaxError) Error() string {
	return fmt.Sprintf("%s: invalid argument %q to %s: %v", e.Site, e.Argument, e.Keyword, e.Err)
}
func (e *ArgumentSyntaxError) Unwrap() error { return e.Err }

// DuplicateDefinitionError reports a second binding of a namespace key within
// one scope.
type DuplicateDefinitionError struct {
	Namespace string
	Key       string
	First     Site
	Second    Site
}

func (e *DuplicateDefinitionError) Error() string {
	return fmt.Sprintf("%s: duplicate %s %q, previously defined at %s", e.Second, e.Namespace, e.Key, e.First)
}

// UndefinedStatementError reports a keyword that no registered support
// handles.
type UndefinedStatementError struct {
	Site    Site
	Keyword string
	Reason  string
}

func (e *UndefinedStatementError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: undefined statement %q", e.Site, e.Keyword)
	}
	return fmt.Sprintf("%s: undefined statement %q: %s", e.Site, e.Keyword, e.Reason)
}

// InvalidSubstatementError reports a statement whose children violate its
// support's cardinality rules. Max is -1 when unbounded; an unexpected
// substatement has Min and Max of zero.
type InvalidSubstatementError struct {
	Site         Site
	Keyword      string
	Substatement string
	Count        int
	Min          int
	Max          int
}

func (e *InvalidSubstatementError) Error() string {
	switch {
	case e.Max == 0 && e.Min == 0:
		return fmt.Sprintf("%s: %s is not allowed in %s", e.Site, e.Substatement, e.Keyword)
	case e.Count < e.Min:
		return fmt.Sprintf("%s: %s requires at least %d %s, found %d", e.Site, e.Keyword, e.Min, e.Substatement, e.Count)
	default:
		return fmt.Sprintf("%s: %s allows at most %d %s, found %d", e.Site, e.Keyword, e.Max, e.Substatement, e.Count)
	}
}

// StatementError reports a statement support rejecting a statement during a
// phase hook or an inference action.
type StatementError struct {
	Site    Site
	Keyword string
	Err     error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Site, e.Keyword, e.Err)
}
func (e *StatementError) Unwrap() error { return e.Err }

// FetchError wraps a source provider failure, attributed to the statement
// that requested the document.
type FetchError struct {
	Requested source.Identifier
	Requester Site
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetching %s: %v", e.Requester, e.Requested, e.Err)
}
func (e *FetchError) Unwrap() error { return e.Err }

// Obligation is one inference action that was still parked when the barrier
// of its deadline phase was reached.
type Obligation struct {
	Description string
	Phase       phase.Phase
	Unmet       []string
	Site        Site
}

func (o Obligation) String() string {
	return fmt.Sprintf("%s: %s (by %s): waiting for %s", o.Site, o.Description, o.Phase, strings.Join(o.Unmet, ", "))
}

// Exclusion is a statement subtree left out of the model because it never
// reached the terminal phase.
type Exclusion struct {
	Site     Site
	Keyword  string
	Argument string
	Reached  phase.Phase
	Reason   string
}

func (x Exclusion) String() string {
	return fmt.Sprintf("%s: %s %q excluded after %s: %s", x.Site, x.Keyword, x.Argument, x.Reached, x.Reason)
}

// UnresolvedObligationError aggregates every obligation a build could not
// satisfy.
type UnresolvedObligationError struct {
	Obligations []Obligation
	Excluded    []Exclusion
}

func (e *UnresolvedObligationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d unresolved obligation(s):", len(e.Obligations))
	for _, o := range e.Obligations {
		sb.WriteString("\n- ")
		sb.WriteString(o.String())
	}
	if len(e.Excluded) > 0 {
		fmt.Fprintf(&sb, "\n%d excluded statement(s):", len(e.Excluded))
		for _, x := range e.Excluded {
			sb.WriteString("\n- ")
			sb.WriteString(x.String())
		}
	}
	return sb.String()
}

// Sources returns every distinct source named by an obligation, in order of
// first appearance.
func (e *UnresolvedObligationError) Sources() []source.Identifier {
	seen := make(map[source.Identifier]bool)
	var out []source.Identifier
	for _, o := range e.Obligations {
		if !seen[o.Site.Source] {
			seen[o.Site.Source] = true
			out = append(out, o.Site.Source)
		}
	}
	return out
}

// IsFatal reports whether err (or any error in its chain) is one of the
// fail-fast errors.
func IsFatal(err error) bool {
	var (
		argErr   *ArgumentSyntaxError
		dupErr   *DuplicateDefinitionError
		undefErr *UndefinedStatementError
		subErr   *InvalidSubstatementError
		stmtErr  *StatementError
		fetchErr *FetchError
	)
	switch {
	case errors.As(err, &argErr), errors.As(err, &dupErr), errors.As(err, &undefErr),
		errors.As(err, &subErr), errors.As(err, &stmtErr), errors.As(err, &fetchErr):
		return true
	}
	return false
}

// AsUnresolved extracts the unresolved-obligation aggregate from err.
func AsUnresolved(err error) (*UnresolvedObligationError, bool) {
	var ue *UnresolvedObligationError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
