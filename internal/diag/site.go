package diag

import "github.com/specialistvlad/stmtreactor/internal/source"

// Site attributes a diagnostic to a position in one source.
type Site struct {
	Source source.Identifier
	Ref    source.Ref
}

func (s Site) String() string {
	if s.Source.Name == "" {
		return s.Ref.String()
	}
	return s.Ref.String() + " [" + s.Source.String() + "]"
}
