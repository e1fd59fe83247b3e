package source

import (
	"fmt"
	"strings"
	"time"
)

// RevisionLayout is the date layout of revision arguments.
const RevisionLayout = "2006-01-02"

// Identifier uniquely names one input document.
type Identifier struct {
	Name     string
	Revision string // empty when the document declares no revision
}

// NewIdentifier creates an identifier. An empty revision is allowed.
func NewIdentifier(name, revision string) Identifier {
	return Identifier{Name: name, Revision: revision}
}

func (id Identifier) String() string {
	if id.Revision == "" {
		return id.Name
	}
	return id.Name + "@" + id.Revision
}

// Matches reports whether the identifier satisfies a request. A request
// without a revision matches every revision of the same name.
func (id Identifier) Matches(request Identifier) bool {
	if id.Name != request.Name {
		return false
	}
	return request.Revision == "" || request.Revision == id.Revision
}

// Less orders identifiers by name, then by revision.
func (id Identifier) Less(other Identifier) bool {
	if id.Name != other.Name {
		return id.Name < other.Name
	}
	return id.Revision < other.Revision
}

// ParseIdentifier parses `name` or `name@revision`.
func ParseIdentifier(s string) (Identifier, error) {
	name, rev, found := strings.Cut(s, "@")
	if name == "" {
		return Identifier{}, fmt.Errorf("source identifier %q has no name", s)
	}
	if found {
		if err := ValidateRevision(rev); err != nil {
			return Identifier{}, err
		}
	}
	return Identifier{Name: name, Revision: rev}, nil
}

// ValidateRevision checks that s is a YYYY-MM-DD date.
func ValidateRevision(s string) error {
	if _, err := time.Parse(RevisionLayout, s); err != nil {
		return fmt.Errorf("invalid revision %q: expected YYYY-MM-DD", s)
	}
	return nil
}

// LatestRevision returns the greatest of the given revision dates. The layout
// sorts lexically, so no date parsing is needed.
func LatestRevision(revisions []string) string {
	latest := ""
	for _, r := range revisions {
		if r > latest {
			latest = r
		}
	}
	return latest
}
