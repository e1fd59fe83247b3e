package stmt

import (
	"github.com/specialistvlad/stmtreactor/internal/registry"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/spi"
)

// Bundle registers the built-in statements of both language versions, the
// fallback for extension statements and the namespaces they use.
type Bundle struct {
	// Lenient drops extension statements whose extension is not defined
	// instead of reporting them as unresolved.
	Lenient bool
}

var _ registry.Module = Bundle{}

func (m Bundle) Register(b *registry.Builder) {
	for _, v := range source.Versions() {
		for _, s := range Supports(v) {
			b.Register(v, s)
		}
		b.SetUnknown(v, newUnknown(m.Lenient))
	}
	b.RegisterNamespaces(Namespaces()...)
}

// Supports returns the built-in statement supports of one language version.
func Supports(v source.Version) []spi.Support {
	r := rules{v: v}
	out := []spi.Support{
		newModule(r),
		newSubmodule(r),
		newBelongsTo(r),
		newImport(r),
		newInclude(r),
		newTypedef(r),
		newType(r),
		newGrouping(r),
		newUses(r),
		newIdentity(r),
		newBase(r),
		newExtension(r),
		newFeature(r),
		newIfFeature(r),
		newKey(r),
	}
	out = append(out, r.metaSupports()...)
	return append(out, r.schemaSupports()...)
}
