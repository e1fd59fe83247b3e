package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/spi"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// validate checks every bundle for the invariants the reactor relies on:
//   - every support has a copy policy;
//   - schema-tree statements are declared-copy, since their identity depends
//     on the module they are instantiated into;
//   - a context-independent support only allows context-independent or
//     ignored substatements, since aliasing it aliases its whole subtree;
//   - every allowed substatement has a support in the same version.
func (b *Builder) validate() error {
	var errs []string

	for _, v := range source.Versions() {
		bundle := b.bundles[v]
		for _, q := range sortedKeys(bundle) {
			s := bundle[q]
			policy := s.CopyPolicy()
			if policy == spi.CopyUnset {
				errs = append(errs, fmt.Sprintf("version %s: statement '%s' has no copy policy", v, q))
				continue
			}
			if s.Traits().Tree != spi.NotInTree && policy != spi.DeclaredCopy {
				errs = append(errs, fmt.Sprintf("version %s: schema-tree statement '%s' must be declared-copy, is %s", v, q, policy))
			}

			rules := s.Substatements()
			for _, sub := range rules.Keywords() {
				subSupport, ok := bundle[sub]
				if !ok {
					errs = append(errs, fmt.Sprintf("version %s: statement '%s' allows substatement '%s' which is not registered", v, q, sub))
					continue
				}
				if policy != spi.ContextIndependent {
					continue
				}
				switch subSupport.CopyPolicy() {
				case spi.ContextIndependent, spi.IgnoreCopy:
				default:
					errs = append(errs, fmt.Sprintf("version %s: context-independent statement '%s' allows %s substatement '%s'", v, q, subSupport.CopyPolicy(), sub))
				}
			}
		}
		if u, ok := b.unknown[v]; ok && u.CopyPolicy() == spi.CopyUnset {
			errs = append(errs, fmt.Sprintf("version %s: unknown-statement support has no copy policy", v))
		}
	}

	seen := make(map[string]bool)
	for _, d := range append(spi.CoreNamespaces(), b.namespaces...) {
		if seen[d.Name()] {
			errs = append(errs, fmt.Sprintf("namespace '%s' registered twice", d.Name()))
		}
		seen[d.Name()] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func sortedKeys(m map[stmtid.QName]spi.Support) []stmtid.QName {
	keys := make([]stmtid.QName, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
