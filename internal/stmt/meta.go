package stmt

import (
	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/spi"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// simple is a context-independent statement with no behavior beyond parsing
// its argument.
func simple(keyword string, parse func(spi.Context, string) (any, error), subs spi.SubstatementRules) spi.Support {
	return &valueSupport{BaseSupport: spi.BaseSupport{
		Keyword: stmtid.Builtin(keyword),
		Rules:   subs,
		Policy:  spi.ContextIndependent,
		Parse:   parse,
	}}
}

// valueSupport publishes its parsed argument as the effective value.
type valueSupport struct {
	spi.BaseSupport
}

func (s *valueSupport) BuildEffective(ctx spi.Context, decl *model.Declared, subs []*model.Effective) (*model.Effective, error) {
	e := spi.NewEffective(ctx, decl, subs)
	e.Value = ctx.Argument()
	return e, nil
}

func (r rules) metaSupports() []spi.Support {
	out := []spi.Support{
		simple(kwDescription, nil, nil),
		simple(kwReference, nil, nil),
		simple(kwContact, nil, nil),
		simple(kwOrganization, nil, nil),
		simple(kwUnits, nil, nil),
		simple(kwPresence, nil, nil),
		simple(kwErrorMessage, nil, nil),
		simple(kwErrorAppTag, nil, nil),
		simple(kwDefault, nil, nil),
		simple(kwYangVersion, parseVersion, nil),
		simple(kwNamespace, parseNonEmpty, nil),
		simple(kwPrefix, parseIdentifier, nil),
		simple(kwRevisionDate, parseRevision, nil),
		simple(kwRevision, parseRevision, r.docs()),
		simple(kwConfig, parseBool, nil),
		simple(kwMandatory, parseBool, nil),
		simple(kwRequireInst, parseBool, nil),
		simple(kwYinElement, parseBool, nil),
		simple(kwMinElements, parseUint, nil),
		simple(kwMaxElements, parseMaxElements, nil),
		simple(kwFractionDigit, parseUint, nil),
		simple(kwPosition, parseUint, nil),
		simple(kwValue, parseInt, nil),
		simple(kwOrderedBy, parseOneOf("system", "user"), nil),
		simple(kwStatus, parseOneOf("current", "deprecated", "obsolete"), nil),
		simple(kwRange, parseNonEmpty, r.restriction()),
		simple(kwLength, parseNonEmpty, r.restriction()),
		simple(kwPattern, nil, r.pattern()),
		simple(kwMust, parseNonEmpty, r.restriction()),
		simple(kwWhen, parseNonEmpty, r.docs()),
		simple(kwPath, parseNonEmpty, nil),
		simple(kwUnique, parseNonEmpty, nil),
		simple(kwEnum, parseNonEmpty, r.enum()),
		simple(kwBit, parseIdentifier, r.bit()),
		simple(kwArgument, parseIdentifier, spi.Rules().With(kwYinElement, spi.Optional)),
	}
	if r.is11() {
		out = append(out, simple(kwModifier, parseOneOf("invert-match"), nil))
	}
	return out
}
