package stmt

import (
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/spi"
)

// Keywords of the built-in statements.
const (
	kwAction        = "action"
	kwAnydata       = "anydata"
	kwAnyxml        = "anyxml"
	kwArgument      = "argument"
	kwBase          = "base"
	kwBelongsTo     = "belongs-to"
	kwBit           = "bit"
	kwCase          = "case"
	kwChoice        = "choice"
	kwConfig        = "config"
	kwContact       = "contact"
	kwContainer     = "container"
	kwDefault       = "default"
	kwDescription   = "description"
	kwEnum          = "enum"
	kwErrorAppTag   = "error-app-tag"
	kwErrorMessage  = "error-message"
	kwExtension     = "extension"
	kwFeature       = "feature"
	kwFractionDigit = "fraction-digits"
	kwGrouping      = "grouping"
	kwIdentity      = "identity"
	kwIfFeature     = "if-feature"
	kwImport        = "import"
	kwInclude       = "include"
	kwInput         = "input"
	kwKey           = "key"
	kwLeaf          = "leaf"
	kwLeafList      = "leaf-list"
	kwLength        = "length"
	kwList          = "list"
	kwMandatory     = "mandatory"
	kwMaxElements   = "max-elements"
	kwMinElements   = "min-elements"
	kwModifier      = "modifier"
	kwModule        = "module"
	kwMust          = "must"
	kwNamespace     = "namespace"
	kwNotification  = "notification"
	kwOrderedBy     = "ordered-by"
	kwOrganization  = "organization"
	kwOutput        = "output"
	kwPath          = "path"
	kwPattern       = "pattern"
	kwPosition      = "position"
	kwPrefix        = "prefix"
	kwPresence      = "presence"
	kwRange         = "range"
	kwReference     = "reference"
	kwRequireInst   = "require-instance"
	kwRevision      = "revision"
	kwRevisionDate  = "revision-date"
	kwRpc           = "rpc"
	kwStatus        = "status"
	kwSubmodule     = "submodule"
	kwType          = "type"
	kwTypedef       = "typedef"
	kwUnique        = "unique"
	kwUnits         = "units"
	kwUses          = "uses"
	kwValue         = "value"
	kwWhen          = "when"
	kwYangVersion   = "yang-version"
	kwYinElement    = "yin-element"
)

// rules builds substatement rules for one language version.
type rules struct {
	v source.Version
}

func (r rules) is11() bool { return r.v == source.Version11 }

func (r rules) docs() spi.SubstatementRules {
	return spi.Rules().
		With(kwDescription, spi.Optional).
		With(kwReference, spi.Optional)
}

// status plus docs, shared by every definition.
func (r rules) meta() spi.SubstatementRules {
	return r.docs().With(kwStatus, spi.Optional)
}

func (r rules) restriction() spi.SubstatementRules {
	return r.docs().
		With(kwErrorMessage, spi.Optional).
		With(kwErrorAppTag, spi.Optional)
}

// dataDefs adds the data definition statements of the version.
func (r rules) dataDefs(s spi.SubstatementRules) spi.SubstatementRules {
	for _, kw := range []string{kwContainer, kwLeaf, kwLeafList, kwList, kwChoice, kwAnyxml, kwUses} {
		s.With(kw, spi.Any)
	}
	if r.is11() {
		s.With(kwAnydata, spi.Any)
	}
	return s
}

// definitions adds typedef and grouping.
func (r rules) definitions(s spi.SubstatementRules) spi.SubstatementRules {
	return s.With(kwTypedef, spi.Any).With(kwGrouping, spi.Any)
}

func (r rules) operations(s spi.SubstatementRules) spi.SubstatementRules {
	if r.is11() {
		s.With(kwAction, spi.Any).With(kwNotification, spi.Any)
	}
	return s
}

func (r rules) body(s spi.SubstatementRules) spi.SubstatementRules {
	s = r.definitions(r.dataDefs(s))
	return s.
		With(kwExtension, spi.Any).
		With(kwFeature, spi.Any).
		With(kwIdentity, spi.Any).
		With(kwRpc, spi.Any).
		With(kwNotification, spi.Any)
}

func (r rules) header(s spi.SubstatementRules) spi.SubstatementRules {
	return s.
		With(kwYangVersion, spi.Optional).
		With(kwImport, spi.Any).
		With(kwInclude, spi.Any).
		With(kwOrganization, spi.Optional).
		With(kwContact, spi.Optional).
		With(kwRevision, spi.Any)
}

func (r rules) module() spi.SubstatementRules {
	return r.body(r.header(r.docs())).
		With(kwNamespace, spi.Mandatory).
		With(kwPrefix, spi.Mandatory)
}

func (r rules) submodule() spi.SubstatementRules {
	return r.body(r.header(r.docs())).
		With(kwBelongsTo, spi.Mandatory)
}

func (r rules) importStmt() spi.SubstatementRules {
	s := spi.Rules().
		With(kwPrefix, spi.Mandatory).
		With(kwRevisionDate, spi.Optional)
	if r.is11() {
		s.With(kwDescription, spi.Optional).With(kwReference, spi.Optional)
	}
	return s
}

func (r rules) includeStmt() spi.SubstatementRules {
	s := spi.Rules().With(kwRevisionDate, spi.Optional)
	if r.is11() {
		s.With(kwDescription, spi.Optional).With(kwReference, spi.Optional)
	}
	return s
}

func (r rules) container() spi.SubstatementRules {
	s := r.operations(r.definitions(r.dataDefs(r.meta())))
	return s.
		With(kwWhen, spi.Optional).
		With(kwIfFeature, spi.Any).
		With(kwMust, spi.Any).
		With(kwPresence, spi.Optional).
		With(kwConfig, spi.Optional)
}

func (r rules) leaf() spi.SubstatementRules {
	return r.meta().
		With(kwType, spi.Mandatory).
		With(kwUnits, spi.Optional).
		With(kwDefault, spi.Optional).
		With(kwConfig, spi.Optional).
		With(kwMandatory, spi.Optional).
		With(kwMust, spi.Any).
		With(kwWhen, spi.Optional).
		With(kwIfFeature, spi.Any)
}

func (r rules) leafList() spi.SubstatementRules {
	s := r.meta().
		With(kwType, spi.Mandatory).
		With(kwUnits, spi.Optional).
		With(kwConfig, spi.Optional).
		With(kwMinElements, spi.Optional).
		With(kwMaxElements, spi.Optional).
		With(kwOrderedBy, spi.Optional).
		With(kwMust, spi.Any).
		With(kwWhen, spi.Optional).
		With(kwIfFeature, spi.Any)
	if r.is11() {
		s.With(kwDefault, spi.Any)
	}
	return s
}

func (r rules) list() spi.SubstatementRules {
	return r.container().
		With(kwKey, spi.Optional).
		With(kwUnique, spi.Any).
		With(kwMinElements, spi.Optional).
		With(kwMaxElements, spi.Optional).
		With(kwOrderedBy, spi.Optional)
}

func (r rules) choice() spi.SubstatementRules {
	s := r.meta().
		With(kwCase, spi.Any).
		With(kwDefault, spi.Optional).
		With(kwConfig, spi.Optional).
		With(kwMandatory, spi.Optional).
		With(kwWhen, spi.Optional).
		With(kwIfFeature, spi.Any)
	for _, kw := range []string{kwContainer, kwLeaf, kwLeafList, kwList, kwAnyxml} {
		s.With(kw, spi.Any)
	}
	if r.is11() {
		s.With(kwAnydata, spi.Any).With(kwChoice, spi.Any)
	}
	return s
}

func (r rules) caseStmt() spi.SubstatementRules {
	return r.dataDefs(r.meta()).
		With(kwWhen, spi.Optional).
		With(kwIfFeature, spi.Any)
}

func (r rules) anyNode() spi.SubstatementRules {
	return r.meta().
		With(kwWhen, spi.Optional).
		With(kwIfFeature, spi.Any).
		With(kwMust, spi.Any).
		With(kwConfig, spi.Optional).
		With(kwMandatory, spi.Optional)
}

func (r rules) operation() spi.SubstatementRules {
	return r.definitions(r.meta()).
		With(kwInput, spi.Optional).
		With(kwOutput, spi.Optional).
		With(kwIfFeature, spi.Any)
}

func (r rules) inputOutput() spi.SubstatementRules {
	s := r.definitions(r.dataDefs(spi.Rules()))
	if r.is11() {
		s.With(kwMust, spi.Any)
	}
	return s
}

func (r rules) notification() spi.SubstatementRules {
	s := r.definitions(r.dataDefs(r.meta())).With(kwIfFeature, spi.Any)
	if r.is11() {
		s.With(kwMust, spi.Any)
	}
	return s
}

func (r rules) typeStmt() spi.SubstatementRules {
	return spi.Rules().
		With(kwType, spi.Any).
		With(kwEnum, spi.Any).
		With(kwBit, spi.Any).
		With(kwBase, spi.Any).
		With(kwRange, spi.Optional).
		With(kwLength, spi.Optional).
		With(kwPattern, spi.Any).
		With(kwPath, spi.Optional).
		With(kwFractionDigit, spi.Optional).
		With(kwRequireInst, spi.Optional)
}

func (r rules) typedef() spi.SubstatementRules {
	return r.meta().
		With(kwType, spi.Mandatory).
		With(kwUnits, spi.Optional).
		With(kwDefault, spi.Optional)
}

func (r rules) pattern() spi.SubstatementRules {
	s := r.restriction()
	if r.is11() {
		s.With(kwModifier, spi.Optional)
	}
	return s
}

func (r rules) enum() spi.SubstatementRules {
	return r.meta().With(kwValue, spi.Optional).With(kwIfFeature, spi.Any)
}

func (r rules) bit() spi.SubstatementRules {
	return r.meta().With(kwPosition, spi.Optional).With(kwIfFeature, spi.Any)
}

func (r rules) grouping() spi.SubstatementRules {
	return r.operations(r.definitions(r.dataDefs(r.meta())))
}

func (r rules) uses() spi.SubstatementRules {
	return r.meta().
		With(kwWhen, spi.Optional).
		With(kwIfFeature, spi.Any)
}

func (r rules) identity() spi.SubstatementRules {
	s := r.meta().With(kwIfFeature, spi.Any)
	if r.is11() {
		return s.With(kwBase, spi.Any)
	}
	return s.With(kwBase, spi.Optional)
}

func (r rules) extension() spi.SubstatementRules {
	return r.meta().With(kwArgument, spi.Optional)
}
