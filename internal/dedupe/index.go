// Package dedupe decides whether a normalized candidate record is new.
// Matching is strict and exact per policy; admission is irreversible.
package dedupe

import (
	"salonscout/internal/model"
	"salonscout/internal/normalize"
)

// Candidate is the minimum a record needs to be tested against the index.
type Candidate struct {
	FoldedName string
	SourceURL  string
	Anchor     string
}

// scope holds one partition's lookup state.
type scope struct {
	names map[string]struct{}
	urls  map[string]struct{}
}

func newScope() *scope {
	return &scope{
		names: make(map[string]struct{}),
		urls:  make(map[string]struct{}),
	}
}

// Index maintains uniqueness across accumulated records using name and
// source-URL keys. With ScopePerAnchor the same business may legitimately
// be admitted once per anchor; with ScopeGlobal it is admitted once total.
// The active scope is a deliberate configuration choice because it changes
// the output's duplicate rate.
type Index struct {
	policy model.DedupePolicy
	scoped bool
	parts  map[string]*scope
	global *scope
}

// NewIndex creates an index with the given policy and scope.
func NewIndex(policy model.DedupePolicy, scopeKind model.DedupeScope) *Index {
	return &Index{
		policy: policy,
		scoped: scopeKind == model.ScopePerAnchor,
		parts:  make(map[string]*scope),
		global: newScope(),
	}
}

// IsNew reports whether the candidate matches no existing entry in its
// active scope. Name comparison is exact on the folded key; URLs match only
// when both sides are non-empty and the policy considers URLs at all.
func (idx *Index) IsNew(c Candidate) bool {
	sc := idx.scopeFor(c.Anchor)

	if _, seen := sc.names[idx.nameKey(c.FoldedName)]; seen {
		return false
	}
	if idx.policy == model.PolicyNameAndURL && c.SourceURL != "" {
		if _, seen := sc.urls[c.SourceURL]; seen {
			return false
		}
	}
	return true
}

// Admit inserts the candidate into both lookup structures. There is no
// removal path.
func (idx *Index) Admit(c Candidate) {
	sc := idx.scopeFor(c.Anchor)
	sc.names[idx.nameKey(c.FoldedName)] = struct{}{}
	if c.SourceURL != "" {
		sc.urls[c.SourceURL] = struct{}{}
	}
}

func (idx *Index) nameKey(folded string) string {
	if idx.policy == model.PolicyPunctInsensitive {
		return normalize.FoldName(folded)
	}
	return folded
}

func (idx *Index) scopeFor(anchor string) *scope {
	if !idx.scoped {
		return idx.global
	}
	sc, ok := idx.parts[anchor]
	if !ok {
		sc = newScope()
		idx.parts[anchor] = sc
	}
	return sc
}
