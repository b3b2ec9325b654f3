package dedupe

import (
	"testing"

	"salonscout/internal/model"
)

func TestIndex_ExactNameMatch(t *testing.T) {
	idx := NewIndex(model.PolicyExactNameOnly, model.ScopeGlobal)

	first := Candidate{FoldedName: "bella nails"}
	if !idx.IsNew(first) {
		t.Fatal("empty index reported candidate as duplicate")
	}
	idx.Admit(first)

	if idx.IsNew(Candidate{FoldedName: "bella nails"}) {
		t.Error("identical folded name reported as new")
	}
	if !idx.IsNew(Candidate{FoldedName: "bella nails studio"}) {
		t.Error("distinct name reported as duplicate")
	}
}

func TestIndex_URLMatchUnderNameAndURL(t *testing.T) {
	idx := NewIndex(model.PolicyNameAndURL, model.ScopeGlobal)

	idx.Admit(Candidate{
		FoldedName: "bella nails",
		SourceURL:  "https://maps.example/place/bella",
	})

	// Same URL, different name: duplicate under nameAndUrl.
	dup := Candidate{
		FoldedName: "bella nails 高雄店",
		SourceURL:  "https://maps.example/place/bella",
	}
	if idx.IsNew(dup) {
		t.Error("matching non-empty URLs reported as new")
	}

	// Empty URL on the candidate side never matches by URL.
	if !idx.IsNew(Candidate{FoldedName: "another shop"}) {
		t.Error("empty-URL candidate reported as duplicate")
	}
}

func TestIndex_URLIgnoredUnderExactNameOnly(t *testing.T) {
	idx := NewIndex(model.PolicyExactNameOnly, model.ScopeGlobal)

	idx.Admit(Candidate{FoldedName: "bella nails", SourceURL: "https://a.example/1"})

	c := Candidate{FoldedName: "different name", SourceURL: "https://a.example/1"}
	if !idx.IsNew(c) {
		t.Error("exactNameOnly policy considered URLs")
	}
}

func TestIndex_PunctuationInsensitive(t *testing.T) {
	idx := NewIndex(model.PolicyPunctInsensitive, model.ScopeGlobal)

	idx.Admit(Candidate{FoldedName: "bella-nails & lash"})

	if idx.IsNew(Candidate{FoldedName: "bella nails lash"}) {
		t.Error("punctuation variant reported as new")
	}
}

func TestIndex_PerAnchorScope(t *testing.T) {
	idx := NewIndex(model.PolicyExactNameOnly, model.ScopePerAnchor)

	fengshan := Candidate{FoldedName: "幸福美甲", Anchor: "鳳山"}
	zuoying := Candidate{FoldedName: "幸福美甲", Anchor: "左營"}

	idx.Admit(fengshan)

	if !idx.IsNew(zuoying) {
		t.Error("per-anchor scope suppressed a legitimately distinct branch")
	}
	if idx.IsNew(fengshan) {
		t.Error("same anchor duplicate reported as new")
	}
}
