package domain

import (
	"errors"
	"testing"
)

func TestDictionary_OrderAndDedup(t *testing.T) {
	d := NewDictionary([]string{"گوشی", "", "شارژر", "گوشی", "قاب"})
	want := []string{"گوشی", "شارژر", "قاب"}
	got := d.Words()
	if len(got) != len(want) {
		t.Fatalf("expected %d words, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d: got %q, want %q", i, got[i], want[i])
		}
	}
	if !d.Contains("شارژر") || d.Contains("") {
		t.Error("unexpected Contains result")
	}

	got[0] = "mutated"
	if d.Words()[0] != "گوشی" {
		t.Error("Words must return a copy")
	}
}

func TestSynonymTable_DeepCopy(t *testing.T) {
	src := map[string][]string{"گوشی": {"موبایل", "", "تلفن"}}
	table := NewSynonymTable(src)
	src["گوشی"][0] = "changed"

	got := table.Lookup("گوشی")
	if len(got) != 2 || got[0] != "موبایل" || got[1] != "تلفن" {
		t.Fatalf("unexpected synonyms: %v", got)
	}
	if table.Lookup("missing") != nil {
		t.Error("expected nil for missing key")
	}
}

func TestParseSearchDomain(t *testing.T) {
	for _, s := range []string{"customer", "product", "phone", "service", "invoice", "repair", "installment"} {
		if _, err := ParseSearchDomain(s); err != nil {
			t.Errorf("ParseSearchDomain(%q): %v", s, err)
		}
	}
	_, err := ParseSearchDomain("supplier")
	if !errors.Is(err, ErrUnknownDomain) {
		t.Fatalf("expected ErrUnknownDomain, got %v", err)
	}
}

func TestGroupByDomain_PreservesOrder(t *testing.T) {
	items := []RemoteItem{
		{ID: "1", Domain: DomainProduct},
		{ID: "7", Domain: DomainCustomer},
		{ID: "2", Domain: DomainProduct},
		{ID: "8", Domain: DomainCustomer},
		{ID: "3", Domain: DomainInvoice},
	}
	groups := GroupByDomain(items)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Domain != DomainProduct || groups[1].Domain != DomainCustomer || groups[2].Domain != DomainInvoice {
		t.Errorf("unexpected group order: %v %v %v", groups[0].Domain, groups[1].Domain, groups[2].Domain)
	}
	if groups[0].Items[0].ID != "1" || groups[0].Items[1].ID != "2" {
		t.Errorf("intra-domain order not preserved: %+v", groups[0].Items)
	}

	flat := FlattenGroups(groups)
	wantIDs := []string{"1", "2", "7", "8", "3"}
	for i, id := range wantIDs {
		if flat[i].ID != id {
			t.Errorf("flat[%d] = %s, want %s", i, flat[i].ID, id)
		}
	}
}

func TestNavTree_Filter(t *testing.T) {
	tree := &NavTree{Roots: []NavNode{
		{Title: "داشبورد", Path: "/"},
		{Title: "فروش", Children: []NavNode{
			{Title: "فاکتورها", Path: "/invoices"},
			{Title: "اقساط", Path: "/installment-sales"},
		}},
		{Title: "مدیریت", Children: []NavNode{
			{Title: "کاربران", Path: "/admin/users"},
		}},
	}}

	filtered := tree.Filter(func(p string) bool { return p != "/admin/users" && p != "/invoices" })
	if len(filtered.Roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(filtered.Roots))
	}
	if len(filtered.Roots[1].Children) != 1 || filtered.Roots[1].Children[0].Path != "/installment-sales" {
		t.Errorf("unexpected children: %+v", filtered.Roots[1].Children)
	}
	if len(tree.Roots[1].Children) != 2 {
		t.Error("Filter must not mutate the source tree")
	}
}

func TestSearchError(t *testing.T) {
	err := NewSearchError(502, "")
	if !errors.Is(err, ErrNetwork) {
		t.Fatal("SearchError must unwrap to ErrNetwork")
	}
	if got := UserMessage(err); got != DefaultSearchErrorMessage {
		t.Errorf("UserMessage = %q, want default", got)
	}
	if got := UserMessage(NewSearchError(500, "سرور در دسترس نیست")); got != "سرور در دسترس نیست" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(errors.New("boom")); got != DefaultSearchErrorMessage {
		t.Errorf("UserMessage for plain error = %q", got)
	}
}

func TestProcessedQuery(t *testing.T) {
	q := ProcessedQuery{Raw: " x ", Normalized: "x", Final: "x"}
	if q.HasSuggestion() || q.IsEmpty() {
		t.Error("unexpected flags")
	}
	if !(ProcessedQuery{}).IsEmpty() {
		t.Error("zero query must be empty")
	}
}
