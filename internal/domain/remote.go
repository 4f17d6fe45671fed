package domain

import "fmt"

// SearchDomain is a business-entity category returned by the remote search endpoint.
type SearchDomain string

// Search domain constants.
const (
	DomainCustomer    SearchDomain = "customer"
	DomainProduct     SearchDomain = "product"
	DomainPhone       SearchDomain = "phone"
	DomainService     SearchDomain = "service"
	DomainInvoice     SearchDomain = "invoice"
	DomainRepair      SearchDomain = "repair"
	DomainInstallment SearchDomain = "installment"
)

// IsValid checks if the domain is one of the supported values.
func (d SearchDomain) IsValid() bool {
	switch d {
	case DomainCustomer, DomainProduct, DomainPhone, DomainService,
		DomainInvoice, DomainRepair, DomainInstallment:
		return true
	}
	return false
}

// ParseSearchDomain validates a raw domain string.
func ParseSearchDomain(s string) (SearchDomain, error) {
	d := SearchDomain(s)
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
	}
	return d, nil
}

// RemoteItem is one hit from the multi-domain server search. Identity is (Domain, ID).
// Optional display fields are empty when the server omits them.
type RemoteItem struct {
	ID       string
	Domain   SearchDomain
	Title    string
	Subtitle string
	TitleHL  string
	Snippet  string
}

// Key returns the identity of the item.
func (i RemoteItem) Key() string { return string(i.Domain) + ":" + i.ID }

// Label returns the best display title available.
func (i RemoteItem) Label() string {
	if i.Title != "" {
		return i.Title
	}
	return i.ID
}

// DomainGroup is the bucket of remote items for one domain.
type DomainGroup struct {
	Domain SearchDomain
	Items  []RemoteItem
}

// GroupByDomain buckets items by domain. Buckets appear in first-seen order and
// server order is preserved inside each bucket.
func GroupByDomain(items []RemoteItem) []DomainGroup {
	var groups []DomainGroup
	pos := make(map[SearchDomain]int)
	for _, it := range items {
		i, ok := pos[it.Domain]
		if !ok {
			i = len(groups)
			pos[it.Domain] = i
			groups = append(groups, DomainGroup{Domain: it.Domain})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// FlattenGroups concatenates grouped items back into one ordered list.
func FlattenGroups(groups []DomainGroup) []RemoteItem {
	n := 0
	for _, g := range groups {
		n += len(g.Items)
	}
	out := make([]RemoteItem, 0, n)
	for _, g := range groups {
		out = append(out, g.Items...)
	}
	return out
}
