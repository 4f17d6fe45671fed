// Package route maps search results to navigation targets of the dashboard.
package route

import (
	"fmt"
	"net/url"

	"github.com/kailas-cloud/storesearch/internal/domain"
)

// Root is the fallback target for items of an unknown domain.
const Root = "/"

// Action is a per-row quick action.
type Action string

// Quick action constants.
const (
	// Open runs the default navigation of the row.
	Open     Action = "open"
	PayNext  Action = "payNext"
	Receipt  Action = "receipt"
	Print    Action = "print"
	Favorite Action = "favorite"
)

// Default returns the default target for a remote item. term is the query that produced it.
func Default(item domain.RemoteItem, term string) string {
	id := url.PathEscape(item.ID)
	q := url.QueryEscape(term)

	switch item.Domain {
	case domain.DomainCustomer:
		return "/customers/" + id
	case domain.DomainInvoice:
		return "/invoices/" + id
	case domain.DomainRepair:
		return "/repairs/" + id
	case domain.DomainInstallment:
		return "/installment-sales/" + id
	case domain.DomainProduct:
		return "/products?q=" + q
	case domain.DomainPhone:
		return "/mobile-phones?q=" + q
	case domain.DomainService:
		return "/services?q=" + q
	default:
		return Root
	}
}

// ForAction returns the target of a quick action on a remote item.
func ForAction(item domain.RemoteItem, term string, action Action) (string, error) {
	id := url.PathEscape(item.ID)

	switch {
	case action == Open:
		return Default(item, term), nil
	case action == PayNext && item.Domain == domain.DomainInstallment:
		return "/installment-sales/" + id + "?pay=next", nil
	case action == Receipt && item.Domain == domain.DomainRepair:
		return "/repairs/" + id + "/receipt", nil
	case action == Print && item.Domain == domain.DomainInvoice:
		return "/invoices/" + id + "?autoPrint=1", nil
	}
	return "", fmt.Errorf("%w: %q for %s", domain.ErrUnknownAction, action, item.Domain)
}

// RemoteActions lists the quick actions offered for a domain, primary first.
func RemoteActions(d domain.SearchDomain) []Action {
	switch d {
	case domain.DomainInstallment:
		return []Action{Open, PayNext}
	case domain.DomainRepair:
		return []Action{Open, Receipt}
	case domain.DomainInvoice:
		return []Action{Open, Print}
	default:
		return []Action{Open}
	}
}

// NavActions lists the quick actions offered for navigation entries.
func NavActions() []Action {
	return []Action{Open, Favorite}
}
