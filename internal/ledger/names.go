package ledger

import (
	"strings"

	"github.com/tallyhq/tally/internal/store"
)

// Directory resolves ids to display names.
type Directory struct {
	accounts   map[string]string
	categories map[string]string
	types      map[string]string
	payees     map[string]string
	tags       map[string]string
}

// NewDirectory indexes the named collections of state.
func NewDirectory(state *store.AppState) *Directory {
	d := &Directory{
		accounts:   make(map[string]string, len(state.Accounts)),
		categories: make(map[string]string, len(state.Categories)),
		types:      make(map[string]string, len(state.TransactionTypes)),
		payees:     make(map[string]string, len(state.Payees)),
		tags:       make(map[string]string, len(state.Tags)),
	}
	for _, a := range state.Accounts {
		d.accounts[a.ID] = a.Name
	}
	for _, c := range state.Categories {
		d.categories[c.ID] = c.Name
	}
	for _, t := range state.TransactionTypes {
		d.types[t.ID] = t.Name
	}
	for _, p := range state.Payees {
		d.payees[p.ID] = p.Name
	}
	for _, t := range state.Tags {
		d.tags[t.ID] = t.Name
	}
	return d
}

func lookup(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id
}

// AccountName returns the account's name, or the id if unknown.
func (d *Directory) AccountName(id string) string { return lookup(d.accounts, id) }

// CategoryName returns the category's name, or the id if unknown.
func (d *Directory) CategoryName(id string) string { return lookup(d.categories, id) }

// TypeName returns the transaction type's name, or the id if unknown.
func (d *Directory) TypeName(id string) string { return lookup(d.types, id) }

// PayeeName returns the payee's name, or the id if unknown.
func (d *Directory) PayeeName(id string) string { return lookup(d.payees, id) }

// TagNames joins the names of tag ids with ", ".
func (d *Directory) TagNames(ids []string) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = lookup(d.tags, id)
	}
	return strings.Join(names, ", ")
}
