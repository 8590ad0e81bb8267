// Package resolve joins export rows to the warehouse customer reference.
// Matching is by canonicalized name: the exports never carry customer ids,
// only display names that drift in spelling between systems.
package resolve

import (
	"fmt"
	"strings"

	"salesloader/internal/domain"
	"salesloader/internal/normalize"
	"salesloader/internal/records"
)

// Matcher produces the comparable form of a customer name. Both the
// reference side and the export side of the join go through the same
// matcher, so a row resolves exactly when the canonical forms are equal.
type Matcher func(string) string

// Normalized matches on the full canonical form (accent folding, punctuation
// stripping, whitespace collapsing). Used by the accounting exports, whose
// names diverge most from the reference spelling.
func Normalized(s string) string { return normalize.Name(s) }

// CaseFold matches on trimmed lowercase only. Used by datasets whose names
// are copied from the reference and differ just in case and padding.
func CaseFold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Identity is the warehouse identity attached to a resolved row. HasZone
// reports whether ZoneID came from the reference table or is the configured
// default; datasets with their own zone labels use it to prefer those.
type Identity struct {
	CustomerID int64
	ZoneID     int64
	HasZone    bool
}

// Index is an immutable name-to-customer lookup built once per run.
type Index struct {
	match       Matcher
	byName      map[string]domain.Customer
	defaultZone int64
}

// NewIndex builds the lookup from the reference rows. Two reference
// customers whose names collide under the matcher would make resolution
// order-dependent, so a collision is an error rather than a silent pick.
func NewIndex(refs []domain.Customer, match Matcher, defaultZone int64) (*Index, error) {
	byName := make(map[string]domain.Customer, len(refs))
	for _, c := range refs {
		key := match(c.Name)
		if key == "" {
			continue
		}
		if prev, ok := byName[key]; ok && prev.ID != c.ID {
			return nil, fmt.Errorf("ambiguous customer reference: %q and %q both canonicalize to %q", prev.Name, c.Name, key)
		}
		byName[key] = c
	}
	return &Index{match: match, byName: byName, defaultZone: defaultZone}, nil
}

// Lookup resolves a raw export name to its warehouse identity.
func (ix *Index) Lookup(name string) (Identity, bool) {
	c, ok := ix.byName[ix.match(name)]
	if !ok {
		return Identity{}, false
	}
	id := Identity{CustomerID: c.ID, ZoneID: ix.defaultZone}
	if c.ZoneID != nil {
		id.ZoneID = *c.ZoneID
		id.HasZone = true
	}
	return id, true
}

// Rewrite patches a (zone, customer) label pair before matching. The
// accounting system books some channels under labels the reference table
// does not use; these rules translate them.
type Rewrite struct {
	Zone        string
	Customer    string
	NewZone     string
	NewCustomer string
}

// applyRules returns the possibly rewritten (zone, customer) pair. Rules
// match on trimmed equality of both labels; the first matching rule wins.
func applyRules(zone, customer string, rules []Rewrite) (string, string) {
	z, c := strings.TrimSpace(zone), strings.TrimSpace(customer)
	for _, r := range rules {
		if z == r.Zone && c == r.Customer {
			return r.NewZone, r.NewCustomer
		}
	}
	return zone, customer
}

// Resolved pairs a record with its resolution outcome.
type Resolved struct {
	Record   records.Record
	Identity Identity
	OK       bool
}

// Options carries the per-dataset resolution configuration.
type Options struct {
	NameColumn string
	ZoneColumn string
	Rewrites   []Rewrite
	// Renames replaces placeholder names the export uses for unassigned
	// rows. Keys are trimmed raw names.
	Renames map[string]string
}

// Rows resolves every record against the index, after applying the
// dataset's rename and rewrite rules in place. No record is dropped here;
// the caller decides what an unresolved row means. The second result lists
// the distinct unresolved names in first-seen order, for operator review.
func Rows(recs []records.Record, ix *Index, opt Options) ([]Resolved, []string) {
	out := make([]Resolved, 0, len(recs))
	var unmapped []string
	seen := make(map[string]struct{})
	for _, rec := range recs {
		name := rec.String(opt.NameColumn)
		if repl, ok := opt.Renames[strings.TrimSpace(name)]; ok {
			name = repl
		}
		if opt.ZoneColumn != "" {
			zone := rec.String(opt.ZoneColumn)
			zone, name = applyRules(zone, name, opt.Rewrites)
			rec[opt.ZoneColumn] = zone
		}
		rec[opt.NameColumn] = name

		id, ok := ix.Lookup(name)
		if !ok {
			key := ix.match(name)
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				unmapped = append(unmapped, strings.TrimSpace(name))
			}
		}
		out = append(out, Resolved{Record: rec, Identity: id, OK: ok})
	}
	return out, unmapped
}
