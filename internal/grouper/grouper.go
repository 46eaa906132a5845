// =============================================================================
// Supplier Follow-up Mailer - Group Aggregator
// =============================================================================
//
// This module partitions dataset rows into one group per supplier and
// collects each group's carbon-copy recipients.
//
// GUARANTEES:
//   - Every row lands in exactly one group.
//   - Groups appear in the order their key is first seen.
//   - Rows keep their dataset order within a group.
//   - CC addresses are trimmed, blank ones dropped, duplicates collapsed,
//     and the first-seen order kept.
//
// =============================================================================

package grouper

import (
	"strings"

	"github.com/ginjaninja78/po-followup-mailer/internal/types"
)

// CCSeparator joins CC addresses into a single header value.
const CCSeparator = "; "

// Group is the set of rows sharing one key plus its derived recipients.
type Group struct {
	// Key is the grouping value (the supplier name by default).
	Key string

	// Recipient is the To address for the group's email.
	Recipient string

	// Rows holds the member rows in dataset order.
	Rows []types.Row

	// CC holds unique, non-blank CC addresses in first-seen order.
	CC []string
}

// CCString returns the CC addresses joined with "; ", or "" when there are
// none.
func (g Group) CCString() string {
	return strings.Join(g.CC, CCSeparator)
}

// Options names the columns used for grouping.
type Options struct {
	// KeyField is the grouping column.
	KeyField string

	// RecipientField holds the To address. When empty or equal to KeyField,
	// the key itself is the recipient.
	RecipientField string

	// CCField is the optional CC column. Rows without it contribute no CC.
	CCField string
}

// DefaultOptions groups by supplier name and mails the supplier name.
func DefaultOptions() Options {
	return Options{
		KeyField:       types.FieldSupplierName,
		RecipientField: types.FieldSupplierName,
		CCField:        types.FieldCC,
	}
}

// GroupRows partitions rows by opts.KeyField. Keys are compared after
// trimming surrounding whitespace, so "Acme" and "Acme " share a group.
func GroupRows(rows []types.Row, opts Options) []Group {
	if opts.KeyField == "" {
		opts.KeyField = types.FieldSupplierName
	}

	index := make(map[string]int)
	var groups []Group

	for _, row := range rows {
		key := strings.TrimSpace(row.Get(opts.KeyField).String())

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}

	for i := range groups {
		groups[i].Recipient = recipientFor(groups[i], opts)
		if opts.CCField != "" {
			groups[i].CC = CollectCC(groups[i].Rows, opts.CCField)
		}
	}

	return groups
}

// recipientFor returns the group key, or the first non-blank value of the
// recipient column within the group.
func recipientFor(g Group, opts Options) string {
	if opts.RecipientField == "" || opts.RecipientField == opts.KeyField {
		return g.Key
	}
	for _, row := range g.Rows {
		if v := row.Get(opts.RecipientField); !v.IsBlank() {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}

// CollectCC gathers the unique, non-blank CC addresses from rows. A cell
// may hold several addresses separated by ";" or ",".
func CollectCC(rows []types.Row, field string) []string {
	seen := make(map[string]struct{})
	var cc []string

	for _, row := range rows {
		v := row.Get(field)
		if v.IsBlank() {
			continue
		}

		for _, addr := range splitAddresses(v.String()) {
			if _, dup := seen[addr]; dup {
				continue
			}
			seen[addr] = struct{}{}
			cc = append(cc, addr)
		}
	}

	return cc
}

func splitAddresses(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
