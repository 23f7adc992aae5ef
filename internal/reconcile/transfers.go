package reconcile

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

const (
	DefaultWindowDays   = 5
	DefaultMaxGroupSize = 4

	// maxCandidates bounds the subset search per source transaction.
	maxCandidates = 24
)

// DefaultTolerance is the largest side-total difference still linkable.
var DefaultTolerance = decimal.RequireFromString("0.05")

// TransferOptions tunes ProposeTransfers. An invalid Tolerance means
// DefaultTolerance; a valid zero requires exact totals.
type TransferOptions struct {
	Tolerance    decimal.NullDecimal
	WindowDays   int
	MaxGroupSize int
}

// EffectiveTolerance returns the configured tolerance or DefaultTolerance.
func (o TransferOptions) EffectiveTolerance() decimal.Decimal {
	if !o.Tolerance.Valid {
		return DefaultTolerance
	}
	return o.Tolerance.Decimal
}

func (o TransferOptions) withDefaults() TransferOptions {
	o.Tolerance = decimal.NewNullDecimal(o.EffectiveTolerance())
	if o.WindowDays <= 0 {
		o.WindowDays = DefaultWindowDays
	}
	if o.MaxGroupSize <= 0 {
		o.MaxGroupSize = DefaultMaxGroupSize
	}
	return o
}

// Total sums the magnitudes of txns.
func Total(txns []model.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txns {
		sum = sum.Add(tx.Amount.Abs())
	}
	return sum
}

// MatchSides reports whether the magnitude totals of two sides agree within
// tolerance. Empty sides never match.
func MatchSides(a, b []model.Transaction, tolerance decimal.Decimal) (totalA, totalB decimal.Decimal, ok bool) {
	totalA, totalB = Total(a), Total(b)
	if len(a) == 0 || len(b) == 0 {
		return totalA, totalB, false
	}
	return totalA, totalB, totalA.Sub(totalB).Abs().LessThanOrEqual(tolerance)
}

// Proposal is a suggested transfer link: one source transaction and the
// transactions in other accounts that together offset it.
type Proposal struct {
	Source     model.Transaction
	Matches    []model.Transaction
	Difference decimal.Decimal
}

// IDs lists the source id followed by the matched ids.
func (p Proposal) IDs() []string {
	ids := []string{p.Source.ID}
	for _, m := range p.Matches {
		ids = append(ids, m.ID)
	}
	return ids
}

// ProposeTransfers looks for unlinked transactions whose type isTransfer
// accepts and proposes, for each, the smallest group of unlinked transactions
// in other accounts, dated within the window, whose total matches. A
// transaction appears in at most one proposal.
func ProposeTransfers(ctx context.Context, txns []model.Transaction, isTransfer func(typeID string) bool, opts TransferOptions) ([]Proposal, error) {
	opts = opts.withDefaults()

	type dated struct {
		tx   model.Transaction
		date time.Time
	}
	var pool []dated
	for _, tx := range txns {
		if tx.IsLinked() || tx.IsParent || tx.IsChild() {
			continue
		}
		d, err := time.Parse(time.DateOnly, tx.Date)
		if err != nil {
			continue
		}
		pool = append(pool, dated{tx: tx, date: d})
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].date.Before(pool[j].date) })

	window := time.Duration(opts.WindowDays) * 24 * time.Hour
	used := make(map[string]bool)

	var proposals []Proposal
	for _, src := range pool {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if used[src.tx.ID] || !isTransfer(src.tx.TypeID) {
			continue
		}

		var cands []dated
		for _, c := range pool {
			if used[c.tx.ID] || c.tx.ID == src.tx.ID || c.tx.AccountID == src.tx.AccountID {
				continue
			}
			if absDuration(c.date.Sub(src.date)) > window {
				continue
			}
			cands = append(cands, c)
		}
		sort.SliceStable(cands, func(i, j int) bool {
			return absDuration(cands[i].date.Sub(src.date)) < absDuration(cands[j].date.Sub(src.date))
		})
		if len(cands) > maxCandidates {
			cands = cands[:maxCandidates]
		}

		amounts := make([]decimal.Decimal, len(cands))
		for i, c := range cands {
			amounts[i] = c.tx.Amount.Abs()
		}
		picked := findSubset(amounts, src.tx.Amount.Abs(), opts.Tolerance.Decimal, opts.MaxGroupSize)
		if picked == nil {
			continue
		}

		p := Proposal{Source: src.tx}
		used[src.tx.ID] = true
		for _, i := range picked {
			p.Matches = append(p.Matches, cands[i].tx)
			used[cands[i].tx.ID] = true
		}
		p.Difference = src.tx.Amount.Abs().Sub(Total(p.Matches)).Abs()
		proposals = append(proposals, p)
	}
	return proposals, nil
}

// findSubset returns the indices of the smallest subset of amounts, up to
// maxSize elements, whose sum is within tolerance of target. Among subsets of
// equal size the first found in index order wins.
func findSubset(amounts []decimal.Decimal, target, tolerance decimal.Decimal, maxSize int) []int {
	for size := 1; size <= maxSize && size <= len(amounts); size++ {
		picked := make([]int, 0, size)
		if search(amounts, target, tolerance, size, 0, decimal.Zero, &picked) {
			return picked
		}
	}
	return nil
}

func search(amounts []decimal.Decimal, target, tolerance decimal.Decimal, size, start int, sum decimal.Decimal, picked *[]int) bool {
	if len(*picked) == size {
		return sum.Sub(target).Abs().LessThanOrEqual(tolerance)
	}
	for i := start; i < len(amounts); i++ {
		next := sum.Add(amounts[i])
		// amounts are magnitudes, so an overshoot only grows
		if next.Sub(target).GreaterThan(tolerance) {
			continue
		}
		*picked = append(*picked, i)
		if search(amounts, target, tolerance, size, i+1, next, picked) {
			return true
		}
		*picked = (*picked)[:len(*picked)-1]
	}
	return false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// GroupAudit is the balance check of one link group.
type GroupAudit struct {
	GroupID    string
	SideA      []model.Transaction
	SideB      []model.Transaction
	TotalA     decimal.Decimal
	TotalB     decimal.Decimal
	Difference decimal.Decimal
	Balanced   bool
}

// PartitionLinkGroup splits a link group into two sides: a split parent
// against its children, otherwise the first transaction's account against
// every other account.
func PartitionLinkGroup(group []model.Transaction) (a, b []model.Transaction) {
	for _, tx := range group {
		if tx.IsParent {
			a = append(a, tx)
		}
	}
	if len(a) > 0 {
		for _, tx := range group {
			if !tx.IsParent {
				b = append(b, tx)
			}
		}
		return a, b
	}

	if len(group) == 0 {
		return nil, nil
	}
	first := group[0].AccountID
	for _, tx := range group {
		if tx.AccountID == first {
			a = append(a, tx)
		} else {
			b = append(b, tx)
		}
	}
	return a, b
}

// AuditLinkGroups checks every link group in txns and returns one audit per
// group, ordered by group id.
func AuditLinkGroups(txns []model.Transaction, tolerance decimal.Decimal) []GroupAudit {
	groups := make(map[string][]model.Transaction)
	for _, tx := range txns {
		if tx.IsLinked() {
			groups[tx.LinkGroupID] = append(groups[tx.LinkGroupID], tx)
		}
	}
	ids := make([]string, 0, len(groups))
	for gid := range groups {
		ids = append(ids, gid)
	}
	sort.Strings(ids)

	audits := make([]GroupAudit, 0, len(ids))
	for _, gid := range ids {
		a, b := PartitionLinkGroup(groups[gid])
		totalA, totalB, ok := MatchSides(a, b, tolerance)
		audits = append(audits, GroupAudit{
			GroupID:    gid,
			SideA:      a,
			SideB:      b,
			TotalA:     totalA,
			TotalB:     totalB,
			Difference: totalA.Sub(totalB).Abs(),
			Balanced:   ok,
		})
	}
	return audits
}
