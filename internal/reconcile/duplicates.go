// Package reconcile finds likely duplicate imports and groups of
// transactions that move the same money between accounts.
package reconcile

import (
	"context"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/sync/errgroup"

	"github.com/tallyhq/tally/internal/model"
)

const (
	// DefaultSimilarity is the minimum description similarity for a duplicate.
	DefaultSimilarity = 0.8

	// DefaultWorkers is the number of concurrent duplicate scanners.
	DefaultWorkers = 4
)

// amountEpsilon is the smallest amount difference treated as different.
var amountEpsilon = decimal.RequireFromString("0.01")

// editOptions weighs insertions, deletions and substitutions equally.
var editOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// DuplicateOptions tunes FindDuplicates.
type DuplicateOptions struct {
	Similarity float64
	Workers    int
}

func (o DuplicateOptions) withDefaults() DuplicateOptions {
	if o.Similarity <= 0 {
		o.Similarity = DefaultSimilarity
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	return o
}

// FindDuplicates pairs each candidate with the most similar existing
// transaction on the same date with the same amount. Pairs come back in
// candidate order with Import false, so the default decision is to skip.
// The scan stops early when ctx is cancelled and returns ctx.Err().
func FindDuplicates(ctx context.Context, candidates, existing []model.Transaction, opts DuplicateOptions) ([]model.DuplicatePair, error) {
	opts = opts.withDefaults()
	if len(candidates) == 0 || len(existing) == 0 {
		return nil, ctx.Err()
	}

	byDate := make(map[string][]int, len(existing))
	for i, tx := range existing {
		byDate[tx.Date] = append(byDate[tx.Date], i)
	}

	found := make([]*model.DuplicatePair, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range candidates {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found[i] = bestMatch(candidates[i], existing, byDate[candidates[i].Date], opts.Similarity)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pairs []model.DuplicatePair
	for _, p := range found {
		if p != nil {
			pairs = append(pairs, *p)
		}
	}
	return pairs, nil
}

func bestMatch(cand model.Transaction, existing []model.Transaction, sameDate []int, threshold float64) *model.DuplicatePair {
	var best *model.DuplicatePair
	for _, idx := range sameDate {
		ex := existing[idx]
		if !SameAmount(cand.Amount, ex.Amount) {
			continue
		}
		sim := DescriptionSimilarity(cand.Description, ex.Description)
		if sim < threshold {
			continue
		}
		if best == nil || sim > best.Similarity {
			best = &model.DuplicatePair{NewTx: cand, ExistingTx: ex, Similarity: sim}
		}
	}
	return best
}

// SameAmount reports whether two amounts differ by less than a cent.
func SameAmount(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(amountEpsilon)
}

// DescriptionSimilarity scores two descriptions from 0 to 1. Descriptions
// are compared lowercased with everything but letters and digits removed.
// Either containing the other scores 1; otherwise the score is one minus the
// edit distance over the longer length.
func DescriptionSimilarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 1
	}
	ra, rb := []rune(na), []rune(nb)
	distance := levenshtein.DistanceForStrings(ra, rb, editOptions)
	longest := max(len(ra), len(rb))
	return max(0, 1-float64(distance)/float64(longest))
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Decide applies the review outcome: pairs marked Import pass through,
// everything else is skipped. importAll overrides every pair.
func Decide(pairs []model.DuplicatePair, importAll bool) (keep map[string]bool) {
	keep = make(map[string]bool, len(pairs))
	for _, p := range pairs {
		keep[p.NewTx.ID] = importAll || p.Import
	}
	return keep
}
