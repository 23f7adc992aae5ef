// Package report aggregates affiliate income metrics.
package report

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/importer"
	"github.com/tallyhq/tally/internal/model"
)

// Undated groups metrics whose date is missing or malformed.
const Undated = "undated"

// reportTypeOrder is the display order of Amazon report types.
var reportTypeOrder = []model.ReportType{
	model.ReportOnsite,
	model.ReportOffsite,
	model.ReportCreatorConnections,
	model.ReportUnknown,
}

// AmazonTotals sums Amazon metrics sharing a key.
type AmazonTotals struct {
	Key          string
	Title        string
	Rows         int
	Clicks       int64
	OrderedItems int64
	ShippedItems int64
	Revenue      decimal.Decimal
}

// ConversionRate is ordered items per click as a percentage.
func (t AmazonTotals) ConversionRate() float64 {
	if t.Clicks <= 0 {
		return 0
	}
	return float64(t.OrderedItems) / float64(t.Clicks) * 100
}

func (t *AmazonTotals) add(m model.AmazonMetric) {
	t.Rows++
	t.Clicks += m.Clicks
	t.OrderedItems += m.OrderedItems
	t.ShippedItems += m.ShippedItems
	t.Revenue = t.Revenue.Add(m.Revenue)
	if t.Title == "" {
		t.Title = m.Title
	}
}

// AmazonSummary is the Amazon Associates income report.
type AmazonSummary struct {
	Total        AmazonTotals
	ByReportType []AmazonTotals
	ByMonth      []AmazonTotals
	TopASINs     []AmazonTotals
}

// Amazon totals metrics per report type, per month and per ASIN. TopASINs
// holds the top ASINs by revenue; top <= 0 keeps them all.
func Amazon(metrics []model.AmazonMetric, top int) AmazonSummary {
	s := AmazonSummary{Total: AmazonTotals{Key: "total", Revenue: decimal.Zero}}
	byType := make(map[string]*AmazonTotals)
	byMonth := make(map[string]*AmazonTotals)
	byASIN := make(map[string]*AmazonTotals)

	for _, m := range metrics {
		s.Total.Rows++
		s.Total.Clicks += m.Clicks
		s.Total.OrderedItems += m.OrderedItems
		s.Total.ShippedItems += m.ShippedItems
		s.Total.Revenue = s.Total.Revenue.Add(m.Revenue)

		rt := m.ReportType
		if rt == "" {
			rt = model.ReportUnknown
		}
		amazonBucket(byType, string(rt)).add(m)
		amazonBucket(byMonth, monthKey(m.Date)).add(m)
		amazonBucket(byASIN, m.ASIN).add(m)
	}

	for _, rt := range reportTypeOrder {
		if t, ok := byType[string(rt)]; ok {
			t.Title = ""
			s.ByReportType = append(s.ByReportType, *t)
		}
	}
	s.ByMonth = sortedByKey(byMonth)
	for i := range s.ByMonth {
		s.ByMonth[i].Title = ""
	}

	asins := make([]AmazonTotals, 0, len(byASIN))
	for _, t := range byASIN {
		asins = append(asins, *t)
	}
	slices.SortFunc(asins, func(a, b AmazonTotals) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if top > 0 && len(asins) > top {
		asins = asins[:top]
	}
	s.TopASINs = asins
	return s
}

func amazonBucket(m map[string]*AmazonTotals, key string) *AmazonTotals {
	t, ok := m[key]
	if !ok {
		t = &AmazonTotals{Key: key, Revenue: decimal.Zero}
		m[key] = t
	}
	return t
}

// YouTubeTotals sums YouTube metrics sharing a key.
type YouTubeTotals struct {
	Key            string
	Title          string
	Rows           int
	Views          int64
	WatchTimeHours float64
	Subscribers    int64
	Impressions    int64
	Revenue        decimal.Decimal
}

func (t *YouTubeTotals) add(m model.YouTubeMetric) {
	t.Rows++
	t.Views += m.Views
	t.WatchTimeHours += m.WatchTimeHours
	t.Subscribers += m.Subscribers
	t.Impressions += m.Impressions
	t.Revenue = t.Revenue.Add(m.Revenue)
	if t.Title == "" {
		t.Title = m.VideoTitle
	}
}

// YouTubeSummary is the YouTube income report.
type YouTubeSummary struct {
	Total   YouTubeTotals
	ByVideo []YouTubeTotals
	ByMonth []YouTubeTotals
}

// YouTube totals metrics per video, highest revenue first, and per month.
func YouTube(metrics []model.YouTubeMetric) YouTubeSummary {
	s := YouTubeSummary{Total: YouTubeTotals{Key: "total", Revenue: decimal.Zero}}
	byVideo := make(map[string]*YouTubeTotals)
	byMonth := make(map[string]*YouTubeTotals)

	for _, m := range metrics {
		s.Total.Rows++
		s.Total.Views += m.Views
		s.Total.WatchTimeHours += m.WatchTimeHours
		s.Total.Subscribers += m.Subscribers
		s.Total.Impressions += m.Impressions
		s.Total.Revenue = s.Total.Revenue.Add(m.Revenue)

		youtubeBucket(byVideo, m.VideoID).add(m)
		month := youtubeBucket(byMonth, monthKey(m.Date))
		month.add(m)
		month.Title = ""
	}

	s.ByVideo = make([]YouTubeTotals, 0, len(byVideo))
	for _, t := range byVideo {
		s.ByVideo = append(s.ByVideo, *t)
	}
	slices.SortFunc(s.ByVideo, func(a, b YouTubeTotals) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Views, a.Views); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})

	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareMonths)
	for _, k := range keys {
		s.ByMonth = append(s.ByMonth, *byMonth[k])
	}
	return s
}

func youtubeBucket(m map[string]*YouTubeTotals, key string) *YouTubeTotals {
	t, ok := m[key]
	if !ok {
		t = &YouTubeTotals{Key: key, Revenue: decimal.Zero}
		m[key] = t
	}
	return t
}

func monthKey(date string) string {
	month, err := importer.MonthOf(date)
	if err != nil {
		return Undated
	}
	return month
}

// compareMonths orders YYYY-MM keys ascending with Undated last.
func compareMonths(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == Undated:
		return 1
	case b == Undated:
		return -1
	}
	return cmp.Compare(a, b)
}

func sortedByKey(m map[string]*AmazonTotals) []AmazonTotals {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareMonths)
	out := make([]AmazonTotals, len(keys))
	for i, k := range keys {
		out[i] = *m[k]
	}
	return out
}
