package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// WriteAmazon renders s as aligned text tables. A non-empty currency labels
// the revenue column.
func WriteAmazon(w io.Writer, s AmazonSummary, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	revenue := revenueHeader(currency)
	header := "%s\tROWS\tCLICKS\tORDERED\tSHIPPED\tCONV %%\t%s\n"
	row := func(label string, t AmazonTotals) {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\t%s\n", label, t.Rows, t.Clicks, t.OrderedItems,
			t.ShippedItems, strconv.FormatFloat(t.ConversionRate(), 'f', 2, 64), t.Revenue.StringFixed(2))
	}

	fmt.Fprintf(tw, header, "REPORT TYPE", revenue)
	for _, t := range s.ByReportType {
		row(t.Key, t)
	}
	row("total", s.Total)
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, header, "MONTH", revenue)
	for _, t := range s.ByMonth {
		row(t.Key, t)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, header, "ASIN", revenue)
	for _, t := range s.TopASINs {
		row(t.Key+" "+truncate(t.Title, 40), t)
	}
	return tw.Flush()
}

// WriteYouTube renders s as aligned text tables. A non-empty currency labels
// the revenue column.
func WriteYouTube(w io.Writer, s YouTubeSummary, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	revenue := revenueHeader(currency)
	header := "%s\tVIEWS\tWATCH HOURS\tSUBSCRIBERS\tIMPRESSIONS\t%s\n"
	row := func(label string, t YouTubeTotals) {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d\t%s\n", label, t.Views,
			strconv.FormatFloat(t.WatchTimeHours, 'f', 1, 64), t.Subscribers, t.Impressions, t.Revenue.StringFixed(2))
	}

	fmt.Fprintf(tw, header, "VIDEO", revenue)
	for _, t := range s.ByVideo {
		row(t.Key+" "+truncate(t.Title, 40), t)
	}
	row("total", s.Total)
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, header, "MONTH", revenue)
	for _, t := range s.ByMonth {
		row(t.Key, t)
	}
	return tw.Flush()
}

func revenueHeader(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return "REVENUE"
	}
	return "REVENUE (" + currency + ")"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
