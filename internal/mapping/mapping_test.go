package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/model"
)

func TestMatcher_FirstHeaderWins(t *testing.T) {
	headers := []string{"category", "commission income", "ad fees"}
	m := Contains("ad fees", "advertising fees", "commission income")

	// "ad fees" is the first candidate but "commission income" comes first
	// in the header row.
	assert.Equal(t, 1, m.Find(headers))
}

func TestMatcher_ExactVsContains(t *testing.T) {
	headers := []string{"date shipped", "date"}
	assert.Equal(t, 1, Exact("date").Find(headers))
	assert.Equal(t, 0, Contains("date").Find(headers))
	assert.Equal(t, model.NotFound, Exact("day").Find(headers))
}

func TestAutoMapAmazonColumns(t *testing.T) {
	headers := []string{"Category", "Name", "ASIN", "Date Shipped", "Price($)", "Items Shipped", "Returns", "Revenue($)", "Ad Fees($)", "Device Type Group", "Tracking ID"}
	m := AutoMapAmazonColumns(headers)

	assert.Equal(t, 2, m.Index(AmazonASIN))
	assert.Equal(t, 3, m.Index(AmazonDate))
	assert.Equal(t, 1, m.Index(AmazonTitle))
	assert.Equal(t, 0, m.Index(AmazonCategory))
	assert.Equal(t, 5, m.Index(AmazonShippedItems))
	assert.Equal(t, 8, m.Index(AmazonRevenue), "revenue($) is not a candidate, ad fees is")
	assert.Equal(t, 10, m.Index(AmazonTrackingID))
	assert.Equal(t, model.NotFound, m.Index(AmazonClicks))
	assert.Equal(t, model.NotFound, m.Index(AmazonCampaignTitle))
	require.NoError(t, Amazon.Validate(m))
}

func TestAutoMapAmazonColumns_RevenueHeaderOrder(t *testing.T) {
	headers := []string{"ASIN", "Bounties Earned", "Ad Fees"}
	m := AutoMapAmazonColumns(headers)
	assert.Equal(t, 1, m.Index(AmazonRevenue))
}

func TestAutoMap_Idempotent(t *testing.T) {
	headers := []string{"Date", "ASIN", "Title", "Clicks", "Ordered Items", "Earnings", "Tracking ID"}
	first := AutoMapAmazonColumns(headers)
	second := AutoMapAmazonColumns(headers)
	assert.Equal(t, first, second)

	yt := []string{"Content", "Video title", "Views", "Watch time (hours)"}
	assert.Equal(t, AutoMapYouTubeColumns(yt), AutoMapYouTubeColumns(yt))
}

func TestAutoMapYouTubeColumns(t *testing.T) {
	headers := []string{"Content", "Video title", "Video publish time", "Duration", "Views", "Watch time (hours)", "Subscribers", "Estimated revenue (USD)", "Impressions", "Impressions click-through rate (%)"}
	m := AutoMapYouTubeColumns(headers)

	assert.Equal(t, 0, m.Index(YouTubeVideoID))
	assert.Equal(t, 1, m.Index(YouTubeTitle))
	assert.Equal(t, 2, m.Index(YouTubeDate))
	assert.Equal(t, 4, m.Index(YouTubeViews))
	assert.Equal(t, 5, m.Index(YouTubeWatchTime))
	assert.Equal(t, 6, m.Index(YouTubeSubscribers))
	assert.Equal(t, 7, m.Index(YouTubeRevenue))
	assert.Equal(t, 8, m.Index(YouTubeImpressions))
	assert.Equal(t, 9, m.Index(YouTubeCTR))
}

func TestAutoMapBankColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    map[string]int
		split   bool
	}{
		{
			name:    "chase checking",
			headers: []string{"Details", "Posting Date", "Description", "Amount", "Type", "Balance", "Check or Slip #"},
			want:    map[string]int{BankDate: 1, BankDescription: 2, BankAmount: 3},
		},
		{
			name:    "credit and debit columns",
			headers: []string{"Transaction Date", "Payee", "Debit", "Credit"},
			want:    map[string]int{BankDate: 0, BankDescription: 1, BankDebit: 2, BankCredit: 3},
			split:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := AutoMapBankColumns(tt.headers)
			for field, idx := range tt.want {
				assert.Equal(t, idx, m.Index(field), field)
			}
			assert.Equal(t, tt.split, SplitAmounts(m))
			assert.NoError(t, Bank.Validate(m))
		})
	}
}

func TestValidate_Missing(t *testing.T) {
	m := AutoMapAmazonColumns([]string{"Date", "Title", "Earnings"})
	err := Amazon.Validate(m)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "asin")

	err = Bank.Validate(AutoMapBankColumns([]string{"Date", "Description", "Balance"}))
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "amount or credit+debit")

	err = YouTube.Validate(AutoMapYouTubeColumns([]string{"Views"}))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestOverride(t *testing.T) {
	m := model.ColumnMapping{AmazonASIN: 0, AmazonDate: model.NotFound}
	out, err := Amazon.Override(m, map[string]int{AmazonDate: 2}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Index(AmazonDate))
	assert.Equal(t, model.NotFound, m.Index(AmazonDate), "input is not modified")

	_, err = Amazon.Override(m, map[string]int{AmazonDate: 3}, 3)
	assert.Error(t, err)
}

func TestOverride_UnknownField(t *testing.T) {
	m := model.ColumnMapping{BankDate: 0, BankDescription: 1, BankAmount: 2}
	_, err := Bank.Override(m, map[string]int{"ammount": 2}, 3)
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), "ammount")

	_, err = Amazon.Override(m, map[string]int{BankDebit: 1}, 3)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestParseOverrides(t *testing.T) {
	got, err := ParseOverrides([]string{"date=2", "amount = 4", "credit=-1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"date": 2, "amount": 4, "credit": -1}, got)

	_, err = ParseOverrides([]string{"date"})
	assert.Error(t, err)
	_, err = ParseOverrides([]string{"date=x"})
	assert.Error(t, err)
}

func TestResolve_UsesCache(t *testing.T) {
	headers := []string{"Col A", "Col B", "Col C"}
	cache := map[string]model.ColumnMapping{
		Bank.CacheKey("Col A|Col B|Col C"): {BankDate: 0, BankDescription: 1, BankAmount: 2},
	}

	m, cached, err := Resolve(Bank, headers, cache, nil)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 2, m.Index(BankAmount))

	_, cached, err = Resolve(Bank, headers, nil, nil)
	assert.False(t, cached)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestResolve_CacheIsPerSchema(t *testing.T) {
	headers := []string{"Date", "Title", "Amount"}
	cache := map[string]model.ColumnMapping{
		Bank.CacheKey("Date|Title|Amount"): {BankDate: 0, BankDescription: 1, BankAmount: 2},
	}

	_, cached, err := Resolve(Amazon, headers, cache, nil)
	assert.False(t, cached)
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, cached, err = Resolve(YouTube, headers, cache, nil)
	assert.False(t, cached)
	assert.Error(t, err)
}

func TestResolve_LegacyBankCache(t *testing.T) {
	headers := []string{"Col A", "Col B", "Col C"}
	cache := map[string]model.ColumnMapping{
		"Col A|Col B|Col C": {BankDate: 0, BankDescription: 1, BankAmount: 2},
	}

	_, cached, err := Resolve(Bank, headers, cache, nil)
	require.NoError(t, err)
	assert.True(t, cached)

	_, cached, _ = Resolve(Amazon, headers, cache, nil)
	assert.False(t, cached)
}

func TestResolve_Overrides(t *testing.T) {
	headers := []string{"When", "What", "How much"}
	m, _, err := Resolve(Bank, headers, nil, map[string]int{BankDate: 0, BankDescription: 1, BankAmount: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Index(BankDate))
}

func TestClassifyAmazonRow(t *testing.T) {
	onoff := model.ColumnMapping{AmazonTrackingID: 1, AmazonCampaignTitle: model.NotFound}
	assert.Equal(t, model.ReportOnsite, ClassifyAmazonRow(onoff, []string{"x", "shop-onamz-20"}, ""))
	assert.Equal(t, model.ReportOffsite, ClassifyAmazonRow(onoff, []string{"x", "blog-20"}, ""))
	assert.Equal(t, model.ReportOnsite, ClassifyAmazonRow(onoff, []string{"x", "blog-20"}, model.ReportOnsite))

	cc := model.ColumnMapping{AmazonTrackingID: 1, AmazonCampaignTitle: 2}
	assert.Equal(t, model.ReportCreatorConnections, ClassifyAmazonRow(cc, []string{"x", "shop-onamz-20", "Spring"}, ""))
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, model.KindAmazon, DetectKind([]string{"Date", "ASIN", "Earnings"}))
	assert.Equal(t, model.KindYouTube, DetectKind([]string{"Content", "Video title", "Views"}))
	assert.Equal(t, model.KindBank, DetectKind([]string{"Date", "Description", "Amount"}))
}
