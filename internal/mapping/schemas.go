package mapping

import (
	"strings"

	"github.com/tallyhq/tally/internal/model"
)

// Amazon Associates report fields.
const (
	AmazonDate          = "date"
	AmazonASIN          = "asin"
	AmazonTitle         = "title"
	AmazonCategory      = "category"
	AmazonClicks        = "clicks"
	AmazonOrderedItems  = "orderedItems"
	AmazonShippedItems  = "shippedItems"
	AmazonRevenue       = "revenue"
	AmazonTrackingID    = "trackingId"
	AmazonCampaignTitle = "campaignTitle"
)

// YouTube Studio export fields.
const (
	YouTubeVideoID     = "videoId"
	YouTubeTitle       = "title"
	YouTubeDate        = "date"
	YouTubeViews       = "views"
	YouTubeWatchTime   = "watchTime"
	YouTubeSubscribers = "subscribers"
	YouTubeRevenue     = "revenue"
	YouTubeImpressions = "impressions"
	YouTubeCTR         = "ctr"
)

// Bank statement fields.
const (
	BankDate        = "date"
	BankDescription = "description"
	BankAmount      = "amount"
	BankCredit      = "credit"
	BankDebit       = "debit"
	BankCategory    = "category"
	BankMemo        = "memo"
)

// Amazon matches Amazon Associates earnings, orders and Creator Connections reports.
var Amazon = Schema{
	Name: "amazon",
	Rules: []FieldRule{
		{Field: AmazonDate, Matchers: []Matcher{Exact("date"), Contains("date", "day")}},
		{Field: AmazonASIN, Matchers: []Matcher{Contains("asin")}},
		{Field: AmazonTitle, Matchers: []Matcher{
			Exact("title", "product title", "product name", "item name", "name"),
			Contains("product title", "item name", "product name", "title"),
		}},
		{Field: AmazonCategory, Matchers: []Matcher{Exact("category", "product group", "product category")}},
		{Field: AmazonClicks, Matchers: []Matcher{Contains("clicks")}},
		{Field: AmazonOrderedItems, Matchers: []Matcher{Contains("ordered items", "items ordered")}},
		{Field: AmazonShippedItems, Matchers: []Matcher{Contains("shipped items", "items shipped")}},
		{Field: AmazonRevenue, Matchers: []Matcher{
			Contains("ad fees", "advertising fees", "commission income", "earnings", "bounties", "amount"),
		}},
		{Field: AmazonTrackingID, Matchers: []Matcher{Contains("tracking id", "tracking")}},
		{Field: AmazonCampaignTitle, Matchers: []Matcher{Contains("campaign title", "campaign name", "campaign")}},
	},
	Required: []string{AmazonASIN},
}

// YouTube matches YouTube Studio "Content" analytics exports.
var YouTube = Schema{
	Name: "youtube",
	Rules: []FieldRule{
		{Field: YouTubeVideoID, Matchers: []Matcher{Exact("content", "video id", "video"), Contains("video id", "content id")}},
		{Field: YouTubeTitle, Matchers: []Matcher{Exact("video title", "title"), Contains("video title", "title")}},
		{Field: YouTubeDate, Matchers: []Matcher{
			Exact("date", "video publish time", "publish date"),
			Contains("publish", "date"),
		}},
		{Field: YouTubeViews, Matchers: []Matcher{Exact("views"), Contains("views")}},
		{Field: YouTubeWatchTime, Matchers: []Matcher{Contains("watch time")}},
		{Field: YouTubeSubscribers, Matchers: []Matcher{Exact("subscribers"), Contains("subscribers")}},
		{Field: YouTubeRevenue, Matchers: []Matcher{Contains("estimated revenue", "revenue", "earnings")}},
		{Field: YouTubeImpressions, Matchers: []Matcher{Exact("impressions")}},
		{Field: YouTubeCTR, Matchers: []Matcher{Contains("click-through rate", "ctr")}},
	},
	Required: []string{YouTubeVideoID},
}

// Bank matches generic bank and card statement exports, with either a single
// signed amount column or separate credit and debit columns.
var Bank = Schema{
	Name: "bank",
	Rules: []FieldRule{
		{Field: BankDate, Matchers: []Matcher{
			Exact("date", "transaction date", "posting date", "posted date", "trans. date"),
			Contains("date", "posted"),
		}},
		{Field: BankDescription, Matchers: []Matcher{
			Exact("description"),
			Exact("payee", "merchant", "name", "transaction description"),
			Contains("description", "payee", "merchant", "memo", "narrative", "details"),
		}},
		{Field: BankAmount, Matchers: []Matcher{Exact("amount", "transaction amount"), Contains("amount", "value")}},
		{Field: BankCredit, Matchers: []Matcher{Contains("credit", "deposit", "money in", "paid in")}},
		{Field: BankDebit, Matchers: []Matcher{Contains("debit", "withdrawal", "money out", "paid out")}},
		{Field: BankCategory, Matchers: []Matcher{Exact("category")}},
		{Field: BankMemo, Matchers: []Matcher{Exact("memo", "notes", "note")}},
	},
	Required: []string{BankDate, BankDescription},
	AnyOf:    [][]string{{BankAmount}, {BankCredit, BankDebit}},
}

// AutoMapAmazonColumns detects Amazon report columns.
func AutoMapAmazonColumns(headers []string) model.ColumnMapping {
	return Amazon.Detect(headers)
}

// AutoMapYouTubeColumns detects YouTube export columns.
func AutoMapYouTubeColumns(headers []string) model.ColumnMapping {
	return YouTube.Detect(headers)
}

// AutoMapBankColumns detects bank statement columns.
func AutoMapBankColumns(headers []string) model.ColumnMapping {
	return Bank.Detect(headers)
}

// SplitAmounts reports whether m should read separate credit and debit
// columns instead of one signed amount.
func SplitAmounts(m model.ColumnMapping) bool {
	credit, debit := m.Index(BankCredit), m.Index(BankDebit)
	return credit != model.NotFound && debit != model.NotFound && credit != debit
}

// ClassifyAmazonRow decides the report type of one Amazon row: a campaign
// column means Creator Connections, an "onamz" tracking id means onsite,
// anything else offsite. A non-empty forced type wins.
func ClassifyAmazonRow(m model.ColumnMapping, row []string, forced model.ReportType) model.ReportType {
	if forced != "" {
		return forced
	}
	if m.Has(AmazonCampaignTitle) {
		return model.ReportCreatorConnections
	}
	if strings.Contains(strings.ToLower(m.Cell(row, AmazonTrackingID)), "onamz") {
		return model.ReportOnsite
	}
	return model.ReportOffsite
}

// DetectKind guesses which importer a header list belongs to.
func DetectKind(headers []string) model.ImportKind {
	if Amazon.Detect(headers).Has(AmazonASIN) {
		return model.KindAmazon
	}
	if YouTube.Detect(headers).Has(YouTubeVideoID) {
		return model.KindYouTube
	}
	return model.KindBank
}

// SchemaFor returns the schema used for kind.
func SchemaFor(kind model.ImportKind) Schema {
	switch kind {
	case model.KindAmazon:
		return Amazon
	case model.KindYouTube:
		return YouTube
	default:
		return Bank
	}
}
