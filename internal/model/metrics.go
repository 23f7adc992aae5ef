package model

import "github.com/shopspring/decimal"

// ReportType classifies an Amazon affiliate revenue row.
type ReportType string

const (
	ReportOnsite             ReportType = "onsite"
	ReportOffsite            ReportType = "offsite"
	ReportCreatorConnections ReportType = "creator_connections"
	ReportUnknown            ReportType = "unknown"
)

// AmazonMetric is one row of an Amazon Associates earnings report.
type AmazonMetric struct {
	ID             string          `json:"id"`
	Date           string          `json:"date"`
	ASIN           string          `json:"asin"`
	Title          string          `json:"title"`
	Category       string          `json:"category,omitempty"`
	Clicks         int64           `json:"clicks"`
	OrderedItems   int64           `json:"orderedItems"`
	ShippedItems   int64           `json:"shippedItems"`
	Revenue        decimal.Decimal `json:"revenue"`
	ConversionRate float64         `json:"conversionRate"`
	TrackingID     string          `json:"trackingId,omitempty"`
	CampaignTitle  string          `json:"campaignTitle,omitempty"`
	ReportType     ReportType      `json:"reportType"`
	SourceFilename string          `json:"sourceFilename,omitempty"`
}

// Key identifies the same Amazon row across repeated imports.
func (m AmazonMetric) Key() string {
	return m.Date + "|" + m.ASIN + "|" + m.TrackingID + "|" + string(m.ReportType)
}

// YouTubeMetric is one row of a YouTube Studio analytics export.
type YouTubeMetric struct {
	ID             string          `json:"id"`
	Date           string          `json:"date"` // publish date when the export has one
	VideoID        string          `json:"videoId"`
	VideoTitle     string          `json:"videoTitle"`
	Views          int64           `json:"views"`
	WatchTimeHours float64         `json:"watchTimeHours"`
	Subscribers    int64           `json:"subscribers"`
	Impressions    int64           `json:"impressions"`
	ClickThrough   float64         `json:"clickThroughRate"`
	Revenue        decimal.Decimal `json:"revenue"`
	SourceFilename string          `json:"sourceFilename,omitempty"`
}

// Key identifies the same YouTube row across repeated imports.
func (m YouTubeMetric) Key() string {
	return m.Date + "|" + m.VideoID
}
