package importer

import (
	"strings"

	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/mapping"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/tabular"
)

// Identifiers shorter than this are footer or summary rows.
const minIdentifierLength = 5

// AmazonOptions controls Amazon report processing.
type AmazonOptions struct {
	// ForcedType overrides per-row report type classification.
	ForcedType model.ReportType
	// FallbackDate is used for reports without a per-row date column.
	FallbackDate   string
	SourceFilename string
}

// YouTubeOptions controls YouTube export processing.
type YouTubeOptions struct {
	FallbackDate   string
	SourceFilename string
}

// validIdentifier rejects missing, too-short and "Total" identifiers.
func validIdentifier(s string) bool {
	if len(s) < minIdentifierLength {
		return false
	}
	return !strings.Contains(strings.ToLower(s), "total")
}

// ProcessAmazon materializes Amazon report rows in row order. Rows without a
// valid ASIN or date are dropped.
func ProcessAmazon(tbl tabular.Table, m model.ColumnMapping, opts AmazonOptions) ([]model.AmazonMetric, Result) {
	res := Result{Rows: len(tbl.Rows)}

	var out []model.AmazonMetric
	for _, row := range tbl.Rows {
		asin := strings.TrimSpace(m.Cell(row, mapping.AmazonASIN))
		if !validIdentifier(asin) {
			res.Dropped++
			continue
		}
		date, ok := ParseDate(m.Cell(row, mapping.AmazonDate))
		if !ok {
			date, ok = opts.FallbackDate, opts.FallbackDate != ""
		}
		if !ok {
			res.Dropped++
			continue
		}

		clicks := ParseCount(m.Cell(row, mapping.AmazonClicks))
		ordered := ParseCount(m.Cell(row, mapping.AmazonOrderedItems))
		var conversion float64
		if clicks > 0 {
			conversion = float64(ordered) / float64(clicks) * 100
		}

		out = append(out, model.AmazonMetric{
			ID:             id.New(),
			Date:           date,
			ASIN:           asin,
			Title:          strings.TrimSpace(m.Cell(row, mapping.AmazonTitle)),
			Category:       strings.TrimSpace(m.Cell(row, mapping.AmazonCategory)),
			Clicks:         clicks,
			OrderedItems:   ordered,
			ShippedItems:   ParseCount(m.Cell(row, mapping.AmazonShippedItems)),
			Revenue:        ParseAmount(m.Cell(row, mapping.AmazonRevenue)),
			ConversionRate: conversion,
			TrackingID:     strings.TrimSpace(m.Cell(row, mapping.AmazonTrackingID)),
			CampaignTitle:  strings.TrimSpace(m.Cell(row, mapping.AmazonCampaignTitle)),
			ReportType:     mapping.ClassifyAmazonRow(m, row, opts.ForcedType),
			SourceFilename: opts.SourceFilename,
		})
	}
	return out, res
}

// ProcessYouTube materializes YouTube export rows in row order. Rows without
// a valid video id are dropped; a missing date is left empty unless a
// fallback is given.
func ProcessYouTube(tbl tabular.Table, m model.ColumnMapping, opts YouTubeOptions) ([]model.YouTubeMetric, Result) {
	res := Result{Rows: len(tbl.Rows)}

	var out []model.YouTubeMetric
	for _, row := range tbl.Rows {
		videoID := strings.TrimSpace(m.Cell(row, mapping.YouTubeVideoID))
		if !validIdentifier(videoID) {
			res.Dropped++
			continue
		}
		date, ok := ParseDate(m.Cell(row, mapping.YouTubeDate))
		if !ok {
			date = opts.FallbackDate
		}

		out = append(out, model.YouTubeMetric{
			ID:             id.New(),
			Date:           date,
			VideoID:        videoID,
			VideoTitle:     strings.TrimSpace(m.Cell(row, mapping.YouTubeTitle)),
			Views:          ParseCount(m.Cell(row, mapping.YouTubeViews)),
			WatchTimeHours: ParseFloat(m.Cell(row, mapping.YouTubeWatchTime)),
			Subscribers:    ParseCount(m.Cell(row, mapping.YouTubeSubscribers)),
			Impressions:    ParseCount(m.Cell(row, mapping.YouTubeImpressions)),
			ClickThrough:   ParseFloat(m.Cell(row, mapping.YouTubeCTR)),
			Revenue:        ParseNumber(m.Cell(row, mapping.YouTubeRevenue)),
			SourceFilename: opts.SourceFilename,
		})
	}
	return out, res
}
