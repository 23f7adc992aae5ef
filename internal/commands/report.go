package commands

import (
	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/report"
)

func newReportCommand(g *globalOptions) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize affiliate income",
	}

	var top int
	amazonCmd := &cobra.Command{
		Use:   "amazon",
		Short: "Amazon Associates totals by report type, month and ASIN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			return report.WriteAmazon(cmd.OutOrStdout(), report.Amazon(p.ledger.State().AmazonMetrics, top), p.cfg.Import.Currency)
		},
	}
	amazonCmd.Flags().IntVar(&top, "top", 10, "number of ASINs to list (0 for all)")

	youtubeCmd := &cobra.Command{
		Use:   "youtube",
		Short: "YouTube totals by video and month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			return report.WriteYouTube(cmd.OutOrStdout(), report.YouTube(p.ledger.State().YouTubeMetrics), p.cfg.Import.Currency)
		},
	}

	reportCmd.AddCommand(amazonCmd, youtubeCmd)
	return reportCmd
}
