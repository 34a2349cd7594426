package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/loupelabs/loupe/internal/api/client"
	domain "github.com/loupelabs/loupe/pkg/types"
)

func matchesCmd() *cobra.Command {
	var (
		taskID       string
		status       string
		minDealScore int
		maxRiskScore int
		limit        int
		offset       int
		orderBy      string
	)

	cmd := &cobra.Command{
		Use:   "matches <jewelry|gemstone|watch>",
		Short: "List matches for an item type",
		Args:  cobra.ExactArgs(1),
		Example: `  loupectl matches jewelry
  loupectl matches gemstone --min-deal-score 80 --order-by deal_score
  loupectl matches watch --task-id 3f6c01aa --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := &apiclient.MatchFilter{
				TaskID:  taskID,
				Status:  domain.MatchStatus(status),
				Limit:   limit,
				Offset:  offset,
				OrderBy: orderBy,
			}
			if cmd.Flags().Changed("min-deal-score") {
				filter.MinDealScore = &minDealScore
			}
			if cmd.Flags().Changed("max-risk-score") {
				filter.MaxRiskScore = &maxRiskScore
			}

			c := newClient()
			ctx := context.Background()

			switch domain.ItemType(args[0]) {
			case domain.ItemJewelry:
				matches, err := c.ListJewelryMatches(ctx, filter)
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(matches)
				}
				if len(matches) == 0 {
					fmt.Println("No matches found.")
					return nil
				}
				return printJewelryTable(matches)
			case domain.ItemGemstone:
				matches, err := c.ListGemstoneMatches(ctx, filter)
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(matches)
				}
				if len(matches) == 0 {
					fmt.Println("No matches found.")
					return nil
				}
				return printGemstoneTable(matches)
			case domain.ItemWatch:
				matches, err := c.ListWatchMatches(ctx, filter)
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(matches)
				}
				if len(matches) == 0 {
					fmt.Println("No matches found.")
					return nil
				}
				return printWatchTable(matches)
			default:
				return fmt.Errorf("unknown item type %q (want jewelry, gemstone, or watch)", args[0])
			}
		},
	}

	cmd.Flags().StringVar(&taskID, "task-id", "", "filter by task id")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (new, purchased, rejected, watching, reviewing)")
	cmd.Flags().IntVar(&minDealScore, "min-deal-score", 0, "minimum deal score (gemstones)")
	cmd.Flags().IntVar(&maxRiskScore, "max-risk-score", 0, "maximum risk score (gemstones)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum matches to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "sort column (found_at, price, deal_score)")
	return cmd
}
