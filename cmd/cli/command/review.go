package command

// review.go handles review commands: list, submit, append updates, edit,
// history and business responses.

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reviewhub/cmd/cli/command/client"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review commands",
	Long: `Submit and manage reviews. A review starts a chain for you on that
business; later changes of opinion are appended as dated updates rather than
overwriting the original.`,
}

var reviewListCmd = &cobra.Command{
	Use:   "list [business-id]",
	Short: "List a business's reviews (one per reviewer, latest version)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		businessID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid business id %q", args[0])
		}
		sort, _ := cmd.Flags().GetString("sort")
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")

		result, err := newAPIClient().ListReviews(businessID, sort, page, pageSize)
		if err != nil {
			return fmt.Errorf("could not list reviews: %w", err)
		}

		fmt.Printf("Reviews (page %d/%d, %d reviewers, avg ★%.1f):\n",
			result.Page, result.TotalPages, result.Stats.ReviewCount, result.Stats.AverageRating)
		for _, r := range result.Data {
			printReview(&r)
		}
		return nil
	},
}

var reviewSubmitCmd = &cobra.Command{
	Use:   "submit [business-id]",
	Short: "Submit your review of a business",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		businessID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid business id %q", args[0])
		}

		var req client.SubmitReviewRequest
		req.Rating, _ = cmd.Flags().GetInt("rating")
		req.Content, _ = cmd.Flags().GetString("content")
		req.ProofSubmitted, _ = cmd.Flags().GetBool("proof")

		r, err := newAPIClient().SubmitReview(businessID, &req)
		if err != nil {
			return fmt.Errorf("could not submit review: %w", err)
		}
		fmt.Printf("✓ Review submitted (id %s). You have a short window to fix typos with 'review edit'.\n", r.ID)
		return nil
	},
}

var reviewUpdateCmd = &cobra.Command{
	Use:   "update [review-id]",
	Short: "Append a dated update to your review",
	Long: `Append a new version to your review chain. The original stays visible
in the history; listings and stats show this latest version.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req client.SubmitReviewRequest
		req.Rating, _ = cmd.Flags().GetInt("rating")
		req.Content, _ = cmd.Flags().GetString("content")
		req.ProofSubmitted, _ = cmd.Flags().GetBool("proof")

		r, err := newAPIClient().AppendUpdate(args[0], &req)
		if err != nil {
			return fmt.Errorf("could not append update: %w", err)
		}
		if r.UpdateNumber != nil {
			fmt.Printf("✓ Update #%d appended (id %s).\n", *r.UpdateNumber, r.ID)
		} else {
			fmt.Printf("✓ Update appended (id %s).\n", r.ID)
		}
		return nil
	},
}

var reviewEditCmd = &cobra.Command{
	Use:   "edit [review-id]",
	Short: "Fix a just-posted review in place",
	Long:  `Edit a review in place. Allowed once, shortly after posting; after that, use 'review update' instead.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req client.EditReviewRequest
		if rating, _ := cmd.Flags().GetInt("rating"); rating != 0 {
			req.Rating = &rating
		}
		if content, _ := cmd.Flags().GetString("content"); content != "" {
			req.Content = &content
		}

		r, err := newAPIClient().EditReview(args[0], &req)
		if err != nil {
			return fmt.Errorf("could not edit review: %w", err)
		}
		fmt.Printf("✓ Review %s edited.\n", r.ID)
		return nil
	},
}

var reviewHistoryCmd = &cobra.Command{
	Use:   "history [review-id]",
	Short: "Show a review chain's full version history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := newAPIClient().GetReviewHistory(args[0])
		if err != nil {
			return fmt.Errorf("could not get history: %w", err)
		}

		fmt.Printf("History for %s on business #%d:\n", history.Username, history.BusinessID)
		for _, v := range history.Versions {
			label := "original"
			if v.UpdateNumber != nil {
				label = fmt.Sprintf("update #%d", *v.UpdateNumber)
			}
			edited := ""
			if v.Edited {
				edited = " (edited)"
			}
			fmt.Printf("  [%s] ★%d %s%s\n      %s\n",
				v.CreatedAt.Format("2006-01-02"), v.Rating, label, edited, v.Content)
		}
		return nil
	},
}

var reviewRespondCmd = &cobra.Command{
	Use:   "respond [review-id]",
	Short: "Respond to a review on a listing you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req client.RespondReviewRequest
		req.Response, _ = cmd.Flags().GetString("content")

		r, err := newAPIClient().RespondToReview(args[0], &req)
		if err != nil {
			return fmt.Errorf("could not respond: %w", err)
		}
		fmt.Printf("✓ Response posted on review %s.\n", r.ID)
		return nil
	},
}

func printReview(r *client.ReviewResponse) {
	updates := ""
	if r.UpdateCount > 0 {
		updates = fmt.Sprintf(" (%d updates)", r.UpdateCount)
	}
	fmt.Printf("  ★%d %s [%s]%s\n      %s\n", r.Rating, r.Username, r.Badge, updates, r.Content)
	if r.BusinessResponse != nil {
		fmt.Printf("      ↳ owner: %s\n", *r.BusinessResponse)
	}
}

func init() {
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewSubmitCmd)
	reviewCmd.AddCommand(reviewUpdateCmd)
	reviewCmd.AddCommand(reviewEditCmd)
	reviewCmd.AddCommand(reviewHistoryCmd)
	reviewCmd.AddCommand(reviewRespondCmd)

	reviewListCmd.Flags().StringP("sort", "s", "newest", "Sort order: newest, oldest, highest, lowest")
	reviewListCmd.Flags().Int("page", 1, "Page number")
	reviewListCmd.Flags().Int("page-size", 20, "Reviews per page")

	for _, c := range []*cobra.Command{reviewSubmitCmd, reviewUpdateCmd} {
		c.Flags().IntP("rating", "r", 0, "Rating from 1 to 5")
		c.Flags().StringP("content", "c", "", "Review text")
		c.Flags().Bool("proof", false, "Mark that you are submitting proof of experience")
		c.MarkFlagRequired("rating")
		c.MarkFlagRequired("content")
	}

	reviewEditCmd.Flags().IntP("rating", "r", 0, "Corrected rating from 1 to 5")
	reviewEditCmd.Flags().StringP("content", "c", "", "Corrected review text")

	reviewRespondCmd.Flags().StringP("content", "c", "", "Response text")
	reviewRespondCmd.MarkFlagRequired("content")

	rootCmd.AddCommand(reviewCmd)
}
