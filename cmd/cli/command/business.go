package command

// business.go handles business directory commands: list, get, search,
// create, stats.

import (
	"fmt"

	"github.com/spf13/cobra"

	"reviewhub/cmd/cli/command/client"
)

var businessCmd = &cobra.Command{
	Use:   "business",
	Short: "Business directory commands",
	Long:  `Browse, search and manage business listings.`,
}

var businessListCmd = &cobra.Command{
	Use:   "list",
	Short: "List business listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")

		result, err := newAPIClient().ListBusinesses(page, pageSize)
		if err != nil {
			return fmt.Errorf("could not list businesses: %w", err)
		}

		fmt.Printf("Businesses (page %d/%d, %d total):\n", result.Page, result.TotalPages, result.Total)
		for _, b := range result.Data {
			printBusiness(&b)
		}
		return nil
	},
}

var businessGetCmd = &cobra.Command{
	Use:   "get [business-id]",
	Short: "Show one business listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid business id %q", args[0])
		}

		b, err := newAPIClient().GetBusiness(id)
		if err != nil {
			return fmt.Errorf("could not get business: %w", err)
		}
		printBusiness(b)
		if b.Description != nil {
			fmt.Printf("  %s\n", *b.Description)
		}
		return nil
	},
}

var businessSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search businesses by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := newAPIClient().SearchBusinesses(args[0])
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if len(results) == 0 {
			fmt.Println("No businesses found.")
			return nil
		}
		for _, b := range results {
			printBusiness(&b)
		}
		return nil
	},
}

var businessCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new business listing",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req client.CreateBusinessRequest
		req.Name, _ = cmd.Flags().GetString("name")
		if category, _ := cmd.Flags().GetString("category"); category != "" {
			req.Category = &category
		}
		if city, _ := cmd.Flags().GetString("city"); city != "" {
			req.City = &city
		}
		if website, _ := cmd.Flags().GetString("website"); website != "" {
			req.Website = &website
		}
		if description, _ := cmd.Flags().GetString("description"); description != "" {
			req.Description = &description
		}

		b, err := newAPIClient().CreateBusiness(&req)
		if err != nil {
			return fmt.Errorf("could not create business: %w", err)
		}
		fmt.Printf("✓ Created business #%d", b.ID)
		if b.Slug != nil {
			fmt.Printf(" (%s)", *b.Slug)
		}
		fmt.Println()
		return nil
	},
}

var businessStatsCmd = &cobra.Command{
	Use:   "stats [business-id]",
	Short: "Show a business's rating summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid business id %q", args[0])
		}

		stats, err := newAPIClient().GetBusinessStats(id)
		if err != nil {
			return fmt.Errorf("could not get stats: %w", err)
		}
		fmt.Printf("Average rating: %.1f (%d reviewers)\n", stats.AverageRating, stats.ReviewCount)
		return nil
	},
}

func printBusiness(b *client.BusinessResponse) {
	line := fmt.Sprintf("#%d %s", b.ID, b.Name)
	if b.City != nil {
		line += ", " + *b.City
	}
	fmt.Printf("%s  ★%.1f (%d reviews)\n", line, b.AverageRating, b.ReviewCount)
}

func init() {
	businessCmd.AddCommand(businessListCmd)
	businessCmd.AddCommand(businessGetCmd)
	businessCmd.AddCommand(businessSearchCmd)
	businessCmd.AddCommand(businessCreateCmd)
	businessCmd.AddCommand(businessStatsCmd)

	businessListCmd.Flags().Int("page", 1, "Page number")
	businessListCmd.Flags().Int("page-size", 20, "Listings per page")

	businessCreateCmd.Flags().StringP("name", "n", "", "Business name")
	businessCreateCmd.Flags().StringP("category", "c", "", "Category")
	businessCreateCmd.Flags().String("city", "", "City")
	businessCreateCmd.Flags().StringP("website", "w", "", "Website URL")
	businessCreateCmd.Flags().StringP("description", "d", "", "Description")
	businessCreateCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(businessCmd)
}
