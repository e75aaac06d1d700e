package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"campus-reveal-backend/internal/client"
	"campus-reveal-backend/internal/model"
	"campus-reveal-backend/internal/view"
)

const clientTimeout = 30 * time.Second

var (
	searchQuery string
	listPage    int

	reviewRating int
	reviewText   string

	requestForm model.CollegeRequest
)

var collegesCmd = &cobra.Command{
	Use:   "colleges",
	Short: "List colleges, 20 per page",
	Example: `  campusreveal colleges --search tech
  campusreveal colleges --page 3`,
	Args: cobra.NoArgs,
	RunE: runColleges,
}

var collegeCmd = &cobra.Command{
	Use:   "college <college-id>",
	Short: "Show a college and its reviews",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollege,
}

var reviewCmd = &cobra.Command{
	Use:   "review <college-id>",
	Short: "Post an anonymous review",
	Args:  cobra.ExactArgs(1),
	RunE:  runReview,
}

var requestCollegeCmd = &cobra.Command{
	Use:   "request-college",
	Short: "Ask an administrator to add a missing college",
	Args:  cobra.NoArgs,
	RunE:  runRequestCollege,
}

func init() {
	rootCmd.AddCommand(collegesCmd, collegeCmd, reviewCmd, requestCollegeCmd)

	collegesCmd.Flags().StringVarP(&searchQuery, "search", "s", "", "Only show colleges whose name contains this text")
	collegesCmd.Flags().IntVarP(&listPage, "page", "p", 1, "Page to show")

	reviewCmd.Flags().IntVarP(&reviewRating, "rating", "r", 0, "Stars, 1 to 5")
	reviewCmd.Flags().StringVarP(&reviewText, "text", "t", "", "Review text")

	requestCollegeCmd.Flags().StringVar(&requestForm.Name, "name", "", "College name")
	requestCollegeCmd.Flags().StringVar(&requestForm.City, "city", "", "City")
	requestCollegeCmd.Flags().StringVar(&requestForm.State, "state", "", "State")
	requestCollegeCmd.Flags().StringVar(&requestForm.NIRFRank, "nirf-rank", "", "NIRF rank, if known")
	requestCollegeCmd.Flags().StringVar(&requestForm.Rank, "rank", "", "Overall rank, if known")
	for _, name := range []string{"name", "city", "state"} {
		_ = requestCollegeCmd.MarkFlagRequired(name)
	}
}

func newAPIClient() *client.Client {
	return client.New(apiURL)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), clientTimeout)
}

func runColleges(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	listing := view.NewListing(newAPIClient())
	if err := listing.Activate(ctx); err != nil {
		return errors.New(listing.State().Message())
	}
	listing.SetQuery(searchQuery)
	listing.GoTo(listPage)

	printColleges(cmd.OutOrStdout(), listing)
	return nil
}

func printColleges(out io.Writer, listing *view.Listing) {
	items := listing.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "No colleges found.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCITY\tSTATE\tNIRF RANK\tRANK")
	for _, c := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.City, c.State, c.NIRFRank, c.Rank)
	}
	tw.Flush()

	fmt.Fprintf(out, "\nPage %d of %d", listing.Page(), listing.Pages())
	if listing.HasPrev() {
		fmt.Fprintf(out, "  (--page %d for previous)", listing.Page()-1)
	}
	if listing.HasNext() {
		fmt.Fprintf(out, "  (--page %d for next)", listing.Page()+1)
	}
	fmt.Fprintln(out)
}

func runCollege(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	v := view.NewReviewView(newAPIClient(), args[0], zap.S())
	if err := v.Activate(ctx); err != nil {
		return errors.New(v.College().Message())
	}

	out := cmd.OutOrStdout()
	c := v.College().Data
	fmt.Fprintf(out, "%s\n%s, %s\nNIRF rank: %s  Rank: %s\n\n", c.Name, c.City, c.State, c.NIRFRank, c.Rank)

	reviews := v.Reviews().Data
	if len(reviews) == 0 {
		fmt.Fprintln(out, "No reviews yet.")
		return nil
	}
	fmt.Fprintf(out, "Reviews (%d):\n", len(reviews))
	for _, r := range reviews {
		fmt.Fprintf(out, "  %s  %s\n", view.Stars(r.Rating), r.CreatedAt.Local().Format("2006-01-02"))
		if r.Review != "" {
			fmt.Fprintf(out, "    %s\n", r.Review)
		}
	}
	return nil
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	v := view.NewReviewView(newAPIClient(), args[0], zap.S())
	if reviewRating != 0 {
		if err := v.SetRating(reviewRating); err != nil {
			return err
		}
	}
	v.SetText(reviewText)

	review, err := v.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Review %s posted: %s\n", review.ID, view.Stars(review.Rating))
	return nil
}

func runRequestCollege(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	msg, err := newAPIClient().RequestCollege(ctx, requestForm)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
