package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/finsift/finsift/internal/cli"
	"github.com/finsift/finsift/internal/common"
)

func parseCmd() *cobra.Command {
	var (
		sender   string
		received string
	)

	cmd := &cobra.Command{
		Use:   "parse <message text>",
		Short: "Parse a single notification message",
		Long: `Run one message through the full pipeline: validity filtering, field
extraction, category classification, and duplicate detection. Valid
transactions are saved to the store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			receivedAt := time.Now()
			if received != "" {
				ts, err := time.Parse(time.RFC3339, received)
				if err != nil {
					return fmt.Errorf("invalid --received timestamp (want RFC3339): %w", err)
				}
				receivedAt = ts
			}

			pipeline, store, err := initPipeline(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := pipeline.ParseMessage(ctx, args[0], sender, receivedAt)
			if err != nil {
				return common.NewUserError("failed to process message", err)
			}

			switch {
			case !result.Verdict.IsValid:
				fmt.Println(cli.WarningStyle.Render(fmt.Sprintf(
					"Not a transaction message (reason: %s, confidence: %.2f)",
					result.Verdict.Reason, result.Verdict.Confidence)))
			case result.Failure != nil:
				fmt.Println(cli.ErrorStyle.Render(fmt.Sprintf("Extraction failed: %s", result.Failure.Reason)))
				for _, suggestion := range result.Failure.Suggestions {
					fmt.Println(cli.SubtleStyle.Render("  - " + suggestion))
				}
			case result.Duplicate:
				fmt.Println(cli.WarningStyle.Render("Duplicate of an existing transaction, not saved"))
			default:
				txn := result.Transaction
				category := txn.Category
				if category == "" {
					category = "(uncategorized)"
				}
				fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf(
					"%s  %.2f %s  %s  [%s, confidence %.2f]",
					txn.OccurredAt.Format("2006-01-02"), txn.Amount, txn.Direction,
					txn.Vendor, category, txn.Confidence)))
				if result.Warning != "" {
					fmt.Println(cli.WarningStyle.Render("Warning: " + result.Warning))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "sender ID of the message")
	cmd.Flags().StringVar(&received, "received", "", "received timestamp (RFC3339, default now)")

	return cmd
}
