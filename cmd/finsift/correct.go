package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finsift/finsift/internal/cli"
	"github.com/finsift/finsift/internal/model"
	"github.com/finsift/finsift/internal/service"
)

func correctCmd() *cobra.Command {
	var (
		vendor    string
		category  string
		recurring bool
	)

	cmd := &cobra.Command{
		Use:   "correct <transaction-id>",
		Short: "Fix the vendor or category of a stored transaction",
		Long: `Override the extracted vendor or assigned category of one transaction.
Category corrections feed the classifier's training corpus, so repeated
corrections teach the statistical fallback model.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			update := service.TransactionUpdate{}
			if cmd.Flags().Changed("vendor") {
				update.Vendor = &vendor
			}
			if cmd.Flags().Changed("category") {
				if !model.ValidCategory(category) {
					return fmt.Errorf("unknown category %q; valid: %v", category, model.Categories())
				}
				update.Category = &category
			}
			if cmd.Flags().Changed("recurring") {
				update.IsRecurring = &recurring
			}
			if update.Vendor == nil && update.Category == nil && update.IsRecurring == nil {
				return fmt.Errorf("nothing to correct; pass --vendor, --category, or --recurring")
			}

			before, err := store.GetTransactionByID(ctx, id)
			if err != nil {
				return err
			}

			after, err := store.UpdateTransaction(ctx, id, update)
			if err != nil {
				return err
			}

			if update.Category != nil {
				if err := store.RecordObservation(ctx, after.Vendor, *update.Category); err != nil {
					return fmt.Errorf("failed to record correction: %w", err)
				}
			}

			fmt.Println(cli.SuccessStyle.Render("Transaction updated"))
			if before.Vendor != after.Vendor {
				fmt.Printf("  vendor:   %s -> %s\n", before.Vendor, after.Vendor)
			}
			if before.Category != after.Category {
				fmt.Printf("  category: %s -> %s\n", orNone(before.Category), orNone(after.Category))
			}
			if before.IsRecurring != after.IsRecurring {
				fmt.Printf("  recurring: %v -> %v\n", before.IsRecurring, after.IsRecurring)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&vendor, "vendor", "", "corrected vendor name")
	cmd.Flags().StringVar(&category, "category", "", "corrected category")
	cmd.Flags().BoolVar(&recurring, "recurring", false, "mark (or with =false, unmark) as recurring")
	return cmd
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
