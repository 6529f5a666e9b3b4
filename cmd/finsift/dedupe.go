package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/finsift/finsift/internal/cli"
	"github.com/finsift/finsift/internal/dedup"
	"github.com/finsift/finsift/internal/model"
	"github.com/finsift/finsift/internal/service"
)

func dedupeCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Remove duplicate transactions from the store",
		Long: `Resolve duplicates across the whole collection against one consistent
snapshot, keeping the most complete representative of each group.
Running it twice is a no-op.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txns, err := store.GetTransactions(ctx, service.TransactionFilter{})
			if err != nil {
				return fmt.Errorf("failed to load transactions: %w", err)
			}
			if len(txns) == 0 {
				fmt.Println(cli.SubtleStyle.Render("Store is empty."))
				return nil
			}

			resolved := dedup.Resolve(txns)
			removed := duplicatesRemoved(txns, resolved)
			if len(removed) == 0 {
				fmt.Println(cli.SuccessStyle.Render("No duplicates found."))
				return nil
			}

			if dryRun {
				fmt.Println(cli.WarningStyle.Render(fmt.Sprintf(
					"Would remove %d duplicate(s):", len(removed))))
				for _, txn := range removed {
					fmt.Printf("  %s  %.2f  %s  %s\n",
						txn.OccurredAt.Format("2006-01-02"), txn.Amount, txn.Vendor, txn.ID)
				}
				return nil
			}

			bar := progressbar.Default(int64(len(removed)), "removing duplicates")
			for _, txn := range removed {
				if err := store.DeleteTransaction(ctx, txn.ID); err != nil {
					return fmt.Errorf("failed to delete %s: %w", txn.ID, err)
				}
				_ = bar.Add(1)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf(
				"Removed %d duplicate(s), %d transaction(s) remain.", len(removed), len(resolved))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list duplicates without deleting")

	return cmd
}

// duplicatesRemoved returns the records present in the original snapshot but
// absent from the resolved set.
func duplicatesRemoved(original, resolved []model.Transaction) []model.Transaction {
	kept := make(map[string]struct{}, len(resolved))
	for i := range resolved {
		kept[resolved[i].ID] = struct{}{}
	}

	var removed []model.Transaction
	for i := range original {
		if _, ok := kept[original[i].ID]; !ok {
			removed = append(removed, original[i])
		}
	}
	return removed
}
