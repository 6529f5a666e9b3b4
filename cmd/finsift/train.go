package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/finsift/finsift/internal/classify"
	"github.com/finsift/finsift/internal/cli"
	"github.com/finsift/finsift/internal/model"
)

func trainCmd() *cobra.Command {
	var reportOnly bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Retrain the classifier's statistical fallback model",
		Long: `Refit the statistical fallback model from the accumulated
(vendor, category) observations and report per-category fit scores.
The curated vendor lexicon is never modified.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var fits []model.CategoryFit
			if reportOnly {
				fits, err = store.GetModelFit(ctx)
				if err != nil {
					return err
				}
				if len(fits) == 0 {
					fmt.Println(cli.SubtleStyle.Render(
						"No stored fit report; run train first."))
					return nil
				}
			} else {
				classifier, err := classify.New()
				if err != nil {
					return err
				}
				fits, err = classifier.Train(ctx, store)
				if err != nil {
					return fmt.Errorf("training failed: %w", err)
				}
				if len(fits) == 0 {
					fmt.Println(cli.SubtleStyle.Render(
						"No observations yet; categorize some transactions first."))
					return nil
				}
			}

			fmt.Println(cli.TitleStyle.Render("Model fit by category"))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Observations"),
				cli.HeaderStyle.Render("Fit"))
			for _, fit := range fits {
				fmt.Fprintf(w, "%s\t%d\t%.2f\n", fit.Category, fit.Observations, fit.FitScore)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reportOnly, "report-only", false, "print the stored fit report without retraining")
	return cmd
}
