package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/finsift/finsift/internal/cli"
	"github.com/finsift/finsift/internal/common"
	"github.com/finsift/finsift/internal/model"
)

func ingestCmd() *cobra.Command {
	var sender string

	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Ingest messages from a file or stdin, one per line",
		Long: `Read notification messages (one per line) and process them as a single
batch: every candidate is checked against one consistent snapshot of the
store before anything is saved.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var reader io.Reader = os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open input file: %w", err)
				}
				defer func() { _ = f.Close() }()
				reader = f
			}

			var messages []model.RawMessage
			scanner := bufio.NewScanner(reader)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			now := time.Now()
			for scanner.Scan() {
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}
				messages = append(messages, model.RawMessage{
					Text:       text,
					Sender:     sender,
					ReceivedAt: now,
				})
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			if len(messages) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No messages to ingest."))
				return nil
			}

			pipeline, store, err := initPipeline(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			results, err := pipeline.IngestBatch(ctx, messages)
			if err != nil {
				return common.NewUserError("failed to ingest batch", err)
			}

			var saved, rejected, failed, duplicates, warned int
			for i := range results {
				r := &results[i]
				switch {
				case !r.Verdict.IsValid:
					rejected++
				case r.Failure != nil:
					failed++
				case r.Duplicate:
					duplicates++
				case r.Saved:
					saved++
				case r.Warning != "":
					warned++
				}
			}

			fmt.Println(cli.TitleStyle.Render("Ingest complete"))
			fmt.Printf("  saved:       %d\n", saved)
			fmt.Printf("  rejected:    %d\n", rejected)
			fmt.Printf("  failed:      %d\n", failed)
			fmt.Printf("  duplicates:  %d\n", duplicates)
			if warned > 0 {
				fmt.Println(cli.WarningStyle.Render(fmt.Sprintf(
					"  not persisted (store unavailable): %d", warned)))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "sender ID applied to every message")

	return cmd
}
