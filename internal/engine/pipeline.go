// Package engine wires the validity filter, pattern extractor, category
// classifier, and duplicate resolver into one ingestion pipeline.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/finsift/finsift/internal/classify"
	"github.com/finsift/finsift/internal/common"
	"github.com/finsift/finsift/internal/dedup"
	"github.com/finsift/finsift/internal/extract"
	"github.com/finsift/finsift/internal/filter"
	"github.com/finsift/finsift/internal/model"
	"github.com/finsift/finsift/internal/service"
)

// recentHistorySize bounds the near-duplicate suppression window.
const recentHistorySize = 10

// ParseResult reports the outcome of processing one raw message. Exactly one
// of Transaction and Failure is set when the filter passes; neither is set
// when the filter rejects.
type ParseResult struct {
	Transaction *model.Transaction
	Failure     *model.ParseFailure
	Warning     string
	Verdict     model.FilterVerdict
	Saved       bool
	Duplicate   bool
}

// Pipeline processes raw notification texts into stored transactions.
type Pipeline struct {
	store      service.Storage
	filter     *filter.Filter
	extractor  *extract.Extractor
	classifier *classify.Classifier
	recent     *filter.RecentMessages
}

// New creates a pipeline over the given store.
func New(store service.Storage) (*Pipeline, error) {
	classifier, err := classify.New()
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		store:      store,
		filter:     filter.NewDefault(),
		extractor:  extract.NewDefault(),
		classifier: classifier,
		recent:     filter.NewRecentMessages(recentHistorySize),
	}, nil
}

// Classifier exposes the pipeline's classifier for training commands.
func (p *Pipeline) Classifier() *classify.Classifier {
	return p.classifier
}

// ParseMessage runs one message through the full pipeline. A store failure is
// a soft warning: the parsed transaction stays in the result. The returned
// error covers only infrastructure faults reading the duplicate snapshot.
func (p *Pipeline) ParseMessage(ctx context.Context, text, sender string, receivedAt time.Time) (*ParseResult, error) {
	result := &ParseResult{}

	result.Verdict = p.filter.Analyze(text, sender, receivedAt, p.recent.Items())
	p.recent.Add(text)
	if !result.Verdict.IsValid {
		slog.Debug("message rejected by filter",
			"reason", result.Verdict.Reason,
			"confidence", result.Verdict.Confidence)
		return result, nil
	}

	txn, failure := p.extractor.Extract(text, receivedAt)
	if failure != nil {
		result.Failure = failure
		return result, nil
	}

	p.categorize(txn)
	result.Transaction = txn

	snapshot, err := p.store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return result, err
	}
	if dedup.IsDuplicate(*txn, snapshot) {
		result.Duplicate = true
		return result, nil
	}

	p.persist(ctx, result)
	return result, nil
}

// IngestBatch processes many messages as one logical unit: all candidates are
// checked against a single consistent snapshot, then saved together.
func (p *Pipeline) IngestBatch(ctx context.Context, messages []model.RawMessage) ([]ParseResult, error) {
	snapshot, err := p.store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return nil, err
	}

	results := make([]ParseResult, 0, len(messages))
	var candidates []model.Transaction

	for _, msg := range messages {
		result := ParseResult{}
		result.Verdict = p.filter.Analyze(msg.Text, msg.Sender, msg.ReceivedAt, p.recent.Items())
		p.recent.Add(msg.Text)
		if !result.Verdict.IsValid {
			results = append(results, result)
			continue
		}

		txn, failure := p.extractor.Extract(msg.Text, msg.ReceivedAt)
		if failure != nil {
			result.Failure = failure
			results = append(results, result)
			continue
		}

		p.categorize(txn)
		result.Transaction = txn
		if dedup.IsDuplicate(*txn, snapshot) || dedup.IsDuplicate(*txn, candidates) {
			result.Duplicate = true
			results = append(results, result)
			continue
		}

		candidates = append(candidates, *txn)
		results = append(results, result)
	}

	if len(candidates) == 0 {
		return results, nil
	}

	saveErr := common.WithRetry(ctx, func() error {
		return p.store.SaveTransactions(ctx, candidates)
	}, service.RetryOptions{MaxAttempts: 3})
	for i := range results {
		if results[i].Transaction == nil || results[i].Duplicate {
			continue
		}
		if saveErr != nil {
			results[i].Warning = persistWarning(saveErr)
			continue
		}
		results[i].Saved = true
		p.recordObservation(ctx, results[i].Transaction)
	}
	if saveErr != nil {
		common.LogError(saveErr, "batch persist failed, parsed transactions retained in memory", common.Fields{
			"count": len(candidates),
		})
	}

	return results, nil
}

// categorize applies the classifier, abstaining below the confidence floor so
// the category stays user-correctable metadata rather than a guess.
func (p *Pipeline) categorize(txn *model.Transaction) {
	res := p.classifier.Classify(txn.Vendor)
	txn.Confidence = res.Confidence
	if res.Confidence >= classify.ConfidenceFloor {
		txn.Category = res.Category
	}
}

// persist saves one transaction with retries. Failure never discards the
// parsed result; it degrades to a warning on the ParseResult.
func (p *Pipeline) persist(ctx context.Context, result *ParseResult) {
	txn := result.Transaction

	err := common.WithRetry(ctx, func() error {
		_, saveErr := p.store.SaveTransaction(ctx, txn)
		return saveErr
	}, service.RetryOptions{MaxAttempts: 3})
	if err != nil {
		result.Warning = persistWarning(err)
		common.LogError(err, "persist failed, parsed transaction retained in memory", common.Fields{
			"vendor":    txn.Vendor,
			"amount":    txn.Amount,
			"retryable": common.IsRetryable(err),
		})
		return
	}

	result.Saved = true
	p.recordObservation(ctx, txn)
}

// recordObservation feeds a categorized save into the classifier's training
// corpus. Best effort: a failure never affects the save result.
func (p *Pipeline) recordObservation(ctx context.Context, txn *model.Transaction) {
	if txn.Category == "" {
		return
	}
	if err := p.store.RecordObservation(ctx, txn.Vendor, txn.Category); err != nil {
		slog.Warn("failed to record classifier observation",
			"vendor", txn.Vendor,
			"error", err)
	}
}

func persistWarning(err error) string {
	return "PERSIST_FAILED: " + err.Error()
}
