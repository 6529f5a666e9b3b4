package classify

import (
	"context"
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/finsift/finsift/internal/model"
	"github.com/finsift/finsift/internal/service"
)

// ConfidenceFloor is the minimum confidence at which the pipeline accepts a
// category; below it the classifier abstains and the transaction stays
// uncategorized.
const ConfidenceFloor = 0.35

// lexiconConfidence is assigned to curated lexicon hits.
const lexiconConfidence = 0.9

// Classifier resolves vendor names to canonical categories. The curated
// lexicon is the primary signal; a naive Bayes model trained on the observed
// corpus is the fallback. Safe for concurrent use.
type Classifier struct {
	cache   *ristretto.Cache[string, model.ClassificationResult]
	lexicon []lexiconEntry
	bayes   *bayesModel
	mu      sync.RWMutex
}

// New creates a classifier with the curated lexicon and an untrained fallback.
func New() (*Classifier, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, model.ClassificationResult]{
		NumCounters: 10_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create classification cache: %w", err)
	}

	return &Classifier{
		lexicon: defaultLexicon(),
		bayes:   newBayesModel(),
		cache:   cache,
	}, nil
}

// Classify maps a vendor to a category with a confidence and the full
// probability distribution. Unknown vendors resolve to Other with low
// confidence rather than failing.
func (c *Classifier) Classify(vendor string) model.ClassificationResult {
	key := normalizeVendor(vendor)
	if cached, ok := c.cache.Get(key); ok {
		return cached
	}

	result := c.classify(vendor)
	c.cache.Set(key, result, 1)
	return result
}

func (c *Classifier) classify(vendor string) model.ClassificationResult {
	if category := lookupLexicon(c.lexicon, vendor); category != "" {
		return peakedResult(category, lexiconConfidence)
	}

	c.mu.RLock()
	probs := c.bayes.predict(vendor)
	trained := c.bayes.trained()
	c.mu.RUnlock()

	category := argmax(probs)
	confidence := probs[category]
	if !trained {
		// Untrained fallback: the uniform-ish prior is not evidence.
		confidence = 0.2
	}

	return model.ClassificationResult{
		Category:      category,
		Confidence:    confidence,
		Probabilities: probs,
	}
}

// Train refits the statistical fallback from the stored observation corpus
// and returns per-category fit scores. The curated lexicon is untouched.
func (c *Classifier) Train(ctx context.Context, store service.Storage) ([]model.CategoryFit, error) {
	observations, err := store.GetObservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load training corpus: %w", err)
	}

	fitted := newBayesModel()
	fitted.fit(observations)

	c.mu.Lock()
	c.bayes = fitted
	c.mu.Unlock()
	c.cache.Clear()

	fits := fitted.fitReport(observations)
	if err := store.SaveModelFit(ctx, fits); err != nil {
		return fits, fmt.Errorf("failed to persist fit report: %w", err)
	}
	return fits, nil
}

// peakedResult builds a distribution concentrated on category, spreading the
// remaining mass evenly so the full set still sums to 1.
func peakedResult(category string, confidence float64) model.ClassificationResult {
	categories := model.Categories()
	rest := (1 - confidence) / float64(len(categories)-1)

	probs := make(map[string]float64, len(categories))
	for _, c := range categories {
		if c == category {
			probs[c] = confidence
		} else {
			probs[c] = rest
		}
	}

	return model.ClassificationResult{
		Category:      category,
		Confidence:    confidence,
		Probabilities: probs,
	}
}
