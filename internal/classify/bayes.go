package classify

import (
	"math"
	"sort"
	"strings"

	"github.com/finsift/finsift/internal/model"
)

// bayesModel is a multinomial naive Bayes classifier over vendor name tokens,
// Laplace-smoothed so every canonical category keeps nonzero probability.
type bayesModel struct {
	tokenCounts map[string]map[string]int
	classCounts map[string]int
	classTokens map[string]int
	vocabSize   int
	total       int
}

func newBayesModel() *bayesModel {
	return &bayesModel{
		tokenCounts: make(map[string]map[string]int),
		classCounts: make(map[string]int),
		classTokens: make(map[string]int),
	}
}

// fit trains the model from observed (vendor, category) pairs. Observations
// carrying a category outside the canonical set are ignored.
func (m *bayesModel) fit(observations map[string]string) {
	vocab := make(map[string]struct{})

	for vendor, category := range observations {
		if !model.ValidCategory(category) {
			continue
		}
		m.classCounts[category]++
		m.total++

		if m.tokenCounts[category] == nil {
			m.tokenCounts[category] = make(map[string]int)
		}
		for _, tok := range tokenize(vendor) {
			m.tokenCounts[category][tok]++
			m.classTokens[category]++
			vocab[tok] = struct{}{}
		}
	}

	m.vocabSize = len(vocab)
}

// trained reports whether the model has seen any observations.
func (m *bayesModel) trained() bool {
	return m.total > 0
}

// predict returns a probability distribution over the canonical category set,
// normalized to sum to 1.
func (m *bayesModel) predict(vendor string) map[string]float64 {
	categories := model.Categories()
	probs := make(map[string]float64, len(categories))

	if !m.trained() {
		// No corpus yet: mildly favor Other so unknown vendors degrade there.
		for _, c := range categories {
			probs[c] = 0.08
		}
		probs[model.CategoryOther] = 1 - 0.08*float64(len(categories)-1)
		return probs
	}

	tokens := tokenize(vendor)
	logProbs := make(map[string]float64, len(categories))
	maxLog := math.Inf(-1)

	for _, c := range categories {
		// Laplace prior keeps unseen categories alive.
		lp := math.Log(float64(m.classCounts[c]+1) / float64(m.total+len(categories)))
		for _, tok := range tokens {
			count := 0
			if m.tokenCounts[c] != nil {
				count = m.tokenCounts[c][tok]
			}
			lp += math.Log(float64(count+1) / float64(m.classTokens[c]+m.vocabSize+1))
		}
		logProbs[c] = lp
		if lp > maxLog {
			maxLog = lp
		}
	}

	var sum float64
	for _, c := range categories {
		p := math.Exp(logProbs[c] - maxLog)
		probs[c] = p
		sum += p
	}
	for _, c := range categories {
		probs[c] /= sum
	}
	return probs
}

// fitReport scores how well the fitted model reproduces its own training
// corpus, per category.
func (m *bayesModel) fitReport(observations map[string]string) []model.CategoryFit {
	correct := make(map[string]int)
	seen := make(map[string]int)

	for vendor, category := range observations {
		if !model.ValidCategory(category) {
			continue
		}
		seen[category]++
		probs := m.predict(vendor)
		if argmax(probs) == category {
			correct[category]++
		}
	}

	var fits []model.CategoryFit
	for _, c := range model.Categories() {
		if seen[c] == 0 {
			continue
		}
		fits = append(fits, model.CategoryFit{
			Category:     c,
			Observations: seen[c],
			FitScore:     float64(correct[c]) / float64(seen[c]),
		})
	}
	sort.Slice(fits, func(i, j int) bool { return fits[i].Category < fits[j].Category })
	return fits
}

func tokenize(vendor string) []string {
	norm := normalizeVendor(vendor)
	return strings.FieldsFunc(norm, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func argmax(probs map[string]float64) string {
	best := model.CategoryOther
	bestP := math.Inf(-1)
	for _, c := range model.Categories() {
		if probs[c] > bestP {
			best, bestP = c, probs[c]
		}
	}
	return best
}
