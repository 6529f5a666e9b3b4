package storage

import (
	"context"
	"fmt"

	"github.com/finsift/finsift/internal/model"
)

// RecordObservation counts one confirmed (vendor, category) pairing for the
// classifier's training corpus.
func (s *SQLiteStorage) RecordObservation(ctx context.Context, vendor, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(vendor, "vendor"); err != nil {
		return err
	}
	if !model.ValidCategory(category) {
		return fmt.Errorf("%w: category %q outside canonical set", ErrInvalidTransaction, category)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO observations (vendor, category, count)
		VALUES (?, ?, 1)
		ON CONFLICT(vendor, category) DO UPDATE SET
			count = count + 1,
			last_updated = CURRENT_TIMESTAMP
	`, vendor, category)
	if err != nil {
		return fmt.Errorf("failed to record observation: %w", err)
	}
	return nil
}

// GetObservations returns the training corpus as vendor to category, keeping
// the most frequently confirmed category per vendor.
func (s *SQLiteStorage) GetObservations(ctx context.Context) (map[string]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT vendor, category
		FROM observations
		ORDER BY vendor, count DESC, category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	observations := make(map[string]string)
	for rows.Next() {
		var vendor, category string
		if err := rows.Scan(&vendor, &category); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		// Rows arrive count-descending per vendor; first one wins.
		if _, ok := observations[vendor]; !ok {
			observations[vendor] = category
		}
	}
	return observations, rows.Err()
}

// SaveModelFit replaces the stored per-category fit report.
func (s *SQLiteStorage) SaveModelFit(ctx context.Context, fits []model.CategoryFit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM model_fit"); err != nil {
		return fmt.Errorf("failed to clear fit report: %w", err)
	}
	for _, fit := range fits {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO model_fit (category, observations, fit_score)
			VALUES (?, ?, ?)
		`, fit.Category, fit.Observations, fit.FitScore); err != nil {
			return fmt.Errorf("failed to save fit for %s: %w", fit.Category, err)
		}
	}

	return tx.Commit()
}

// GetModelFit returns the fit report from the last training run.
func (s *SQLiteStorage) GetModelFit(ctx context.Context) ([]model.CategoryFit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, observations, fit_score FROM model_fit ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fit report: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var fits []model.CategoryFit
	for rows.Next() {
		var fit model.CategoryFit
		if err := rows.Scan(&fit.Category, &fit.Observations, &fit.FitScore); err != nil {
			return nil, fmt.Errorf("failed to scan fit entry: %w", err)
		}
		fits = append(fits, fit)
	}
	return fits, rows.Err()
}
