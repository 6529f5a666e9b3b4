package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/finsift/finsift/internal/common"
	"github.com/finsift/finsift/internal/model"
	"github.com/finsift/finsift/internal/service"
)

// SaveTransaction persists one transaction, assigning an ID and hash when
// missing, and returns the stored ID. A duplicate hash reports
// common.ErrDuplicateEntry.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateTransaction(txn); err != nil {
		return "", err
	}

	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if txn.Hash == "" {
		txn.Hash = txn.GenerateHash()
	}
	if txn.ObservedAt.IsZero() {
		txn.ObservedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, hash, vendor, amount, occurred_at, observed_at, direction,
			category, confidence, source_text, payment_method, bank_ref, is_recurring
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, txn.ID, txn.Hash, txn.Vendor, txn.Amount, txn.OccurredAt, txn.ObservedAt,
		string(txn.Direction), nullString(txn.Category), txn.Confidence,
		txn.SourceText, nullString(txn.PaymentMethod), nullString(txn.BankRef),
		txn.IsRecurring)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return "", fmt.Errorf("%w: hash %s", common.ErrDuplicateEntry, txn.Hash)
		}
		return "", fmt.Errorf("failed to save transaction: %w", err)
	}

	return txn.ID, nil
}

// SaveTransactions saves multiple transactions in one database transaction.
// Records whose hash already exists are skipped.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, txns []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(txns); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveTransactionsTx(ctx, tx, txns); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, txns []model.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, hash, vendor, amount, occurred_at, observed_at, direction,
			category, confidence, source_text, payment_method, bank_ref, is_recurring
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range txns {
		txn := &txns[i]
		if txn.ID == "" {
			txn.ID = uuid.NewString()
		}
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}
		if txn.ObservedAt.IsZero() {
			txn.ObservedAt = time.Now().UTC()
		}

		if _, err := stmt.ExecContext(ctx,
			txn.ID, txn.Hash, txn.Vendor, txn.Amount, txn.OccurredAt, txn.ObservedAt,
			string(txn.Direction), nullString(txn.Category), txn.Confidence,
			txn.SourceText, nullString(txn.PaymentMethod), nullString(txn.BankRef),
			txn.IsRecurring); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}
	}

	return nil
}

// GetTransactionByID fetches one transaction or common.ErrNotFound.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, selectColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// GetTransactions lists transactions matching the filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTransactions(ctx, s.db, filter)
}

// querier abstracts *sql.DB and *sql.Tx for read paths.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLiteStorage) getTransactions(ctx context.Context, q querier, filter service.TransactionFilter) ([]model.Transaction, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Direction != "" {
		conditions = append(conditions, "direction = ?")
		args = append(args, string(filter.Direction))
	}
	if filter.StartDate != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "occurred_at <= ?")
		args = append(args, *filter.EndDate)
	}

	query := selectColumns + ` FROM transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY occurred_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *txn)
	}
	return txns, rows.Err()
}

// UpdateTransaction applies the user-correctable fields and returns the
// updated record.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, id string, update service.TransactionUpdate) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var (
		sets []string
		args []any
	)
	if update.Vendor != nil {
		sets = append(sets, "vendor = ?")
		args = append(args, *update.Vendor)
	}
	if update.Category != nil {
		if *update.Category != "" && !model.ValidCategory(*update.Category) {
			return nil, fmt.Errorf("%w: category %q outside canonical set", ErrInvalidTransaction, *update.Category)
		}
		sets = append(sets, "category = ?")
		args = append(args, nullString(*update.Category))
	}
	if update.IsRecurring != nil {
		sets = append(sets, "is_recurring = ?")
		args = append(args, *update.IsRecurring)
	}
	if len(sets) == 0 {
		return s.GetTransactionByID(ctx, id)
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}

	return s.GetTransactionByID(ctx, id)
}

// DeleteTransaction removes one transaction or reports common.ErrNotFound.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}
	return nil
}

const selectColumns = `SELECT id, hash, vendor, amount, occurred_at, observed_at, direction,
	category, confidence, source_text, payment_method, bank_ref, is_recurring`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn                       model.Transaction
		direction                 string
		category, method, bankRef sql.NullString
	)
	err := row.Scan(&txn.ID, &txn.Hash, &txn.Vendor, &txn.Amount, &txn.OccurredAt,
		&txn.ObservedAt, &direction, &category, &txn.Confidence, &txn.SourceText,
		&method, &bankRef, &txn.IsRecurring)
	if err != nil {
		return nil, err
	}
	txn.Direction = model.TransactionDirection(direction)
	txn.Category = category.String
	txn.PaymentMethod = method.String
	txn.BankRef = bankRef.String
	return &txn, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
