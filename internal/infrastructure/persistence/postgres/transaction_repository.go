package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/credgem/credgem/internal/application/ports"
	"github.com/credgem/credgem/internal/domain/entities"
	domainErrors "github.com/credgem/credgem/internal/domain/errors"
	"github.com/credgem/credgem/internal/domain/valueobjects"
)

var _ ports.TransactionRepository = (*TransactionRepository)(nil)

// TransactionRepository implements ports.TransactionRepository.
//
// Idempotency rides on the ix_transactions_wallet_external_id partial
// unique index: two inserts for the same (wallet_id, external_id) race
// at the database, and the loser surfaces as ErrDuplicateTransaction.
// Payload, context and balance_snapshot are JSONB.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates the repository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Create inserts a new transaction row.
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	q := r.getQuerier(ctx)

	payloadJSON, err := entities.MarshalPayload(tx.Payload())
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	contextJSON, err := json.Marshal(tx.Context())
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	query := `
		INSERT INTO transactions (
			id, type, wallet_id, credit_type_id, issuer, description,
			context, payload, external_id, status, hold_status,
			balance_snapshot, subscription_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = q.Exec(ctx, query,
		tx.ID(),
		string(tx.Type()),
		tx.WalletID(),
		tx.CreditTypeID(),
		tx.Issuer(),
		tx.Description(),
		contextJSON,
		payloadJSON,
		tx.ExternalID(),
		string(tx.Status()),
		holdStatusString(tx.HoldStatus()),
		nil, // balance_snapshot is stamped on completion
		tx.SubscriptionID(),
		tx.CreatedAt(),
		tx.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "ix_transactions_wallet_external_id") {
			return domainErrors.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// Update persists the mutable fields: status, hold_status and
// balance_snapshot. The payload is immutable after creation.
func (r *TransactionRepository) Update(ctx context.Context, tx *entities.Transaction) error {
	q := r.getQuerier(ctx)

	var snapshotJSON []byte
	if snap := tx.BalanceSnapshot(); snap != nil {
		var err error
		snapshotJSON, err = json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to marshal balance snapshot: %w", err)
		}
	}

	query := `
		UPDATE transactions
		SET status = $2,
		    hold_status = $3,
		    balance_snapshot = $4,
		    subscription_id = $5,
		    updated_at = $6
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		tx.ID(),
		string(tx.Status()),
		holdStatusString(tx.HoldStatus()),
		snapshotJSON,
		tx.SubscriptionID(),
		tx.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrTransactionNotFound
	}

	return nil
}

// FindByID loads a transaction by id.
func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*entities.Transaction, error) {
	q := r.getQuerier(ctx)

	query := selectTransaction + " WHERE id = $1"

	tx, err := scanTransaction(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	return tx, nil
}

// List returns transactions matching the filter, newest first.
func (r *TransactionRepository) List(ctx context.Context, filter ports.TransactionFilter, offset, limit int) ([]*entities.Transaction, int, error) {
	q := r.getQuerier(ctx)

	where := " WHERE 1=1"
	args := []any{}
	argN := 1

	addFilter := func(column string, value any) {
		where += fmt.Sprintf(" AND %s = $%d", column, argN)
		args = append(args, value)
		argN++
	}

	if filter.WalletID != nil {
		addFilter("wallet_id", *filter.WalletID)
	}
	if filter.CreditTypeID != nil {
		addFilter("credit_type_id", *filter.CreditTypeID)
	}
	if filter.Type != nil {
		addFilter("type", string(*filter.Type))
	}
	if filter.Status != nil {
		addFilter("status", string(*filter.Status))
	}
	if filter.ExternalID != nil {
		addFilter("external_id", *filter.ExternalID)
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM transactions"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := selectTransaction + where + fmt.Sprintf(
		" ORDER BY created_at DESC OFFSET $%d LIMIT $%d", argN, argN+1)
	args = append(args, offset, limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*entities.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read transactions: %w", err)
	}

	return txs, total, nil
}

const selectTransaction = `
	SELECT id, type, wallet_id, credit_type_id, issuer, description,
	       context, payload, external_id, status, hold_status,
	       balance_snapshot, subscription_id, created_at, updated_at
	FROM transactions`

func scanTransaction(row pgx.Row) (*entities.Transaction, error) {
	var (
		id, txType, walletID, creditTypeID string
		issuer, description                string
		contextJSON, payloadJSON           []byte
		externalID                         *string
		status                             string
		holdStatus                         *string
		snapshotJSON                       []byte
		subscriptionID                     *string
		createdAt, updatedAt               time.Time
	)
	if err := row.Scan(
		&id, &txType, &walletID, &creditTypeID, &issuer, &description,
		&contextJSON, &payloadJSON, &externalID, &status, &holdStatus,
		&snapshotJSON, &subscriptionID, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	var txContext map[string]any
	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &txContext); err != nil {
			return nil, fmt.Errorf("failed to unmarshal context: %w", err)
		}
	}

	payload, err := entities.UnmarshalPayload(payloadJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	var snapshot *valueobjects.BalanceSnapshot
	if len(snapshotJSON) > 0 {
		snapshot = &valueobjects.BalanceSnapshot{}
		if err := json.Unmarshal(snapshotJSON, snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal balance snapshot: %w", err)
		}
	}

	var hs *entities.HoldStatus
	if holdStatus != nil {
		v := entities.HoldStatus(*holdStatus)
		hs = &v
	}

	return entities.ReconstructTransaction(
		id,
		entities.TransactionType(txType),
		walletID, creditTypeID, issuer, description,
		txContext, payload, externalID,
		entities.TransactionStatus(status),
		hs, snapshot, subscriptionID,
		createdAt, updatedAt,
	), nil
}

func holdStatusString(hs *entities.HoldStatus) *string {
	if hs == nil {
		return nil
	}
	s := string(*hs)
	return &s
}
