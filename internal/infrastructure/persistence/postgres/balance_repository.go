package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/credgem/credgem/internal/application/ports"
	"github.com/credgem/credgem/internal/domain/entities"
	domainErrors "github.com/credgem/credgem/internal/domain/errors"
)

var _ ports.BalanceRepository = (*BalanceRepository)(nil)

// BalanceRepository implements ports.BalanceRepository. The counters
// are NUMERIC columns moved as decimal strings in both directions, so
// no precision is lost to binary floats.
type BalanceRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceRepository creates the repository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

func (r *BalanceRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Find loads the balance row for a (wallet, credit type) pair.
func (r *BalanceRepository) Find(ctx context.Context, walletID, creditTypeID string) (*entities.Balance, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, wallet_id, credit_type_id,
		       available::text, held::text, spent::text, overall_spent::text,
		       created_at, updated_at
		FROM balances
		WHERE wallet_id = $1 AND credit_type_id = $2
	`

	balance, err := scanBalance(q.QueryRow(ctx, query, walletID, creditTypeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrBalanceNotFound
		}
		return nil, fmt.Errorf("failed to find balance: %w", err)
	}

	return balance, nil
}

// Save upserts the balance row. The (wallet_id, credit_type_id) pair is
// unique, so a concurrent first deposit resolves to an update.
func (r *BalanceRepository) Save(ctx context.Context, balance *entities.Balance) error {
	q := r.getQuerier(ctx)

	query := `
		INSERT INTO balances (
			id, wallet_id, credit_type_id,
			available, held, spent, overall_spent,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (wallet_id, credit_type_id) DO UPDATE SET
			available = EXCLUDED.available,
			held = EXCLUDED.held,
			spent = EXCLUDED.spent,
			overall_spent = EXCLUDED.overall_spent,
			updated_at = EXCLUDED.updated_at
	`

	_, err := q.Exec(ctx, query,
		balance.ID(),
		balance.WalletID(),
		balance.CreditTypeID(),
		balance.Available().String(),
		balance.Held().String(),
		balance.Spent().String(),
		balance.OverallSpent().String(),
		balance.CreatedAt(),
		balance.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save balance: %w", err)
	}

	return nil
}

// FindByWallet returns all balance rows of a wallet, ordered by credit
// type for stable output.
func (r *BalanceRepository) FindByWallet(ctx context.Context, walletID string) ([]*entities.Balance, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, wallet_id, credit_type_id,
		       available::text, held::text, spent::text, overall_spent::text,
		       created_at, updated_at
		FROM balances
		WHERE wallet_id = $1
		ORDER BY credit_type_id
	`

	rows, err := q.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	defer rows.Close()

	var balances []*entities.Balance
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, balance)
	}
	return balances, rows.Err()
}

func scanBalance(row pgx.Row) (*entities.Balance, error) {
	var (
		id, walletID, creditTypeID                  string
		availableStr, heldStr, spentStr, overallStr string
		createdAt, updatedAt                        time.Time
	)
	if err := row.Scan(
		&id, &walletID, &creditTypeID,
		&availableStr, &heldStr, &spentStr, &overallStr,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	available, err := decimal.NewFromString(availableStr)
	if err != nil {
		return nil, fmt.Errorf("invalid available counter %q: %w", availableStr, err)
	}
	held, err := decimal.NewFromString(heldStr)
	if err != nil {
		return nil, fmt.Errorf("invalid held counter %q: %w", heldStr, err)
	}
	spent, err := decimal.NewFromString(spentStr)
	if err != nil {
		return nil, fmt.Errorf("invalid spent counter %q: %w", spentStr, err)
	}
	overallSpent, err := decimal.NewFromString(overallStr)
	if err != nil {
		return nil, fmt.Errorf("invalid overall_spent counter %q: %w", overallStr, err)
	}

	return entities.ReconstructBalance(
		id, walletID, creditTypeID,
		available, held, spent, overallSpent,
		createdAt, updatedAt,
	), nil
}
