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
)

var _ ports.WalletRepository = (*WalletRepository)(nil)

// WalletRepository implements ports.WalletRepository. The context map
// is stored as JSONB.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates the repository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

func (r *WalletRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Save upserts the wallet by id.
func (r *WalletRepository) Save(ctx context.Context, wallet *entities.Wallet) error {
	q := r.getQuerier(ctx)

	contextJSON, err := json.Marshal(wallet.Context())
	if err != nil {
		return fmt.Errorf("failed to marshal wallet context: %w", err)
	}

	query := `
		INSERT INTO wallets (id, name, context, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			context = EXCLUDED.context,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err = q.Exec(ctx, query,
		wallet.ID(),
		wallet.Name(),
		contextJSON,
		string(wallet.Status()),
		wallet.CreatedAt(),
		wallet.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}

	return nil
}

// FindByID loads a wallet by id.
func (r *WalletRepository) FindByID(ctx context.Context, id string) (*entities.Wallet, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, name, context, status, created_at, updated_at
		FROM wallets
		WHERE id = $1
	`

	wallet, err := scanWallet(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to find wallet: %w", err)
	}

	return wallet, nil
}

// List returns wallets matching the filter plus the total match count.
func (r *WalletRepository) List(ctx context.Context, filter ports.WalletFilter, offset, limit int) ([]*entities.Wallet, int, error) {
	q := r.getQuerier(ctx)

	where := " WHERE 1=1"
	args := []any{}
	argN := 1

	if filter.Name != nil {
		where += fmt.Sprintf(" AND name ILIKE $%d", argN)
		args = append(args, "%"+*filter.Name+"%")
		argN++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, string(*filter.Status))
		argN++
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM wallets"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count wallets: %w", err)
	}

	query := `
		SELECT id, name, context, status, created_at, updated_at
		FROM wallets` + where + fmt.Sprintf(`
		ORDER BY created_at DESC
		OFFSET $%d LIMIT $%d`, argN, argN+1)
	args = append(args, offset, limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*entities.Wallet
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, wallet)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read wallets: %w", err)
	}

	return wallets, total, nil
}

func scanWallet(row pgx.Row) (*entities.Wallet, error) {
	var (
		id, name, status     string
		contextJSON          []byte
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &contextJSON, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var walletContext map[string]any
	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &walletContext); err != nil {
			return nil, fmt.Errorf("failed to unmarshal wallet context: %w", err)
		}
	}

	return entities.ReconstructWallet(
		id, name, walletContext,
		entities.WalletStatus(status),
		createdAt, updatedAt,
	), nil
}
