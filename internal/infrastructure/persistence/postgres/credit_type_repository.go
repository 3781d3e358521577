package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/credgem/credgem/internal/application/ports"
	"github.com/credgem/credgem/internal/domain/entities"
	domainErrors "github.com/credgem/credgem/internal/domain/errors"
)

var _ ports.CreditTypeRepository = (*CreditTypeRepository)(nil)

// CreditTypeRepository implements ports.CreditTypeRepository. Names are
// unique via the credit_types_name_key constraint.
type CreditTypeRepository struct {
	pool *pgxpool.Pool
}

// NewCreditTypeRepository creates the repository.
func NewCreditTypeRepository(pool *pgxpool.Pool) *CreditTypeRepository {
	return &CreditTypeRepository{pool: pool}
}

func (r *CreditTypeRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Save upserts the credit type by id.
func (r *CreditTypeRepository) Save(ctx context.Context, ct *entities.CreditType) error {
	q := r.getQuerier(ctx)

	query := `
		INSERT INTO credit_types (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at
	`

	_, err := q.Exec(ctx, query,
		ct.ID(), ct.Name(), ct.Description(), ct.CreatedAt(), ct.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "credit_types_name_key") {
			return domainErrors.ErrCreditTypeNameTaken
		}
		return fmt.Errorf("failed to save credit type: %w", err)
	}

	return nil
}

// FindByID loads a credit type by id.
func (r *CreditTypeRepository) FindByID(ctx context.Context, id string) (*entities.CreditType, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, name, description, created_at, updated_at
		FROM credit_types
		WHERE id = $1
	`

	ct, err := scanCreditType(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrCreditTypeNotFound
		}
		return nil, fmt.Errorf("failed to find credit type: %w", err)
	}

	return ct, nil
}

// FindByIDs loads several credit types in one query.
func (r *CreditTypeRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*entities.CreditType, error) {
	if len(ids) == 0 {
		return map[string]*entities.CreditType{}, nil
	}
	q := r.getQuerier(ctx)

	query := `
		SELECT id, name, description, created_at, updated_at
		FROM credit_types
		WHERE id = ANY($1)
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find credit types: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*entities.CreditType, len(ids))
	for rows.Next() {
		ct, err := scanCreditType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credit type: %w", err)
		}
		result[ct.ID()] = ct
	}
	return result, rows.Err()
}

// List returns credit types ordered by name.
func (r *CreditTypeRepository) List(ctx context.Context, offset, limit int) ([]*entities.CreditType, int, error) {
	q := r.getQuerier(ctx)

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM credit_types").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count credit types: %w", err)
	}

	query := `
		SELECT id, name, description, created_at, updated_at
		FROM credit_types
		ORDER BY name
		OFFSET $1 LIMIT $2
	`

	rows, err := q.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list credit types: %w", err)
	}
	defer rows.Close()

	var cts []*entities.CreditType
	for rows.Next() {
		ct, err := scanCreditType(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan credit type: %w", err)
		}
		cts = append(cts, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read credit types: %w", err)
	}

	return cts, total, nil
}

// Delete removes a credit type unless transactions still reference it.
func (r *CreditTypeRepository) Delete(ctx context.Context, id string) error {
	q := r.getQuerier(ctx)

	var inUse bool
	if err := q.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM transactions WHERE credit_type_id = $1)", id,
	).Scan(&inUse); err != nil {
		return fmt.Errorf("failed to check credit type usage: %w", err)
	}
	if inUse {
		return domainErrors.ErrCreditTypeInUse
	}

	tag, err := q.Exec(ctx, "DELETE FROM credit_types WHERE id = $1", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domainErrors.ErrCreditTypeInUse
		}
		return fmt.Errorf("failed to delete credit type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrCreditTypeNotFound
	}

	return nil
}

func scanCreditType(row pgx.Row) (*entities.CreditType, error) {
	var (
		id, name, description string
		createdAt, updatedAt  time.Time
	)
	if err := row.Scan(&id, &name, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return entities.ReconstructCreditType(id, name, description, createdAt, updatedAt), nil
}
