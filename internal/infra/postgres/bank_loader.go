package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/germain250/quizly/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// BankLoader loads category banks stored as JSONB in Postgres.
type BankLoader struct {
	pool *pgxpool.Pool
}

func NewBankLoader(pool *pgxpool.Pool) *BankLoader {
	return &BankLoader{pool: pool}
}

func (l *BankLoader) LoadCategory(ctx context.Context, categoryID string) (domain.Category, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM categories WHERE id=$1`, categoryID).Scan(&raw)
	if err != nil {
		return domain.Category{}, fmt.Errorf("load category: %w", err)
	}
	var category domain.Category
	if err := json.Unmarshal(raw, &category); err != nil {
		return domain.Category{}, fmt.Errorf("unmarshal category: %w", err)
	}
	if category.ID == "" {
		category.ID = categoryID
	}
	return category, nil
}
