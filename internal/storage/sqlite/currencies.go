package sqlite

import (
	"context"
	"fmt"

	"github.com/nurlan/debtnet/internal/models"
)

func (s *SQLiteStore) ListCurrencies(ctx context.Context) ([]*models.Currency, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, code, name FROM currencies ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []*models.Currency
	for rows.Next() {
		c := &models.Currency{}
		if err := rows.Scan(&c.ID, &c.Code, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}
	return currencies, rows.Err()
}

func (s *SQLiteStore) GetCurrencyByID(ctx context.Context, id string) (*models.Currency, error) {
	c := &models.Currency{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, code, name FROM currencies WHERE id = ?", id,
	).Scan(&c.ID, &c.Code, &c.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (s *SQLiteStore) GetCurrencyByCode(ctx context.Context, code string) (*models.Currency, error) {
	c := &models.Currency{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, code, name FROM currencies WHERE code = ?", code,
	).Scan(&c.ID, &c.Code, &c.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}
