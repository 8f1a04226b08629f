package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoGogDBD/profile-views/internal/config"
	models "github.com/RoGogDBD/profile-views/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStorage реализует Storage поверх PostgreSQL.
//
// Инкремент выполняется одним upsert-запросом, поэтому он атомарен и
// долговременен на уровне базы: к моменту возврата строка уже закоммичена.
type PgStorage struct {
	pool *pgxpool.Pool
}

// NewPgStorage создаёт хранилище счётчиков поверх готового пула соединений.
func NewPgStorage(pool *pgxpool.Pool) *PgStorage {
	return &PgStorage{pool: pool}
}

// IncrementAndGet атомарно увеличивает счётчик ключа key и возвращает новое значение.
//
// Временные ошибки соединения повторяются с бэкоффом; исчерпание попыток
// или истечение контекста возвращается как ErrStoreUnavailable.
func (p *PgStorage) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}

	stmt := `
		INSERT INTO counters (id, views)
		VALUES ($1, 1)
		ON CONFLICT (id) DO UPDATE
		SET views = counters.views + 1
		RETURNING views
	`

	var views int64
	err := config.RetryWithBackoff(ctx, func() error {
		return p.pool.QueryRow(ctx, stmt, key).Scan(&views)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return views, nil
}

// GetCount возвращает текущее значение счётчика ключа и флаг наличия.
func (p *PgStorage) GetCount(ctx context.Context, key string) (int64, bool, error) {
	if err := ValidateKey(key); err != nil {
		return 0, false, err
	}

	var views int64
	err := p.pool.QueryRow(ctx, `SELECT views FROM counters WHERE id = $1`, key).Scan(&views)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return views, true, nil
}

// GetAll возвращает срез всех счётчиков.
func (p *PgStorage) GetAll(ctx context.Context) ([]models.CounterRecord, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, views FROM counters`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var result []models.CounterRecord
	for rows.Next() {
		var r models.CounterRecord
		if err := rows.Scan(&r.ID, &r.Views); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return result, nil
}

// Close закрывает пул соединений.
func (p *PgStorage) Close() error {
	p.pool.Close()
	return nil
}
