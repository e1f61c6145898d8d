package storage

import (
	"context"
	"fmt"
)

// AdvanceCounter атомарно продвигает счётчик round-robin и возвращает
// значение ДО продвижения (первый вызов по ключу возвращает 0).
//
// Один UPSERT с RETURNING: конкурентные воркеры с одним ключом получают
// строго различные последовательные значения — это единственная глобальная
// гарантия упорядочивания конвейера.
func (s queries) AdvanceCounter(ctx context.Context, rrKey string) (int64, error) {
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO round_robin_state (rr_key, counter, updated_at)
		VALUES (?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(rr_key) DO UPDATE SET
			counter = counter + 1,
			updated_at = CURRENT_TIMESTAMP
		RETURNING counter - 1`, rrKey)

	var previous int64
	if err := row.Scan(&previous); err != nil {
		return 0, fmt.Errorf("advance counter %q: %w", rrKey, err)
	}
	return previous, nil
}

// GetCounter возвращает текущее значение счётчика (0, если ключа нет)
func (s queries) GetCounter(ctx context.Context, rrKey string) (int64, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT COALESCE((SELECT counter FROM round_robin_state WHERE rr_key = ?), 0)`, rrKey)

	var counter int64
	if err := row.Scan(&counter); err != nil {
		return 0, fmt.Errorf("get counter %q: %w", rrKey, err)
	}
	return counter, nil
}
