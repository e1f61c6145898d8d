package driven

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/freedom-fire/ticketrouter/internal/storage"
)

// BatchProcessor обрабатывает все необработанные обращения.
// Необработанное = без записи аналитики; порядок — id ASC.
type BatchProcessor struct {
	processor *TicketProcessor
	store     storage.Backend
	workers   int
}

// NewBatchProcessor создаёт пакетный обработчик; workers ≤ 1 даёт
// последовательный режим.
func NewBatchProcessor(processor *TicketProcessor, store storage.Backend, workers int) *BatchProcessor {
	if workers < 1 {
		workers = 1
	}
	return &BatchProcessor{
		processor: processor,
		store:     store,
		workers:   workers,
	}
}

// Execute прогоняет конвейер по каждому необработанному обращению.
// Сбой одного обращения не прерывает пакет: ошибка остаётся в его
// ProcessingResult. Порядок результатов совпадает с порядком обращений.
func (b *BatchProcessor) Execute(ctx context.Context) ([]ProcessingResult, error) {
	tickets, err := b.store.GetUnprocessedTickets(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("📦 Пакетная обработка: %d необработанных обращений", len(tickets))

	results := make([]ProcessingResult, len(tickets))

	if b.workers == 1 {
		for i, ticket := range tickets {
			results[i] = b.processor.Process(ctx, ticket)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(b.workers)
		for i, ticket := range tickets {
			i, ticket := i, ticket
			g.Go(func() error {
				results[i] = b.processor.Process(gctx, ticket)
				return nil
			})
		}
		// Process не возвращает ошибок — ждём только завершения воркеров
		_ = g.Wait()
	}

	successful := 0
	for _, r := range results {
		if r.Error == "" {
			successful++
		}
	}
	log.Printf("📦 Пакет завершён: %d/%d успешно", successful, len(results))

	return results, nil
}

// GeocodeOffices — реконсилер координат отделений: отделения без координат
// прогоняются через геокодер явно, чтобы сбой API при загрузке не оставлял
// тихих null.
func (b *BatchProcessor) GeocodeOffices(ctx context.Context) (int, error) {
	offices, err := b.store.GetAllOffices(ctx)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, office := range offices {
		if office.Location != nil {
			continue
		}
		point := b.processor.geocoder.Geocode(ctx, office.Address)
		if point == nil {
			log.Printf("⚠️ Отделение %s: адрес '%s' не геокодируется", office.Name, office.Address)
			continue
		}
		if err := b.store.UpdateOfficeLocation(ctx, office.ID, *point); err != nil {
			return resolved, err
		}
		resolved++
		log.Printf("📍 Отделение %s → (%f, %f)", office.Name, point.Latitude, point.Longitude)
	}
	return resolved, nil
}
