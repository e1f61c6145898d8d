// Package llm классифицирует обращения: тип, тональность, приоритет, язык,
// резюме. Основной путь — LLM через Genkit; при любой ошибке адаптер
// деградирует до эвристического классификатора, поэтому результат есть
// всегда.
package llm

import (
	"context"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

// Classifier — порт классификации обращений.
//
// Контракт: всегда возвращает заполненный Analysis с TicketID = 0
// (идентификатор проставляет вызывающая сторона). Ошибки транспорта,
// битый JSON и неизвестные значения перечислений не всплывают — адаптер
// обязан деградировать до эвристик.
type Classifier interface {
	AnalyzeTicket(ctx context.Context, description, attachments string) *models.Analysis
}
