package llm

import (
	"context"
	"fmt"
	"log"

	"github.com/firebase/genkit/go/ai"
	genkitcore "github.com/firebase/genkit/go/core"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"github.com/freedom-fire/ticketrouter/internal/limits"
	"github.com/freedom-fire/ticketrouter/internal/models"
	"github.com/freedom-fire/ticketrouter/internal/utils"
)

// ClassifyRequest - input for the classification flow
type ClassifyRequest struct {
	Description string `json:"description"`
	Attachments string `json:"attachments"`
}

// ClassifyResponse - structured output from the classification flow
type ClassifyResponse struct {
	TicketType    string `json:"ticket_type"`
	Sentiment     string `json:"sentiment"`
	PriorityScore int    `json:"priority_score"`
	Language      string `json:"language"`
	Summary       string `json:"summary"`
}

// GenkitClassifier классифицирует обращения через LLM с ограниченными
// ретраями и детерминированной деградацией до эвристик.
type GenkitClassifier struct {
	genkitApp *genkit.Genkit
	modelName string
	dataDir   string
	limiter   *limits.AdapterLimiter

	classifyFlow *genkitcore.Flow[*ClassifyRequest, *ClassifyResponse, struct{}]
}

// NewGenkitClassifier создаёт классификатор поверх инициализированного
// Genkit-приложения
func NewGenkitClassifier(
	genkitApp *genkit.Genkit,
	modelName string,
	dataDir string,
	limiter *limits.AdapterLimiter,
) *GenkitClassifier {
	if limiter == nil {
		limiter = limits.NewAdapterLimiter(nil)
	}

	c := &GenkitClassifier{
		genkitApp: genkitApp,
		modelName: modelName,
		dataDir:   dataDir,
		limiter:   limiter,
	}

	c.classifyFlow = genkit.DefineFlow(
		genkitApp, "classifyTicketFlow",
		func(ctx context.Context, req *ClassifyRequest) (*ClassifyResponse, error) {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("context cancelled before classification: %w", err)
			}

			parts := []*ai.Part{ai.NewTextPart(BuildUserPrompt(req.Description, req.Attachments))}
			for _, img := range EncodeImageAttachments(c.dataDir, req.Attachments) {
				parts = append(parts, ai.NewMediaPart(img[0], img[1]))
			}

			result, _, err := genkit.GenerateData[ClassifyResponse](
				ctx,
				c.genkitApp,
				ai.WithModelName(c.modelName),
				ai.WithMessages(
					ai.NewSystemTextMessage(SystemPrompt),
					ai.NewUserMessage(parts...),
				),
				ai.WithConfig(map[string]any{"temperature": 0.1}),
			)
			if err != nil {
				return nil, fmt.Errorf("classification LLM failed: %w", err)
			}
			return result, nil
		},
	)

	return c
}

// AnalyzeTicket реализует Classifier.
//
// Порядок разрешения:
//  1. Спам-эвристика — реклама не тратит вызовы модели.
//  2. LLM с ретраями (бюджет из limits).
//  3. Эвристический fallback, если все попытки исчерпаны.
//  4. Пост-коррекция тональности и приоритета в любом случае.
func (c *GenkitClassifier) AnalyzeTicket(ctx context.Context, description, attachments string) *models.Analysis {
	if utils.LooksLikeSpam(description) {
		return spamResult()
	}

	lim := c.limiter.GetLimits()
	req := &ClassifyRequest{Description: description, Attachments: attachments}

	for attempt := 1; attempt <= lim.MaxLLMAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, lim.LLMTimeout)
		resp, err := c.classifyFlow.Run(attemptCtx, req)
		cancel()

		if err != nil {
			log.Printf("⚠️ Попытка %d/%d: ошибка классификации: %v", attempt, lim.MaxLLMAttempts, err)
			continue
		}
		if resp == nil || resp.Summary == "" {
			log.Printf("⚠️ Попытка %d/%d: пустой ответ модели", attempt, lim.MaxLLMAttempts)
			continue
		}

		return PostAdjust(c.mapToAnalysis(resp), description)
	}

	log.Printf("❌ Все попытки LLM исчерпаны, используем эвристический fallback")
	return PostAdjust(heuristicFallback(description), description)
}

// mapToAnalysis переводит сырой ответ модели в доменную сущность.
// Неизвестные значения перечислений заменяются умолчаниями
// (Консультация / Нейтральный / RU), приоритет зажимается в [1, 10].
func (c *GenkitClassifier) mapToAnalysis(resp *ClassifyResponse) *models.Analysis {
	priority := resp.PriorityScore
	if priority == 0 {
		priority = 5
	}

	return &models.Analysis{
		TicketType:    models.ParseTicketType(resp.TicketType),
		Sentiment:     models.ParseSentiment(resp.Sentiment),
		PriorityScore: clampPriority(priority),
		Language:      models.ParseLanguage(resp.Language),
		Summary:       resp.Summary,
		ModelTag:      c.modelName,
	}
}

// HeuristicClassifier — классификатор без LLM: используется когда ключ
// модели не задан, и в тестах.
type HeuristicClassifier struct{}

// NewHeuristicClassifier создаёт эвристический классификатор
func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

// AnalyzeTicket реализует Classifier только на таблицах маркеров
func (h *HeuristicClassifier) AnalyzeTicket(_ context.Context, description, _ string) *models.Analysis {
	if utils.LooksLikeSpam(description) {
		return spamResult()
	}
	return PostAdjust(heuristicFallback(description), description)
}

// NewClassifier выбирает реализацию по конфигурации: при наличии API-ключа
// инициализирует Genkit с Gemini, иначе — эвристики.
func NewClassifier(ctx context.Context, apiKey, modelName, dataDir string, limiter *limits.AdapterLimiter) Classifier {
	if apiKey == "" {
		log.Printf("⚠️ GEMINI_API_KEY не задан — классификация только эвристиками")
		return NewHeuristicClassifier()
	}

	genkitApp := genkit.Init(
		ctx,
		genkit.WithPlugins(
			&googlegenai.GoogleAI{
				APIKey: apiKey,
			},
		),
		genkit.WithDefaultModel(modelName),
	)

	return NewGenkitClassifier(genkitApp, modelName, dataDir, limiter)
}
