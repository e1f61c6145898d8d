package llm

import (
	"github.com/freedom-fire/ticketrouter/internal/models"
	"github.com/freedom-fire/ticketrouter/internal/utils"
)

// Эвристический классификатор — детерминированная деградация, когда LLM
// недоступен или все попытки исчерпаны.

const (
	spamModelTag      = "spam-heuristic"
	heuristicModelTag = "heuristic-fallback"

	fallbackSummaryLimit = 200
)

// spamResult — короткое замыкание для рекламы: без вызова модели
func spamResult() *models.Analysis {
	return &models.Analysis{
		TicketType:    models.TypeSpam,
		Sentiment:     models.SentimentNeutral,
		PriorityScore: 1,
		Language:      models.LangRU,
		Summary:       "Спам/реклама. Обращение не относится к поддержке Freedom Broker.",
		ModelTag:      spamModelTag,
	}
}

// heuristicFallback классифицирует по таблицам маркеров: тип, язык,
// тональность; резюме — первые 200 символов текста.
func heuristicFallback(description string) *models.Analysis {
	if utils.LooksLikeSpam(description) {
		return &models.Analysis{
			TicketType:    models.TypeSpam,
			Sentiment:     models.SentimentNeutral,
			PriorityScore: 1,
			Language:      models.LangRU,
			Summary:       "Спам/реклама. Обращение не относится к поддержке.",
			ModelTag:      heuristicModelTag,
		}
	}

	ticketType, priority := utils.ClassifyType(description)

	return &models.Analysis{
		TicketType:    ticketType,
		Sentiment:     utils.DetectSentiment(description),
		PriorityScore: priority,
		Language:      utils.DetectLanguage(description),
		Summary:       truncateRunes(description, fallbackSummaryLimit),
		ModelTag:      heuristicModelTag,
	}
}

// PostAdjust — детерминированная пост-коррекция тональности и приоритета
// поверх обоих путей (LLM и эвристики). Переопределяет ответ только при
// однозначных свидетельствах в тексте:
//  1. Мошенничество → приоритет ≥ 9; блокировка/срочность → приоритет ≥ 8.
//  2. Сильный негатив → Негативный.
//  3. Сильный позитив без негатива → Позитивный.
//  4. Только «спасибо» → Нейтральный.
//  5. LLM сказал Негативный без сильных свидетельств → Нейтральный.
func PostAdjust(analysis *models.Analysis, originalText string) *models.Analysis {
	if analysis.TicketType == models.TypeSpam {
		return analysis
	}

	strongNeg := utils.HasStrongNegativeEvidence(originalText)
	strongPos := utils.HasStrongPositive(originalText)
	weakPosOnly := utils.HasWeakPositiveOnly(originalText)

	// Поднятие приоритета не зависит от тональности
	switch {
	case utils.HasFraudMarkers(originalText):
		if analysis.PriorityScore < 9 {
			analysis.PriorityScore = 9
		}
	case utils.HasBlockedMarkers(originalText) || utils.HasUrgency(originalText):
		if analysis.PriorityScore < 8 {
			analysis.PriorityScore = 8
		}
	}

	switch {
	case strongNeg:
		analysis.Sentiment = models.SentimentNegative
	case strongPos:
		analysis.Sentiment = models.SentimentPositive
	case weakPosOnly:
		analysis.Sentiment = models.SentimentNeutral
	case analysis.Sentiment == models.SentimentNegative:
		// Негатив от LLM без сильных свидетельств понижаем
		analysis.Sentiment = models.SentimentNeutral
	}

	return analysis
}

// clampPriority зажимает приоритет в [1, 10]
func clampPriority(p int) int {
	if p < 1 {
		return 1
	}
	if p > 10 {
		return 10
	}
	return p
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
