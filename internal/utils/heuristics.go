package utils

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

// Heuristic Analysis: быстрые детерминированные проверки текста обращения
// без LLM — спам, тональность, язык, тип. Таблицы маркеров лежат в
// markers.yaml, чтобы их можно было пополнять без правки кода.

//go:embed markers.yaml
var markersYAML []byte

// TypeBucket — корзина ключевых слов для эвристического определения типа
type TypeBucket struct {
	Type     string   `yaml:"type"`
	Priority int      `yaml:"priority"`
	Markers  []string `yaml:"markers"`
}

type markerTables struct {
	SpamWithLink      []string     `yaml:"spam_with_link"`
	SpamWithoutLink   []string     `yaml:"spam_without_link"`
	StrongPositive    []string     `yaml:"strong_positive"`
	WeakPositive      []string     `yaml:"weak_positive"`
	Issue             []string     `yaml:"issue"`
	Fraud             []string     `yaml:"fraud"`
	Blocked           []string     `yaml:"blocked"`
	Urgent            []string     `yaml:"urgent"`
	StrongNegative    []string     `yaml:"strong_negative"`
	WholeWordNegative []string     `yaml:"whole_word_negative"`
	LanguageKZ        []string     `yaml:"language_kz"`
	LanguageENG       []string     `yaml:"language_eng"`
	TypeBuckets       []TypeBucket `yaml:"type_buckets"`
}

// Пакет-уровневые паттерны для оптимизации hot path
// Компилируются один раз при запуске программы
var (
	urlRegex         = regexp.MustCompile(`(?i)https?://\S+`)
	exclamationRegex = regexp.MustCompile(`!{2,}`)
)

var markers = loadMarkers()

func loadMarkers() *markerTables {
	var t markerTables
	if err := yaml.Unmarshal(markersYAML, &t); err != nil {
		panic(fmt.Sprintf("markers.yaml is malformed: %v", err))
	}
	return &t
}

// hasAnyPhrase — есть ли хоть одна фраза как подстрока (текст уже в lower)
func hasAnyPhrase(lowered string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

// hasAnyWord — совпадение по целому слову. Стандартный \b в regexp не
// работает для кириллицы (границы считаются по ASCII), поэтому границы
// описаны явно через классы юникода: слово не должно продолжаться буквой
// или цифрой ("суд" не находится внутри "судьба").
func hasAnyWord(text string, words []string) bool {
	for _, w := range words {
		pattern := `(?i)(?:\A|[^\p{L}\p{N}_])` + regexp.QuoteMeta(w) + `(?:\z|[^\p{L}\p{N}_])`
		if regexp.MustCompile(pattern).MatchString(text) {
			return true
		}
	}
	return false
}

// LooksLikeSpam — рекламное/спамовое обращение: ссылка + маркетинговая
// лексика, либо длинный текст со ссылкой и предложением цены, либо
// оптово-прайсовая лексика без ссылки.
func LooksLikeSpam(text string) bool {
	t := strings.ToLower(text)
	if urlRegex.MatchString(t) {
		if hasAnyPhrase(t, markers.SpamWithLink) {
			return true
		}
		if len(t) > 200 && strings.Count(t, "http") >= 1 &&
			(strings.Contains(t, "предлож") || strings.Contains(t, "цена")) {
			return true
		}
	}
	return hasAnyPhrase(t, markers.SpamWithoutLink)
}

// HasStrongNegativeEvidence — только сильные свидетельства негатива:
// угрозы и эскалация, мат, слово «суд» целиком, два и более восклицательных
// знака подряд.
func HasStrongNegativeEvidence(text string) bool {
	t := strings.ToLower(text)

	if hasAnyPhrase(t, markers.StrongNegative) {
		return true
	}
	if hasAnyWord(text, markers.WholeWordNegative) {
		return true
	}
	if exclamationRegex.MatchString(text) {
		return true
	}
	return false
}

// HasFraudMarkers — признаки мошенничества (всегда приоритет ≥ 9)
func HasFraudMarkers(text string) bool {
	return hasAnyPhrase(strings.ToLower(text), markers.Fraud)
}

// HasBlockedMarkers — потеря доступа / блокировка (приоритет ≥ 8)
func HasBlockedMarkers(text string) bool {
	return hasAnyPhrase(strings.ToLower(text), markers.Blocked)
}

// HasUrgency — явные слова срочности либо блокировка доступа
func HasUrgency(text string) bool {
	t := strings.ToLower(text)
	if hasAnyPhrase(t, markers.Urgent) {
		return true
	}
	return hasAnyPhrase(t, markers.Blocked)
}

// HasStrongPositive — явное удовлетворение/решение проблемы
func HasStrongPositive(text string) bool {
	return hasAnyPhrase(strings.ToLower(text), markers.StrongPositive)
}

// HasWeakPositiveOnly — голое «спасибо» без явного решения
func HasWeakPositiveOnly(text string) bool {
	t := strings.ToLower(text)
	weak := hasAnyPhrase(t, markers.WeakPositive) || hasAnyWord(text, []string{"THX"})
	return weak && !hasAnyPhrase(t, markers.StrongPositive)
}

// DetectSentiment — детерминированное определение тональности.
//
// Правила по порядку:
//  1. Спам → Нейтральный.
//  2. Сильный негатив → Негативный.
//  3. Фразы проблемы/просьбы о помощи (без сильного негатива) → Нейтральный.
//  4. Сильный позитив без активной проблемы → Позитивный.
//  5. Только «спасибо» → Нейтральный.
//  6. По умолчанию → Нейтральный.
func DetectSentiment(text string) models.Sentiment {
	t := strings.ToLower(text)

	if LooksLikeSpam(text) {
		return models.SentimentNeutral
	}

	hasIssue := hasAnyPhrase(t, markers.Issue)

	if HasStrongNegativeEvidence(text) {
		return models.SentimentNegative
	}
	if hasIssue {
		return models.SentimentNeutral
	}
	if hasAnyPhrase(t, markers.StrongPositive) {
		return models.SentimentPositive
	}
	return models.SentimentNeutral
}

// DetectLanguage — язык по маркерам; по умолчанию RU
func DetectLanguage(text string) models.Language {
	t := strings.ToLower(text)
	if hasAnyPhrase(t, markers.LanguageKZ) {
		return models.LangKZ
	}
	if hasAnyPhrase(t, markers.LanguageENG) {
		return models.LangENG
	}
	return models.LangRU
}

// ClassifyType — тип обращения по корзинам ключевых слов; по умолчанию
// Консультация с приоритетом 4.
func ClassifyType(text string) (models.TicketType, int) {
	t := strings.ToLower(text)
	for _, bucket := range markers.TypeBuckets {
		if hasAnyPhrase(t, bucket.Markers) {
			return models.ParseTicketType(bucket.Type), bucket.Priority
		}
	}
	return models.TypeConsultation, 4
}
