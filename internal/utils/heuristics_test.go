package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

func TestLooksLikeSpam(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "link with marketing lexicon",
			text: "Специальные цены на тюльпаны! Заказывайте на https://flowers.example",
			want: true,
		},
		{
			name: "wholesale lexicon without link",
			text: "Высылаем прайс, минимальный заказ от 100 штук, всё в наличии",
			want: true,
		},
		{
			name: "ordinary complaint is not spam",
			text: "Не могу войти в приложение, помогите",
			want: false,
		},
		{
			name: "link alone is not spam",
			text: "Вот скриншот ошибки: https://imgur.example/abc",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikeSpam(tt.text))
		})
	}
}

func TestHasStrongNegativeEvidence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "legal escalation", text: "Буду жаловаться в прокуратуру", want: true},
		{name: "court as whole word", text: "Подам на вас в суд", want: true},
		{name: "court inside another word", text: "Это моя судьба", want: false},
		{name: "double exclamation", text: "Верните доступ!!", want: true},
		{name: "calm question", text: "Подскажите, как изменить номер телефона?", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasStrongNegativeEvidence(tt.text))
		})
	}
}

func TestDetectSentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.Sentiment
	}{
		{
			name: "strong negative wins",
			text: "Это безобразие, требую вернуть деньги",
			want: models.SentimentNegative,
		},
		{
			name: "issue stays neutral",
			text: "Не получается обновить данные, помогите",
			want: models.SentimentNeutral,
		},
		{
			name: "clear resolution is positive",
			text: "Всё заработало, молодцы",
			want: models.SentimentPositive,
		},
		{
			name: "bare thanks is neutral",
			text: "Спасибо",
			want: models.SentimentNeutral,
		},
		{
			name: "plain text defaults to neutral",
			text: "Хочу открыть брокерский счёт",
			want: models.SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectSentiment(tt.text))
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, models.LangKZ, DetectLanguage("Сәлем! Маған көмек керек"))
	assert.Equal(t, models.LangENG, DetectLanguage("Hello, please help me with my account"))
	assert.Equal(t, models.LangRU, DetectLanguage("Добрый день, не работает личный кабинет"))
}

func TestClassifyType(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantType     models.TicketType
		wantPriority int
	}{
		{
			name:         "fraud bucket wins first",
			text:         "Мошенники списали деньги со счёта",
			wantType:     models.TypeFraud,
			wantPriority: 9,
		},
		{
			name:         "blocked access maps to complaint",
			text:         "Не могу войти в личный кабинет",
			wantType:     models.TypeComplaint,
			wantPriority: 8,
		},
		{
			name:         "app malfunction",
			text:         "Приложение выдает ошибку при запуске",
			wantType:     models.TypeAppMalfunction,
			wantPriority: 6,
		},
		{
			name:         "default is consultation",
			text:         "Какие у вас тарифы?",
			wantType:     models.TypeConsultation,
			wantPriority: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotPriority := ClassifyType(tt.text)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantPriority, gotPriority)
		})
	}
}

func TestPriorityMarkers(t *testing.T) {
	assert.True(t, HasFraudMarkers("Несанкционированное списание"))
	assert.True(t, HasBlockedMarkers("Счета заблокированы"))
	assert.True(t, HasUrgency("Срочно нужна помощь"))
	assert.False(t, HasFraudMarkers("Обычная консультация"))
}
