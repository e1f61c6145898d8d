package llm

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Пакет-уровневые паттерны для оптимизации hot path
// Компилируются один раз при запуске программы
var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

const maxContentSizeForLLM = 3500

// SystemPrompt фиксирует словарь перечислений: модель обязана отвечать
// строго значениями из этих списков.
const SystemPrompt = `You are an expert ticket classifier for a financial services company (Freedom Broker, Kazakhstan).

Analyze the customer ticket and return a JSON object with exactly these fields:

{
  "ticket_type": one of ["Жалоба", "Смена данных", "Консультация", "Претензия", "Неработоспособность приложения", "Мошеннические действия", "Спам"],
  "sentiment": one of ["Позитивный", "Нейтральный", "Негативный"],
  "priority_score": integer 1-10 (10 = most urgent),
  "language": one of ["RU", "KZ", "ENG"],
  "summary": "Provide a concise summary of the issue (1-2 sentences) in the same language as the ticket. CRITICAL: You MUST include a concrete, actionable recommendation for the manager at the end of the summary. For example: 'Action: Contact the client to verify their identity.'"
}

Rules:
- Detect the language of the ticket text.
- Classify the ticket type based on content.
- IMPORTANT: obvious ads/promotions with links, product offers, bulk sales, "специальные цены", etc. must be classified as "Спам" with priority_score=1.
- IMPORTANT: If the customer is calmly reporting a bug, error, or login issue without using aggressive or frustrated language, classify the sentiment as 'Нейтральный'. The presence of words like 'ошибка' (error) or 'не могу войти' (cannot login) does NOT automatically make it 'Негативный' unless accompanied by anger or strong dissatisfaction.
- Priority score guidance:
  * fraud/security, account hacked, money missing → 9-10
  * blocked accounts / cannot access funds, "срочно" → 8-10
  * complaints / претензии → 7-8
  * app issues → 6-7
  * data changes → 5-6
  * consultations → 3-4
  * spam → 1
- Return ONLY valid JSON, no markdown or extra text.`

// BuildUserPrompt собирает текст пользовательского сообщения
func BuildUserPrompt(description, attachments string) string {
	text := "Ticket text:\n" + PrepareTextForLLM(description)
	if attachments != "" {
		text += "\nAttachments: " + attachments
	}
	return text
}

// PrepareTextForLLM готовит текст обращения для модели. Обращения,
// вставленные из почтовых клиентов, могут содержать HTML-разметку —
// извлекаем только текст, чтобы модель поняла суть.
func PrepareTextForLLM(content string) string {
	if len(content) == 0 {
		return "empty"
	}

	if strings.Contains(content, "<html") || strings.Contains(content, "<!DOCTYPE") ||
		strings.Contains(content, "<body") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err == nil {
			// Удаляем скрипты и стили, чтобы они не загромождали контекст
			doc.Find("script, style").Remove()
			textContent := doc.Find("body").Text()
			textContent = whitespaceRegex.ReplaceAllString(textContent, " ")
			return TruncateString(strings.TrimSpace(textContent), maxContentSizeForLLM)
		}
	}

	return TruncateString(content, maxContentSizeForLLM)
}

// EncodeImageAttachments читает перечисленные через запятую файлы из
// {dataDir}/images и кодирует их в data-URI для мультимодального промпта.
// Возвращает пары (mime, data-uri); нечитаемые файлы пропускаются.
func EncodeImageAttachments(dataDir, attachments string) [][2]string {
	if attachments == "" || dataDir == "" {
		return nil
	}

	imageDir := filepath.Join(dataDir, "images")
	var parts [][2]string
	for _, name := range strings.Split(attachments, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(imageDir, name))
		if err != nil {
			log.Printf("⚠️ Не удалось прочитать вложение %s: %v", name, err)
			continue
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
		mime := "image/jpeg"
		switch ext {
		case "jpeg", "jpg":
			mime = "image/jpeg"
		case "png", "webp", "gif":
			mime = "image/" + ext
		}

		encoded := base64.StdEncoding.EncodeToString(raw)
		parts = append(parts, [2]string{mime, fmt.Sprintf("data:%s;base64,%s", mime, encoded)})
	}
	return parts
}

// TruncateString оставляет первые maxLen байт строки и добавляет "..."
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
