// Package ingest читает CSV-выгрузки (обращения, менеджеры, отделения),
// нормализует заголовки и значения и наполняет хранилище. Конвейер
// распределения от пакета не зависит.
package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Нормализация колонок: экспорт из Excel приносит BOM, неразрывные пробелы
// и разнобой в регистре.

var (
	spaceRegex    = regexp.MustCompile(`[\s\x{00a0}]+`)
	nonWordRegex  = regexp.MustCompile(`[^\p{L}\p{N}_]`)
	skillSepRegex = regexp.MustCompile(`[,;\s]+`)
)

// NormalizeColumnName приводит имя колонки к каноническому виду:
// без BOM, в нижнем регистре, пробелы → подчёркивания, только буквы/цифры
func NormalizeColumnName(name string) string {
	name = strings.ReplaceAll(name, "\ufeff", "")
	name = strings.TrimSpace(name)
	name = spaceRegex.ReplaceAllString(name, "_")
	name = strings.ToLower(name)
	return nonWordRegex.ReplaceAllString(name, "")
}

// CleanString обрезает пробелы; пустая строка остаётся пустой
func CleanString(value string) string {
	return strings.TrimSpace(value)
}

// ParseSkills разбирает строку вида "VIP, KZ, ENG" в коды навыков.
// Разделители: запятая, точка с запятой, пробел.
func ParseSkills(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var skills []string
	for _, part := range skillSepRegex.Split(raw, -1) {
		code := strings.ToUpper(strings.TrimSpace(part))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		skills = append(skills, code)
	}
	return skills
}

// NormalizeBuilding чинит номера домов из Excel: "9.0" → "9"
func NormalizeBuilding(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if f, ok := parseFloat(v); ok && f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return v
}

// parseFloat разбирает число с запятой или точкой в качестве разделителя
func parseFloat(value string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(value), ",", "."), 64)
	return f, err == nil
}
