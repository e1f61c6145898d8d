package utils

import "strings"

// Нормализация адресов для геокодера.

// streetPrefixes — типовые префиксы улиц, которые мешают поиску по
// сельским адресам: провайдер часто не знает точную улицу, но знает
// населённый пункт.
var streetPrefixes = []string{"ул.", "улица", "пр-т", "проспект"}

// BuildGeocodeQueries собирает варианты запроса для геокодера:
//  1. полный адрес как есть;
//  2. адрес без префиксов улиц и числовых токенов (надёжнее для сёл).
func BuildGeocodeQueries(address string) []string {
	q1 := strings.TrimSpace(address)

	q2 := strings.ToLower(q1)
	for _, p := range streetPrefixes {
		q2 = strings.ReplaceAll(q2, p, "")
	}

	var parts []string
	for _, p := range strings.Fields(strings.ReplaceAll(q2, ",", " ")) {
		if !containsDigit(p) {
			parts = append(parts, p)
		}
	}
	q2 = strings.TrimSpace(strings.Join(parts, " "))

	queries := []string{q1}
	if q2 != "" && q2 != strings.ToLower(q1) {
		queries = append(queries, q2)
	}
	return queries
}

// NormalizeCacheKey — ключ кэша геокодера: обрезанный lower-case адрес
func NormalizeCacheKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
