package limits

import (
	"fmt"
	"time"
)

// AdapterLimits определяет бюджеты внешних адаптеров: ретраи классификатора,
// таймауты HTTP-вызовов и размер кэша геокодера.
type AdapterLimits struct {
	MaxLLMAttempts    int           `json:"max_llm_attempts"`
	LLMTimeout        time.Duration `json:"llm_timeout"`
	GeocoderTimeout   time.Duration `json:"geocoder_timeout"`
	MaxGeocodeQueries int           `json:"max_geocode_queries"`
	MaxCacheEntries   int           `json:"max_cache_entries"`
}

// DefaultAdapterLimits возвращает бюджеты по умолчанию
func DefaultAdapterLimits() *AdapterLimits {
	return &AdapterLimits{
		MaxLLMAttempts:    3,
		LLMTimeout:        10 * time.Second,
		GeocoderTimeout:   10 * time.Second,
		MaxGeocodeQueries: 2,
		MaxCacheEntries:   10000,
	}
}

// AdapterLimiter предоставляет функциональность для контроля бюджетов
type AdapterLimiter struct {
	limits *AdapterLimits
}

// NewAdapterLimiter создает новый лимитер бюджетов
func NewAdapterLimiter(limits *AdapterLimits) *AdapterLimiter {
	if limits == nil {
		limits = DefaultAdapterLimits()
	}
	return &AdapterLimiter{
		limits: limits,
	}
}

// GetLimits возвращает текущие бюджеты
func (al *AdapterLimiter) GetLimits() *AdapterLimits {
	return al.limits
}

// UpdateLimits обновляет бюджеты
func (al *AdapterLimiter) UpdateLimits(limits *AdapterLimits) error {
	if limits.MaxLLMAttempts <= 0 {
		return fmt.Errorf("MaxLLMAttempts must be positive")
	}
	if limits.LLMTimeout <= 0 {
		return fmt.Errorf("LLMTimeout must be positive")
	}
	if limits.GeocoderTimeout <= 0 {
		return fmt.Errorf("GeocoderTimeout must be positive")
	}
	if limits.MaxGeocodeQueries <= 0 {
		return fmt.Errorf("MaxGeocodeQueries must be positive")
	}
	if limits.MaxCacheEntries <= 0 {
		return fmt.Errorf("MaxCacheEntries must be positive")
	}
	al.limits = limits
	return nil
}
