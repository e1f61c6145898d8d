// Package geocoder разрешает адреса клиентов в координаты: кэш → внешний
// API → центроид города → центроид области. Остановка на первом попадании.
package geocoder

import (
	"context"
	"log"
	"sync"

	"github.com/freedom-fire/ticketrouter/internal/limits"
	"github.com/freedom-fire/ticketrouter/internal/models"
	"github.com/freedom-fire/ticketrouter/internal/utils"
)

// Geocoder — порт геокодирования. nil означает «адрес не разрешён»;
// ошибки провайдера не всплывают — они эквивалентны промаху уровня.
type Geocoder interface {
	Geocode(ctx context.Context, address string) *models.GeoPoint
}

// apiProvider — внешний геокодер (Nominatim или Google)
type apiProvider interface {
	Lookup(ctx context.Context, address string) (*models.GeoPoint, error)
}

// Resolver — многоуровневый геокодер с процесс-локальным кэшем.
// Кэш ключуется обрезанным lower-case адресом и хранит в том числе
// отрицательные результаты, чтобы не дёргать API повторно.
type Resolver struct {
	provider apiProvider
	limiter  *limits.AdapterLimiter

	mutex sync.RWMutex
	cache map[string]*models.GeoPoint
}

// NewResolver создаёт resolver поверх провайдера; provider может быть nil —
// тогда работают только таблицы центроидов.
func NewResolver(provider apiProvider, limiter *limits.AdapterLimiter) *Resolver {
	if limiter == nil {
		limiter = limits.NewAdapterLimiter(nil)
	}
	return &Resolver{
		provider: provider,
		limiter:  limiter,
		cache:    make(map[string]*models.GeoPoint),
	}
}

// Geocode реализует Geocoder.
//
// Уровни (остановка на первом попадании):
//  1. Кэш.
//  2. Внешний API (до двух вариантов запроса).
//  3. Центроид города.
//  4. Центроид области.
//  5. Промах кэшируется как nil.
func (r *Resolver) Geocode(ctx context.Context, address string) *models.GeoPoint {
	key := utils.NormalizeCacheKey(address)
	if key == "" {
		return nil
	}

	r.mutex.RLock()
	point, hit := r.cache[key]
	r.mutex.RUnlock()
	if hit {
		return point
	}

	point = r.apiLookup(ctx, address)

	if point == nil {
		point = CityCentroid(address)
	}
	if point == nil {
		point = RegionCentroid(address)
	}
	if point == nil {
		log.Printf("⚠️ Геокодер не нашёл '%s'", address)
	}

	r.store(key, point)
	return point
}

func (r *Resolver) apiLookup(ctx context.Context, address string) *models.GeoPoint {
	if r.provider == nil {
		return nil
	}

	point, err := r.provider.Lookup(ctx, address)
	if err != nil {
		log.Printf("⚠️ Ошибка геокодера для '%s': %v", address, err)
		return nil
	}
	return point
}

// store кладёт результат в кэш, пока не достигнут лимит записей
func (r *Resolver) store(key string, point *models.GeoPoint) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if len(r.cache) >= r.limiter.GetLimits().MaxCacheEntries {
		return
	}
	r.cache[key] = point
}

// CacheSize возвращает число записей в кэше (для отладки и тестов)
func (r *Resolver) CacheSize() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.cache)
}
