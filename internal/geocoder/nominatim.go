package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/freedom-fire/ticketrouter/internal/limits"
	"github.com/freedom-fire/ticketrouter/internal/models"
	"github.com/freedom-fire/ticketrouter/internal/utils"
)

const nominatimURL = "https://nominatim.openstreetmap.org/search"

// NominatimClient — геокодер OpenStreetMap Nominatim, ограниченный
// Казахстаном (countrycodes=kz).
type NominatimClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *limits.AdapterLimiter
}

// NewNominatimClient создаёт клиент; userAgent обязателен по правилам
// использования Nominatim.
func NewNominatimClient(userAgent string, limiter *limits.AdapterLimiter) *NominatimClient {
	if limiter == nil {
		limiter = limits.NewAdapterLimiter(nil)
	}
	return &NominatimClient{
		baseURL:   nominatimURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: limiter.GetLimits().GeocoderTimeout},
		limiter:   limiter,
	}
}

// nominatimResult — элемент ответа search API
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Lookup пробует до двух вариантов запроса: полный адрес и адрес без
// префиксов улиц и номеров домов (надёжнее для сельских адресов).
func (n *NominatimClient) Lookup(ctx context.Context, address string) (*models.GeoPoint, error) {
	queries := utils.BuildGeocodeQueries(address)
	if max := n.limiter.GetLimits().MaxGeocodeQueries; len(queries) > max {
		queries = queries[:max]
	}

	for _, query := range queries {
		point, err := n.search(ctx, query)
		if err != nil {
			return nil, err
		}
		if point != nil {
			log.Printf("📍 Nominatim разрешил '%s' (q='%s') → (%f, %f)",
				address, query, point.Latitude, point.Longitude)
			return point, nil
		}
	}

	log.Printf("📍 Nominatim не нашёл '%s'", address)
	return nil, nil
}

func (n *NominatimClient) search(ctx context.Context, query string) (*models.GeoPoint, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "kz")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read nominatim response: %w", err)
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("parse nominatim response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse nominatim lat: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse nominatim lon: %w", err)
	}

	return &models.GeoPoint{Latitude: lat, Longitude: lon}, nil
}
