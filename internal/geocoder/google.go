package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/freedom-fire/ticketrouter/internal/limits"
	"github.com/freedom-fire/ticketrouter/internal/models"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleClient — альтернативный геокодер; выбирается конфигурацией при
// наличии API-ключа.
type GoogleClient struct {
	apiKey string
	client *http.Client
}

// NewGoogleClient создаёт клиент Google Geocoding API
func NewGoogleClient(apiKey string, limiter *limits.AdapterLimiter) *GoogleClient {
	if limiter == nil {
		limiter = limits.NewAdapterLimiter(nil)
	}
	return &GoogleClient{
		apiKey: apiKey,
		client: &http.Client{Timeout: limiter.GetLimits().GeocoderTimeout},
	}
}

type googleResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Lookup реализует apiProvider через Google Geocoding API
func (g *GoogleClient) Lookup(ctx context.Context, address string) (*models.GeoPoint, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.apiKey)
	params.Set("region", "kz")
	params.Set("language", "ru")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleGeocodeURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build google request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google geocode returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read google response: %w", err)
	}

	var parsed googleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse google response: %w", err)
	}

	if parsed.Status != "OK" || len(parsed.Results) == 0 {
		log.Printf("📍 Google не нашёл '%s': %s", address, parsed.Status)
		return nil, nil
	}

	loc := parsed.Results[0].Geometry.Location
	return &models.GeoPoint{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

// NewGeocoder выбирает провайдер по конфигурации: Google при наличии ключа,
// иначе Nominatim.
func NewGeocoder(googleAPIKey, userAgent string, limiter *limits.AdapterLimiter) *Resolver {
	if googleAPIKey != "" {
		return NewResolver(NewGoogleClient(googleAPIKey, limiter), limiter)
	}
	return NewResolver(NewNominatimClient(userAgent, limiter), limiter)
}
