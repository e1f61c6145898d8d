package policy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

// Хабы для fallback-распределения 50/50: подстроки в названии отделения
const (
	AstanaHub = "Астана"
	AlmatyHub = "Алматы"
)

var (
	// ErrNoOfficeLocations — ни у одного отделения нет координат
	ErrNoOfficeLocations = errors.New("no offices with known locations available")
	// ErrNoOffices — список отделений пуст
	ErrNoOffices = errors.New("no offices available for fallback")
)

// OfficeSelection — результат выбора отделения
type OfficeSelection struct {
	Office       *models.Office
	DistanceKm   *float64 // nil при fallback
	FallbackUsed bool
	Reason       string
}

// SelectNearestOffice выбирает географически ближайшее отделение с
// известными координатами. При равных расстояниях побеждает меньший id.
func SelectNearestOffice(client models.GeoPoint, offices []*models.Office) (OfficeSelection, error) {
	var best *models.Office
	var bestDist float64

	for _, o := range offices {
		if o.Location == nil {
			continue
		}
		d := client.HaversineKm(*o.Location)
		if best == nil || d < bestDist || (d == bestDist && o.ID < best.ID) {
			best = o
			bestDist = d
		}
	}
	if best == nil {
		return OfficeSelection{}, ErrNoOfficeLocations
	}

	rounded := models.RoundKm(bestDist)
	return OfficeSelection{
		Office:       best,
		DistanceKm:   &rounded,
		FallbackUsed: false,
		Reason:       fmt.Sprintf("Nearest office: %s (%.1f km)", best.Name, bestDist),
	}, nil
}

// SelectFallbackOffice — детерминированное распределение 50/50 между
// хабами Астана и Алматы для обращений без адреса или из-за рубежа.
// Чётный счётчик → Астана, нечётный → Алматы. Если хабы не найдены в
// справочнике, распределяем по кругу между всеми отделениями по id.
func SelectFallbackOffice(counter int64, offices []*models.Office) (OfficeSelection, error) {
	if len(offices) == 0 {
		return OfficeSelection{}, ErrNoOffices
	}

	var astana, almaty *models.Office
	for _, o := range offices {
		if strings.Contains(o.Name, AstanaHub) {
			astana = o
		}
		if strings.Contains(o.Name, AlmatyHub) {
			almaty = o
		}
	}

	var chosen *models.Office
	var reason string
	if astana != nil && almaty != nil {
		if counter%2 == 0 {
			chosen = astana
			reason = fmt.Sprintf("Fallback 50/50 → %s (round-robin)", AstanaHub)
		} else {
			chosen = almaty
			reason = fmt.Sprintf("Fallback 50/50 → %s (round-robin)", AlmatyHub)
		}
	} else {
		sorted := make([]*models.Office, len(offices))
		copy(sorted, offices)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
		chosen = sorted[counter%int64(len(sorted))]
		reason = fmt.Sprintf("Fallback → %s (round-robin across all offices)", chosen.Name)
	}

	return OfficeSelection{
		Office:       chosen,
		DistanceKm:   nil,
		FallbackUsed: true,
		Reason:       reason,
	}, nil
}
