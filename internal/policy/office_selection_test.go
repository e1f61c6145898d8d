package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

var (
	almatyPoint = models.GeoPoint{Latitude: 43.238949, Longitude: 76.945465}
	astanaPoint = models.GeoPoint{Latitude: 51.128207, Longitude: 71.430411}
)

func office(id int64, name string, location *models.GeoPoint) *models.Office {
	return &models.Office{ID: id, Name: name, Address: "адрес", Location: location}
}

func TestSelectNearestOffice(t *testing.T) {
	offices := []*models.Office{
		office(1, "ЦО Астана", &astanaPoint),
		office(2, "ЦО Алматы", &almatyPoint),
		office(3, "Без координат", nil),
	}

	client := models.GeoPoint{Latitude: 43.24, Longitude: 76.95}
	sel, err := SelectNearestOffice(client, offices)
	require.NoError(t, err)

	assert.Equal(t, int64(2), sel.Office.ID)
	assert.False(t, sel.FallbackUsed)
	require.NotNil(t, sel.DistanceKm)
	assert.Less(t, *sel.DistanceKm, 1.0)
	assert.Contains(t, sel.Reason, "Nearest office: ЦО Алматы")
}

func TestSelectNearestOfficeTieBreaksBySmallerID(t *testing.T) {
	point := models.GeoPoint{Latitude: 50.0, Longitude: 70.0}
	offices := []*models.Office{
		office(7, "Офис Б", &point),
		office(3, "Офис А", &point),
	}

	sel, err := SelectNearestOffice(point, offices)
	require.NoError(t, err)

	assert.Equal(t, int64(3), sel.Office.ID)
	assert.Equal(t, 0.0, *sel.DistanceKm)
}

func TestSelectNearestOfficeNoLocations(t *testing.T) {
	offices := []*models.Office{office(1, "Без координат", nil)}

	_, err := SelectNearestOffice(almatyPoint, offices)
	assert.ErrorIs(t, err, ErrNoOfficeLocations)
}

func TestSelectFallbackOfficeHubParity(t *testing.T) {
	offices := []*models.Office{
		office(1, "ЦО Астана-хаб", &astanaPoint),
		office(2, "ЦО Алматы-хаб", &almatyPoint),
		office(3, "ЦО Караганда", nil),
	}

	even, err := SelectFallbackOffice(0, offices)
	require.NoError(t, err)
	odd, err := SelectFallbackOffice(1, offices)
	require.NoError(t, err)

	// Чётный счётчик → Астана, нечётный → Алматы
	assert.Equal(t, int64(1), even.Office.ID)
	assert.Equal(t, int64(2), odd.Office.ID)

	for _, sel := range []OfficeSelection{even, odd} {
		assert.True(t, sel.FallbackUsed)
		assert.Nil(t, sel.DistanceKm)
	}
}

func TestSelectFallbackOfficeWithoutHubs(t *testing.T) {
	offices := []*models.Office{
		office(5, "ЦО Караганда", nil),
		office(2, "ЦО Шымкент", nil),
		office(9, "ЦО Актобе", nil),
	}

	// Сортировка по id: [2, 5, 9]; counter mod 3 выбирает по кругу
	wantOrder := []int64{2, 5, 9, 2}
	for counter, wantID := range wantOrder {
		sel, err := SelectFallbackOffice(int64(counter), offices)
		require.NoError(t, err)
		assert.Equal(t, wantID, sel.Office.ID, "counter=%d", counter)
		assert.True(t, sel.FallbackUsed)
	}
}

func TestSelectFallbackOfficeEmpty(t *testing.T) {
	_, err := SelectFallbackOffice(0, nil)
	assert.ErrorIs(t, err, ErrNoOffices)
}
