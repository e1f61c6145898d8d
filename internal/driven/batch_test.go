package driven

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

func TestBatchProcessesOnlyUnprocessed(t *testing.T) {
	f := newFixture(t, &stubClassifier{}, defaultOffices(),
		[]*models.Manager{plainManager("M1"), plainManager("M2")})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		saveTicket(t, f.store, &models.Ticket{
			GUID: fmt.Sprintf("batch-%d", i), Segment: models.SegmentMass,
			Country: "Казахстан", City: "Алматы",
			Location: &clientPoint, GeoStatus: models.GeoResolved,
		})
	}

	batch := NewBatchProcessor(f.processor, f.store, 1)

	results, err := batch.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Empty(t, r.Error)
		assert.NotEmpty(t, r.AssignedManager)
	}

	// Повторный запуск не находит работы
	again, err := batch.Execute(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestBatchFailureDoesNotAbort(t *testing.T) {
	// Требование «главный специалист» невыполнимо — каждое обращение падает,
	// но пакет доходит до конца
	managers := []*models.Manager{
		{Name: "Senior", Position: models.PositionSeniorSpecialist, OfficeID: 1, Skills: models.SkillSet()},
	}
	f := newFixture(t, &stubClassifier{ticketType: models.TypeDataChange}, defaultOffices(), managers)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		saveTicket(t, f.store, &models.Ticket{
			GUID: fmt.Sprintf("fail-%d", i), Segment: models.SegmentMass,
			Country: "Казахстан", City: "Алматы",
			Location: &clientPoint, GeoStatus: models.GeoResolved,
		})
	}

	batch := NewBatchProcessor(f.processor, f.store, 1)

	results, err := batch.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "No eligible managers found", r.Error)
	}
}

func TestBatchParallelWorkers(t *testing.T) {
	f := newFixture(t, &stubClassifier{}, defaultOffices(),
		[]*models.Manager{plainManager("M1"), plainManager("M2")})
	ctx := context.Background()

	const total = 12
	for i := 0; i < total; i++ {
		saveTicket(t, f.store, &models.Ticket{
			GUID: fmt.Sprintf("par-%d", i), Segment: models.SegmentMass,
			Country: "Казахстан", City: "Алматы",
			Location: &clientPoint, GeoStatus: models.GeoResolved,
		})
	}

	batch := NewBatchProcessor(f.processor, f.store, 4)

	results, err := batch.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, results, total)

	// Каждое обращение получило ровно одно назначение
	assignments, err := f.store.GetAllAssignments(ctx)
	require.NoError(t, err)
	assert.Len(t, assignments, total)

	seen := make(map[int64]bool)
	for _, a := range assignments {
		assert.False(t, seen[a.TicketID], "ticket %d assigned twice", a.TicketID)
		seen[a.TicketID] = true
	}
}

func TestGeocodeOfficesReconciler(t *testing.T) {
	offices := []*models.Office{
		{Name: "С координатами", Address: "адрес", Location: &almatyOffice},
		{Name: "Без координат", Address: "Казахстан, Караганда"},
	}
	f := newFixture(t, &stubClassifier{}, offices, nil)

	batch := NewBatchProcessor(f.processor, f.store, 1)

	resolved, err := batch.GeocodeOffices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)

	loaded, err := f.store.GetOfficeByName(context.Background(), "Без координат")
	require.NoError(t, err)
	require.NotNil(t, loaded.Location)
	assert.InDelta(t, clientPoint.Latitude, loaded.Location.Latitude, 1e-9)
}
