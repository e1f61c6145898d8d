package driven

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freedom-fire/ticketrouter/internal/llm"
	"github.com/freedom-fire/ticketrouter/internal/models"
	"github.com/freedom-fire/ticketrouter/internal/policy"
	"github.com/freedom-fire/ticketrouter/internal/storage"
)

// stubClassifier отдаёт фиксированный результат анализа
type stubClassifier struct {
	ticketType models.TicketType
	language   models.Language
}

func (s *stubClassifier) AnalyzeTicket(_ context.Context, _, _ string) *models.Analysis {
	ticketType := s.ticketType
	if ticketType == "" {
		ticketType = models.TypeConsultation
	}
	language := s.language
	if language == "" {
		language = models.LangRU
	}
	return &models.Analysis{
		TicketType:    ticketType,
		Sentiment:     models.SentimentNeutral,
		PriorityScore: 5,
		Language:      language,
		Summary:       "тест",
		ModelTag:      "stub",
	}
}

// stubGeocoder отдаёт фиксированную точку (или nil)
type stubGeocoder struct {
	point *models.GeoPoint
}

func (s *stubGeocoder) Geocode(_ context.Context, _ string) *models.GeoPoint {
	return s.point
}

var (
	almatyOffice = models.GeoPoint{Latitude: 43.2389, Longitude: 76.9455}
	clientPoint  = models.GeoPoint{Latitude: 43.24, Longitude: 76.95}
)

type fixture struct {
	store     *storage.MemoryStore
	processor *TicketProcessor
}

// newFixture собирает конвейер на in-memory хранилище.
// managers сохраняются как есть, каждый со своим OfficeID.
func newFixture(t *testing.T, classifier llm.Classifier, offices []*models.Office, managers []*models.Manager) *fixture {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStore()

	for _, o := range offices {
		require.NoError(t, store.SaveOffice(ctx, o))
	}
	for _, m := range managers {
		require.NoError(t, store.SaveManager(ctx, m))
	}

	return &fixture{
		store:     store,
		processor: NewTicketProcessor(classifier, &stubGeocoder{point: &clientPoint}, store),
	}
}

func defaultOffices() []*models.Office {
	return []*models.Office{
		{Name: "ЦО Алматы", Address: "пр. Аль-Фараби 17", Location: &almatyOffice},
		{Name: "ЦО Астана", Address: "пр. Мангилик Ел 1", Location: &models.GeoPoint{Latitude: 51.1282, Longitude: 71.4304}},
	}
}

func plainManager(name string) *models.Manager {
	return &models.Manager{
		Name: name, Position: models.PositionSpecialist,
		OfficeID: 1, Skills: models.SkillSet(),
	}
}

func saveTicket(t *testing.T, store *storage.MemoryStore, ticket *models.Ticket) *models.Ticket {
	t.Helper()
	require.NoError(t, store.SaveTicket(context.Background(), ticket))
	return ticket
}

func TestProcessAssignsNearestOffice(t *testing.T) {
	f := newFixture(t, &stubClassifier{}, defaultOffices(),
		[]*models.Manager{plainManager("M1"), plainManager("M2")})

	ticket := saveTicket(t, f.store, &models.Ticket{
		GUID: "s1", Segment: models.SegmentMass,
		Country: "Казахстан", City: "Алматы",
		Location: &clientPoint, GeoStatus: models.GeoResolved,
	})

	result := f.processor.Process(context.Background(), ticket)

	require.Empty(t, result.Error)
	assert.Equal(t, "ЦО Алматы", result.AssignedOffice)
	assert.False(t, result.FallbackUsed)
	require.NotNil(t, result.DistanceKm)
	assert.Less(t, *result.DistanceKm, 1.0)
	// При равной нагрузке побеждает меньший id
	assert.Equal(t, "M1", result.AssignedManager)

	analysis, err := f.store.GetAnalysisByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, analysis)
	assert.Equal(t, models.TypeConsultation, analysis.TicketType)
	assert.Equal(t, models.SentimentNeutral, analysis.Sentiment)
	assert.Equal(t, 5, analysis.PriorityScore)
	assert.Equal(t, models.LangRU, analysis.Language)
}

func TestProcessVIPRequiresVIPSkill(t *testing.T) {
	managers := []*models.Manager{
		{Name: "NoSkill", Position: models.PositionSpecialist, OfficeID: 1, Skills: models.SkillSet()},
		{Name: "VIPMgr", Position: models.PositionSpecialist, OfficeID: 1, Skills: models.SkillSet("VIP")},
	}
	f := newFixture(t, &stubClassifier{}, defaultOffices(), managers)

	ticket := saveTicket(t, f.store, &models.Ticket{
		GUID: "s2", Segment: models.SegmentVIP,
		Country: "Казахстан", City: "Алматы",
		Location: &clientPoint, GeoStatus: models.GeoResolved,
	})

	result := f.processor.Process(context.Background(), ticket)

	require.Empty(t, result.Error)
	assert.Equal(t, "VIPMgr", result.AssignedManager)
}

func TestProcessDataChangeRequiresChief(t *testing.T) {
	managers := []*models.Manager{
		{Name: "Senior", Position: models.PositionSeniorSpecialist, OfficeID: 1, Skills: models.SkillSet()},
		{Name: "Chief", Position: models.PositionChiefSpecialist, OfficeID: 1, Skills: models.SkillSet()},
	}
	f := newFixture(t, &stubClassifier{ticketType: models.TypeDataChange}, defaultOffices(), managers)

	ticket := saveTicket(t, f.store, &models.Ticket{
		GUID: "s3", Segment: models.SegmentMass,
		Country: "Казахстан", City: "Алматы",
		Location: &clientPoint, GeoStatus: models.GeoResolved,
	})

	result := f.processor.Process(context.Background(), ticket)

	require.Empty(t, result.Error)
	assert.Equal(t, "Chief", result.AssignedManager)
}

func TestProcessKZLanguageRequiresKZSkill(t *testing.T) {
	managers := []*models.Manager{
		{Name: "RuOnly", Position: models.PositionSpecialist, OfficeID: 1, Skills: models.SkillSet()},
		{Name: "KzMgr", Position: models.PositionSpecialist, OfficeID: 1, Skills: models.SkillSet("KZ")},
	}
	f := newFixture(t, &stubClassifier{language: models.LangKZ}, defaultOffices(), managers)

	ticket := saveTicket(t, f.store, &models.Ticket{
		GUID: "kz", Segment: models.SegmentMass,
		Country: "Казахстан", City: "Алматы",
		Location: &clientPoint, GeoStatus: models.GeoResolved,
	})

	result := f.processor.Process(context.Background(), ticket)

	require.Empty(t, result.Error)
	assert.Equal(t, "KzMgr", result.AssignedManager)
}

func TestProcessAbroadTicketUsesHubFallback(t *testing.T) {
	f := newFixture(t, &stubClassifier{}, defaultOffices(),
		[]*models.Manager{plainManager("M1"), plainManager("M2")})

	ticket := saveTicket(t, f.store, &models.Ticket{
		GUID: "s4", Segment: models.SegmentMass,
		Country: "Россия", City: "Москва",
	})

	result := f.processor.Process(context.Background(), ticket)

	require.Empty(t, result.Error)
	assert.True(t, result.FallbackUsed)
	assert.Nil(t, result.DistanceKm)
	// Первый fallback-счётчик равен 0 → чётный → хаб Астана
	assert.Equal(t, "ЦО Астана", result.AssignedOffice)

	stored, err := f.store.GetTicketByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GeoAbroad, stored.GeoStatus)
	assert.Nil(t, stored.Location)
}

func TestProcessUnknownAddressFallsBack(t *testing.T) {
	f := newFixture(t, &stubClassifier{}, defaultOffices(),
		[]*models.Manager{plainManager("M1")})
	f.processor.geocoder = &stubGeocoder{point: nil}

	ticket := saveTicket(t, f.store, &models.Ticket{
		GUID: "no-addr", Segment: models.SegmentMass,
	})

	result := f.processor.Process(context.Background(), ticket)

	require.Empty(t, result.Error)
	assert.True(t, result.FallbackUsed)

	stored, err := f.store.GetTicketByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GeoFailed, stored.GeoStatus)
}

func TestProcessSpamSkipsAssignment(t *testing.T) {
	f := newFixture(t, llm.NewHeuristicClassifier(), defaultOffices(),
		[]*models.Manager{plainManager("M1")})

	ticket := saveTicket(t, f.store, &models.Ticket{
		GUID: "s5", Segment: models.SegmentMass,
		Description: "Специальные цены на тюльпаны! Заказывайте: https://spam.example",
		Country:     "Казахстан", City: "Алматы",
	})

	result := f.processor.Process(context.Background(), ticket)
	require.Empty(t, result.Error)
	assert.Empty(t, result.AssignedManager)

	ctx := context.Background()

	// Аналитика записана, назначения нет, счётчики не тронуты
	analysis, err := f.store.GetAnalysisByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, analysis)
	assert.Equal(t, models.TypeSpam, analysis.TicketType)
	assert.Equal(t, 1, analysis.PriorityScore)

	assignment, err := f.store.GetAssignmentByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, assignment)

	counter, err := f.store.GetCounter(ctx, fallbackCounterKey)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counter)
}

func TestProcessRoundRobinDistributes(t *testing.T) {
	f := newFixture(t, &stubClassifier{}, defaultOffices(),
		[]*models.Manager{plainManager("M1"), plainManager("M2")})
	ctx := context.Background()

	assigned := make(map[string]int)
	for i := 0; i < 4; i++ {
		ticket := saveTicket(t, f.store, &models.Ticket{
			GUID: "rr-" + string(rune('a'+i)), Segment: models.SegmentMass,
			Country: "Казахстан", City: "Алматы",
			Location: &clientPoint, GeoStatus: models.GeoResolved,
		})

		result := f.processor.Process(ctx, ticket)
		require.Empty(t, result.Error)
		assigned[result.AssignedManager]++
	}

	// Оба менеджера получают обращения; нагрузка растёт на каждое назначение
	assert.Len(t, assigned, 2)
	assert.Equal(t, 4, assigned["M1"]+assigned["M2"])

	managers, err := f.store.GetAllManagers(ctx)
	require.NoError(t, err)
	totalLoad := 0
	for _, m := range managers {
		totalLoad += m.CurrentLoad
	}
	assert.Equal(t, 4, totalLoad)
}

func TestProcessNoEligibleManagers(t *testing.T) {
	// Главного специалиста нет нигде — все ступени расширения пусты
	managers := []*models.Manager{
		{Name: "Senior", Position: models.PositionSeniorSpecialist, OfficeID: 1, Skills: models.SkillSet()},
	}
	f := newFixture(t, &stubClassifier{ticketType: models.TypeDataChange}, defaultOffices(), managers)

	ticket := saveTicket(t, f.store, &models.Ticket{
		GUID: "none", Segment: models.SegmentMass,
		Country: "Казахстан", City: "Алматы",
		Location: &clientPoint, GeoStatus: models.GeoResolved,
	})

	result := f.processor.Process(context.Background(), ticket)

	assert.Equal(t, "No eligible managers found", result.Error)

	// Аналитика есть даже при ошибке, назначения нет
	ctx := context.Background()
	analysis, err := f.store.GetAnalysisByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.NotNil(t, analysis)

	assignment, err := f.store.GetAssignmentByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, assignment)
}

func TestProcessWidensSearchToOtherOffices(t *testing.T) {
	// VIP-навык есть только у менеджера другого офиса
	managers := []*models.Manager{
		{Name: "LocalNoSkill", Position: models.PositionSpecialist, OfficeID: 1, Skills: models.SkillSet()},
		{Name: "RemoteVIP", Position: models.PositionSpecialist, OfficeID: 2, Skills: models.SkillSet("VIP")},
	}
	f := newFixture(t, &stubClassifier{}, defaultOffices(), managers)

	ticket := saveTicket(t, f.store, &models.Ticket{
		GUID: "widen", Segment: models.SegmentVIP,
		Country: "Казахстан", City: "Алматы",
		Location: &clientPoint, GeoStatus: models.GeoResolved,
	})

	result := f.processor.Process(context.Background(), ticket)

	require.Empty(t, result.Error)
	assert.Equal(t, "RemoteVIP", result.AssignedManager)
	// Отделение остаётся выбранным по географии
	assert.Equal(t, "ЦО Алматы", result.AssignedOffice)
}

func TestProcessIsIdempotent(t *testing.T) {
	f := newFixture(t, &stubClassifier{}, defaultOffices(),
		[]*models.Manager{plainManager("M1"), plainManager("M2")})
	ctx := context.Background()

	ticket := saveTicket(t, f.store, &models.Ticket{
		GUID: "idem", Segment: models.SegmentMass,
		Country: "Казахстан", City: "Алматы",
		Location: &clientPoint, GeoStatus: models.GeoResolved,
	})

	first := f.processor.Process(ctx, ticket)
	require.Empty(t, first.Error)

	second := f.processor.Process(ctx, ticket)
	require.Empty(t, second.Error)
	assert.Equal(t, first.AssignedManager, second.AssignedManager)

	// Повтор не создаёт дублей и не трогает нагрузку
	analyses, err := f.store.GetAllAnalyses(ctx)
	require.NoError(t, err)
	assert.Len(t, analyses, 1)

	assignments, err := f.store.GetAllAssignments(ctx)
	require.NoError(t, err)
	assert.Len(t, assignments, 1)

	m, err := f.store.GetManagerByID(ctx, assignments[0].ManagerID)
	require.NoError(t, err)
	assert.Equal(t, 1, m.CurrentLoad)
}

func TestFallbackAssignmentHasNullDistance(t *testing.T) {
	f := newFixture(t, &stubClassifier{}, defaultOffices(),
		[]*models.Manager{plainManager("M1")})

	ticket := saveTicket(t, f.store, &models.Ticket{
		GUID: "dist", Segment: models.SegmentMass, Country: "Германия",
	})

	result := f.processor.Process(context.Background(), ticket)
	require.Empty(t, result.Error)

	assignment, err := f.store.GetAssignmentByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, assignment)
	assert.True(t, assignment.FallbackUsed)
	assert.Nil(t, assignment.DistanceKm)
}

func TestBuildRRKey(t *testing.T) {
	requirement := policy.DetermineRequiredSkills(models.SegmentVIP, models.TypeDataChange, models.LangKZ)
	analysis := &models.Analysis{TicketType: models.TypeDataChange, Language: models.LangKZ}

	key := buildRRKey(7, requirement, analysis)

	assert.Equal(t, "office-7|vip-1|lang-KZ|type-Смена данных|chief-1", key)
}
