package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

// MemoryStore — потокобезопасный in-memory Backend для тестов и локальных
// прогонов без БД. Семантика методов повторяет SQLite-хранилище, включая
// порядок выборок и «значение до продвижения» у счётчика. Ограничения
// уникальности не проверяются: повторная запись аналитики или назначения
// для того же обращения молча заменяет прежнюю, а не возвращает ошибку.
type MemoryStore struct {
	mu sync.Mutex

	tickets     map[int64]*models.Ticket
	managers    map[int64]*models.Manager
	offices     map[int64]*models.Office
	analyses    map[int64]*models.Analysis   // по ticket_id
	assignments map[int64]*models.Assignment // по ticket_id
	counters    map[string]int64

	nextTicketID     int64
	nextManagerID    int64
	nextOfficeID     int64
	nextAnalysisID   int64
	nextAssignmentID int64
}

// NewMemoryStore создаёт пустое хранилище
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets:     make(map[int64]*models.Ticket),
		managers:    make(map[int64]*models.Manager),
		offices:     make(map[int64]*models.Office),
		analyses:    make(map[int64]*models.Analysis),
		assignments: make(map[int64]*models.Assignment),
		counters:    make(map[string]int64),
	}
}

// InTx выполняет fn над теми же портами. Каждая операция атомарна сама по
// себе; отката нет — in-memory хранилище используется в тестах, где fn не
// падает посередине записи.
func (s *MemoryStore) InTx(_ context.Context, fn func(Repository) error) error {
	return fn(&memoryTx{s: s})
}

// memoryTx переиспользует методы MemoryStore: блокировка уже взята в них же
type memoryTx struct {
	s *MemoryStore
}

func (s *MemoryStore) SaveTicket(_ context.Context, t *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTicketID++
	t.ID = s.nextTicketID
	if t.GeoStatus == "" {
		t.GeoStatus = models.GeoPending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	copied := *t
	s.tickets[t.ID] = &copied
	return nil
}

func (s *MemoryStore) GetTicketByID(_ context.Context, id int64) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tickets[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, nil
}

func (s *MemoryStore) GetTicketByGUID(_ context.Context, guid string) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.GUID == guid {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetUnprocessedTickets(_ context.Context) ([]*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Ticket
	for id, t := range s.tickets {
		if _, processed := s.analyses[id]; !processed {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetAllTickets(_ context.Context) ([]*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateTicketGeo(_ context.Context, t *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tickets[t.ID]
	if !ok {
		return nil
	}
	stored.Location = t.Location
	stored.GeoStatus = t.GeoStatus
	return nil
}

func (s *MemoryStore) SaveManager(_ context.Context, m *models.Manager) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextManagerID++
	m.ID = s.nextManagerID
	copied := *m
	s.managers[m.ID] = &copied
	return nil
}

func (s *MemoryStore) GetManagerByID(_ context.Context, id int64) (*models.Manager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.managers[id]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, nil
}

func (s *MemoryStore) GetManagersByOffice(_ context.Context, officeID int64) ([]*models.Manager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Manager
	for _, m := range s.managers {
		if m.OfficeID == officeID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetAllManagers(_ context.Context) ([]*models.Manager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Manager, 0, len(s.managers))
	for _, m := range s.managers {
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) IncrementManagerLoad(_ context.Context, managerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.managers[managerID]; ok {
		m.CurrentLoad++
	}
	return nil
}

func (s *MemoryStore) SaveOffice(_ context.Context, o *models.Office) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextOfficeID++
	o.ID = s.nextOfficeID
	copied := *o
	s.offices[o.ID] = &copied
	return nil
}

func (s *MemoryStore) GetOfficeByID(_ context.Context, id int64) (*models.Office, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.offices[id]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, nil
}

func (s *MemoryStore) GetOfficeByName(_ context.Context, name string) (*models.Office, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.offices {
		if o.Name == name {
			copied := *o
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetAllOffices(_ context.Context) ([]*models.Office, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Office, 0, len(s.offices))
	for _, o := range s.offices {
		copied := *o
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateOfficeLocation(_ context.Context, officeID int64, point models.GeoPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.offices[officeID]; ok {
		p := point
		o.Location = &p
	}
	return nil
}

func (s *MemoryStore) SaveAnalysis(_ context.Context, a *models.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAnalysisID++
	a.ID = s.nextAnalysisID
	if a.ProcessedAt.IsZero() {
		a.ProcessedAt = time.Now()
	}
	copied := *a
	s.analyses[a.TicketID] = &copied
	return nil
}

func (s *MemoryStore) GetAnalysisByTicket(_ context.Context, ticketID int64) (*models.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.analyses[ticketID]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (s *MemoryStore) GetAllAnalyses(_ context.Context) ([]*models.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Analysis, 0, len(s.analyses))
	for _, a := range s.analyses {
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) SaveAssignment(_ context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAssignmentID++
	a.ID = s.nextAssignmentID
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now()
	}
	copied := *a
	s.assignments[a.TicketID] = &copied
	return nil
}

func (s *MemoryStore) GetAssignmentByTicket(_ context.Context, ticketID int64) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.assignments[ticketID]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (s *MemoryStore) GetAllAssignments(_ context.Context) ([]*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) AdvanceCounter(_ context.Context, rrKey string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.counters[rrKey]
	s.counters[rrKey] = previous + 1
	return previous, nil
}

func (s *MemoryStore) GetCounter(_ context.Context, rrKey string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[rrKey], nil
}

// Делегаты memoryTx — транзакционный вид поверх того же хранилища

func (t *memoryTx) SaveTicket(ctx context.Context, v *models.Ticket) error { return t.s.SaveTicket(ctx, v) }
func (t *memoryTx) GetTicketByID(ctx context.Context, id int64) (*models.Ticket, error) {
	return t.s.GetTicketByID(ctx, id)
}
func (t *memoryTx) GetTicketByGUID(ctx context.Context, guid string) (*models.Ticket, error) {
	return t.s.GetTicketByGUID(ctx, guid)
}
func (t *memoryTx) GetUnprocessedTickets(ctx context.Context) ([]*models.Ticket, error) {
	return t.s.GetUnprocessedTickets(ctx)
}
func (t *memoryTx) GetAllTickets(ctx context.Context) ([]*models.Ticket, error) {
	return t.s.GetAllTickets(ctx)
}
func (t *memoryTx) UpdateTicketGeo(ctx context.Context, v *models.Ticket) error {
	return t.s.UpdateTicketGeo(ctx, v)
}
func (t *memoryTx) SaveManager(ctx context.Context, v *models.Manager) error {
	return t.s.SaveManager(ctx, v)
}
func (t *memoryTx) GetManagerByID(ctx context.Context, id int64) (*models.Manager, error) {
	return t.s.GetManagerByID(ctx, id)
}
func (t *memoryTx) GetManagersByOffice(ctx context.Context, officeID int64) ([]*models.Manager, error) {
	return t.s.GetManagersByOffice(ctx, officeID)
}
func (t *memoryTx) GetAllManagers(ctx context.Context) ([]*models.Manager, error) {
	return t.s.GetAllManagers(ctx)
}
func (t *memoryTx) IncrementManagerLoad(ctx context.Context, managerID int64) error {
	return t.s.IncrementManagerLoad(ctx, managerID)
}
func (t *memoryTx) SaveOffice(ctx context.Context, v *models.Office) error {
	return t.s.SaveOffice(ctx, v)
}
func (t *memoryTx) GetOfficeByID(ctx context.Context, id int64) (*models.Office, error) {
	return t.s.GetOfficeByID(ctx, id)
}
func (t *memoryTx) GetOfficeByName(ctx context.Context, name string) (*models.Office, error) {
	return t.s.GetOfficeByName(ctx, name)
}
func (t *memoryTx) GetAllOffices(ctx context.Context) ([]*models.Office, error) {
	return t.s.GetAllOffices(ctx)
}
func (t *memoryTx) UpdateOfficeLocation(ctx context.Context, officeID int64, point models.GeoPoint) error {
	return t.s.UpdateOfficeLocation(ctx, officeID, point)
}
func (t *memoryTx) SaveAnalysis(ctx context.Context, v *models.Analysis) error {
	return t.s.SaveAnalysis(ctx, v)
}
func (t *memoryTx) GetAnalysisByTicket(ctx context.Context, ticketID int64) (*models.Analysis, error) {
	return t.s.GetAnalysisByTicket(ctx, ticketID)
}
func (t *memoryTx) GetAllAnalyses(ctx context.Context) ([]*models.Analysis, error) {
	return t.s.GetAllAnalyses(ctx)
}
func (t *memoryTx) SaveAssignment(ctx context.Context, v *models.Assignment) error {
	return t.s.SaveAssignment(ctx, v)
}
func (t *memoryTx) GetAssignmentByTicket(ctx context.Context, ticketID int64) (*models.Assignment, error) {
	return t.s.GetAssignmentByTicket(ctx, ticketID)
}
func (t *memoryTx) GetAllAssignments(ctx context.Context) ([]*models.Assignment, error) {
	return t.s.GetAllAssignments(ctx)
}
func (t *memoryTx) AdvanceCounter(ctx context.Context, rrKey string) (int64, error) {
	return t.s.AdvanceCounter(ctx, rrKey)
}
func (t *memoryTx) GetCounter(ctx context.Context, rrKey string) (int64, error) {
	return t.s.GetCounter(ctx, rrKey)
}

var (
	_ Backend = (*MemoryStore)(nil)
	_ Backend = (*Store)(nil)
)
