package storage

import (
	"context"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

// Repository — набор возможностей хранилища, против которого написан
// конвейер. Реализуется и SQLite-хранилищем (вне и внутри транзакции),
// и in-memory фейком для тестов.
type Repository interface {
	SaveTicket(ctx context.Context, t *models.Ticket) error
	GetTicketByID(ctx context.Context, id int64) (*models.Ticket, error)
	GetTicketByGUID(ctx context.Context, guid string) (*models.Ticket, error)
	GetUnprocessedTickets(ctx context.Context) ([]*models.Ticket, error)
	GetAllTickets(ctx context.Context) ([]*models.Ticket, error)
	UpdateTicketGeo(ctx context.Context, t *models.Ticket) error

	SaveManager(ctx context.Context, m *models.Manager) error
	GetManagerByID(ctx context.Context, id int64) (*models.Manager, error)
	GetManagersByOffice(ctx context.Context, officeID int64) ([]*models.Manager, error)
	GetAllManagers(ctx context.Context) ([]*models.Manager, error)
	IncrementManagerLoad(ctx context.Context, managerID int64) error

	SaveOffice(ctx context.Context, o *models.Office) error
	GetOfficeByID(ctx context.Context, id int64) (*models.Office, error)
	GetOfficeByName(ctx context.Context, name string) (*models.Office, error)
	GetAllOffices(ctx context.Context) ([]*models.Office, error)
	UpdateOfficeLocation(ctx context.Context, officeID int64, point models.GeoPoint) error

	SaveAnalysis(ctx context.Context, a *models.Analysis) error
	GetAnalysisByTicket(ctx context.Context, ticketID int64) (*models.Analysis, error)
	GetAllAnalyses(ctx context.Context) ([]*models.Analysis, error)

	SaveAssignment(ctx context.Context, a *models.Assignment) error
	GetAssignmentByTicket(ctx context.Context, ticketID int64) (*models.Assignment, error)
	GetAllAssignments(ctx context.Context) ([]*models.Assignment, error)

	AdvanceCounter(ctx context.Context, rrKey string) (int64, error)
	GetCounter(ctx context.Context, rrKey string) (int64, error)
}

// Backend — репозиторий с транзакционной границей
type Backend interface {
	Repository
	// InTx выполняет fn атомарно над теми же портами
	InTx(ctx context.Context, fn func(Repository) error) error
}
