package ingest

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/freedom-fire/ticketrouter/internal/models"
	"github.com/freedom-fire/ticketrouter/internal/storage"
)

// Имена файлов выгрузки в каталоге данных
const (
	officesFile  = "business_units.csv"
	managersFile = "managers.csv"
	ticketsFile  = "tickets.csv"
)

// Seed наполняет хранилище из CSV-выгрузок каталога dataDir.
// Повторный запуск не создаёт дублей: отделения сверяются по имени,
// обращения — по GUID.
func Seed(ctx context.Context, store storage.Backend, dataDir string) error {
	officeIDs, err := seedOffices(ctx, store, filepath.Join(dataDir, officesFile))
	if err != nil {
		return err
	}
	if err := seedManagers(ctx, store, filepath.Join(dataDir, managersFile), officeIDs); err != nil {
		return err
	}
	return seedTickets(ctx, store, filepath.Join(dataDir, ticketsFile))
}

func seedOffices(ctx context.Context, store storage.Backend, path string) (map[string]int64, error) {
	rows, err := LoadOffices(path)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]int64, len(rows))
	created := 0
	for _, row := range rows {
		if row.Name == "" {
			continue
		}

		existing, err := store.GetOfficeByName(ctx, row.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			ids[row.Name] = existing.ID
			continue
		}

		office := &models.Office{Name: row.Name, Address: row.Address}
		if row.Latitude != nil && row.Longitude != nil {
			office.Location = &models.GeoPoint{Latitude: *row.Latitude, Longitude: *row.Longitude}
		}
		if err := store.SaveOffice(ctx, office); err != nil {
			return nil, err
		}
		ids[row.Name] = office.ID
		created++
	}

	log.Printf("🏢 Отделения: %d новых, %d всего", created, len(ids))
	return ids, nil
}

func seedManagers(ctx context.Context, store storage.Backend, path string, officeIDs map[string]int64) error {
	rows, err := LoadManagers(path)
	if err != nil {
		return err
	}

	existing, err := store.GetAllManagers(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		known[m.Name] = struct{}{}
	}

	created := 0
	for _, row := range rows {
		if row.Name == "" {
			continue
		}
		if _, dup := known[row.Name]; dup {
			continue
		}

		officeID, ok := officeIDs[row.OfficeName]
		if !ok {
			return fmt.Errorf("manager %s references unknown office %q", row.Name, row.OfficeName)
		}

		manager := &models.Manager{
			Name:        row.Name,
			Position:    models.ParsePosition(row.Position),
			OfficeID:    officeID,
			Skills:      models.SkillSet(row.Skills...),
			CurrentLoad: row.CurrentLoad,
		}
		if err := store.SaveManager(ctx, manager); err != nil {
			return err
		}
		created++
	}

	log.Printf("👥 Менеджеры: %d новых", created)
	return nil
}

func seedTickets(ctx context.Context, store storage.Backend, path string) error {
	tickets, err := LoadTickets(path)
	if err != nil {
		return err
	}

	created := 0
	for _, ticket := range tickets {
		existing, err := store.GetTicketByGUID(ctx, ticket.GUID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := store.SaveTicket(ctx, ticket); err != nil {
			return err
		}
		created++
	}

	log.Printf("🎫 Обращения: %d новых", created)
	return nil
}
