package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

const ticketColumns = `id, guid, gender, birth_date, description, attachments, segment,
	country, region, city, street, building, client_lat, client_lon, geo_status, created_at`

// SaveTicket вставляет обращение и проставляет ему id
func (s queries) SaveTicket(ctx context.Context, t *models.Ticket) error {
	var lat, lon any
	if t.Location != nil {
		lat, lon = t.Location.Latitude, t.Location.Longitude
	}
	if t.GeoStatus == "" {
		t.GeoStatus = models.GeoPending
	}

	row := s.q.QueryRowContext(ctx, `
		INSERT INTO tickets (guid, gender, birth_date, description, attachments, segment,
			country, region, city, street, building, client_lat, client_lon, geo_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		t.GUID, nullString(t.Gender), t.BirthDate, nullString(t.Description),
		nullString(t.Attachments), string(t.Segment), nullString(t.Country),
		nullString(t.Region), nullString(t.City), nullString(t.Street),
		nullString(t.Building), lat, lon, string(t.GeoStatus),
	)
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("save ticket %s: %w", t.GUID, err)
	}
	return nil
}

// GetTicketByID возвращает обращение или nil
func (s queries) GetTicketByID(ctx context.Context, id int64) (*models.Ticket, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// GetTicketByGUID возвращает обращение по GUID или nil
func (s queries) GetTicketByGUID(ctx context.Context, guid string) (*models.Ticket, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE guid = ?`, guid)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// GetUnprocessedTickets — обращения без записи аналитики, в порядке id ASC
func (s queries) GetUnprocessedTickets(ctx context.Context) ([]*models.Ticket, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+ticketColumns+` FROM tickets t
		WHERE NOT EXISTS (SELECT 1 FROM ticket_analytics a WHERE a.ticket_id = t.id)
		ORDER BY t.id`)
	if err != nil {
		return nil, fmt.Errorf("select unprocessed tickets: %w", err)
	}
	defer rows.Close()
	return collectTickets(rows)
}

// GetAllTickets возвращает все обращения в порядке id ASC
func (s queries) GetAllTickets(ctx context.Context) ([]*models.Ticket, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select tickets: %w", err)
	}
	defer rows.Close()
	return collectTickets(rows)
}

// UpdateTicketGeo записывает результат геокодирования: координаты и статус
func (s queries) UpdateTicketGeo(ctx context.Context, t *models.Ticket) error {
	var lat, lon any
	if t.Location != nil {
		lat, lon = t.Location.Latitude, t.Location.Longitude
	}
	_, err := s.q.ExecContext(ctx, `
		UPDATE tickets SET client_lat = ?, client_lon = ?, geo_status = ? WHERE id = ?`,
		lat, lon, string(t.GeoStatus), t.ID)
	if err != nil {
		return fmt.Errorf("update ticket %d geo: %w", t.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*models.Ticket, error) {
	var t models.Ticket
	var gender, description, attachments, country, region, city, street, building sql.NullString
	var birthDate sql.NullTime
	var lat, lon sql.NullFloat64
	var segment, geoStatus string

	err := row.Scan(&t.ID, &t.GUID, &gender, &birthDate, &description, &attachments,
		&segment, &country, &region, &city, &street, &building, &lat, &lon,
		&geoStatus, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	t.Gender = gender.String
	t.Description = description.String
	t.Attachments = attachments.String
	t.Country = country.String
	t.Region = region.String
	t.City = city.String
	t.Street = street.String
	t.Building = building.String
	t.Segment = models.ParseSegment(segment)
	t.GeoStatus = models.ParseGeoStatus(geoStatus)
	if birthDate.Valid {
		bd := birthDate.Time
		t.BirthDate = &bd
	}
	if lat.Valid && lon.Valid {
		t.Location = &models.GeoPoint{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	return &t, nil
}

func collectTickets(rows *sql.Rows) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
