package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

// SaveOffice вставляет отделение и проставляет ему id
func (s queries) SaveOffice(ctx context.Context, o *models.Office) error {
	var lat, lon any
	if o.Location != nil {
		lat, lon = o.Location.Latitude, o.Location.Longitude
	}

	row := s.q.QueryRowContext(ctx, `
		INSERT INTO offices (name, address, latitude, longitude)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		o.Name, o.Address, lat, lon)
	if err := row.Scan(&o.ID); err != nil {
		return fmt.Errorf("save office %s: %w", o.Name, err)
	}
	return nil
}

// GetOfficeByID возвращает отделение или nil
func (s queries) GetOfficeByID(ctx context.Context, id int64) (*models.Office, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, address, latitude, longitude FROM offices WHERE id = ?`, id)
	o, err := scanOffice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

// GetOfficeByName возвращает отделение по имени или nil
func (s queries) GetOfficeByName(ctx context.Context, name string) (*models.Office, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, address, latitude, longitude FROM offices WHERE name = ?`, name)
	o, err := scanOffice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

// GetAllOffices возвращает отделения в порядке id ASC
func (s queries) GetAllOffices(ctx context.Context) ([]*models.Office, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, address, latitude, longitude FROM offices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select offices: %w", err)
	}
	defer rows.Close()

	var offices []*models.Office
	for rows.Next() {
		o, err := scanOffice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan office: %w", err)
		}
		offices = append(offices, o)
	}
	return offices, rows.Err()
}

// UpdateOfficeLocation записывает координаты отделения (реконсилер геокода)
func (s queries) UpdateOfficeLocation(ctx context.Context, officeID int64, point models.GeoPoint) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE offices SET latitude = ?, longitude = ? WHERE id = ?`,
		point.Latitude, point.Longitude, officeID)
	if err != nil {
		return fmt.Errorf("update office %d location: %w", officeID, err)
	}
	return nil
}

func scanOffice(row rowScanner) (*models.Office, error) {
	var o models.Office
	var lat, lon sql.NullFloat64

	if err := row.Scan(&o.ID, &o.Name, &o.Address, &lat, &lon); err != nil {
		return nil, err
	}
	if lat.Valid && lon.Valid {
		o.Location = &models.GeoPoint{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	return &o, nil
}
