package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

// SaveAssignment вставляет назначение (одно на обращение; уникальность
// ticket_id держит СУБД)
func (s queries) SaveAssignment(ctx context.Context, a *models.Assignment) error {
	var distance any
	if a.DistanceKm != nil {
		distance = *a.DistanceKm
	}

	row := s.q.QueryRowContext(ctx, `
		INSERT INTO assignments (ticket_id, manager_id, office_id, distance_km, assignment_reason, fallback_used)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, assigned_at`,
		a.TicketID, a.ManagerID, a.OfficeID, distance, a.Reason, a.FallbackUsed)
	if err := row.Scan(&a.ID, &a.AssignedAt); err != nil {
		return fmt.Errorf("save assignment for ticket %d: %w", a.TicketID, err)
	}
	return nil
}

// GetAssignmentByTicket возвращает назначение обращения или nil
func (s queries) GetAssignmentByTicket(ctx context.Context, ticketID int64) (*models.Assignment, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, ticket_id, manager_id, office_id, distance_km, assignment_reason, fallback_used, assigned_at
		FROM assignments WHERE ticket_id = ?`, ticketID)
	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// GetAllAssignments возвращает назначения в порядке id ASC
func (s queries) GetAllAssignments(ctx context.Context) ([]*models.Assignment, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, ticket_id, manager_id, office_id, distance_km, assignment_reason, fallback_used, assigned_at
		FROM assignments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*models.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func scanAssignment(row rowScanner) (*models.Assignment, error) {
	var a models.Assignment
	var distance sql.NullFloat64
	var reason sql.NullString

	err := row.Scan(&a.ID, &a.TicketID, &a.ManagerID, &a.OfficeID, &distance,
		&reason, &a.FallbackUsed, &a.AssignedAt)
	if err != nil {
		return nil, err
	}

	a.Reason = reason.String
	if distance.Valid {
		d := distance.Float64
		a.DistanceKm = &d
	}
	return &a, nil
}
