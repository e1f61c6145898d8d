package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

// Навыки хранятся как JSON-массив строк: у SQLite нет массивов.

// SaveManager вставляет менеджера и проставляет ему id
func (s queries) SaveManager(ctx context.Context, m *models.Manager) error {
	skills := make([]string, 0, len(m.Skills))
	for code := range m.Skills {
		skills = append(skills, code)
	}
	sort.Strings(skills)
	encoded, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("encode skills: %w", err)
	}

	row := s.q.QueryRowContext(ctx, `
		INSERT INTO managers (name, position, office_id, skills, current_load)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		m.Name, string(m.Position), m.OfficeID, string(encoded), m.CurrentLoad)
	if err := row.Scan(&m.ID); err != nil {
		return fmt.Errorf("save manager %s: %w", m.Name, err)
	}
	return nil
}

// GetManagerByID возвращает менеджера или nil
func (s queries) GetManagerByID(ctx context.Context, id int64) (*models.Manager, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, position, office_id, skills, current_load FROM managers WHERE id = ?`, id)
	m, err := scanManager(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// GetManagersByOffice возвращает менеджеров отделения в порядке id ASC
func (s queries) GetManagersByOffice(ctx context.Context, officeID int64) ([]*models.Manager, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, position, office_id, skills, current_load
		FROM managers WHERE office_id = ? ORDER BY id`, officeID)
	if err != nil {
		return nil, fmt.Errorf("select managers of office %d: %w", officeID, err)
	}
	defer rows.Close()
	return collectManagers(rows)
}

// GetAllManagers возвращает всех менеджеров в порядке id ASC
func (s queries) GetAllManagers(ctx context.Context) ([]*models.Manager, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, position, office_id, skills, current_load FROM managers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select managers: %w", err)
	}
	defer rows.Close()
	return collectManagers(rows)
}

// IncrementManagerLoad — атомарный `load = load + 1`: конкурентные
// инкременты не теряют записей.
func (s queries) IncrementManagerLoad(ctx context.Context, managerID int64) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE managers SET current_load = current_load + 1 WHERE id = ?`, managerID)
	if err != nil {
		return fmt.Errorf("increment load of manager %d: %w", managerID, err)
	}
	return nil
}

func scanManager(row rowScanner) (*models.Manager, error) {
	var m models.Manager
	var position, skillsJSON string

	if err := row.Scan(&m.ID, &m.Name, &position, &m.OfficeID, &skillsJSON, &m.CurrentLoad); err != nil {
		return nil, err
	}

	m.Position = models.ParsePosition(position)

	var skills []string
	if err := json.Unmarshal([]byte(skillsJSON), &skills); err != nil {
		return nil, fmt.Errorf("decode skills of manager %d: %w", m.ID, err)
	}
	m.Skills = models.SkillSet(skills...)
	return &m, nil
}

func collectManagers(rows *sql.Rows) ([]*models.Manager, error) {
	var managers []*models.Manager
	for rows.Next() {
		m, err := scanManager(rows)
		if err != nil {
			return nil, fmt.Errorf("scan manager: %w", err)
		}
		managers = append(managers, m)
	}
	return managers, rows.Err()
}
