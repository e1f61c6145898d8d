package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freedom-fire/ticketrouter/internal/models"
)

// SaveAnalysis вставляет запись аналитики (одна на обращение)
func (s queries) SaveAnalysis(ctx context.Context, a *models.Analysis) error {
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO ticket_analytics (ticket_id, ticket_type, sentiment, priority_score, language, summary, llm_model)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, processed_at`,
		a.TicketID, string(a.TicketType), string(a.Sentiment), a.PriorityScore,
		string(a.Language), a.Summary, nullString(a.ModelTag))
	if err := row.Scan(&a.ID, &a.ProcessedAt); err != nil {
		return fmt.Errorf("save analysis for ticket %d: %w", a.TicketID, err)
	}
	return nil
}

// GetAnalysisByTicket возвращает аналитику обращения или nil
func (s queries) GetAnalysisByTicket(ctx context.Context, ticketID int64) (*models.Analysis, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, ticket_id, ticket_type, sentiment, priority_score, language, summary, llm_model, processed_at
		FROM ticket_analytics WHERE ticket_id = ?`, ticketID)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// GetAllAnalyses возвращает всю аналитику в порядке id ASC
func (s queries) GetAllAnalyses(ctx context.Context) ([]*models.Analysis, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, ticket_id, ticket_type, sentiment, priority_score, language, summary, llm_model, processed_at
		FROM ticket_analytics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select analytics: %w", err)
	}
	defer rows.Close()

	var analyses []*models.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

func scanAnalysis(row rowScanner) (*models.Analysis, error) {
	var a models.Analysis
	var ticketType, sentiment, language string
	var modelTag sql.NullString

	err := row.Scan(&a.ID, &a.TicketID, &ticketType, &sentiment, &a.PriorityScore,
		&language, &a.Summary, &modelTag, &a.ProcessedAt)
	if err != nil {
		return nil, err
	}

	a.TicketType = models.ParseTicketType(ticketType)
	a.Sentiment = models.ParseSentiment(sentiment)
	a.Language = models.ParseLanguage(language)
	a.ModelTag = modelTag.String
	return &a, nil
}
