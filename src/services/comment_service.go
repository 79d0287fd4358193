package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
	"github.com/herry-chi/dashboard-operation-lifex/src/security/validation"
)

// Comment errors the handlers map to HTTP status codes.
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrCommentEmpty    = errors.New("comment content is empty")
	ErrCommentTooLong  = errors.New("comment content too long")
)

const maxCommentLength = 4000

type chartCommentServiceImpl struct {
	db *sql.DB
}

// NewChartCommentService builds the SQLite-backed comment store.
func NewChartCommentService(db *sql.DB) ChartCommentService {
	return &chartCommentServiceImpl{db: db}
}

func (s *chartCommentServiceImpl) Get(chartID string) (*models.ChartComment, error) {
	var c models.ChartComment
	err := s.db.QueryRow(`
		SELECT chart_id, content, updated_at FROM chart_comments WHERE chart_id = ?`,
		chartID).Scan(&c.ChartID, &c.Content, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading chart comment: %w", err)
	}
	return &c, nil
}

func (s *chartCommentServiceImpl) Upsert(chartID, content string) (*models.ChartComment, error) {
	cleaned := validation.SanitizeComment(content)
	if cleaned == "" {
		return nil, ErrCommentEmpty
	}
	if len(cleaned) > maxCommentLength {
		return nil, ErrCommentTooLong
	}

	now := time.Now().UTC()
	_, err := s.db.Exec(`
		INSERT INTO chart_comments (chart_id, content, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(chart_id) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at`,
		chartID, cleaned, now)
	if err != nil {
		return nil, fmt.Errorf("saving chart comment: %w", err)
	}
	return &models.ChartComment{ChartID: chartID, Content: cleaned, UpdatedAt: now}, nil
}

func (s *chartCommentServiceImpl) Delete(chartID string) error {
	res, err := s.db.Exec(`DELETE FROM chart_comments WHERE chart_id = ?`, chartID)
	if err != nil {
		return fmt.Errorf("deleting chart comment: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrCommentNotFound
	}
	return nil
}
