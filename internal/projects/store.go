// Package projects persists completed humanizations per user.
package projects

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/DualDorans/ai-humanizer-project/internal/models"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Save appends a project record and returns it with the generated id and
// timestamp.
func (s *Store) Save(ctx context.Context, userID, inputText, outputText string) (*models.Project, error) {
	project := &models.Project{
		UserID:     userID,
		InputText:  inputText,
		OutputText: outputText,
	}

	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO projects (user_id, input_text, output_text)
		 VALUES ($1, $2, $3) RETURNING id, created_at`,
		userID, inputText, outputText,
	).Scan(&project.ID, &project.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	return project, nil
}

// ListByUser returns the user's projects, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.Project, error) {
	projects := []models.Project{}
	err := s.db.SelectContext(ctx, &projects,
		`SELECT id, user_id, input_text, output_text, created_at
		 FROM projects WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}
	return projects, nil
}
