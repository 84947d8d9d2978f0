package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/fieldserve/fieldserve/internal/models"
)

// KnowledgeRepository handles knowledge base database operations
type KnowledgeRepository struct {
	db *sql.DB
}

// NewKnowledgeRepository creates a new knowledge repository
func NewKnowledgeRepository(db *sql.DB) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

const knowledgeColumns = `id, title, content, tags, role, source, is_active, created_at, updated_at`

func scanKnowledgeEntry(row interface{ Scan(...interface{}) error }) (*models.KnowledgeEntry, error) {
	var e models.KnowledgeEntry
	err := row.Scan(&e.ID, &e.Title, &e.Content, pq.Array(&e.Tags), &e.Role, &e.Source,
		&e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ActiveEntries retrieves active entries visible to a role. Entries with no
// role restriction are visible to everyone; an empty role sees only those.
func (r *KnowledgeRepository) ActiveEntries(ctx context.Context, role string) ([]models.KnowledgeEntry, error) {
	query := `SELECT ` + knowledgeColumns + ` FROM knowledge_entries WHERE is_active = TRUE`
	args := []interface{}{}
	if role != "" {
		query += ` AND (role IS NULL OR role = $1)`
		args = append(args, role)
	} else {
		query += ` AND role IS NULL`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge entries: %w", err)
	}
	defer rows.Close()

	var entries []models.KnowledgeEntry
	for rows.Next() {
		e, err := scanKnowledgeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan knowledge entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// GetByID retrieves a knowledge entry by ID
func (r *KnowledgeRepository) GetByID(ctx context.Context, id int64) (*models.KnowledgeEntry, error) {
	e, err := scanKnowledgeEntry(r.db.QueryRowContext(ctx,
		`SELECT `+knowledgeColumns+` FROM knowledge_entries WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get knowledge entry: %w", err)
	}
	return e, nil
}

// Create inserts a new knowledge entry
func (r *KnowledgeRepository) Create(ctx context.Context, e *models.KnowledgeEntry) error {
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO knowledge_entries (title, content, tags, role, source, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		e.Title, e.Content, pq.Array(e.Tags), e.Role, e.Source, e.IsActive, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to create knowledge entry: %w", err)
	}
	return nil
}

// Update modifies an existing knowledge entry
func (r *KnowledgeRepository) Update(ctx context.Context, e *models.KnowledgeEntry) error {
	e.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE knowledge_entries
		 SET title = $1, content = $2, tags = $3, role = $4, source = $5, is_active = $6, updated_at = $7
		 WHERE id = $8`,
		e.Title, e.Content, pq.Array(e.Tags), e.Role, e.Source, e.IsActive, e.UpdatedAt, e.ID,
	)
	return err
}

// Deactivate soft-deletes a knowledge entry
func (r *KnowledgeRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE knowledge_entries SET is_active = FALSE, updated_at = $1 WHERE id = $2`,
		time.Now(), id,
	)
	return err
}

// UpsertByTitle inserts a seed document or refreshes the existing one with
// the same title. Seeded documents always come back active.
func (r *KnowledgeRepository) UpsertByTitle(ctx context.Context, e *models.KnowledgeEntry) error {
	now := time.Now()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO knowledge_entries (title, content, tags, role, source, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
		 ON CONFLICT (title) DO UPDATE
		 SET content = EXCLUDED.content, source = EXCLUDED.source, is_active = TRUE, updated_at = EXCLUDED.updated_at
		 RETURNING id`,
		e.Title, e.Content, pq.Array(e.Tags), e.Role, e.Source, now,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert knowledge entry: %w", err)
	}
	return nil
}
