package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/fieldserve/fieldserve/internal/models"
)

// EngineerRepository handles engineer database operations
type EngineerRepository struct {
	db *sql.DB
}

// NewEngineerRepository creates a new engineer repository
func NewEngineerRepository(db *sql.DB) *EngineerRepository {
	return &EngineerRepository{db: db}
}

const engineerColumns = `e.id, e.name, e.city_id, e.skills, e.latitude, e.longitude, e.is_available,
	COUNT(t.id) FILTER (WHERE t.status NOT IN ('resolved', 'closed', 'cancelled')) AS active_tickets,
	COUNT(t.id) FILTER (WHERE t.priority IN ('high', 'urgent') AND t.status NOT IN ('resolved', 'closed', 'cancelled')) AS high_priority_tickets,
	COUNT(t.id) FILTER (WHERE t.priority = 'medium' AND t.status NOT IN ('resolved', 'closed', 'cancelled')) AS medium_priority_tickets,
	COUNT(t.id) FILTER (WHERE t.priority = 'low' AND t.status NOT IN ('resolved', 'closed', 'cancelled')) AS low_priority_tickets`

func scanEngineer(row interface{ Scan(...interface{}) error }) (*models.Engineer, error) {
	var e models.Engineer
	err := row.Scan(&e.ID, &e.Name, &e.CityID, pq.Array(&e.Skills), &e.Latitude, &e.Longitude, &e.IsAvailable,
		&e.ActiveTickets, &e.HighPriorityTickets, &e.MediumPriorityTickets, &e.LowPriorityTickets)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByID retrieves an engineer with live workload counters
func (r *EngineerRepository) GetByID(ctx context.Context, id int64) (*models.Engineer, error) {
	e, err := scanEngineer(r.db.QueryRowContext(ctx,
		`SELECT `+engineerColumns+`
		 FROM engineers e
		 LEFT JOIN tickets t ON t.assigned_engineer_id = e.id
		 WHERE e.id = $1
		 GROUP BY e.id`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get engineer: %w", err)
	}
	return e, nil
}

// ListByCity retrieves engineers serving a city with live workload counters.
// A zero cityID lists every engineer.
func (r *EngineerRepository) ListByCity(ctx context.Context, cityID int64) ([]models.Engineer, error) {
	query := `SELECT ` + engineerColumns + `
		 FROM engineers e
		 LEFT JOIN tickets t ON t.assigned_engineer_id = e.id`
	args := []interface{}{}
	if cityID != 0 {
		query += ` WHERE e.city_id = $1`
		args = append(args, cityID)
	}
	query += ` GROUP BY e.id ORDER BY e.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list engineers: %w", err)
	}
	defer rows.Close()

	var engineers []models.Engineer
	for rows.Next() {
		e, err := scanEngineer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan engineer: %w", err)
		}
		engineers = append(engineers, *e)
	}
	return engineers, rows.Err()
}

// SetAvailability toggles whether an engineer accepts new assignments
func (r *EngineerRepository) SetAvailability(ctx context.Context, id int64, available bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE engineers SET is_available = $1 WHERE id = $2`,
		available, id,
	)
	return err
}

// UpdateLocation records the engineer's last reported position
func (r *EngineerRepository) UpdateLocation(ctx context.Context, id int64, lat, lng float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE engineers SET latitude = $1, longitude = $2 WHERE id = $3`,
		lat, lng, id,
	)
	return err
}
