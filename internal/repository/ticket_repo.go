package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/fieldserve/fieldserve/internal/models"
)

// TicketRepository handles ticket database operations
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `id, ticket_number, organization_id, customer_id, device_id,
	assigned_engineer_id, created_by_id, parent_ticket_id, city_id,
	service_address, service_latitude, service_longitude,
	issue_category, issue_description, issue_photos,
	status, priority, triage_category, triage_confidence, suggested_parts,
	sla_deadline, sla_breach_risk, warranty_status,
	resolution_notes, resolution_photos, parts_used,
	customer_rating, customer_feedback, sentiment_score, customer_dispute_tags,
	engineer_eta_start, engineer_eta_end, arrival_confirmed_at,
	created_at, assigned_at, resolved_at, updated_at`

func scanTicket(row interface{ Scan(...interface{}) error }) (*models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(&t.ID, &t.TicketNumber, &t.OrganizationID, &t.CustomerID, &t.DeviceID,
		&t.AssignedEngineerID, &t.CreatedByID, &t.ParentTicketID, &t.CityID,
		&t.ServiceAddress, &t.ServiceLatitude, &t.ServiceLongitude,
		&t.IssueCategory, &t.IssueDescription, pq.Array(&t.IssuePhotos),
		&t.Status, &t.Priority, &t.TriageCategory, &t.TriageConfidence, pq.Array(&t.SuggestedParts),
		&t.SLADeadline, &t.SLABreachRisk, &t.WarrantyStatus,
		&t.ResolutionNotes, pq.Array(&t.ResolutionPhotos), pq.Array(&t.PartsUsed),
		&t.CustomerRating, &t.CustomerFeedback, &t.SentimentScore, pq.Array(&t.CustomerDisputeTags),
		&t.EngineerETAStart, &t.EngineerETAEnd, &t.ArrivalConfirmedAt,
		&t.CreatedAt, &t.AssignedAt, &t.ResolvedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new ticket
func (r *TicketRepository) Create(ctx context.Context, t *models.Ticket) error {
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tickets (ticket_number, organization_id, customer_id, device_id,
			created_by_id, parent_ticket_id, city_id,
			service_address, service_latitude, service_longitude,
			issue_category, issue_description, issue_photos,
			status, priority, triage_category, triage_confidence, suggested_parts,
			sla_deadline, warranty_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		 RETURNING id`,
		t.TicketNumber, t.OrganizationID, t.CustomerID, t.DeviceID,
		t.CreatedByID, t.ParentTicketID, t.CityID,
		t.ServiceAddress, t.ServiceLatitude, t.ServiceLongitude,
		t.IssueCategory, t.IssueDescription, pq.Array(t.IssuePhotos),
		t.Status, t.Priority, t.TriageCategory, t.TriageConfidence, pq.Array(t.SuggestedParts),
		t.SLADeadline, t.WarrantyStatus, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// GetByID retrieves a ticket by ID
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	t, err := scanTicket(r.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return t, nil
}

// ListByOrganization retrieves tickets for an organization, newest first.
// Status filters the list when non-empty.
func (r *TicketRepository) ListByOrganization(ctx context.Context, organizationID int64, status string, limit, offset int) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE organization_id = $1`
	args := []interface{}{organizationID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// ListOpen retrieves tickets that have not reached a terminal state.
// Used by the SLA sweep.
func (r *TicketRepository) ListOpen(ctx context.Context) ([]models.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE status NOT IN ('resolved', 'closed', 'cancelled')
		 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list open tickets: %w", err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// UpdateStatus transitions a ticket and stamps the relevant timestamps
func (r *TicketRepository) UpdateStatus(ctx context.Context, id int64, status models.TicketStatus) error {
	now := time.Now()
	query := `UPDATE tickets SET status = $1, updated_at = $2 WHERE id = $3`
	args := []interface{}{status, now, id}

	switch status {
	case models.StatusAssigned:
		query = `UPDATE tickets SET status = $1, updated_at = $2, assigned_at = $2 WHERE id = $3`
	case models.StatusResolved:
		query = `UPDATE tickets SET status = $1, updated_at = $2, resolved_at = $2 WHERE id = $3`
	}

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// AssignEngineer assigns an engineer and marks the ticket assigned
func (r *TicketRepository) AssignEngineer(ctx context.Context, id, engineerID int64) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET assigned_engineer_id = $1, status = $2, assigned_at = $3, updated_at = $3
		 WHERE id = $4`,
		engineerID, models.StatusAssigned, now, id,
	)
	return err
}

// UpdateTriage persists the triage suggestion on the ticket
func (r *TicketRepository) UpdateTriage(ctx context.Context, id int64, category string, confidence float64, suggestedParts []string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET triage_category = $1, triage_confidence = $2, suggested_parts = $3, updated_at = $4
		 WHERE id = $5`,
		category, confidence, pq.Array(suggestedParts), time.Now(), id,
	)
	return err
}

// UpdateSLARisk persists a recomputed breach risk score
func (r *TicketRepository) UpdateSLARisk(ctx context.Context, id int64, risk float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET sla_breach_risk = $1, updated_at = $2 WHERE id = $3`,
		risk, time.Now(), id,
	)
	return err
}

// AddIssuePhoto appends a stored photo key to the ticket's issue photos
func (r *TicketRepository) AddIssuePhoto(ctx context.Context, id int64, storageKey string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET issue_photos = array_append(issue_photos, $1), updated_at = $2 WHERE id = $3`,
		storageKey, time.Now(), id,
	)
	return err
}

// UpdateResolution records resolution notes, photos, and parts used
func (r *TicketRepository) UpdateResolution(ctx context.Context, id int64, notes string, photos, partsUsed []string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET resolution_notes = $1, resolution_photos = $2, parts_used = $3, updated_at = $4
		 WHERE id = $5`,
		notes, pq.Array(photos), pq.Array(partsUsed), time.Now(), id,
	)
	return err
}

// UpdateFeedback records the customer's rating, feedback, and sentiment
func (r *TicketRepository) UpdateFeedback(ctx context.Context, id int64, rating int, feedback string, sentimentScore float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET customer_rating = $1, customer_feedback = $2, sentiment_score = $3, updated_at = $4
		 WHERE id = $5`,
		rating, feedback, sentimentScore, time.Now(), id,
	)
	return err
}

// AddComment appends a comment to a ticket
func (r *TicketRepository) AddComment(ctx context.Context, c *models.TicketComment) error {
	c.CreatedAt = time.Now()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO ticket_comments (ticket_id, user_id, comment, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		c.TicketID, c.UserID, c.Comment, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

// ListComments retrieves a ticket's comments oldest first
func (r *TicketRepository) ListComments(ctx context.Context, ticketID int64) ([]models.TicketComment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ticket_id, user_id, comment, created_at
		 FROM ticket_comments WHERE ticket_id = $1 ORDER BY created_at`,
		ticketID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.TicketComment
	for rows.Next() {
		var c models.TicketComment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.UserID, &c.Comment, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// GetDevice retrieves a registered device by ID
func (r *TicketRepository) GetDevice(ctx context.Context, id int64) (*models.Device, error) {
	var d models.Device
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, brand, category, model_number, serial_number, created_at
		 FROM devices WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.OwnerID, &d.Brand, &d.Category, &d.ModelNumber, &d.SerialNumber, &d.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return &d, nil
}
