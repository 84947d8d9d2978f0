package models

import (
	"time"
)

// TicketStatus is the lifecycle state of a service ticket.
type TicketStatus string

const (
	StatusCreated      TicketStatus = "created"
	StatusAssigned     TicketStatus = "assigned"
	StatusInProgress   TicketStatus = "in_progress"
	StatusWaitingParts TicketStatus = "waiting_parts"
	StatusResolved     TicketStatus = "resolved"
	StatusClosed       TicketStatus = "closed"
	StatusCancelled    TicketStatus = "cancelled"
	StatusEscalated    TicketStatus = "escalated"
)

// TicketPriority is the urgency level of a ticket.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// Valid reports whether p is one of the four known priority levels.
func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Ticket represents a service ticket
type Ticket struct {
	ID             int64        `json:"id" db:"id"`
	TicketNumber   string       `json:"ticket_number" db:"ticket_number"`
	OrganizationID int64        `json:"organization_id" db:"organization_id"`
	CustomerID     *int64       `json:"customer_id,omitempty" db:"customer_id"`
	DeviceID       *int64       `json:"device_id,omitempty" db:"device_id"`

	AssignedEngineerID *int64 `json:"assigned_engineer_id,omitempty" db:"assigned_engineer_id"`
	CreatedByID        *int64 `json:"created_by_id,omitempty" db:"created_by_id"`
	ParentTicketID     *int64 `json:"parent_ticket_id,omitempty" db:"parent_ticket_id"`

	CityID           *int64  `json:"city_id,omitempty" db:"city_id"`
	ServiceAddress   string  `json:"service_address" db:"service_address"`
	ServiceLatitude  *float64 `json:"service_latitude,omitempty" db:"service_latitude"`
	ServiceLongitude *float64 `json:"service_longitude,omitempty" db:"service_longitude"`

	IssueCategory    string   `json:"issue_category" db:"issue_category"`
	IssueDescription string   `json:"issue_description" db:"issue_description"`
	IssuePhotos      []string `json:"issue_photos" db:"-"`

	Status   TicketStatus   `json:"status" db:"status"`
	Priority TicketPriority `json:"priority" db:"priority"`

	// Advisory triage output persisted alongside the ticket.
	TriageCategory   *string  `json:"triage_category,omitempty" db:"triage_category"`
	TriageConfidence *float64 `json:"triage_confidence,omitempty" db:"triage_confidence"`
	SuggestedParts   []string `json:"suggested_parts" db:"-"`

	SLADeadline    *time.Time `json:"sla_deadline,omitempty" db:"sla_deadline"`
	SLABreachRisk  *float64   `json:"sla_breach_risk,omitempty" db:"sla_breach_risk"`
	WarrantyStatus string     `json:"warranty_status" db:"warranty_status"`

	ResolutionNotes  string   `json:"resolution_notes" db:"resolution_notes"`
	ResolutionPhotos []string `json:"resolution_photos" db:"-"`
	PartsUsed        []string `json:"parts_used" db:"-"`

	CustomerRating      *int     `json:"customer_rating,omitempty" db:"customer_rating"`
	CustomerFeedback    string   `json:"customer_feedback" db:"customer_feedback"`
	SentimentScore      *float64 `json:"sentiment_score,omitempty" db:"sentiment_score"`
	CustomerDisputeTags []string `json:"customer_dispute_tags" db:"-"`

	EngineerETAStart *time.Time `json:"engineer_eta_start,omitempty" db:"engineer_eta_start"`
	EngineerETAEnd   *time.Time `json:"engineer_eta_end,omitempty" db:"engineer_eta_end"`

	ArrivalConfirmedAt *time.Time `json:"arrival_confirmed_at,omitempty" db:"arrival_confirmed_at"`

	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	AssignedAt *time.Time `json:"assigned_at,omitempty" db:"assigned_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// TicketComment is a comment left on a ticket
type TicketComment struct {
	ID        int64     `json:"id" db:"id"`
	TicketID  int64     `json:"ticket_id" db:"ticket_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Device is a customer appliance registered under an organization
type Device struct {
	ID           int64     `json:"id" db:"id"`
	OwnerID      int64     `json:"owner_id" db:"owner_id"`
	Brand        string    `json:"brand" db:"brand"`
	Category     string    `json:"category" db:"category"`
	ModelNumber  string    `json:"model_number" db:"model_number"`
	SerialNumber string    `json:"serial_number" db:"serial_number"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
