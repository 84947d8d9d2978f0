package models

import (
	"time"
)

// UserRole identifies the dashboard role of a user.
type UserRole string

const (
	RoleCustomer          UserRole = "customer"
	RoleSupportEngineer   UserRole = "support_engineer"
	RoleCityAdmin         UserRole = "city_admin"
	RoleStateAdmin        UserRole = "state_admin"
	RoleCountryAdmin      UserRole = "country_admin"
	RoleOrganizationAdmin UserRole = "organization_admin"
)

// User represents a user in the system
type User struct {
	ID             int64     `json:"id" db:"id"`
	OrganizationID int64     `json:"organization_id" db:"organization_id"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Name           string    `json:"name" db:"name"`
	Role           UserRole  `json:"role" db:"role"`
	CityID         *int64    `json:"city_id,omitempty" db:"city_id"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Engineer is a support engineer with dispatch-relevant attributes.
// Skills and the priority counters feed the workload balancer.
type Engineer struct {
	ID                    int64    `json:"id" db:"id"`
	Name                  string   `json:"name" db:"name"`
	CityID                *int64   `json:"city_id,omitempty" db:"city_id"`
	Skills                []string `json:"skills" db:"-"`
	Latitude              *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude             *float64 `json:"longitude,omitempty" db:"longitude"`
	IsAvailable           bool     `json:"is_available" db:"is_available"`
	ActiveTickets         int      `json:"active_tickets" db:"active_tickets"`
	HighPriorityTickets   int      `json:"high_priority_tickets" db:"high_priority_tickets"`
	MediumPriorityTickets int      `json:"medium_priority_tickets" db:"medium_priority_tickets"`
	LowPriorityTickets    int      `json:"low_priority_tickets" db:"low_priority_tickets"`
}
