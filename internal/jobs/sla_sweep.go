// Package jobs runs scheduled background work: the periodic SLA sweep that
// recomputes breach risk for every open ticket and escalates the risky ones.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fieldserve/fieldserve/internal/repository"
	"github.com/fieldserve/fieldserve/internal/services/notification"
	"github.com/fieldserve/fieldserve/internal/services/slarisk"
)

const escalationThreshold = 0.7

// SLASweeper recomputes SLA breach risk on a schedule.
type SLASweeper struct {
	tickets   *repository.TicketRepository
	predictor *slarisk.Predictor
	notifier  *notification.Service
	cron      *cron.Cron
	spec      string
}

// NewSLASweeper creates a sweeper running on the given cron spec.
func NewSLASweeper(tickets *repository.TicketRepository, notifier *notification.Service, spec string) *SLASweeper {
	return &SLASweeper{
		tickets:   tickets,
		predictor: slarisk.NewPredictor(),
		notifier:  notifier,
		cron:      cron.New(),
		spec:      spec,
	}
}

// Start schedules the sweep and runs it until Stop is called.
func (s *SLASweeper) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("jobs: schedule sla sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *SLASweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep recomputes breach risk for every open ticket with an SLA deadline,
// persists the scores, and escalates tickets above the risk threshold.
func (s *SLASweeper) Sweep(ctx context.Context) {
	tickets, err := s.tickets.ListOpen(ctx)
	if err != nil {
		log.Printf("jobs: sla sweep: list open tickets: %v", err)
		return
	}

	scored, escalated := 0, 0
	for _, t := range tickets {
		if t.SLADeadline == nil {
			continue
		}

		result := s.predictor.PredictBreachRisk(slarisk.Input{
			TicketID:    t.ID,
			Status:      t.Status,
			SLADeadline: *t.SLADeadline,
			CreatedAt:   t.CreatedAt,
			AssignedAt:  t.AssignedAt,
		})
		if result.Error != "" {
			continue
		}

		if err := s.tickets.UpdateSLARisk(ctx, t.ID, result.BreachRisk); err != nil {
			log.Printf("jobs: sla sweep: persist risk for ticket %d: %v", t.ID, err)
			continue
		}
		scored++

		if result.BreachRisk > escalationThreshold {
			escalated++
			text := fmt.Sprintf("Ticket %s at %.0f%% SLA breach risk (%.1fh remaining)",
				t.TicketNumber, result.BreachRisk*100, result.TimeRemainingHours)
			if err := s.notifier.EscalateToSlack(text); err != nil {
				log.Printf("jobs: sla sweep: escalate ticket %d: %v", t.ID, err)
			}
			if t.AssignedEngineerID != nil {
				s.notifier.Notify(ctx, *t.AssignedEngineerID, "sla_risk", "SLA at risk", text, nil)
			}
		}
	}

	log.Printf("jobs: sla sweep: scored %d tickets, escalated %d", scored, escalated)
}
