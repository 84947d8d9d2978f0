package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fieldserve/fieldserve/internal/config"
	"github.com/fieldserve/fieldserve/internal/handlers"
	"github.com/fieldserve/fieldserve/internal/jobs"
	"github.com/fieldserve/fieldserve/internal/middleware"
	"github.com/fieldserve/fieldserve/internal/models"
	"github.com/fieldserve/fieldserve/internal/repository"
	"github.com/fieldserve/fieldserve/internal/services/chatbot"
	"github.com/fieldserve/fieldserve/internal/services/knowledge"
	"github.com/fieldserve/fieldserve/internal/services/llm"
	"github.com/fieldserve/fieldserve/internal/services/notification"
	"github.com/fieldserve/fieldserve/internal/services/photos"
	"github.com/fieldserve/fieldserve/internal/services/sentiment"
	"github.com/fieldserve/fieldserve/internal/services/triage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	engineerRepo := repository.NewEngineerRepository(db)
	knowledgeRepo := repository.NewKnowledgeRepository(db)
	chatRepo := repository.NewChatRepository(db)

	completer := llm.NewClient(cfg)
	notifier := notification.NewService(cfg)
	knowledgeSvc := knowledge.NewService(knowledgeRepo, completer)

	storage, err := photos.NewStorage(cfg)
	if err != nil {
		log.Printf("Photo storage unavailable: %v", err)
		storage = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.KnowledgeSeedDir != "" {
		seeder := knowledge.NewSeedWatcher(cfg.KnowledgeSeedDir, knowledgeRepo)
		go func() {
			if err := seeder.Run(ctx); err != nil {
				log.Printf("Knowledge seed watcher stopped: %v", err)
			}
		}()
	}

	sweeper := jobs.NewSLASweeper(ticketRepo, notifier, cfg.SLASweepSpec)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start SLA sweep: %v", err)
	}
	defer sweeper.Stop()

	router := setupRouter(cfg, deps{
		users:     userRepo,
		tickets:   ticketRepo,
		engineers: engineerRepo,
		knowledge: knowledgeRepo,
		chats:     chatRepo,
		assistant: knowledgeSvc,
		completer: completer,
		notifier:  notifier,
		storage:   storage,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown Server ...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

type deps struct {
	users     *repository.UserRepository
	tickets   *repository.TicketRepository
	engineers *repository.EngineerRepository
	knowledge *repository.KnowledgeRepository
	chats     *repository.ChatRepository
	assistant *knowledge.Service
	completer llm.Completer
	notifier  *notification.Service
	storage   *photos.Storage
}

func setupRouter(cfg *config.Config, d deps) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(middleware.CORS())
	router.Use(middleware.RateLimit(cfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authHandler := handlers.NewAuthHandler(d.users, cfg)
	router.POST("/api/v1/auth/register", authHandler.Register)
	router.POST("/api/v1/auth/login", authHandler.Login)

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg))
	{
		ticketHandler := handlers.NewTicketHandler(d.tickets, triage.NewService(), sentiment.NewService(), d.notifier, d.storage)
		api.POST("/tickets", ticketHandler.Create)
		api.GET("/tickets", ticketHandler.List)
		api.GET("/tickets/:id", ticketHandler.Get)
		api.PATCH("/tickets/:id/status", ticketHandler.UpdateStatus)
		api.POST("/tickets/:id/assign", ticketHandler.Assign)
		api.POST("/tickets/:id/resolve", ticketHandler.Resolve)
		api.POST("/tickets/:id/feedback", ticketHandler.Feedback)
		api.POST("/tickets/:id/comments", ticketHandler.AddComment)
		api.GET("/tickets/:id/comments", ticketHandler.ListComments)
		api.POST("/tickets/:id/photos", ticketHandler.UploadPhoto)
		api.GET("/tickets/:id/photos/url", ticketHandler.PhotoURL)

		engineerHandler := handlers.NewEngineerHandler(d.engineers)
		api.GET("/engineers", engineerHandler.List)
		api.GET("/engineers/:id", engineerHandler.Get)
		api.PATCH("/engineers/:id/availability", engineerHandler.SetAvailability)
		api.PATCH("/engineers/:id/location", engineerHandler.UpdateLocation)

		notificationHandler := handlers.NewNotificationHandler(d.notifier)
		api.GET("/notifications", notificationHandler.List)

		chatHandler := handlers.NewChatHandler(d.chats, chatbot.NewService(d.completer))
		knowledgeHandler := handlers.NewKnowledgeHandler(d.knowledge, d.assistant)
		aiHandler := handlers.NewAIHandler(d.tickets, d.engineers)

		ai := api.Group("/ai")
		{
			ai.POST("/triage", aiHandler.Triage)
			ai.POST("/forecast", aiHandler.Forecast)
			ai.POST("/sentiment/analyze", aiHandler.AnalyzeSentiment)
			ai.POST("/route/optimize", aiHandler.OptimizeRoute)
			ai.POST("/load-balance", middleware.RequireRole(
				models.RoleCityAdmin, models.RoleStateAdmin,
				models.RoleCountryAdmin, models.RoleOrganizationAdmin,
			), aiHandler.BalanceWorkload)

			ai.GET("/self-diagnosis/questions", aiHandler.DiagnosisQuestions)
			ai.POST("/self-diagnosis/assess", aiHandler.DiagnosisAssess)

			ai.POST("/chatbot/message", chatHandler.Message)
			ai.GET("/chatbot/history/:session_id", chatHandler.History)

			ai.POST("/copilot/query", knowledgeHandler.Query)
			ai.GET("/knowledge-base", knowledgeHandler.ListEntries)
			ai.GET("/knowledge-base/search", knowledgeHandler.Search)
			ai.POST("/knowledge-base", knowledgeHandler.CreateEntry)
			ai.PUT("/knowledge-base/:id", knowledgeHandler.UpdateEntry)
			ai.DELETE("/knowledge-base/:id", knowledgeHandler.DeleteEntry)

			ai.POST("/tickets/:id/sla-predict", aiHandler.PredictSLA)
			ai.GET("/tickets/:id/summary", aiHandler.TicketSummary)
			ai.GET("/tickets/:id/checklist", aiHandler.TicketChecklist)
			ai.GET("/tickets/:id/parts-suggestions", aiHandler.TicketParts)
			ai.GET("/tickets/:id/sla-risk", aiHandler.TicketSLARisk)
			ai.GET("/tickets/:id/satisfaction-risk", aiHandler.TicketSatisfactionRisk)
			ai.GET("/tickets/:id/auto-notes", aiHandler.TicketAutoNotes)

			ai.POST("/photos/quality", aiHandler.PhotoQuality)
		}
	}

	return router
}
