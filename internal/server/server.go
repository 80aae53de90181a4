package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prodtrack/internal/config"
	"prodtrack/internal/events"
	"prodtrack/internal/handler"
	"prodtrack/internal/logging"
	"prodtrack/internal/middleware"
	"prodtrack/internal/repository"
	"prodtrack/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

// OpenDB connects to PostgreSQL with unique violations translated to
// gorm.ErrDuplicatedKey.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	logging.Logger.WithField("host", cfg.DBHost).Info("connected to database")
	return db, nil
}

// eventSink logs every event and also posts it to the webhook when one is
// configured.
func eventSink(cfg *config.Config) events.Sink {
	sinks := events.Fanout{events.LogSink{Logger: logging.Logger}}
	if cfg.EventsWebhookURL != "" {
		sinks = append(sinks, events.NewWebhookSink(cfg.EventsWebhookURL, cfg.EventsWebhookTimeout, logging.Logger))
	}
	return sinks
}

func Init(cfg *config.Config) (*Server, error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	// Setup Gin
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	// Initialize repositories
	personRepo := repository.NewPersonRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	entityRepo := repository.NewEntityRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	previewRepo := repository.NewPreviewFileRepository(db)
	timeSpentRepo := repository.NewTimeSpentRepository(db)

	// Initialize services
	statuses := service.NewStatusRegistry(statusRepo, service.StatusNames{
		Done:     cfg.DoneStatus,
		Wip:      cfg.WipStatus,
		ToReview: cfg.ToReviewStatus,
	})
	hierarchy := service.NewEntityHierarchy(entityRepo)
	catalog := service.NewCatalog(catalogRepo, taskRepo)
	lifecycle := service.NewTaskLifecycle(taskRepo, personRepo, projectRepo, statuses, catalog, hierarchy, eventSink(cfg))
	ledger := service.NewTimeLedger(timeSpentRepo, taskRepo, personRepo)
	comments := service.NewCommentThread(commentRepo, previewRepo, taskRepo, personRepo, statuses)
	personTasks := service.NewPersonTaskAggregator(db, personRepo, statuses)

	// Initialize handlers
	personHandler := handler.NewPersonHandler(personRepo, personTasks, projectRepo, cfg.JWTSecret, cfg.JWTExpiry)
	taskHandler := handler.NewTaskHandler(lifecycle, comments, ledger, personRepo)
	entityHandler := handler.NewEntityHandler(lifecycle, hierarchy, catalog, personRepo)

	// Public routes
	r.POST("/login", personHandler.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		manager := middleware.RequireManager()

		// Task routes
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", manager, taskHandler.Update)
		authorized.DELETE("/tasks/:id", manager, taskHandler.Delete)
		authorized.POST("/entities/:id/task-types/:task_type_id/tasks", manager, taskHandler.Create)
		authorized.POST("/tasks/:id/start", taskHandler.Start)
		authorized.POST("/tasks/:id/to-review", taskHandler.ToReview)
		authorized.POST("/tasks/:id/assign", manager, taskHandler.Assign)
		authorized.DELETE("/tasks/:id/assign", manager, taskHandler.ClearAssignation)

		// Comment routes
		authorized.GET("/tasks/:id/comments", taskHandler.GetComments)
		authorized.POST("/tasks/:id/comments", manager, taskHandler.AddComment)

		// Time spent routes
		authorized.GET("/tasks/:id/time-spents", taskHandler.GetTimeSpents)
		authorized.POST("/tasks/:id/time-spents/:date/persons/:person_id", manager, taskHandler.SetTimeSpent)

		// Person routes
		authorized.GET("/persons/:id/tasks", personHandler.GetTasks)
		authorized.GET("/me/tasks", personHandler.GetMyTasks)

		// Entity routes
		authorized.GET("/shots/:id/tasks", entityHandler.GetShotTasks)
		authorized.GET("/shots/:id/task-types", entityHandler.GetShotTaskTypes)
		authorized.GET("/scenes/:id/tasks", entityHandler.GetSceneTasks)
		authorized.GET("/sequences/:id/tasks", entityHandler.GetSequenceTasks)
		authorized.GET("/assets/:id/tasks", entityHandler.GetAssetTasks)
	}
	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
	}, nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request handled")
	}
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		logging.Logger.Infof("server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatalf("failed to listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Fatalf("server forced to shutdown: %s", err)
	}

	logging.Logger.Info("server exited properly")
}
