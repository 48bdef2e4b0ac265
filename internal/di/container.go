package di

import (
	"github.com/eventops/qr-checkin-api/internal/handler"
	"github.com/eventops/qr-checkin-api/internal/repository"
	"github.com/eventops/qr-checkin-api/internal/service"
	"github.com/eventops/qr-checkin-api/pkg/config"
	"github.com/eventops/qr-checkin-api/pkg/database"
)

// Container holds all dependencies for the check-in service
type Container struct {
	// Infrastructure
	DB *database.PostgresDB

	// Repositories
	AttendeeRepo  repository.AttendeeRepository
	EventRepo     repository.EventRepository
	CheckinRepo   repository.CheckinRepository
	Authorization repository.AuthorizationStrategy

	// Services
	CheckinService  service.CheckinService
	AttendeeService service.AttendeeService
	EventService    service.EventService

	// Handlers
	HealthHandler   *handler.HealthHandler
	CheckinHandler  *handler.CheckinHandler
	AttendeeHandler *handler.AttendeeHandler
	EventHandler    *handler.EventHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB                *database.PostgresDB
	AuthorizationMode string
	Environment       string
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB: cfg.DB,
	}

	switch cfg.AuthorizationMode {
	case config.AuthorizationModeLegacyFlags:
		c.Authorization = repository.NewLegacyFlagsAuthorization()
	default:
		c.Authorization = repository.NewRelationAuthorization()
	}

	pool := cfg.DB.Pool()

	// Initialize repositories
	c.AttendeeRepo = repository.NewPostgresAttendeeRepository(pool)
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.CheckinRepo = repository.NewPostgresCheckinRepository(pool, c.Authorization)

	// Initialize services
	c.CheckinService = service.NewCheckinService(
		c.AttendeeRepo,
		c.CheckinRepo,
		c.Authorization,
		pool,
	)
	c.AttendeeService = service.NewAttendeeService(c.AttendeeRepo)
	c.EventService = service.NewEventService(c.EventRepo)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, cfg.Environment)
	c.CheckinHandler = handler.NewCheckinHandler(c.CheckinService)
	c.AttendeeHandler = handler.NewAttendeeHandler(c.AttendeeService)
	c.EventHandler = handler.NewEventHandler(c.EventService)

	return c
}
