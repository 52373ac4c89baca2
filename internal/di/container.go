package di

import (
	"github.com/bookwise/room-booking-backend/internal/handler"
	"github.com/bookwise/room-booking-backend/internal/repository"
	"github.com/bookwise/room-booking-backend/internal/service"
	"github.com/bookwise/room-booking-backend/pkg/database"
	"github.com/bookwise/room-booking-backend/pkg/redis"
)

// Container holds all dependencies for the booking backend
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	BookingRepo      repository.BookingRepository
	RoomRepo         repository.RoomRepository
	AvailabilityRepo repository.AvailabilityRepository
	AuditRepo        repository.AuditRepository

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	AvailabilityChecker service.AvailabilityChecker
	BookingService      service.BookingService
	RoomService         service.RoomService

	// Handlers
	HealthHandler  *handler.HealthHandler
	BookingHandler *handler.BookingHandler
	RoomHandler    *handler.RoomHandler
	AdminHandler   *handler.AdminHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	EventPublisher service.EventPublisher
	ServiceConfig  *service.BookingServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		EventPublisher: cfg.EventPublisher,
	}

	// Initialize repositories
	pool := c.DB.Pool()
	c.BookingRepo = repository.NewPostgresBookingRepository(pool)
	c.RoomRepo = repository.NewPostgresRoomRepository(pool)
	c.AvailabilityRepo = repository.NewPostgresAvailabilityRepository(pool)
	c.AuditRepo = repository.NewPostgresAuditRepository(pool)

	// Initialize services
	c.AvailabilityChecker = service.NewAvailabilityChecker(c.RoomRepo, c.AvailabilityRepo, c.BookingRepo)
	c.BookingService = service.NewBookingService(
		c.DB,
		c.BookingRepo,
		c.RoomRepo,
		c.AuditRepo,
		c.AvailabilityChecker,
		c.EventPublisher,
		service.NewAuditLogger(),
		cfg.ServiceConfig,
	)
	c.RoomService = service.NewRoomService(c.RoomRepo, c.AvailabilityRepo, c.AuditRepo, nil)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService)
	c.RoomHandler = handler.NewRoomHandler(c.RoomService)
	c.AdminHandler = handler.NewAdminHandler(c.RoomService, c.BookingService)

	return c
}
