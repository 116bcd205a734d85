package main // entry point of the appointment backend

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ruanfs/agenda-posto/internal/config"
	"github.com/ruanfs/agenda-posto/internal/database"
	"github.com/ruanfs/agenda-posto/internal/handler"
	"github.com/ruanfs/agenda-posto/internal/middleware"
	"github.com/ruanfs/agenda-posto/internal/queue"
	"github.com/ruanfs/agenda-posto/internal/receipt"
	"github.com/ruanfs/agenda-posto/internal/repository"
	"github.com/ruanfs/agenda-posto/internal/router"
	queue_publisher "github.com/ruanfs/agenda-posto/internal/service"
	"github.com/ruanfs/agenda-posto/internal/session"
	"github.com/ruanfs/agenda-posto/internal/sweeper"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	db, err := database.Open(database.Params{
		User:        cfg.DBUser,
		Pass:        cfg.DBPass,
		Host:        cfg.DBHost,
		Port:        cfg.DBPort,
		Name:        cfg.DBName,
		MaxConns:    cfg.DBMaxConns,
		ConnMaxLife: time.Duration(cfg.DBConnLifeMin) * time.Minute,
	})
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	slots := repository.NewSlotRepo(db)
	bookings := repository.NewBookingRepo(db)
	admins := repository.NewAdminRepo(db)

	// One-time admin seeding, gated behind ADMIN_SETUP_PASSWORD.
	if err := admins.Bootstrap(ctx, cfg.AdminUser, cfg.AdminSetupPass, cfg.BcryptCost); err != nil {
		log.Fatalf("admin bootstrap failed: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, using in-memory sessions and no rate limit")
	}
	sessions := session.NewStore(rdb)

	receipts, err := receipt.NewGenerator(cfg.ReceiptDir)
	if err != nil {
		log.Fatalf("receipt directory setup failed: %v", err)
	}

	pub := handler.NewPublicHandler(slots, bookings)
	pub.Receipts = receipts
	pub.PublishCreated = queue_publisher.PublishBookingCreated

	adm := handler.NewAdminHandler(bookings, slots)
	adm.PublishCancelled = queue_publisher.PublishBookingCancelled

	auth := handler.NewAuthHandler(cfg, admins, sessions)

	e := echo.New()
	router.RegisterRoutes(e, cfg.ReceiptDir)
	router.RegisterAuth(e, auth)
	router.RegisterPublic(e, pub, middleware.RateLimit(rdb, 10, time.Minute))
	router.RegisterAdmin(e, adm, cfg.SessionSecret, sessions)

	sw := sweeper.New(bookings, receipts,
		time.Duration(cfg.SweepEveryHrs)*time.Hour,
		time.Duration(cfg.RetentionDays)*24*time.Hour)
	go sw.Run(ctx)

	// The audit-log consumer only makes sense when a broker is configured.
	if os.Getenv("RABBITMQ_URL") != "" || os.Getenv("AMQP_URL") != "" {
		go queue.StartBookingConsumer()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := e.Shutdown(shutCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
