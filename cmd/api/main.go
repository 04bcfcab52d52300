package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-sales/internal/api"
	"github.com/sanosuguru/go-ticket-sales/internal/api/handler"
	custommw "github.com/sanosuguru/go-ticket-sales/internal/api/middleware"
	"github.com/sanosuguru/go-ticket-sales/internal/application"
	"github.com/sanosuguru/go-ticket-sales/internal/config"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/cart"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/event"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/transaction"
	"github.com/sanosuguru/go-ticket-sales/internal/domain/venue"
	"github.com/sanosuguru/go-ticket-sales/internal/infrastructure/memory"
	"github.com/sanosuguru/go-ticket-sales/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-ticket-sales/internal/infrastructure/redis"
	"github.com/sanosuguru/go-ticket-sales/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-sales/internal/pkg/metrics"
	"github.com/sanosuguru/go-ticket-sales/internal/worker"
)

// repositories は選択されたバックエンドのリポジトリ一式
type repositories struct {
	venueRepo   venue.Repository
	sectionRepo venue.SectionRepository
	rowRepo     venue.RowRepository
	seatRepo    venue.SeatRepository
	eventRepo   event.Repository
	ticketRepo  ticket.Repository
	cartRepo    cart.Repository
	txManager   transaction.Manager
}

func main() {
	// .env があれば読み込む（なければ環境変数のみ）
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Get()
	defer logger.Sync()

	m := metrics.Init()

	repos, cleanup, err := buildRepositories(cfg)
	if err != nil {
		log.Fatal("リポジトリ初期化に失敗", zap.Error(err))
	}
	defer cleanup()

	// Redis は任意。無効時はロック・キャッシュなしで動作する
	var (
		lockManager *redisinfra.LockManager
		availCache  *redisinfra.AvailabilityCache
	)
	if cfg.Redis.Enabled {
		client := redisinfra.NewClient(&cfg.Redis)
		if err := redisinfra.Ping(context.Background(), client); err != nil {
			log.Fatal("Redis接続に失敗", zap.Error(err))
		}
		defer client.Close()
		lockManager = redisinfra.NewLockManager(client)
		availCache = redisinfra.NewAvailabilityCache(client)
		log.Info("Redis有効", zap.String("addr", cfg.Redis.Addr()))
	}

	// アプリケーションサービス
	venueService := application.NewVenueService(repos.venueRepo, repos.sectionRepo, repos.rowRepo, repos.seatRepo, repos.ticketRepo)
	seatService := application.NewSeatService(repos.sectionRepo, repos.rowRepo, repos.seatRepo, repos.ticketRepo, repos.eventRepo, lockManager, availCache)
	ticketService := application.NewTicketService(repos.ticketRepo, repos.eventRepo, repos.venueRepo, repos.sectionRepo, repos.rowRepo, repos.seatRepo)
	cartService := application.NewCartService(repos.cartRepo, repos.ticketRepo, repos.eventRepo, repos.seatRepo, repos.txManager)
	eventService := application.NewEventService(repos.eventRepo, repos.venueRepo, repos.ticketRepo, repos.seatRepo)

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	custommw.SetupMiddleware(e)
	e.Use(custommw.PrometheusMiddleware(m))

	registerRoutes(e, cfg, venueService, seatService, ticketService, cartService, eventService)

	// 放置カート回収ワーカー
	workerCtx, stopWorker := context.WithCancel(context.Background())
	cleaner := worker.NewAbandonedCartCleaner(cartService, cfg.Cart.CleanupInterval, cfg.Cart.AbandonTTL)
	go cleaner.Start(workerCtx)

	// サーバー起動
	go func() {
		addr := ":" + cfg.Server.Port
		log.Info("サーバー起動", zap.String("addr", addr), zap.String("storage", cfg.Storage))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("サーバーをシャットダウンしています")

	stopWorker()
	cleaner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	log.Info("サーバーが正常にシャットダウンしました")
}

// buildRepositories は STORAGE_BACKEND に応じたリポジトリ一式を構築する
func buildRepositories(cfg *config.Config) (*repositories, func(), error) {
	if cfg.Storage == "postgres" {
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, err
		}
		return &repositories{
			venueRepo:   postgres.NewVenueRepository(db),
			sectionRepo: postgres.NewSectionRepository(db),
			rowRepo:     postgres.NewRowRepository(db),
			seatRepo:    postgres.NewSeatRepository(db),
			eventRepo:   postgres.NewEventRepository(db),
			ticketRepo:  postgres.NewTicketRepository(db),
			cartRepo:    postgres.NewCartRepository(db),
			txManager:   postgres.NewTxManager(db),
		}, func() { db.Close() }, nil
	}

	return &repositories{
		venueRepo:   memory.NewVenueRepository(),
		sectionRepo: memory.NewSectionRepository(),
		rowRepo:     memory.NewRowRepository(),
		seatRepo:    memory.NewSeatRepository(),
		eventRepo:   memory.NewEventRepository(),
		ticketRepo:  memory.NewTicketRepository(),
		cartRepo:    memory.NewCartRepository(),
		txManager:   memory.NewTxManager(),
	}, func() {}, nil
}

func registerRoutes(
	e *echo.Echo,
	cfg *config.Config,
	venueService *application.VenueService,
	seatService *application.SeatService,
	ticketService *application.TicketService,
	cartService *application.CartService,
	eventService *application.EventService,
) {
	healthHandler := handler.NewHealthHandler()
	venueHandler := handler.NewVenueHandler(venueService)
	seatHandler := handler.NewSeatHandler(seatService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	cartHandler := handler.NewCartHandler(cartService, cfg.Server.PaymentTimeout)
	eventHandler := handler.NewEventHandler(eventService)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsBasicAuth(cfg.Metrics.Username, cfg.Metrics.Password))

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	// 会場階層
	v1.POST("/venues", venueHandler.Create)
	v1.GET("/venues", venueHandler.List)
	v1.GET("/venues/:id", venueHandler.GetByID)
	v1.DELETE("/venues/:id", venueHandler.Delete)
	v1.POST("/venues/:id/sections", venueHandler.CreateSection)
	v1.GET("/venues/:id/sections", venueHandler.ListSections)
	v1.DELETE("/sections/:id", venueHandler.DeleteSection)
	v1.POST("/sections/:id/rows", venueHandler.CreateRow)
	v1.GET("/sections/:id/rows", venueHandler.ListRows)
	v1.DELETE("/rows/:id", venueHandler.DeleteRow)
	v1.POST("/rows/:id/seats", venueHandler.AddSeats)
	v1.GET("/rows/:id/seats", venueHandler.ListSeats)

	// 座席の予約・空席照会・推薦
	v1.POST("/seats/:id/reserve", seatHandler.Reserve)
	v1.DELETE("/seats/:id/reserve", seatHandler.Unreserve)
	v1.GET("/seats/:id/status", seatHandler.ReservationStatus)
	v1.GET("/rows/:id/seats/available", seatHandler.AvailableInRow)
	v1.GET("/sections/:id/seats/available", seatHandler.AvailableInSection)
	v1.GET("/venues/:id/seats/available", seatHandler.AvailableInVenue)
	v1.GET("/venues/:id/seats/available/count", seatHandler.AvailableCount)
	v1.POST("/seats/recommend", seatHandler.Recommend)

	// イベント
	v1.POST("/events", eventHandler.Create)
	v1.GET("/events", eventHandler.List)
	v1.GET("/events/:id", eventHandler.GetByID)
	v1.PUT("/events/:id", eventHandler.Update)
	v1.DELETE("/events/:id", eventHandler.Delete)
	v1.POST("/events/:id/performers", eventHandler.AddPerformer)
	v1.POST("/events/:id/cancel", eventHandler.Cancel)
	v1.POST("/events/:id/complete", eventHandler.Complete)

	// チケット在庫
	v1.POST("/events/:id/tickets", ticketHandler.Generate)
	v1.GET("/events/:id/tickets", ticketHandler.ListByEvent)
	v1.GET("/tickets/:id", ticketHandler.GetByID)
	v1.DELETE("/tickets/:id", ticketHandler.Delete)

	// カートと決済
	v1.POST("/carts", cartHandler.Create)
	v1.GET("/carts/:id", cartHandler.GetByID)
	v1.POST("/carts/:id/tickets", cartHandler.AddTicket)
	v1.DELETE("/carts/:id/tickets/:ticketID", cartHandler.RemoveTicket)
	v1.DELETE("/carts/:id/tickets", cartHandler.Clear)
	v1.POST("/carts/:id/checkout", cartHandler.Checkout)
	v1.POST("/carts/:id/finalize", cartHandler.Finalize)
}
