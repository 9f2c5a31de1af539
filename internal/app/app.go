// Package app wires configuration, storage and transport into a runnable API.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	httpadp "studentloan-backend/internal/adapter/http"
	"studentloan-backend/internal/adapter/middleware"
	"studentloan-backend/internal/adapter/repository/memory"
	"studentloan-backend/internal/adapter/repository/mysql"
	"studentloan-backend/internal/adapter/verifier"
	"studentloan-backend/internal/config"
	"studentloan-backend/internal/domain/borrower"
	"studentloan-backend/internal/domain/clock"
	"studentloan-backend/internal/domain/loan"
	"studentloan-backend/internal/domain/uow"
	"studentloan-backend/internal/infrastructure/cache"
	"studentloan-backend/internal/infrastructure/db"
	"studentloan-backend/internal/usecase/ledger"
	"studentloan-backend/internal/usecase/marketplace"
	"studentloan-backend/internal/usecase/registration"
)

type Stores struct {
	Loans    loan.Store
	Profiles borrower.ProfileStore
	History  borrower.HistoryStore
	UoW      uow.UnitOfWork

	Driver string
	// Ping is nil for stores with nothing to reach.
	Ping func(ctx context.Context) error
}

func MemoryStores() Stores {
	l, p, h := memory.NewLoanStore(), memory.NewProfileStore(), memory.NewHistoryStore()
	return Stores{Loans: l, Profiles: p, History: h, UoW: memory.NewUoW(l, p, h), Driver: config.DriverMemory}
}

func GormStores(g *gorm.DB) Stores {
	return Stores{
		Loans:    mysql.NewLoanRepository(g),
		Profiles: mysql.NewProfileRepository(g),
		History:  mysql.NewHistoryRepository(g),
		UoW:      mysql.NewGormUoW(g),
		Driver:   config.DriverMySQL,
		Ping: func(ctx context.Context) error {
			sqlDB, err := g.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

// OpenStores picks the backend named by cfg.StoreDriver. The returned func
// releases whatever was opened.
func OpenStores(cfg *config.Config, log *zap.Logger) (Stores, func(), error) {
	if cfg.StoreDriver != config.DriverMySQL {
		log.Info("using in-memory stores")
		return MemoryStores(), func() {}, nil
	}
	g, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		return Stores{}, nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.Migrate(g); err != nil {
		return Stores{}, nil, fmt.Errorf("migrate: %w", err)
	}
	closeFn := func() {
		if sqlDB, err := g.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return GormStores(g), closeFn, nil
}

// NewServer builds the echo instance. rdb may be nil, which leaves
// idempotency off.
func NewServer(cfg *config.Config, s Stores, rdb *redis.Client, clk clock.Clock, log *zap.Logger) *echo.Echo {
	market := marketplace.NewUsecase(s.Loans, s.Profiles, clk, log, marketplace.Config{
		Ceiling:            cfg.LoanCeiling,
		DefaultCreditScore: cfg.DefaultCreditScore,
	})
	led := ledger.NewUsecase(s.UoW, s.Loans, s.Profiles, s.History, clk, log, cfg.DefaultCreditScore)
	reg := registration.NewUsecase(s.UoW, verifier.Attested{}, clk, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))
	if rdb != nil {
		e.Use(middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log))
	} else {
		log.Warn("REDIS_ADDR not set; idempotency disabled")
	}

	var probes []httpadp.Probe
	if s.Ping != nil {
		probes = append(probes, httpadp.Probe{Name: "db", Ping: s.Ping})
	}
	if rdb != nil {
		probes = append(probes, httpadp.Probe{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	httpadp.Routes{
		Health:    httpadp.NewHandler(clk, s.Driver, probes...),
		Borrowers: httpadp.NewBorrowerHandler(reg, led, market, log),
		Loans:     httpadp.NewLoanHandler(market, led, log),
	}.Register(e)
	return e
}

// OpenRedis wraps cache.OpenRedis with logging.
func OpenRedis(cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("open redis: %w", err)
	}
	if rdb != nil {
		log.Info("redis connected", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	}
	return rdb, nil
}
