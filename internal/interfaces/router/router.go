package router

import (
	"context"
	"errors"
	"time"

	"digital-advisor/bootstrap"
	"digital-advisor/internal/application/balance"
	"digital-advisor/internal/application/holdings"
	"digital-advisor/internal/application/trading"
	"digital-advisor/internal/application/transactions"
	"digital-advisor/internal/auth"
	"digital-advisor/internal/config"
	"digital-advisor/internal/health"
	authhandler "digital-advisor/internal/interfaces/handlers/auth"
	balancehandler "digital-advisor/internal/interfaces/handlers/balance"
	portfoliohandler "digital-advisor/internal/interfaces/handlers/portfolio"
	predhandler "digital-advisor/internal/interfaces/handlers/prediction"
	pricehandler "digital-advisor/internal/interfaces/handlers/prices"
	txhandler "digital-advisor/internal/interfaces/handlers/transactions"
	"digital-advisor/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const devJWTSecret = "dev-only-insecure-secret"

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func jwtSecret(cfg *config.Config) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}
	if cfg.IsProduction() {
		return nil, errors.New("JWT_SECRET is required in production")
	}
	log.Warn().Msg("JWT_SECRET not set, using an insecure development secret")
	return []byte(devJWTSecret), nil
}

// CreateApp builds the Fiber app with all global middleware and route registration.
func CreateApp(cfg *config.Config) (*fiber.App, *bootstrap.Deps, error) {
	deps, err := bootstrap.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	app, err := NewApp(cfg, deps)
	if err != nil {
		_ = deps.Close()
		return nil, nil, err
	}
	return app, deps, nil
}

// NewApp registers routes over already opened dependencies.
func NewApp(cfg *config.Config, deps *bootstrap.Deps) (*fiber.App, error) {
	secret, err := jwtSecret(cfg)
	if err != nil {
		return nil, err
	}
	db, rdb := deps.DB, deps.Redis

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
		ReadTimeout:             30 * time.Second,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &health.Handlers{
		Rdb:            rdb,
		DB:             &gormDBPinger{db: db},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if deps.Model != nil {
		hh.Model = deps.Model
	}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/reset", hh.Reset)
	app.Get("/health/errors", hh.Errors)

	authSvc := &auth.Service{
		DB:          db,
		Tokens:      &auth.Tokens{Secret: secret, TTL: cfg.JWTTTL},
		Revocations: &auth.Revocations{Redis: rdb},
	}
	requireAuth := middleware.RequireAuth(authSvc)

	ah := &authhandler.Handlers{Service: authSvc}
	ag := app.Group("/auth")
	ag.Post("/register", ah.Register)
	ag.Post("/login", ah.Login)
	ag.Get("/me", requireAuth, ah.Me)
	ag.Delete("/logout", requireAuth, ah.Logout)

	recorder := transactions.NewRecorder()

	bh := &balancehandler.Handlers{Service: balance.NewService(db, recorder)}
	bg := app.Group("/balance", requireAuth)
	bg.Get("/", bh.Get)
	bg.Post("/deposit", bh.Deposit)
	bg.Post("/withdraw", bh.Withdraw)

	ph := &portfoliohandler.Handlers{
		Holdings: &holdings.Service{DB: db},
		Trading:  trading.NewService(db, recorder),
		Prices:   deps.Prices,
	}
	pg := app.Group("/portfolio", requireAuth)
	pg.Get("/", ph.Get)
	pg.Post("/buy", ph.Buy)
	pg.Post("/sell", ph.Sell)

	th := &txhandler.Handlers{Service: &transactions.Service{DB: db}}
	app.Get("/transactions", requireAuth, th.List)

	prh := &pricehandler.Handlers{Service: deps.Prices}
	app.Get("/prices", prh.Latest)

	limit := rate.Limit(cfg.Prediction.EndpointRate)
	pdh := &predhandler.Handlers{Service: deps.Prediction}
	pdg := app.Group("/predict", middleware.RateLimit(limit, cfg.Prediction.EndpointRate))
	pdg.Get("/", pdh.Predict)
	pdg.Post("/", pdh.PredictFromFeatures)
	pdg.Get("/history", pdh.History)

	if rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis not reachable at startup")
		}
	}
	return app, nil
}
