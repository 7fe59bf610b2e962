package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"job-tracker/internal/admin"
	"job-tracker/internal/applications"
	"job-tracker/internal/auth"
	"job-tracker/internal/events"
	"job-tracker/internal/liveview"
	"job-tracker/internal/resumes"
	"job-tracker/internal/screens"
	"job-tracker/internal/services/health"
	"job-tracker/internal/shared/config"
	"job-tracker/internal/shared/server"
	"job-tracker/internal/shared/server/middleware"
	"job-tracker/internal/shared/storage/db"
	"job-tracker/internal/shared/storage/object"
	localstore "job-tracker/internal/shared/storage/object/local"
	s3store "job-tracker/internal/shared/storage/object/s3"
	"job-tracker/internal/users"
	"job-tracker/internal/validation"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config              config.Config
	Router              *gin.Engine
	DB                  *sql.DB
	Redis               *redis.Client
	Store               object.ObjectStore
	Events              events.Broker
	Health              *health.Service
	UsersService        *users.Service
	ApplicationsService *applications.Service
	ResumesService      *resumes.Service
	AuthService         *auth.Service
	GoogleAuth          *auth.GoogleService
	Screens             screens.Deps
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rdb, err := buildRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Redis:  rdb,
		Store:  store,
		Health: health.NewService(),
	}
	if rdb != nil {
		app.Events = events.NewRedisBrokerWithClient(rdb)
		app.Health.Register("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	} else {
		app.Events = events.NewMemoryBroker()
	}
	if sqlDB != nil {
		app.Health.Register("database", func(ctx context.Context) error { return db.Ping(ctx, sqlDB, 0) })
	}

	buildServices(app)
	app.Router = server.NewRouter(routerDeps(app))
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if isDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID, cfg.PublicBaseURL+"/files")
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL+"/files"), nil
	}
}

// buildRedis connects when REDIS_URL is set. Without it events and token
// revocations stay in process, which is only correct for a single instance.
func buildRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	raw := strings.TrimSpace(cfg.RedisURL)
	if raw == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: redis unavailable; using in-process events: %v", err)
			return nil, nil
		}
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var (
		userRepo users.Repo
		appRepo  applications.Repo
		resRepo  resumes.Repo
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		appRepo = &applications.PGRepo{DB: app.DB}
		resRepo = &resumes.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		appRepo = applications.NewMemoryRepo()
		resRepo = resumes.NewMemoryRepo()
	}

	app.UsersService = users.NewService(userRepo, app.Events)
	app.ApplicationsService = applications.NewService(appRepo, app.Events)
	app.ResumesService = resumes.NewService(resRepo, app.Store, app.Events)

	var revocations auth.Revocations
	if app.Redis != nil {
		revocations = auth.NewRedisRevocations(app.Redis)
	}
	app.AuthService = auth.NewService(app.UsersService, revocations)
	app.GoogleAuth = auth.NewGoogleService(app.AuthService, auth.GoogleConfig{
		ClientID:     app.Config.GoogleClientID,
		ClientSecret: app.Config.GoogleClientSecret,
		RedirectURL:  app.Config.GoogleRedirectURL,
		UIRedirect:   app.Config.UIRedirectURL,
		Enabled:      app.Config.Features.GoogleLogin,
	})

	app.Screens = screens.Deps{
		Applications: app.ApplicationsService,
		Users:        app.UsersService,
		Resumes:      app.ResumesService,
		Events:       app.Events,
		Debounce:     app.Config.FilterDebounce,
	}
}

func routerDeps(app *App) server.RouterDeps {
	classifier := validation.NewDomainClassifier(app.Config.EmailDomains)
	return server.RouterDeps{
		Config:             app.Config,
		Health:             app.Health,
		AuthService:        app.AuthService,
		AuthHandler:        auth.NewHandler(app.AuthService, classifier),
		GoogleAuth:         app.GoogleAuth,
		UserHandler:        users.NewHandler(app.UsersService),
		ApplicationHandler: applications.NewHandler(app.ApplicationsService),
		ResumeHandler:      resumes.NewHandler(app.ResumesService),
		AdminHandler:       admin.NewHandler(app.Screens),
		LiveHandler:        liveview.NewHandler(app.Screens, app.Config.CORSAllowOrigin),
		UsersService:       app.UsersService,
		RateLimiter:        middleware.NewRateLimiter(nil),
	}
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var firstErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
