package inkwell

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gin-gonic/gin"
	"github.com/nasermirzaei89/env"

	"github.com/avasquez/inkwell/auth"
	"github.com/avasquez/inkwell/authors"
	"github.com/avasquez/inkwell/blog"
	"github.com/avasquez/inkwell/db/memory"
	"github.com/avasquez/inkwell/db/sqlite3"
	"github.com/avasquez/inkwell/internal/rest"
	"github.com/avasquez/inkwell/newsletter"
	"github.com/avasquez/inkwell/random"
	"github.com/avasquez/inkwell/server"
)

type App struct {
	server  *server.Server
	handler *gin.Engine
	db      *sql.DB
}

func NewApp(ctx context.Context) (*App, error) {
	var (
		postRepo blog.PostRepository
		subRepo  newsletter.SubscriptionRepository
		userRepo auth.UserRepository
		db       *sql.DB
	)

	storage := env.GetString("STORAGE", "memory")

	switch storage {
	case "memory":
		postRepo = memory.NewPostRepository()
		subRepo = memory.NewSubscriptionRepository()
		userRepo = memory.NewUserRepository()
	case "sqlite3":
		var err error

		db, err = sqlite3.NewDB(ctx, env.GetString("DB_DSN", sqlite3.DefaultDSN))
		if err != nil {
			return nil, fmt.Errorf("failed to create database connection: %w", err)
		}

		err = sqlite3.MigrateUp(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}

		postRepo = sqlite3.NewPostRepository(db)
		subRepo = sqlite3.NewSubscriptionRepository(db)
		userRepo = sqlite3.NewUserRepository(db)
	default:
		return nil, fmt.Errorf("unknown storage %q", storage)
	}

	directory := authors.NewDirectory()
	blogSvc := blog.NewService(postRepo, directory)
	authorSvc := authors.NewService(directory, blogSvc)
	newsSvc := newsletter.NewService(subRepo)

	issuer, err := newTokenIssuer()
	if err != nil {
		return nil, err
	}

	authSvc := auth.NewService(userRepo, issuer)

	err = seed(ctx, postRepo, userRepo, directory)
	if err != nil {
		return nil, fmt.Errorf("failed to seed store: %w", err)
	}

	if !env.GetBool("DEBUG", false) {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(rest.RequestLogger())
	router.Use(gin.CustomRecovery(rest.HandlePanics()))

	rest.NewAPI(router, blogSvc, authorSvc, newsSvc, authSvc)

	app := &App{
		server:  newServer(),
		handler: router,
		db:      db,
	}

	return app, nil
}

func (app *App) Run(ctx context.Context) error {
	// Handle SIGINT (CTRL+C) gracefully.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	defer func() {
		if app.db != nil {
			err := app.db.Close()
			if err != nil {
				slog.ErrorContext(ctx, "failed to close database", "error", err)
			}
		}
	}()

	err := app.server.Run(ctx, app.handler)
	if err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	return nil
}

func newTokenIssuer() (auth.TokenIssuer, error) {
	scheme := env.GetString("TOKEN_SCHEME", "opaque")

	switch scheme {
	case "opaque":
		return auth.NewOpaqueTokenIssuer(), nil
	case "jwt":
		signingKey := env.GetString("AUTH_SIGNING_KEY", random.String(32))

		return auth.NewJWTTokenIssuer([]byte(signingKey)), nil
	default:
		return nil, fmt.Errorf("unknown token scheme %q", scheme)
	}
}

// seed fills an empty store with the demo corpus and demo user.
func seed(
	ctx context.Context,
	postRepo blog.PostRepository,
	userRepo auth.UserRepository,
	directory *authors.Directory,
) error {
	count, err := postRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count posts: %w", err)
	}

	if count == 0 {
		seedAuthors := make([]blog.SeedAuthor, 0)
		for _, author := range directory.All() {
			seedAuthors = append(seedAuthors, blog.SeedAuthor{ID: author.ID, Name: author.Name})
		}

		for _, post := range blog.SeedPosts(env.GetInt("SEED_POSTS", 24), seedAuthors) {
			err = postRepo.Insert(ctx, post)
			if err != nil {
				return fmt.Errorf("failed to insert seed post: %w", err)
			}
		}
	}

	err = auth.SeedDemoUser(ctx, userRepo)
	if err != nil {
		return fmt.Errorf("failed to seed demo user: %w", err)
	}

	return nil
}

func newServer() *server.Server {
	server := &server.Server{
		Port: env.GetString("PORT", server.DefaultPort),
		Host: env.GetString("HOST", ""),
		TLS: server.ServerTLS{
			Enabled: env.GetBool("TLS_ENABLED", false),
			Mode:    env.GetString("TLS_MODE", server.DefaultTLSMode),
			AutoCert: &server.ServerTLSAutoCert{
				CacheDir: env.GetString("TLS_AUTOCERT_CACHE_DIR", "./cert-cache"),
				Domains:  env.GetStringSlice("TLS_AUTOCERT_DOMAINS", []string{}),
				Email:    env.GetString("TLS_AUTOCERT_EMAIL", ""),
			},
			CertFile: env.GetString("TLS_CERT_FILE", ""),
			KeyFile:  env.GetString("TLS_KEY_FILE", ""),
		},
	}

	return server
}

func GetLogLevelFromEnv() slog.Level {
	levelStr := env.GetString("LOG_LEVEL", "info")
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("unknown log level, defaulting to info", "level", levelStr)

		return slog.LevelInfo
	}
}
