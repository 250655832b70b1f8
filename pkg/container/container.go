package container

import (
	"context"
	"fmt"
	"time"

	"fortunes-backend/internal/config"
	"fortunes-backend/internal/domains/fortune"
	fortuneHandler "fortunes-backend/internal/domains/fortune/handler"
	fortuneRepo "fortunes-backend/internal/domains/fortune/repository"
	fortuneService "fortunes-backend/internal/domains/fortune/service"
	"fortunes-backend/internal/infrastructure/database"
	"fortunes-backend/pkg/logger"
)

// Container is the root of the dependency graph: config, infrastructure,
// then repository, service and handlers, all singletons.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB

	FortuneRepo    fortune.Repository
	FortuneService fortune.Service

	FortuneHandler *fortuneHandler.FortuneHandler
	AuthorHandler  *fortuneHandler.AuthorHandler
	TagHandler     *fortuneHandler.TagHandler
}

// NewContainer builds the full dependency graph; any failure aborts startup.
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.App.Environment)

	db := database.NewPostgresDB(&cfg.Database)
	connectCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := db.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := fortuneRepo.NewPostgresRepository(db.Pool)
	svc := fortuneService.NewFortuneService(repo)

	return &Container{
		Config:         cfg,
		DB:             db,
		FortuneRepo:    repo,
		FortuneService: svc,
		FortuneHandler: fortuneHandler.NewFortuneHandler(svc),
		AuthorHandler:  fortuneHandler.NewAuthorHandler(svc),
		TagHandler:     fortuneHandler.NewTagHandler(svc),
	}, nil
}

// Cleanup releases infrastructure resources on shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
	}
}
