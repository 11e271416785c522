package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/inkduel/inkduel-go/internal/dependencies/clock"
	"github.com/inkduel/inkduel-go/internal/dependencies/keylock"
	"github.com/inkduel/inkduel-go/internal/dependencies/random"
	"github.com/inkduel/inkduel-go/internal/model"
	"github.com/inkduel/inkduel-go/internal/projects"
	"github.com/inkduel/inkduel-go/internal/services/challenge"
	"github.com/inkduel/inkduel-go/internal/services/ledger"
	"github.com/inkduel/inkduel-go/internal/services/notify"
	"github.com/inkduel/inkduel-go/internal/services/presence"
	"github.com/inkduel/inkduel-go/internal/services/review"
	"github.com/inkduel/inkduel-go/internal/storage"
	"github.com/inkduel/inkduel-go/internal/storage/memory"
	redisstorage "github.com/inkduel/inkduel-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Projects        *projects.StaticProvider
	LedgerService   *ledger.Service
	PresenceService *presence.Service
	ChallengeEngine *challenge.Engine
	ReviewService   *review.Service
	HubManager      *notify.HubManager
	Notifier        notify.Notifier
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// ChallengeConfig holds challenge engine settings (optional)
	// If zero value, defaults to challenge.DefaultConfig()
	ChallengeConfig challenge.Config
	// Grader is the external grading pipeline (optional)
	// If nil, a pipeline that accepts every essay is used; production
	// deployments inject the real grading client here
	Grader review.Grader
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	challengeCfg := cfg.ChallengeConfig
	if challengeCfg.Window == 0 {
		challengeCfg = challenge.DefaultConfig()
	}

	grader := cfg.Grader
	if grader == nil {
		grader = review.GraderFunc(func(ctx context.Context, project model.ProjectCode, player model.PlayerKey, essay string) error {
			return nil
		})
	}

	return newWithDependencies(store, clk, rnd, challengeCfg, grader, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, challengeCfg challenge.Config, grader review.Grader, logger *slog.Logger) *App {
	locks := keylock.New()
	provider := projects.NewStaticProvider(projects.DefaultLimits())

	hubManager := notify.NewHubManager(logger)
	notifier := notify.NewSSENotifier(hubManager, logger)

	ledgerService := ledger.New(store, provider, locks, clk, logger)
	presenceService := presence.New(store, clk, logger)
	challengeEngine := challenge.NewEngine(store, ledgerService, notifier, clk, rnd, challengeCfg, logger)
	reviewService := review.New(ledgerService, provider, grader, notifier, clk, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Projects:        provider,
		LedgerService:   ledgerService,
		PresenceService: presenceService,
		ChallengeEngine: challengeEngine,
		ReviewService:   reviewService,
		HubManager:      hubManager,
		Notifier:        notifier,
	}
}
