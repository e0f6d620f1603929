// Package cli wires the client together and drives it from a small REPL.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"

	"github.com/Samuel-SouzaZz/devquest/internal/client/api"
	"github.com/Samuel-SouzaZz/devquest/internal/client/auth"
	"github.com/Samuel-SouzaZz/devquest/internal/client/config"
	"github.com/Samuel-SouzaZz/devquest/internal/client/db"
	"github.com/Samuel-SouzaZz/devquest/internal/client/netmon"
	"github.com/Samuel-SouzaZz/devquest/internal/client/queue"
	"github.com/Samuel-SouzaZz/devquest/internal/client/repositories/challenges"
	"github.com/Samuel-SouzaZz/devquest/internal/client/repositories/metadata"
	"github.com/Samuel-SouzaZz/devquest/internal/client/repositories/pending"
	"github.com/Samuel-SouzaZz/devquest/internal/client/securestore"
	"github.com/Samuel-SouzaZz/devquest/internal/client/services"
	"github.com/Samuel-SouzaZz/devquest/internal/client/syncer"
	"github.com/Samuel-SouzaZz/devquest/internal/logging"

	_ "modernc.org/sqlite"
)

// Mode reflects the last observed connectivity state, shown in the prompt.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

type App struct {
	config           *config.Config
	authService      services.AuthService
	challengeService services.ChallengeService
	syncer           *syncer.Syncer
	monitor          *netmon.Monitor
	log              logging.Logger

	db     *sql.DB
	reader *bufio.Reader
	Mode   Mode
}

// NewApp builds the whole object graph: database, secure storage, token
// manager, API client, queue, monitor, syncer, services.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	conn, err := db.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	metadataRepo := metadata.NewSQLiteRepository(conn)
	pendingRepo := pending.NewSQLiteRepository(conn)
	challengeRepo := challenges.NewSQLiteRepository(conn)

	// Secure storage backend is chosen here, at composition time: an
	// encrypted file when configured, plain database rows otherwise.
	var secrets securestore.Storage
	if cfg.CredentialFile != "" {
		secrets = securestore.NewFileStorage(cfg.CredentialFile)
	} else {
		secrets = securestore.NewSQLiteStorage(metadataRepo)
	}

	tokens := auth.NewManager(secrets, logger)
	apiClient := api.New(cfg.ServerEndpointAddr, cfg.RequestTimeout, tokens.Transport(http.DefaultTransport))
	tokens.SetRefreshFunc(apiClient.RefreshTokens)

	pendingQueue := queue.NewStore(metadataRepo, pendingRepo, logger)
	monitor := netmon.New(apiClient, cfg.RequestTimeout, logger)
	sync := syncer.New(pendingQueue, apiClient, monitor, metadataRepo, logger)

	app := &App{
		config:           cfg,
		authService:      services.NewAuthService(apiClient, tokens),
		challengeService: services.NewChallengeService(apiClient, pendingQueue, monitor, challengeRepo, sync, logger),
		syncer:           sync,
		monitor:          monitor,
		log:              logger,
		db:               conn,
		reader:           bufio.NewReader(os.Stdin),
	}
	return app, nil
}

// Run starts the connectivity watcher, recovers from a possible crashed
// sync, replays anything already queued, and enters the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	a.syncer.ClearStaleLock(ctx)

	unsubscribe := a.monitor.OnRestored(func() {
		a.setMode(ModeOnline)
		if _, err := a.syncer.Run(ctx); err != nil {
			a.log.Warn(ctx, "sync after reconnect failed", "error", err)
		}
	})
	defer unsubscribe()

	go a.monitor.Watch(ctx, a.config.OnlineCheckInterval)

	// Startup replay of writes queued in a previous session.
	if _, err := a.syncer.Run(ctx); err != nil {
		a.log.Warn(ctx, "startup sync failed", "error", err)
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
	}
}
