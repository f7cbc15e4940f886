// Command ibuki runs the audio-streaming coordinator: the REST control
// surface and the notification-channel websocket upgrade, backed by the
// session/player/compose/transport stack in internal/.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ibukiaudio/ibuki/internal/compose"
	"github.com/ibukiaudio/ibuki/internal/config"
	"github.com/ibukiaudio/ibuki/internal/logging"
	"github.com/ibukiaudio/ibuki/internal/notify"
	"github.com/ibukiaudio/ibuki/internal/playerevents"
	"github.com/ibukiaudio/ibuki/internal/resolve"
	"github.com/ibukiaudio/ibuki/internal/rest"
	"github.com/ibukiaudio/ibuki/internal/scheduler"
	"github.com/ibukiaudio/ibuki/internal/session"
	"github.com/ibukiaudio/ibuki/internal/stats"
	"github.com/ibukiaudio/ibuki/internal/transport"
	"github.com/ibukiaudio/ibuki/internal/wsapi"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(logging.Config{LogLevel: cfg.LogLevel, FilePath: cfg.LogFilePath})
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}
	defer logger.Sync()

	db, err := openStatsDB(cfg.Stats)
	if err != nil {
		return err
	}

	sessions := session.NewManager()
	tokens := session.NewTokenIssuer([]byte(cfg.ResumeSecret), cfg.ResumeDefaultTimeout)

	statsCollector, err := stats.New(db, stats.Counters{
		Players:        func() int { return countPlayers(sessions) },
		PlayingPlayers: func() int { return countPlayingPlayers(sessions) },
		Sessions:       func() int { return len(sessions.Sessions()) },
	})
	if err != nil {
		return fmt.Errorf("constructing stats collector: %w", err)
	}

	composeAdapter := compose.New(resolve.NewDirectResolver(resty.New()), compose.Defaults{
		SampleRate: cfg.DefaultSampleRate,
		Channels:   cfg.DefaultChannels,
	})

	driverFactory := func() transport.Driver {
		return transport.NewWebRTCDriver(logger, transport.DefaultConfig())
	}

	sched := scheduler.New()
	sched.Register(scheduler.Task{
		Name:     "stats-broadcast",
		Interval: cfg.StatsInterval,
		Run:      func() { broadcastStats(sessions, statsCollector, logger) },
	})

	restServer := rest.NewServer(rest.ServerConfig{
		RestToken:            cfg.RestToken,
		Version:              cfg.Version,
		Name:                 cfg.Name,
		ResumeDefaultTimeout: cfg.ResumeDefaultTimeout,
		PlayerUpdateInterval: cfg.PlayerUpdateInterval,
	}, logger, sessions, composeAdapter, driverFactory, statsCollector, tokens, sched)

	wsHandler := wsapi.New(wsapi.Config{ResumeDefaultTimeout: cfg.ResumeDefaultTimeout}, sessions, tokens, logger)
	restServer.SetWebSocketHandler(wsHandler.Upgrade)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: restServer.Engine(),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infow("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case sig := <-sigCh:
		logger.Infow("shutting down", "signal", sig.String())
	}

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

func openStatsDB(cfg config.StatsConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		dialector = sqlite.Open(cfg.DSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening stats database (driver=%s): %w", cfg.Driver, err)
	}
	return db, nil
}

func countPlayers(sessions *session.Manager) int {
	total := 0
	for _, sess := range sessions.Sessions() {
		total += len(sess.Players())
	}
	return total
}

func countPlayingPlayers(sessions *session.Manager) int {
	total := 0
	for _, sess := range sessions.Sessions() {
		for _, p := range sess.Players() {
			if p.Snapshot().State == playerevents.StatePlaying {
				total++
			}
		}
	}
	return total
}

// broadcastStats persists a snapshot and fans it out as a Stats message to
// every currently live session's notification channel (§6 op discriminator
// table; the periodic-stats producer referenced by §4.8's "producers are
// the player-event callbacks and the periodic stats task").
func broadcastStats(sessions *session.Manager, collector *stats.Collector, logger logging.Logger) {
	snap, err := collector.Persist()
	if err != nil {
		logger.Warnw("persisting stats snapshot", "error", err)
		return
	}
	for _, sess := range sessions.Sessions() {
		sess.Channel.Send(notify.Message{Op: notify.OpStats, SessionID: sess.ID, Stats: snap})
	}
}
