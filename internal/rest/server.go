// Package rest implements the §6 REST control surface: static-token auth,
// version-prefix validation, track-descriptor decode, identifier
// resolution, and player/session CRUD — grounded on the teacher's gin
// engine wiring (api/assistant-api/router) and gin-contrib/cors usage.
package rest

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ibukiaudio/ibuki/internal/compose"
	"github.com/ibukiaudio/ibuki/internal/logging"
	"github.com/ibukiaudio/ibuki/internal/player"
	"github.com/ibukiaudio/ibuki/internal/scheduler"
	"github.com/ibukiaudio/ibuki/internal/session"
	"github.com/ibukiaudio/ibuki/internal/stats"
)

// Server owns every dependency the §6 handlers need and wires them onto a
// gin.Engine.
type Server struct {
	cfg           ServerConfig
	logger        logging.Logger
	sessions      *session.Manager
	compose       *compose.Adapter
	driverFactory player.DriverFactory
	stats         *stats.Collector
	tokens        *session.TokenIssuer
	sched         *scheduler.Scheduler

	// websocketHandler is installed by cmd/ibuki via SetWebSocketHandler
	// once internal/wsapi constructs its upgrade handler — rest never
	// imports wsapi directly so the two packages can be wired in either
	// order from main().
	websocketHandler gin.HandlerFunc
}

// ServerConfig is the subset of AppConfig the REST layer needs.
type ServerConfig struct {
	RestToken            string
	Version              string
	Name                 string
	ResumeDefaultTimeout time.Duration

	// PlayerUpdateInterval paces each player's periodic PlayerUpdate tick
	// (§4.7), registered on sched at connect time.
	PlayerUpdateInterval time.Duration
}

func NewServer(
	cfg ServerConfig,
	logger logging.Logger,
	sessions *session.Manager,
	composeAdapter *compose.Adapter,
	driverFactory player.DriverFactory,
	statsCollector *stats.Collector,
	tokens *session.TokenIssuer,
	sched *scheduler.Scheduler,
) *Server {
	return &Server{
		cfg:           cfg,
		logger:        logger,
		sessions:      sessions,
		compose:       composeAdapter,
		driverFactory: driverFactory,
		stats:         statsCollector,
		tokens:        tokens,
		sched:         sched,
	}
}

// SetWebSocketHandler installs the upgrade handler for ANY /v{n}/websocket.
func (s *Server) SetWebSocketHandler(h gin.HandlerFunc) { s.websocketHandler = h }

// Engine builds the gin.Engine with every §6 route mounted.
func (s *Server) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	versioned := engine.Group("/:versionPrefix")
	versioned.Use(versionPrefixMiddleware(), authMiddleware(s.cfg.RestToken))

	versioned.GET("/info", s.handleInfo)
	versioned.GET("/decodetrack", s.handleDecodeTrack)
	versioned.POST("/decodetracks", s.handleDecodeTracks)
	versioned.GET("/loadtracks", s.handleLoadTracks)
	versioned.GET("/stats", s.handleStats)

	versioned.GET("/sessions/:sid", s.handleGetSession)
	versioned.PATCH("/sessions/:sid", s.handlePatchSession)
	versioned.GET("/sessions/:sid/players", s.handleListPlayers)
	versioned.GET("/sessions/:sid/players/:gid", s.handleGetPlayer)
	versioned.PATCH("/sessions/:sid/players/:gid", s.handlePatchPlayer)
	versioned.DELETE("/sessions/:sid/players/:gid", s.handleDeletePlayer)

	versioned.Any("/websocket", func(c *gin.Context) {
		if s.websocketHandler == nil {
			abortWithError(c, notImplementedErr())
			return
		}
		s.websocketHandler(c)
	})

	return engine
}
