package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ibukiaudio/ibuki/internal/filterchain"
	"github.com/ibukiaudio/ibuki/internal/ibukierr"
	"github.com/ibukiaudio/ibuki/internal/player"
	"github.com/ibukiaudio/ibuki/internal/trackcodec"
	"github.com/ibukiaudio/ibuki/internal/transport"
)

func notImplementedErr() error {
	return ibukierr.New(ibukierr.KindUnsupported, "websocket handler not installed")
}

// GET /info
func (s *Server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, infoDTO{
		Version:        s.cfg.Version,
		Name:           s.cfg.Name,
		SourceManagers: []string{"direct_url"},
	})
}

// GET /decodetrack?track=<b64>
func (s *Server) handleDecodeTrack(c *gin.Context) {
	encoded := c.Query("track")
	if encoded == "" {
		abortWithError(c, ibukierr.New(ibukierr.KindInvalidParameter, "missing track query parameter"))
		return
	}
	track, err := trackcodec.Decode(encoded)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, trackToDTO(encoded, track))
}

// POST /decodetracks
func (s *Server) handleDecodeTracks(c *gin.Context) {
	var req decodeTracksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, ibukierr.Wrap(ibukierr.KindInvalidParameter, "invalid request body", err))
		return
	}
	out := make([]trackDTO, 0, len(req.Tracks))
	for _, encoded := range req.Tracks {
		track, err := trackcodec.Decode(encoded)
		if err != nil {
			abortWithError(c, err)
			return
		}
		out = append(out, trackToDTO(encoded, track))
	}
	c.JSON(http.StatusOK, out)
}

// GET /loadtracks?identifier=<s>
func (s *Server) handleLoadTracks(c *gin.Context) {
	identifier := c.Query("identifier")
	if identifier == "" {
		abortWithError(c, ibukierr.New(ibukierr.KindInvalidParameter, "missing identifier query parameter"))
		return
	}

	chain := filterchain.Empty()
	holder := filterchain.NewHolder(chain)
	fs, err := s.compose.Create(c.Request.Context(), identifier, holder)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer fs.Close()

	track := &trackcodec.Track{
		Title:      identifier,
		Author:     "unknown",
		Identifier: identifier,
		SourceName: "direct",
		URI:        &identifier,
		IsSeekable: true,
	}
	encoded := trackcodec.Encode(track)
	c.JSON(http.StatusOK, trackToDTO(encoded, track))
}

// GET /stats
func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.stats.Collect())
}

// GET /sessions/{sid}
func (s *Server) handleGetSession(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("sid"))
	if !ok {
		abortWithError(c, ibukierr.New(ibukierr.KindInvalidParameter, "unknown session"))
		return
	}
	c.JSON(http.StatusOK, sessionDTO{
		SessionID:            sess.ID,
		ResumeEnabled:        true,
		ResumeTimeoutSeconds: int(s.cfg.ResumeDefaultTimeout.Seconds()),
	})
}

// DELETE /sessions/{sid}/players/{gid}
func (s *Server) handleDeletePlayer(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("sid"))
	if !ok {
		abortWithError(c, ibukierr.New(ibukierr.KindInvalidParameter, "unknown session"))
		return
	}
	guildID := c.Param("gid")
	p, ok := sess.PlayerIfExists(guildID)
	if !ok {
		abortWithError(c, ibukierr.New(ibukierr.KindInvalidParameter, "unknown player"))
		return
	}
	p.Disconnect()
	sess.RemovePlayer(guildID)
	c.Status(http.StatusNoContent)
}

// PATCH /sessions/{sid} — resume config. The current session implementation
// applies resume timeout/enablement at Detach time (session.Manager.Detach
// takes them as call parameters rather than stored session state), so this
// handler validates the session exists and echoes back the requested
// values without storing them; internal/wsapi's read loop passes the
// AppConfig-level defaults to Detach whatever this PATCH sent.
func (s *Server) handlePatchSession(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("sid"))
	if !ok {
		abortWithError(c, ibukierr.New(ibukierr.KindInvalidParameter, "unknown session"))
		return
	}
	var req patchSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, ibukierr.Wrap(ibukierr.KindInvalidParameter, "invalid request body", err))
		return
	}
	resumeTimeout := s.cfg.ResumeDefaultTimeout
	if req.ResumeTimeoutSeconds != nil {
		resumeTimeout = time.Duration(*req.ResumeTimeoutSeconds) * time.Second
	}
	resumeEnabled := true
	if req.ResumeEnabled != nil {
		resumeEnabled = *req.ResumeEnabled
	}
	c.JSON(http.StatusOK, sessionDTO{
		SessionID:            sess.ID,
		ResumeEnabled:        resumeEnabled,
		ResumeTimeoutSeconds: int(resumeTimeout.Seconds()),
	})
}

// GET /sessions/{sid}/players
func (s *Server) handleListPlayers(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("sid"))
	if !ok {
		abortWithError(c, ibukierr.New(ibukierr.KindInvalidParameter, "unknown session"))
		return
	}
	players := sess.Players()
	out := make([]playerDTO, 0, len(players))
	for _, p := range players {
		out = append(out, snapshotToDTO("", p))
	}
	c.JSON(http.StatusOK, out)
}

// GET /sessions/{sid}/players/{gid}
func (s *Server) handleGetPlayer(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("sid"))
	if !ok {
		abortWithError(c, ibukierr.New(ibukierr.KindInvalidParameter, "unknown session"))
		return
	}
	guildID := c.Param("gid")
	p, ok := sess.PlayerIfExists(guildID)
	if !ok {
		abortWithError(c, ibukierr.New(ibukierr.KindInvalidParameter, "unknown player"))
		return
	}
	c.JSON(http.StatusOK, snapshotToDTO(guildID, p))
}

// PATCH /sessions/{sid}/players/{gid} — the main player-command endpoint
// (§6): connect, play, seek, pause, volume and filter updates all flow
// through here as independently-optional fields.
func (s *Server) handlePatchPlayer(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("sid"))
	if !ok {
		abortWithError(c, ibukierr.New(ibukierr.KindInvalidParameter, "unknown session"))
		return
	}
	guildID := c.Param("gid")

	var req patchPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, ibukierr.Wrap(ibukierr.KindInvalidParameter, "invalid request body", err))
		return
	}

	p := sess.Player(guildID, func() *player.Player {
		return player.New(sess.ID, guildID, filterchain.NewHolder(filterchain.Empty()), s.compose, sess.Channel, s.driverFactory, s.sched, s.cfg.PlayerUpdateInterval)
	})

	if req.Voice != nil {
		creds := transport.Credentials{Endpoint: req.Voice.Endpoint, Token: req.Voice.Token, SessionID: req.Voice.SessionID}
		if err := p.Connect(c.Request.Context(), creds); err != nil {
			abortWithError(c, err)
			return
		}
	}

	if req.Filters != nil {
		if err := p.SetFilters(req.Filters.toConfig()); err != nil {
			abortWithError(c, err)
			return
		}
	}

	noReplace := c.Query("noReplace") == "true"
	if req.Track != nil && req.Track.Encoded != nil {
		if !(noReplace && p.Snapshot().Active) {
			if err := p.Play(c.Request.Context(), *req.Track.Encoded); err != nil {
				abortWithError(c, err)
				return
			}
		}
	}

	if req.Paused != nil {
		p.Pause(*req.Paused)
	}
	if req.Volume != nil {
		p.SetVolume(*req.Volume)
	}
	if req.Position != nil {
		snap := p.Snapshot()
		if err := p.Seek(*req.Position, snap.LengthMs, snap.IsStream); err != nil {
			abortWithError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, snapshotToDTO(guildID, p))
}

func snapshotToDTO(guildID string, p *player.Player) playerDTO {
	snap := p.Snapshot()
	var track *string
	if snap.TrackBlob != "" {
		blob := snap.TrackBlob
		track = &blob
	}
	return playerDTO{
		GuildID:    guildID,
		Track:      track,
		PositionMs: snap.PositionMs,
		Paused:     snap.Paused,
		Volume:     snap.Volume,
		State:      string(snap.State),
	}
}

