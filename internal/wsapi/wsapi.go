// Package wsapi implements the §6 notification-channel upgrade: the
// gorilla/websocket handshake, the §4.8 attach/resume handshake carried
// over request headers, and server-to-client delivery of the
// Ready/PlayerUpdate/Stats/Event frames notify.Message already models.
// Grounded on the teacher's (unexercised) gorilla/websocket upgrade in
// api/assistant-api/api/talk/webrtc.go: a package-level Upgrader with
// CheckOrigin always true, and a "marshal an error frame, write it, close"
// fallback on failure.
package wsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ibukiaudio/ibuki/internal/logging"
	"github.com/ibukiaudio/ibuki/internal/notify"
	"github.com/ibukiaudio/ibuki/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Resume headers, mirrored after the static-token REST auth already
// checked by the version-prefix/auth middleware chain before this handler
// runs: Session-Id carries the id a reconnecting listener claims, and
// Resume-Token the signed proof session.TokenIssuer minted for it.
const (
	headerSessionID   = "Session-Id"
	headerResumeToken = "Resume-Token"
)

// Config is the subset of AppConfig the websocket layer needs.
type Config struct {
	ResumeDefaultTimeout time.Duration
}

// Handler upgrades a request to the notification channel and drives its
// attach/resume/detach lifecycle (§4.8).
type Handler struct {
	cfg      Config
	sessions *session.Manager
	tokens   *session.TokenIssuer
	logger   logging.Logger
}

func New(cfg Config, sessions *session.Manager, tokens *session.TokenIssuer, logger logging.Logger) *Handler {
	return &Handler{cfg: cfg, sessions: sessions, tokens: tokens, logger: logger}
}

// Upgrade is mounted at ANY /v{n}/websocket via rest.Server.SetWebSocketHandler.
func (h *Handler) Upgrade(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	priorID := c.GetHeader(headerSessionID)
	resumeToken := c.GetHeader(headerResumeToken)

	resumeEnabled := false
	if priorID != "" && resumeToken != "" {
		verifiedID, verr := h.tokens.Verify(resumeToken)
		if verr == nil && verifiedID == priorID {
			resumeEnabled = true
		} else {
			h.logger.Warnw("rejecting resume token", "sessionId", priorID, "error", verr)
		}
	}

	result := h.sessions.Attach(priorID, resumeEnabled)
	sess := result.Session

	nextToken, err := h.tokens.Issue(sess.ID)
	if err != nil {
		h.logger.Errorw("issuing resume token", "sessionId", sess.ID, "error", err)
	}

	sess.Channel.Attach()

	ready := notify.Message{
		Op:          notify.OpReady,
		SessionID:   sess.ID,
		Resumed:     result.Resumed,
		ResumeToken: nextToken,
	}
	if err := writeMessage(conn, ready); err != nil {
		conn.Close()
		return
	}

	if result.Resumed {
		for _, msg := range sess.Channel.Drain() {
			if err := writeMessage(conn, msg); err != nil {
				conn.Close()
				return
			}
		}
	} else {
		sess.Channel.DropQueued()
	}

	ctx, cancel := context.WithCancel(context.Background())
	go h.writeLoop(ctx, conn, sess.Channel)
	h.readLoop(conn, sess, cancel)
}

// readLoop logs and discards every client frame (§6: "client-to-server
// frames are logged and ignored") until the connection errors or the
// client sends a close frame, then cancels the write loop and runs
// detach.
func (h *Handler) readLoop(conn *websocket.Conn, sess *session.Session, cancel context.CancelFunc) {
	graceful := false
	conn.SetCloseHandler(func(code int, text string) error {
		graceful = true
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType == websocket.TextMessage || msgType == websocket.BinaryMessage {
			h.logger.Debugw("ignoring client frame", "sessionId", sess.ID, "bytes", len(data))
		}
	}

	cancel()
	conn.Close()
	sess.Channel.Detach()
	h.sessions.Detach(sess.ID, graceful, true, h.cfg.ResumeDefaultTimeout)
}

// writeLoop delivers queued messages in order until the channel is closed
// (session destroyed), the write fails, or ctx is cancelled by the read
// loop noticing the connection is gone — cancellation stops this consumer
// from stealing a message meant for a later listener's resume replay.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, channel *notify.Channel) {
	for {
		msg, ok := channel.RecvCtx(ctx)
		if !ok {
			return
		}
		if err := writeMessage(conn, msg); err != nil {
			return
		}
	}
}

func writeMessage(conn *websocket.Conn, msg notify.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
