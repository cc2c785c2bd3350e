// Package ws serves the lobby over websockets, with a small JSON API beside it.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"fivehundred/internal/app"
	"fivehundred/internal/domain"
	"fivehundred/internal/view"
)

// Lobby is the part of app.Registry the port drives.
type Lobby interface {
	CreateSession(ctx context.Context, identity string, conn domain.Conn) (string, error)
	JoinSession(ctx context.Context, code, identity string, conn domain.Conn) error
	HandleUpdate(ctx context.Context, code, identity string, u view.Update) error
	OnDisconnect(ctx context.Context, code, identity string) error
	SessionExists(code string) bool
	IsFull(code string) bool
}

const (
	helloCreate = "create"
	helloJoin   = "join"
)

// hello is the first frame a client sends.
type hello struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Gamecode string `json:"gamecode"`
}

// Server accepts websocket players and hands their events to a Lobby.
type Server struct {
	lobby            Lobby
	origins          []string
	log              zerolog.Logger
	pingInterval     time.Duration
	handshakeTimeout time.Duration
	sendBuffer       int
}

type Option func(*Server)

// WithOrigins sets the host patterns allowed to open a socket from a browser.
func WithOrigins(patterns []string) Option { return func(s *Server) { s.origins = patterns } }

func WithLogger(l zerolog.Logger) Option { return func(s *Server) { s.log = l } }

func WithPingInterval(d time.Duration) Option { return func(s *Server) { s.pingInterval = d } }

func WithHandshakeTimeout(d time.Duration) Option {
	return func(s *Server) { s.handshakeTimeout = d }
}

func WithSendBuffer(n int) Option { return func(s *Server) { s.sendBuffer = n } }

func NewServer(lobby Lobby, opts ...Option) *Server {
	s := &Server{
		lobby:            lobby,
		log:              zerolog.Nop(),
		pingInterval:     15 * time.Second,
		handshakeTimeout: 10 * time.Second,
		sendBuffer:       64,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ServeWS upgrades the request, runs the hello handshake and then pumps updates
// until the socket fails.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		s.log.Debug().Err(err).Msg("websocket accept")
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := newClient(uuid.NewString(), conn, s.sendBuffer)
	go client.writeLoop(ctx, s.pingInterval)
	log := s.log.With().Str("conn", client.ID()).Logger()

	code, name, ok := s.handshake(ctx, client, log)
	if !ok {
		client.close()
		<-client.done
		return
	}
	log = log.With().Str("code", code).Str("user", name).Logger()
	log.Info().Msg("client connected")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		var u view.Update
		if err := json.Unmarshal(data, &u); err != nil {
			log.Debug().Err(err).Msg("bad update frame")
			continue
		}
		if err := s.lobby.HandleUpdate(ctx, code, name, u); err != nil {
			if errors.Is(err, app.ErrIllegalAction) {
				log.Debug().Err(err).Msg("illegal action")
				continue
			}
			log.Warn().Err(err).Msg("update failed")
		}
	}

	// The request context is gone by now; the disconnect still has to reach the session.
	if err := s.lobby.OnDisconnect(context.Background(), code, name); err != nil {
		log.Warn().Err(err).Msg("disconnect")
	}
	client.close()
	<-client.done
	log.Info().Msg("client disconnected")
}

func (s *Server) handshake(ctx context.Context, client *Client, log zerolog.Logger) (string, string, bool) {
	hctx, cancel := context.WithTimeout(ctx, s.handshakeTimeout)
	defer cancel()

	var h hello
	if err := wsjson.Read(hctx, client.conn, &h); err != nil {
		log.Debug().Err(err).Msg("read hello")
		return "", "", false
	}
	name := strings.TrimSpace(h.Username)
	code := strings.ToUpper(strings.TrimSpace(h.Gamecode))

	var err error
	switch h.Type {
	case helloCreate:
		code, err = s.lobby.CreateSession(ctx, name, client)
	case helloJoin:
		err = s.lobby.JoinSession(ctx, code, name, client)
	default:
		log.Debug().Str("type", h.Type).Msg("unknown hello")
		return "", "", false
	}

	status := statusFor(err)
	if err != nil && status == view.StatusOK {
		log.Error().Err(err).Str("hello", h.Type).Msg("handshake failed")
		return "", "", false
	}
	data, merr := view.Marshal(view.NewConnectResult(status, code))
	if merr != nil {
		log.Error().Err(merr).Msg("encode connect result")
		return "", "", false
	}
	if gerr := client.greet(data); gerr != nil {
		log.Warn().Err(gerr).Msg("send connect result")
	}
	if err != nil {
		log.Info().Str("status", string(status)).Str("hello", h.Type).Msg("connect refused")
		return "", "", false
	}
	return code, name, true
}

// statusFor maps a registry error to a connect-result status. Errors with no
// client-facing status map to StatusOK and are treated as internal failures.
func statusFor(err error) view.ConnectStatus {
	switch {
	case err == nil:
		return view.StatusOK
	case errors.Is(err, app.ErrNoSuchSession):
		return view.StatusNoSuchGame
	case errors.Is(err, app.ErrSessionFull):
		return view.StatusGameFull
	case errors.Is(err, app.ErrUsernameTaken):
		return view.StatusUsernameTaken
	case errors.Is(err, app.ErrInvalidUsername):
		return view.StatusInvalidUsername
	case errors.Is(err, app.ErrGameOver):
		return view.StatusGameOver
	default:
		return view.StatusOK
	}
}
