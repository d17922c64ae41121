package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/rubertaxi/game/config"
	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/game/service"
	"github.com/wricardo/mcp-training/rubertaxi/game/tilemap"
	rtws "github.com/wricardo/mcp-training/rubertaxi/transport/websocket"
)

// Source produces one snapshot per frame from the player's input
type Source interface {
	Update(in engine.Input) engine.Snapshot
	Reset() error
	Grid() *tilemap.Grid
	Title() string
	Close() error
}

// localSource runs the engine in-process, one tick per frame
type localSource struct {
	engine *engine.GameEngine
	title  string
}

func newLocalSource(cfg *engine.GameConfig) (*localSource, error) {
	e, err := engine.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return &localSource{engine: e, title: cfg.Name}, nil
}

func (s *localSource) Update(in engine.Input) engine.Snapshot { return s.engine.Step(in) }

func (s *localSource) Reset() error {
	s.engine.Reset()
	return nil
}

func (s *localSource) Grid() *tilemap.Grid { return s.engine.Grid() }
func (s *localSource) Title() string       { return s.title }
func (s *localSource) Close() error        { return nil }

// remoteSource plays a server session over the WebSocket feed. The server's
// driver owns the clock; the client only sends held keys when they change
// and renders the latest broadcast snapshot.
type remoteSource struct {
	baseURL   string
	sessionID string
	title     string
	grid      *tilemap.Grid
	http      *http.Client
	conn      *websocket.Conn
	logger    zerolog.Logger

	mu       sync.Mutex
	snap     engine.Snapshot
	readErr  error
	lastSent engine.Input
	sent     bool
}

// dialRemote loads the session, resolves its map from the local config
// directory and subscribes to its feed
func dialRemote(ctx context.Context, baseURL, sessionID string, configs *config.Manager, logger zerolog.Logger) (*remoteSource, error) {
	s := &remoteSource{
		baseURL:   strings.TrimRight(baseURL, "/"),
		sessionID: sessionID,
		http:      &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}

	var info service.SessionInfo
	if err := s.call(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(sessionID), &info); err != nil {
		return nil, err
	}

	// Inline maps travel with the session; map files must exist locally.
	cfg, err := configs.LoadConfig(info.ConfigName)
	if err != nil {
		if info.GameConfig == nil || len(info.GameConfig.Map) == 0 {
			return nil, fmt.Errorf("session %s uses config %q which is not available locally: %w", sessionID, info.ConfigName, err)
		}
		cfg = info.GameConfig
	}
	if s.grid, err = cfg.LoadGrid(); err != nil {
		return nil, err
	}
	s.title = fmt.Sprintf("%s (session %s)", cfg.Name, info.ID)
	s.snap = info.Snapshot

	wsURL, err := feedURL(s.baseURL, sessionID)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	s.conn = conn

	go s.listen()
	return s, nil
}

// feedURL turns the server base URL into the /ws address of a session
func feedURL(baseURL, sessionID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"session": {sessionID}}.Encode()
	return u.String(), nil
}

func (s *remoteSource) call(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (s *remoteSource) listen() {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			s.readErr = err
			s.mu.Unlock()
			s.logger.Warn().Err(err).Str("session", s.sessionID).Msg("feed closed")
			return
		}

		var msg rtws.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Debug().Err(err).Msg("ignoring malformed feed message")
			continue
		}
		if msg.Event != rtws.EventStateUpdate || msg.Snapshot == nil {
			continue
		}

		s.mu.Lock()
		s.snap = *msg.Snapshot
		s.mu.Unlock()
	}
}

func (s *remoteSource) Update(in engine.Input) engine.Snapshot {
	s.mu.Lock()
	snap := s.snap
	failed := s.readErr != nil
	changed := !s.sent || in != s.lastSent
	s.mu.Unlock()

	if failed {
		snap.Message = "Disconnected from server"
		return snap
	}
	if changed {
		if err := s.send(in); err != nil {
			s.logger.Warn().Err(err).Msg("failed to send input")
		}
	}
	return snap
}

func (s *remoteSource) send(in engine.Input) error {
	data, err := json.Marshal(rtws.ClientMessage{Type: rtws.EventInput, Input: in})
	if err != nil {
		return err
	}
	s.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}

	s.mu.Lock()
	s.lastSent = in
	s.sent = true
	s.mu.Unlock()
	return nil
}

func (s *remoteSource) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var resp struct {
		Snapshot engine.Snapshot `json:"snapshot"`
	}
	if err := s.call(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(s.sessionID)+"/reset", &resp); err != nil {
		return err
	}
	s.mu.Lock()
	s.snap = resp.Snapshot
	s.mu.Unlock()
	return nil
}

func (s *remoteSource) Grid() *tilemap.Grid { return s.grid }
func (s *remoteSource) Title() string       { return s.title }

func (s *remoteSource) Close() error {
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}
