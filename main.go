// Command rubertaxi runs the Ruber Taxi game server.
//
// Subcommands:
//  1. "server" (default) runs the HTTP server exposing the REST API, the
//     real-time WebSocket feed and an /mcp HTTP endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API
//     if none is available
//  3. "simulate" drives a headless engine and prints the final snapshot
//  4. "scores" prints the high-score table
//
// Settings come from defaults, an optional settings file, RUBER_* variables
// and finally flags. An optional ngrok tunnel exposes the server publicly.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/rubertaxi/api"
	"github.com/wricardo/mcp-training/rubertaxi/game/config"
	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/game/highscore"
	"github.com/wricardo/mcp-training/rubertaxi/game/service"
	"github.com/wricardo/mcp-training/rubertaxi/game/session"
	"github.com/wricardo/mcp-training/rubertaxi/logging"
	"github.com/wricardo/mcp-training/rubertaxi/settings"
	"github.com/wricardo/mcp-training/rubertaxi/transport/mcp"
	"github.com/wricardo/mcp-training/rubertaxi/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Ruber Taxi Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	envErr := godotenv.Load()

	cmd := newCommand()
	cmd.Before = func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if envErr != nil && !os.IsNotExist(envErr) {
			fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", envErr)
		}
		return ctx, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "rubertaxi: %v\n", err)
		os.Exit(1)
	}
}

// newCommand builds the command tree
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "rubertaxi",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Usage:   "settings file (json, yaml or toml)",
				Sources: cli.EnvVars("RUBER_SETTINGS"),
			},
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
			&cli.StringFlag{Name: "config-dir", Usage: "directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "scores", Usage: "high-score database (sqlite path or postgres:// DSN)"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run the HTTP server with API, WebSocket and MCP endpoint",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel"},
					&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
					&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
				},
				Action: runServerCommand,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "run an MCP stdio server backed by the REST API",
				Action:  runStdioMCPCommand,
			},
			{
				Name:  "simulate",
				Usage: "drive a headless taxi and print the final snapshot",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "config ID (defaults to the server default)"},
					&cli.IntFlag{Name: "ticks", Value: 600, Usage: "ticks to run"},
					&cli.StringFlag{Name: "input", Value: "accelerate", Usage: "comma separated controls, e.g. accelerate,steer_left"},
				},
				Action: runSimulateCommand,
			},
			{
				Name:  "scores",
				Usage: "print the high-score table",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "only runs on this config"},
					&cli.IntFlag{Name: "limit", Value: service.DefaultScoreLimit, Usage: "maximum entries"},
				},
				Action: runScoresCommand,
			},
		},
		Action: runServerCommand,
	}
}

// loadSettings merges the settings file and environment with any flags the
// user set explicitly
func loadSettings(cmd *cli.Command) (*settings.Settings, error) {
	s, err := settings.Load(cmd.String("settings"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		s.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		s.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("config-dir") {
		s.ConfigDir = cmd.String("config-dir")
	}
	if cmd.IsSet("scores") {
		s.ScoresDSN = cmd.String("scores")
	}
	if cmd.Bool("debug") {
		s.LogLevel = "debug"
	}
	if cmd.Bool("ngrok") {
		s.Ngrok.Enabled = true
	}
	if token := cmd.String("ngrok-auth"); token != "" {
		s.Ngrok.AuthToken = token
	}
	if domain := cmd.String("ngrok-domain"); domain != "" {
		s.Ngrok.Domain = domain
	}

	return s, s.Validate()
}

func newLogger(s *settings.Settings) zerolog.Logger {
	return logging.New(logging.Options{Level: s.LogLevel, Pretty: s.LogPretty})
}

// services holds everything the server modes share
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence *session.FilePersistence
	configs     *config.Manager
	scores      *highscore.Store
}

// Close releases the score database
func (s *services) Close() error {
	if s.scores == nil {
		return nil
	}
	return s.scores.Close()
}

// initializeServices wires config and session managers, the score store and
// the game service
func initializeServices(s *settings.Settings, logger zerolog.Logger) (*services, error) {
	// Create config manager first (needed for persistence)
	configManager, err := config.NewManager(s.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(s.SessionsDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence, logging.Component(logger, "session"))

	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logger.Warn().Err(err).Msg("failed to load persisted sessions")
	}

	scores, err := highscore.Open(s.ScoresDSN, logging.Component(logger, "highscore"))
	if err != nil {
		return nil, err
	}

	gameService := service.NewGameService(sessionManager, configManager,
		service.WithScoreStore(scores),
		service.WithLogger(logging.Component(logger, "service")),
		service.WithMeter(otel.Meter(service.MeterName)),
	)

	return &services{
		game:        gameService,
		sessions:    sessionManager,
		persistence: persistence,
		configs:     configManager,
		scores:      scores,
	}, nil
}

// startBackground runs session housekeeping until ctx is done
func (svc *services) startBackground(ctx context.Context, maxAge time.Duration, logger zerolog.Logger) {
	go sessionCleanupRoutine(ctx, svc.sessions, maxAge, logger)
	go filesystemSyncRoutine(ctx, svc.sessions, svc.persistence, logger)
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within maxAge
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, maxAge time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				logger.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// filesystemSyncRoutine drops sessions from memory whose files were deleted
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, logger zerolog.Logger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pruned := 0
		for _, sess := range manager.List() {
			if !persistence.Exists(sess.ID) {
				if err := manager.DeleteFromMemory(sess.ID); err == nil {
					pruned++
					logger.Debug().Str("session", sess.ID).Msg("pruned session from memory (file deleted)")
				}
			}
		}

		if pruned > 0 {
			logger.Info().Int("pruned", pruned).Msg("filesystem sync")
		}
	}
}

// mcpHandler serves MCP JSON-RPC messages over plain HTTP POST
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

func runServerCommand(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(s)
	logger.Info().Str("version", Version).Msg("starting " + AppName)

	svc, err := initializeServices(s, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	return runHTTPServer(ctx, s, svc, logger)
}

// runHTTPServer starts the HTTP server with the REST API, the real-time
// WebSocket driver and an /mcp proxy endpoint, plus the ngrok tunnel when
// enabled
func runHTTPServer(ctx context.Context, s *settings.Settings, svc *services, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc.startBackground(ctx, s.SessionMaxAge, logger)

	hub := websocket.NewHub(logging.Component(logger, "websocket"))
	go hub.Run(ctx)

	driver := websocket.NewDriver(svc.game, hub, s.TickInterval(), logging.Component(logger, "driver"))
	go driver.Run(ctx)

	apiServer := api.NewServer(svc.game, hub, logging.Component(logger, "api"))

	addr := s.Addr()
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info().
			Str("addr", addr).
			Str("api", fmt.Sprintf("http://%s/api", addr)).
			Str("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if s.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, s.Ngrok, mainRouter, logging.Component(logger, "ngrok"))
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case err := <-serveErr:
		cancel()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if err := svc.sessions.SaveAllSessions(); err != nil {
		logger.Error().Err(err).Msg("failed to save sessions on shutdown")
	}

	wg.Wait()
	logger.Info().Msg("server stopped")
	return nil
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx ends
func runNgrokTunnel(ctx context.Context, cfg settings.NgrokSettings, handler http.Handler, logger zerolog.Logger) {
	if cfg.AuthToken == "" {
		logger.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or RUBER_NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		logger.Info().Str("domain", cfg.Domain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		logger.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	logger.Info().
		Str("url", ngrokURL).
		Str("api", ngrokURL+"/api").
		Str("websocket", ngrokURL+"/ws?session=<session_id>").
		Str("mcp", ngrokURL+"/mcp").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error().Err(err).Msg("ngrok server error")
	}
	logger.Info().Msg("ngrok tunnel closed")
}

func runStdioMCPCommand(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(s)

	svc, err := initializeServices(s, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	return runStdioMCPWithInternalServer(ctx, s, svc, logger)
}

// externalAPIAvailable reports whether a server already answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses an
// external API at the configured address if one answers; otherwise it starts
// an internal HTTP API on a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, s *settings.Settings, svc *services, logger zerolog.Logger) error {
	externalURL := fmt.Sprintf("http://%s", s.Addr())
	baseURL := externalURL

	if externalAPIAvailable(externalURL) {
		logger.Info().Str("url", externalURL).Msg("external API server found, using it for MCP")
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub(logging.Component(logger, "websocket"))
		go hub.Run(ctx)

		httpServer := &http.Server{
			Handler: api.NewServer(svc.game, hub, logging.Component(logger, "api")),
		}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		logger.Info().Str("url", baseURL).Msg("started internal HTTP server for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info().Msg("MCP stdio server ready")

	if err := mcpClient.Run(); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// parseInput turns "accelerate,steer_left" into an engine input
func parseInput(spec string) (engine.Input, error) {
	var in engine.Input
	for _, part := range strings.Split(spec, ",") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "":
		case "accelerate", "w":
			in.Accelerate = true
		case "reverse", "s":
			in.Reverse = true
		case "brake", "x":
			in.Brake = true
		case "steer_left", "left", "a":
			in.SteerLeft = true
		case "steer_right", "right", "d":
			in.SteerRight = true
		case "handbrake", "space":
			in.Handbrake = true
		case "interact", "e":
			in.Interact = true
		case "toggle_jobs", "j":
			in.ToggleJobs = true
		default:
			return engine.Input{}, fmt.Errorf("unknown control %q", part)
		}
	}
	return in, nil
}

// simulate runs ticks steps of in on a fresh engine. Edge controls fire on
// the first step only.
func simulate(gameConfig *engine.GameConfig, in engine.Input, ticks int) (engine.Snapshot, []engine.Event, error) {
	eng, err := engine.NewEngine(gameConfig)
	if err != nil {
		return engine.Snapshot{}, nil, err
	}

	snap := eng.Snapshot()
	var events []engine.Event
	for i := 0; i < ticks; i++ {
		step := in
		if i > 0 {
			step = in.Levels()
		}
		snap = eng.Step(step)
		events = append(events, snap.Events...)
		if snap.Starved {
			break
		}
	}
	return snap, events, nil
}

func runSimulateCommand(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	configs, err := config.NewManager(s.ConfigDir)
	if err != nil {
		return err
	}

	gameConfig := configs.GetDefault()
	if id := cmd.String("config"); id != "" {
		if gameConfig, err = configs.LoadConfig(id); err != nil {
			return err
		}
	}

	in, err := parseInput(cmd.String("input"))
	if err != nil {
		return err
	}

	snap, events, err := simulate(gameConfig, in, int(cmd.Int("ticks")))
	if err != nil {
		return err
	}
	snap.Events = events

	enc := json.NewEncoder(cmd.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func runScoresCommand(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	store, err := highscore.Open(s.ScoresDSN, newLogger(s))
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Top(ctx, cmd.String("config"), int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	if len(entries) == 0 {
		fmt.Fprintln(out, "No finished runs yet")
		return nil
	}
	for i, e := range entries {
		fmt.Fprintf(out, "%2d. $%-5d %3d served  %-12s session %s run %d (%s)\n",
			i+1, e.Earned, e.Served, e.ConfigID, e.SessionID, e.Run, e.Reason)
	}
	return nil
}
