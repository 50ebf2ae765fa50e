// Command fifteen serves the Fifteen Puzzle.
//
// It supports three commands:
//  1. "server" (default) – runs the HTTP server exposing the browser page, REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – plays one puzzle in the terminal
//
// Flags control host/port, config directory, session lifetime and debug
// logging. Every flag can also be set from the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/fifteen-puzzle/api"
	"github.com/wricardo/fifteen-puzzle/game/config"
	"github.com/wricardo/fifteen-puzzle/game/engine"
	"github.com/wricardo/fifteen-puzzle/game/service"
	"github.com/wricardo/fifteen-puzzle/game/session"
	"github.com/wricardo/fifteen-puzzle/metrics"
	"github.com/wricardo/fifteen-puzzle/transport/mcp"
	"github.com/wricardo/fifteen-puzzle/transport/websocket"
	"github.com/wricardo/fifteen-puzzle/tui"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Fifteen Puzzle Server"
)

// Defaults shared by the flags and the tests
const (
	defaultPort       = 8080
	defaultHost       = "localhost"
	defaultConfigDir  = "configs"
	defaultSessionTTL = 24 * time.Hour
	cleanupInterval   = time.Hour
	shutdownTimeout   = 10 * time.Second
)

// main loads .env, then runs the selected command.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// newCommand builds the command tree. Root flags are inherited by every
// subcommand.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "fifteen",
		Usage:   "Fifteen Puzzle server, MCP bridge and terminal game",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   defaultPort,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   defaultHost,
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   defaultConfigDir,
				Usage:   "Directory containing puzzle configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Value:   defaultSessionTTL,
				Usage:   "Remove sessions idle for longer than this",
				Sources: cli.EnvVars("SESSION_TTL"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with browser page, API, WebSocket, and MCP endpoint",
				Action:  runServer,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, with an internal HTTP server if needed",
				Action:  runStdioMCP,
			},
			{
				Name:  "play",
				Usage: "Play in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Usage: "Configuration to play (defaults to the directory's default)",
					},
					&cli.IntFlag{
						Name:  "steps",
						Usage: "Shuffle length (defaults to the configuration's)",
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Random seed for reproducible shuffles",
					},
				},
				Action: runPlay,
			},
		},
	}
}

// services bundles what the commands wire together
type services struct {
	puzzles  service.PuzzleService
	sessions *session.Manager
	configs  *config.Manager
}

// initializeServices wires session/config managers and the puzzle service
func initializeServices(configDir string, opts ...service.Option) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()

	return &services{
		puzzles:  service.NewPuzzleService(sessionManager, configManager, opts...),
		sessions: sessionManager,
		configs:  configManager,
	}, nil
}

// runServer starts the HTTP server with REST API, WebSocket hub, and an /mcp
// proxy endpoint, and keeps the config watcher and session cleanup running
// until the context is cancelled.
func runServer(ctx context.Context, cmd *cli.Command) error {
	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	log.Printf("Starting %s v%s (mode: server)", AppName, Version)

	hub := websocket.NewHub()
	svc, err := initializeServices(cmd.String("config-dir"), service.WithNotifier(hub))
	if err != nil {
		return err
	}

	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      newRouter(api.NewServer(svc.puzzles, hub), mcpClient),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Printf("HTTP server listening on %s", addr)
		log.Printf("Puzzle UI: http://%s/", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		sessionCleanupRoutine(gctx, svc.sessions, cleanupInterval, cmd.Duration("session-ttl"))
		return nil
	})

	watchDone, err := svc.configs.Watch(gctx)
	if err != nil {
		log.Printf("Warning: config hot reload disabled: %v", err)
	} else {
		g.Go(func() error {
			<-watchDone
			return nil
		})
	}

	err = g.Wait()
	svc.sessions.CleanupExpiredSessions(0)
	log.Println("Server stopped")
	return err
}

// newRouter mounts the API server at the root and the MCP endpoint at /mcp
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// mcpHandler answers MCP JSON-RPC messages posted over HTTP
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
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

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within maxAge
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanupSessions(manager, maxAge)
		}
	}
}

func cleanupSessions(manager *session.Manager, maxAge time.Duration) int {
	removed := manager.CleanupExpiredSessions(maxAge)
	if removed > 0 {
		log.Printf("Cleaned up %d expired sessions", removed)
	}
	metrics.SetActiveSessions(manager.Count())
	return removed
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening on
// host:port; otherwise it starts an internal HTTP API on a random loopback
// port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	externalURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), cmd.Int("port"))
	log.Printf("Checking for external API server at %s...", externalURL)

	baseURL := externalURL
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/healthz")
	if err == nil && resp.StatusCode == http.StatusOK {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		if resp != nil {
			resp.Body.Close()
		}
		log.Printf("No external API server found, starting internal HTTP server")

		internalURL, shutdown, err := startInternalServer(ctx, cmd.String("config-dir"))
		if err != nil {
			return err
		}
		defer shutdown()
		baseURL = internalURL
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// startInternalServer serves the API on a random loopback port until the
// returned shutdown func is called
func startInternalServer(ctx context.Context, configDir string) (string, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	svc, err := initializeServices(configDir, service.WithNotifier(hub))
	if err != nil {
		listener.Close()
		return "", nil, err
	}

	hubCtx, cancelHub := context.WithCancel(ctx)
	go hub.Run(hubCtx)

	httpServer := &http.Server{Handler: api.NewServer(svc.puzzles, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	addr := listener.Addr().String()
	log.Printf("Internal HTTP server on %s for MCP stdio", addr)

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
		cancelHub()
		svc.sessions.CleanupExpiredSessions(0)
	}
	return "http://" + addr, shutdown, nil
}

// runPlay plays one puzzle in the terminal
func runPlay(ctx context.Context, cmd *cli.Command) error {
	puzzleConfig := loadPlayConfig(cmd.String("config-dir"), cmd.String("config"))

	var opts []engine.Option
	if cmd.IsSet("seed") {
		opts = append(opts, engine.WithRand(rand.New(rand.NewSource(cmd.Int64("seed")))))
	}

	eng, err := engine.NewEngine(puzzleConfig, opts...)
	if err != nil {
		return fmt.Errorf("failed to create puzzle: %w", err)
	}

	var modelOpts []tui.Option
	if steps := cmd.Int("steps"); steps > 0 {
		modelOpts = append(modelOpts, tui.WithShuffleSteps(steps))
	}

	// Log lines would tear the alternate screen
	if !cmd.Bool("debug") {
		log.SetOutput(io.Discard)
	}

	program := tui.NewProgram(tui.New(eng, modelOpts...), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}

// loadPlayConfig picks the named configuration, the directory's default, or
// the built-in one, in that order
func loadPlayConfig(configDir, name string) *engine.PuzzleConfig {
	manager, err := config.NewManager(configDir)
	if err != nil {
		return engine.DefaultPuzzleConfig()
	}
	if name != "" {
		if puzzleConfig, err := manager.LoadConfig(name); err == nil {
			return puzzleConfig
		}
		log.Printf("Warning: config %q not found, using the default", name)
	}
	return manager.GetDefault()
}
