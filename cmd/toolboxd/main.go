package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/activity"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/api"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/config"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/eval"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/logbuf"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/memory"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/shellexec"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/tool"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/workspace"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/pkg/protocol"
)

func main() {
	configPath := flag.String("config", os.Getenv("TOOLBOX_CONFIG"), "Path to config file (JSON or YAML)")
	workDir := flag.String("workspace", "", "Workspace root (overrides config)")
	host := flag.String("host", "", "Bind host (overrides config)")
	port := flag.Int("port", 0, "Bind port (overrides config)")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	// Logging: JSON to stdout, teed into a ring served at /api/logs. The
	// level is settled once the config is loaded.
	level := new(slog.LevelVar)
	logBuf := logbuf.New(2000)
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(logbuf.NewHandler(jsonHandler, logBuf))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	config.FromEnv(cfg)
	if *workDir != "" {
		cfg.Workspace.Root = *workDir
	}
	if *host != "" {
		cfg.API.Host = *host
	}
	if *port != 0 {
		cfg.API.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	level.Set(logLevel(cfg.Log.Level, *verbose))

	ws, err := workspace.New(cfg.Workspace.Root)
	if err != nil {
		logger.Error("failed to open workspace", "root", cfg.Workspace.Root, "error", err)
		os.Exit(1)
	}
	logger.Info("toolboxd starting", "workspace", ws.Root())

	reg := tool.NewRegistry()
	reg.Register(&tool.CalculatorTool{Eval: eval.New()})
	reg.Register(&tool.DatetimeTool{})
	reg.Register(&tool.ShellCommandTool{Runner: &shellexec.Runner{Dir: ws.Root()}})
	reg.Register(&tool.ReadFileTool{WS: ws})
	reg.Register(&tool.WriteFileTool{WS: ws})
	reg.Register(&tool.EditFileTool{WS: ws})
	reg.Register(&tool.ListDirTool{WS: ws})
	reg.Register(&tool.WebSearchTool{BaseURL: cfg.Web.SearchBaseURL})
	reg.Register(&tool.WebFetchTool{
		Client: &http.Client{Timeout: time.Duration(cfg.Web.FetchTimeoutSeconds) * time.Second},
	})

	var store *memory.Store
	if cfg.Memory.Path != "" {
		store, err = memory.Open(cfg.Memory.Path)
		if err != nil {
			logger.Error("failed to open memory store", "path", cfg.Memory.Path, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		reg.Register(&tool.MemoryReadTool{Store: store})
		reg.Register(&tool.MemoryWriteTool{Store: store})
		reg.Register(&tool.MemoryListTool{Store: store})
		reg.Register(&tool.MemoryDeleteTool{Store: store})
	}

	ring := activity.NewLog(cfg.Log.ActivitySize)
	disp := tool.NewDispatcher(reg,
		tool.WithLogger(logger),
		tool.WithActivityLog(ring),
		tool.WithRateLimit(cfg.Shell.RateLimitPerMin),
	)
	logger.Info("tools registered", "count", reg.Len(), "memory", store != nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	srv := api.NewServer(
		&runtimeService{reg: reg, disp: disp, ring: ring},
		api.Config{Host: cfg.API.Host, Port: cfg.API.Port, Key: cfg.API.Key},
		logger.With("component", "api"),
		logBuf,
	)
	if err := srv.Start(ctx); err != nil {
		logger.Error("api server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("toolboxd stopped")
}

func logLevel(level string, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// runtimeService implements api.ToolService over the wired runtime.
type runtimeService struct {
	reg  *tool.Registry
	disp *tool.Dispatcher
	ring *activity.Log
}

func (s *runtimeService) Definitions() []protocol.ToolDefinition {
	return s.reg.Definitions()
}

func (s *runtimeService) DispatchCall(ctx context.Context, call protocol.ToolCall) string {
	return s.disp.DispatchCall(ctx, call)
}

func (s *runtimeService) QueryActivity(since time.Time, onlyFailed bool, limit int) []activity.Record {
	return s.ring.Query(since, onlyFailed, limit)
}
