package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/activity"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/config"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/eval"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/memory"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/shellexec"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/tool"
	"github.com/shyamsridhar123/AlltheVibes-WildHackathon/internal/workspace"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "tools":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: toolboxctl tools <list|describe>")
			os.Exit(1)
		}
		switch os.Args[2] {
		case "list":
			cmdToolsList(os.Args[3:])
		case "describe":
			if len(os.Args) < 4 {
				fmt.Fprintln(os.Stderr, "usage: toolboxctl tools describe <name>")
				os.Exit(1)
			}
			cmdToolsDescribe(os.Args[3], os.Args[4:])
		default:
			fmt.Fprintf(os.Stderr, "unknown tools subcommand: %s\n", os.Args[2])
			os.Exit(1)
		}
	case "call":
		cmdCall(os.Args[2:])
	case "eval":
		cmdEval(os.Args[2:])
	case "run":
		cmdRun(os.Args[2:])
	case "repl":
		cmdRepl(os.Args[2:])
	case "activity":
		cmdActivity(os.Args[2:])
	case "config":
		if len(os.Args) < 4 || os.Args[2] != "validate" {
			fmt.Fprintln(os.Stderr, "usage: toolboxctl config validate <path>")
			os.Exit(1)
		}
		cmdConfigValidate(os.Args[3])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// --- runtime construction ---

// runtime bundles the wired tool surface for one CLI invocation.
type runtime struct {
	cfg      *config.Config
	ws       *workspace.Workspace
	store    *memory.Store
	reg      *tool.Registry
	disp     *tool.Dispatcher
	activity *activity.Log
}

func (rt *runtime) Close() {
	if rt.store != nil {
		rt.store.Close()
	}
}

type commonFlags struct {
	cfgPath *string
	workDir *string
	verbose *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		cfgPath: fs.String("config", envOr("TOOLBOX_CONFIG", ""), "Config file (JSON or YAML)"),
		workDir: fs.String("workspace", "", "Workspace root (overrides config and TOOLBOX_WORKSPACE)"),
		verbose: fs.Bool("v", false, "Debug logging"),
	}
}

func (c commonFlags) newRuntime() *runtime {
	cfg, err := loadConfig(*c.cfgPath, *c.workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	rt, err := buildRuntime(cfg, newLogger(cfg.Log.Level, *c.verbose))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return rt
}

func loadConfig(path, workDir string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	config.FromEnv(cfg)
	if workDir != "" {
		cfg.Workspace.Root = workDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildRuntime(cfg *config.Config, logger *slog.Logger) (*runtime, error) {
	ws, err := workspace.New(cfg.Workspace.Root)
	if err != nil {
		return nil, err
	}

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
			return nil, err
		}
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

	return &runtime{cfg: cfg, ws: ws, store: store, reg: reg, disp: disp, activity: ring}, nil
}

func newLogger(level string, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// --- tools commands ---

func cmdToolsList(args []string) {
	fs := flag.NewFlagSet("tools list", flag.ExitOnError)
	cf := addCommonFlags(fs)
	fs.Parse(args)

	rt := cf.newRuntime()
	defer rt.Close()

	for _, name := range rt.reg.List() {
		marker := " "
		if tool.IsDangerous(name) {
			marker = "!"
		}
		t, _ := rt.reg.Get(name)
		fmt.Printf("%s %-22s %s\n", marker, name, t.Description())
	}
}

func cmdToolsDescribe(name string, args []string) {
	fs := flag.NewFlagSet("tools describe", flag.ExitOnError)
	cf := addCommonFlags(fs)
	fs.Parse(args)

	rt := cf.newRuntime()
	defer rt.Close()

	for _, def := range rt.reg.Definitions() {
		if def.Function.Name != name {
			continue
		}
		data, err := json.Marshal(def)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(prettyJSON(data))
		return
	}
	fmt.Fprintf(os.Stderr, "unknown tool: %s\n", name)
	os.Exit(1)
}

// --- dispatch commands ---

func cmdCall(args []string) {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintln(os.Stderr, "usage: toolboxctl call <tool> [--args '<json>'] [--workspace dir] [--timeout n]")
		os.Exit(1)
	}
	name := args[0]

	fs := flag.NewFlagSet("call", flag.ExitOnError)
	rawArgs := fs.String("args", "{}", "Tool arguments as a JSON object")
	timeout := fs.Int("timeout", 0, "Overall timeout in seconds (0 = none)")
	cf := addCommonFlags(fs)
	fs.Parse(args[1:])

	var params map[string]any
	if err := json.Unmarshal([]byte(*rawArgs), &params); err != nil {
		fmt.Fprintf(os.Stderr, "error: --args is not a JSON object: %v\n", err)
		os.Exit(1)
	}

	rt := cf.newRuntime()
	defer rt.Close()

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(*timeout)*time.Second)
		defer cancel()
	}

	fmt.Println(prettyJSON([]byte(rt.disp.Dispatch(ctx, name, params))))
}

func cmdEval(args []string) {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintln(os.Stderr, "usage: toolboxctl eval '<expression>'")
		os.Exit(1)
	}
	expression := args[0]

	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	cf := addCommonFlags(fs)
	fs.Parse(args[1:])

	rt := cf.newRuntime()
	defer rt.Close()

	result := rt.disp.Dispatch(context.Background(), "calculator", map[string]any{"expression": expression})
	fmt.Println(prettyJSON([]byte(result)))
}

func cmdRun(args []string) {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintln(os.Stderr, "usage: toolboxctl run '<command>' [--timeout n]")
		os.Exit(1)
	}
	command := args[0]

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	timeout := fs.Int("timeout", 0, "Command timeout in seconds (1-60)")
	cf := addCommonFlags(fs)
	fs.Parse(args[1:])

	rt := cf.newRuntime()
	defer rt.Close()

	params := map[string]any{"command": command}
	switch {
	case *timeout > 0:
		params["timeout"] = *timeout
	case rt.cfg.Shell.TimeoutSeconds > 0:
		params["timeout"] = rt.cfg.Shell.TimeoutSeconds
	}

	result := rt.disp.Dispatch(context.Background(), "shell_command", params)
	fmt.Println(prettyJSON([]byte(result)))
}

// --- activity ---

func cmdActivity(args []string) {
	fs := flag.NewFlagSet("activity", flag.ExitOnError)
	failed := fs.Bool("failed", false, "Show only failed invocations")
	limit := fs.Int("limit", 20, "Max records")
	cf := addCommonFlags(fs)
	fs.Parse(args)

	rt := cf.newRuntime()
	defer rt.Close()

	printActivity(rt.activity.Query(time.Time{}, *failed, *limit))
}

func printActivity(records []activity.Record) {
	if len(records) == 0 {
		fmt.Println("no tool invocations recorded")
		return
	}
	for _, r := range records {
		status := "ok"
		if !r.OK {
			status = "fail"
		}
		line := fmt.Sprintf("%s  %-4s %-22s %6dms  %s",
			r.Time.Format(time.RFC3339), status, r.Tool, r.Duration.Milliseconds(), r.CallID)
		if r.Summary != "" {
			line += "  " + r.Summary
		}
		fmt.Println(line)
	}
}

// --- repl ---

func cmdRepl(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	cf := addCommonFlags(fs)
	fs.Parse(args)

	rt := cf.newRuntime()
	defer rt.Close()

	fmt.Println("toolboxctl interactive mode (type 'quit' to exit, 'help' for commands)")
	fmt.Printf("Workspace: %s | Tools: %s\n\n", rt.ws.Root(), strings.Join(rt.reg.List(), ", "))

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		replLine(ctx, rt, line)
	}
}

func replLine(ctx context.Context, rt *runtime, line string) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		fmt.Println("  tools                  list registered tools")
		fmt.Println("  eval <expression>      evaluate an expression")
		fmt.Println("  run <command>          run an allowlisted command")
		fmt.Println("  call <tool> [<json>]   dispatch a tool with JSON arguments")
		fmt.Println("  activity [failed]      show recent invocations")
		fmt.Println("  quit                   leave")
	case "tools":
		for _, name := range rt.reg.List() {
			marker := " "
			if tool.IsDangerous(name) {
				marker = "!"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
	case "eval":
		if rest == "" {
			fmt.Println("usage: eval <expression>")
			return
		}
		result := rt.disp.Dispatch(ctx, "calculator", map[string]any{"expression": rest})
		fmt.Println(prettyJSON([]byte(result)))
	case "run":
		if rest == "" {
			fmt.Println("usage: run <command>")
			return
		}
		result := rt.disp.Dispatch(ctx, "shell_command", map[string]any{"command": rest})
		fmt.Println(prettyJSON([]byte(result)))
	case "call":
		name, rawArgs, _ := strings.Cut(rest, " ")
		if name == "" {
			fmt.Println("usage: call <tool> [<json>]")
			return
		}
		params := map[string]any{}
		rawArgs = strings.TrimSpace(rawArgs)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &params); err != nil {
				fmt.Printf("arguments are not a JSON object: %v\n", err)
				return
			}
		}
		fmt.Println(prettyJSON([]byte(rt.disp.Dispatch(ctx, name, params))))
	case "activity":
		printActivity(rt.activity.Query(time.Time{}, rest == "failed", 20))
	default:
		fmt.Printf("unknown command: %s (try 'help')\n", cmd)
	}
}

// --- config ---

func cmdConfigValidate(path string) {
	if _, err := config.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("config is valid")
}

// --- helpers ---

func prettyJSON(data []byte) string {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	out, _ := json.MarshalIndent(v, "", "  ")
	return string(out)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printUsage() {
	fmt.Println("toolboxctl - sandboxed tool runtime CLI")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  tools list             List registered tools (! marks dangerous)")
	fmt.Println("  tools describe <name>  Show a tool definition as JSON")
	fmt.Println("  call <tool>            Dispatch a tool (--args '<json>', --timeout n)")
	fmt.Println("  eval '<expression>'    Evaluate an expression with the calculator")
	fmt.Println("  run '<command>'        Run an allowlisted shell command (--timeout n)")
	fmt.Println("  repl                   Interactive session")
	fmt.Println("  activity               Show recorded invocations (--failed, --limit n)")
	fmt.Println("  config validate <p>    Validate a config file")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  TOOLBOX_CONFIG         Config file path")
	fmt.Println("  TOOLBOX_WORKSPACE      Workspace root (default: current directory)")
	fmt.Println("  TOOLBOX_SHELL_TIMEOUT  Shell timeout in seconds")
	fmt.Println("  TOOLBOX_MEMORY_PATH    SQLite file for memory tools (unset disables them)")
	fmt.Println("  TOOLBOX_LOG_LEVEL      debug, info, warn or error")
}
