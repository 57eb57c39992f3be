package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/mmcdole/roster/internal/config"
	"github.com/mmcdole/roster/internal/domain"
	"github.com/mmcdole/roster/internal/log"
	"github.com/mmcdole/roster/internal/metrics"
	"github.com/mmcdole/roster/internal/prompt"
	"github.com/mmcdole/roster/internal/remote"
	"github.com/mmcdole/roster/internal/session"
	"github.com/mmcdole/roster/internal/telemetry"
	"github.com/mmcdole/roster/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

const usage = `Usage: roster [flags] [command]

Commands:
  (none)        open the interactive UI (or list when not on a terminal)
  list          print every record (--match narrows by title)
  create        create a record (--title answers the prompt)
  edit <id>     change a record's title (--title answers the prompt)
  delete <id>   delete a record
  setup         configure the site URL and token
  logout        forget credentials and cached data
  version       print version

Flags:
`

// errOperationFailed is returned when a CLI operation was reported as failed
var errOperationFailed = errors.New("operation failed (see log for details)")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type cliFlags struct {
	configDir   string
	showVersion bool
	title       string
	titleSet    bool
	match       string
}

func parseFlags(args []string) (*pflag.FlagSet, *cliFlags, error) {
	f := &cliFlags{}
	fs := pflag.NewFlagSet("roster", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	config.RegisterFlags(fs)
	fs.StringVar(&f.configDir, "config-dir", "", "config directory (default ~/.config/roster)")
	fs.BoolVarP(&f.showVersion, "version", "v", false, "print version")
	fs.StringVar(&f.title, "title", "", "answer for the title prompt (create, edit)")
	fs.StringVar(&f.match, "match", "", "only list records whose title matches")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.titleSet = fs.Changed("title")
	return fs, f, nil
}

func run(args []string) error {
	fs, flags, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	command, cmdArgs := "", fs.Args()
	if len(cmdArgs) > 0 {
		command, cmdArgs = cmdArgs[0], cmdArgs[1:]
	}

	if flags.showVersion || command == "version" {
		fmt.Printf("roster %s\n", Version)
		return nil
	}

	// Load configuration
	cfgManager := config.NewManager(flags.configDir)
	cfg, err := cfgManager.Load(fs)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := log.SetupLogger(cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting roster", "version", Version, "command", command)

	interactive := prompt.IsTerminal(int(os.Stdin.Fd()))

	switch command {
	case "setup":
		return runSetupFlow(cfgManager, cfg, logger)
	case "logout":
		if err := session.Logout(cfgManager, cfg.Cache.Dir); err != nil {
			return err
		}
		fmt.Println("✓ Logged out")
		return nil
	}

	// Check if configured
	if !cfg.IsConfigured() {
		if !interactive {
			return errors.New("not configured: run `roster setup` or set ROSTER_SERVER_SITE_URL and ROSTER_SERVER_TOKEN")
		}
		return runSetupFlow(cfgManager, cfg, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		Protocol:    cfg.Tracing.Protocol,
		SampleRatio: cfg.Tracing.SampleRatio,
		Version:     Version,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer shutdown(context.Background())

	collector, err := metrics.NewCollector(nil)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := collector.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	client := remote.NewClient(cfg.Server.SiteURL, cfg.Server.Token, logger,
		remote.WithRecorder(collector),
		remote.WithTimeout(cfg.Server.Timeout),
	)

	deps := sessionDeps{cfg: cfg, client: client, recorder: collector, logger: logger}

	switch command {
	case "":
		if interactive {
			return runTUI(deps)
		}
		return runList(ctx, deps, flags.match, os.Stdout)
	case "list":
		return runList(ctx, deps, flags.match, os.Stdout)
	case "create":
		return runCreate(ctx, deps, answerer(flags), os.Stdout)
	case "edit":
		id, err := idArg(cmdArgs)
		if err != nil {
			return err
		}
		return runEdit(ctx, deps, answerer(flags), id, os.Stdout)
	case "delete":
		id, err := idArg(cmdArgs)
		if err != nil {
			return err
		}
		return runDelete(ctx, deps, id, os.Stdout)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func idArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one record id")
	}
	return remote.ParseID(args[0])
}

// sessionDeps holds what every command needs to open a session
type sessionDeps struct {
	cfg      *config.Config
	client   *remote.Client
	recorder session.Recorder
	logger   *slog.Logger
}

func (d sessionDeps) open(p domain.Prompter, r domain.Reporter) (*session.Session, error) {
	return session.Open(session.Options{
		Config:   d.cfg,
		Client:   d.client,
		Prompter: p,
		Reporter: r,
		Recorder: d.recorder,
		Logger:   d.logger,
	})
}

// runTUI runs the interactive Bubble Tea program
func runTUI(deps sessionDeps) error {
	prompter := tui.NewModalPrompter()
	observer := tui.NewChannelObserver()

	sess, err := deps.open(prompter, log.NewReporter(deps.logger))
	if err != nil {
		return err
	}
	defer sess.Close()

	unsubscribe := sess.Store.Subscribe(observer)
	defer unsubscribe()

	model := tui.NewModel(tui.Options{
		Service:    sess.Records,
		Snapshots:  observer.C(),
		Prompts:    prompter.Requests(),
		Collection: sess.Records.Collection(),
		Logger:     deps.logger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())

	deps.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		deps.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	deps.logger.Info("shutting down")
	return nil
}

// cliReporter logs failures and echoes them to the terminal
type cliReporter struct {
	log    *log.Reporter
	out    io.Writer
	failed bool
}

func (r *cliReporter) Report(ctx context.Context, op string, err error, sev domain.Severity) {
	r.failed = true
	r.log.Report(ctx, op, err, sev)
	fmt.Fprintf(r.out, "✗ %s failed: %v\n", op, err)
}

func (d sessionDeps) reporter() *cliReporter {
	return &cliReporter{log: log.NewReporter(d.logger), out: os.Stderr}
}

func (r *cliReporter) result() error {
	if r.failed {
		return errOperationFailed
	}
	return nil
}

// answerTracker remembers whether the user cancelled the prompt
type answerTracker struct {
	prompter  domain.Prompter
	cancelled bool
}

// Ask implements domain.Prompter
func (a *answerTracker) Ask(ctx context.Context, text string) (string, bool) {
	value, ok := a.prompter.Ask(ctx, text)
	if !ok {
		a.cancelled = true
	}
	return value, ok
}

// answerer returns the --title answer when given, otherwise a terminal prompt
func answerer(flags *cliFlags) *answerTracker {
	if flags.titleSet {
		return &answerTracker{prompter: prompt.Fixed{Value: flags.title}}
	}
	return &answerTracker{prompter: prompt.NewTerminal(os.Stdin, os.Stdout)}
}
