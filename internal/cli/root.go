// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/aisuite/internal/client"
	"github.com/jeranaias/aisuite/internal/config"
	"github.com/jeranaias/aisuite/internal/logging"
	"github.com/jeranaias/aisuite/internal/render"
	"github.com/jeranaias/aisuite/internal/state"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// APP
// =============================================================================

// App carries what every command needs. The zero value works once the
// root command's pre-run has loaded the config; tests replace the I/O,
// clock, config loader, HTTP client and clipboard.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	Now        func() time.Time
	LoadConfig func() (*config.Config, error)
	HTTPClient *http.Client
	Clipboard  func(string) error

	cfg      *config.Config
	logger   *zap.Logger
	renderer *render.Renderer
	store    *state.Store
	api      *client.Client

	flags rootFlags
}

type rootFlags struct {
	server    string
	csrfToken string
	color     string
	logLevel  string
	json      bool
	noHistory bool
}

// NewApp returns an App bound to the process streams.
func NewApp() *App {
	return &App{
		In:         os.Stdin,
		Out:        os.Stdout,
		Err:        os.Stderr,
		Now:        time.Now,
		LoadConfig: config.Load,
		Clipboard:  clipboard.WriteAll,
	}
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// setup loads config, applies flag overrides and builds the logger,
// renderer and state store.
func (a *App) setup(cmd *cobra.Command) error {
	load := a.LoadConfig
	if load == nil {
		load = config.Load
	}
	cfg, loadErr := load()
	if cfg == nil {
		return loadErr
	}

	if a.flags.server != "" {
		cfg.Server.URL = a.flags.server
	}
	if a.flags.csrfToken != "" {
		cfg.Server.CSRFToken = a.flags.csrfToken
	}
	if a.flags.color != "" {
		cfg.UI.Color = a.flags.color
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.noHistory {
		cfg.History.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	if loadErr != nil {
		logger.Warn("config load problem, using defaults", zap.Error(loadErr))
	}

	var opts render.Options
	if f, ok := a.Out.(*os.File); ok {
		opts = render.Detect(cfg.UI, f)
	} else {
		opts = render.Detect(cfg.UI, nil)
	}

	a.cfg = cfg
	a.logger = logger.Named("cli")
	a.renderer = render.New(a.Out, opts)
	a.store = state.NewStore(nil).WithLogger(logger)
	return nil
}

// client builds the API client on first use.
func (a *App) client() (*client.Client, error) {
	if a.api != nil {
		return a.api, nil
	}
	if err := a.cfg.RequireServer(); err != nil {
		return nil, err
	}
	c, err := client.NewFromConfig(a.cfg.Server, a.logger)
	if err != nil {
		return nil, err
	}
	if a.HTTPClient != nil {
		c.WithHTTPClient(a.HTTPClient)
	}
	a.api = c
	return c, nil
}

func (a *App) copyToClipboard(text string) error {
	if a.Clipboard == nil {
		return clipboard.WriteAll(text)
	}
	return a.Clipboard(text)
}

// emit prints data as a JSON envelope under --json, otherwise the text
// produced by view.
func (a *App) emit(cmd *cobra.Command, data any, view func() string) error {
	if a.flags.json {
		return NewJSONResponse(commandName(cmd), data, a.now()).Write(a.Out)
	}
	a.renderer.Print(view())
	return nil
}

func commandName(cmd *cobra.Command) string {
	return strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the aisuite command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "aisuite",
		Short: "Summaries, message formatting and action items from the terminal",
		Long: `aisuite talks to the AI suite plugin API of a chat server.

It summarizes threads and channels, previews and applies message
formatting profiles, and manages action items. "aisuite serve" runs a
local server with demo data for development.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}

	root.SetIn(app.In)
	root.SetOut(app.Out)
	root.SetErr(app.Err)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&app.flags.server, "server", "", "server URL (overrides server.url)")
	pf.StringVar(&app.flags.csrfToken, "csrf-token", "", "CSRF token sent with every request")
	pf.StringVar(&app.flags.color, "color", "", "color output: auto, always or never")
	pf.StringVar(&app.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&app.flags.json, "json", false, "print results as JSON")
	pf.BoolVar(&app.flags.noHistory, "no-history", false, "do not save summaries to the local history")

	root.AddCommand(
		newSummarizeCmd(app),
		newFormatCmd(app),
		newDiffCmd(app),
		newActionItemsCmd(app),
		newDashboardCmd(app),
		newPanelCmd(app),
		newHistoryCmd(app),
		newServeCmd(app),
		newVersionCmd(app),
	)
	return root
}

// Run executes the command line args against app and returns the exit
// status. Errors are printed to app.Err, or as a JSON envelope to app.Out
// under --json.
func Run(ctx context.Context, app *App, args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return ExitSuccess
	}
	if cmd == nil {
		cmd = root
	}

	if app.flags.json {
		_ = NewJSONErrorResponse(commandName(cmd), err, app.now()).Write(app.Out)
	} else if app.renderer != nil {
		fmt.Fprintln(app.Err, app.renderer.Error(ErrorMessage(err)))
	} else {
		fmt.Fprintln(app.Err, "Error: "+ErrorMessage(err))
	}

	var usage *UsageError
	if errors.As(err, &usage) && !app.flags.json {
		fmt.Fprintf(app.Err, "Run '%s --help' for usage.\n", cmd.CommandPath())
	}
	return ExitCode(err)
}

// Execute runs the process command line.
func Execute() int {
	return Run(context.Background(), NewApp(), os.Args[1:])
}

// =============================================================================
// ARGUMENT HELPERS
// =============================================================================

// usageArgs wraps a cobra positional validator so its failures are usage errors.
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := v(cmd, a); err != nil {
			return &UsageError{Err: err}
		}
		return nil
	}
}
