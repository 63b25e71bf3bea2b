// Package app wires configuration, the orbit model and the presentation
// layers into the orbitcalc command.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agbru/orbitcalc/internal/cli"
	"github.com/agbru/orbitcalc/internal/config"
	apperrors "github.com/agbru/orbitcalc/internal/errors"
	"github.com/agbru/orbitcalc/internal/logging"
	"github.com/agbru/orbitcalc/internal/orbit"
	"github.com/agbru/orbitcalc/internal/ui"
)

// Application represents the orbitcalc application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	// In feeds the interactive mode.
	In     io.Reader
	Logger logging.Logger
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithInput sets the reader used by the interactive mode.
func WithInput(in io.Reader) AppOption {
	return func(a *Application) { a.In = in }
}

// WithLogger replaces the logger derived from -verbose and -quiet.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, In: os.Stdin}
	for _, opt := range opts {
		opt(app)
	}

	programName := "orbitcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode and returns
// the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Version {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	if a.Config.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	ui.InitTheme(a.Config.NoColor)
	if a.Logger == nil {
		a.Logger = a.newLogger()
	}

	model, err := orbit.NewModel(a.Config.ToModelConfig())
	if err != nil {
		return a.handleError(apperrors.NewConfigError("%v", err), "")
	}

	switch {
	case a.Config.Serve != "":
		return a.runServe(ctx, out, model)
	case a.Config.REPL:
		return a.runREPL(ctx, out, model)
	case a.Config.Sweep:
		return a.runSweep(ctx, out, model)
	case a.Config.HasPixel:
		return a.runPixel(ctx, out, model)
	default:
		return a.runClassify(ctx, out, model)
	}
}

// newLogger builds the diagnostic logger. Quiet runs log nothing.
func (a *Application) newLogger() logging.Logger {
	if a.Config.Quiet {
		return logging.NewNopLogger()
	}
	return logging.NewConsoleLogger(a.ErrWriter, "orbitcalc", a.Config.NoColor)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// handleError reports err on the error writer and maps it to an exit code.
// operation names what timed out when err is a deadline and prefixes any
// other error message.
func (a *Application) handleError(err error, operation string) int {
	if errors.Is(err, context.DeadlineExceeded) {
		err = apperrors.TimeoutError{Operation: operation, Limit: a.Config.Timeout}
	}
	code := apperrors.ExitCodeFor(err)
	switch code {
	case apperrors.ExitErrorCanceled:
		fmt.Fprintf(a.ErrWriter, "%sCanceled.%s\n", ui.ColorYellow(), ui.ColorReset())
	case apperrors.ExitErrorTimeout:
		fmt.Fprintf(a.ErrWriter, "%sTimeout: %v%s\n", ui.ColorYellow(), err, ui.ColorReset())
	default:
		fmt.Fprintf(a.ErrWriter, "%sError: %v%s\n", ui.ColorRed(), apperrors.WrapError(err, "%s", operation), ui.ColorReset())
	}
	return code
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
