package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/jessevdk/go-flags"
	"github.com/karupanerura/bootjs-emulator/internal/script"
	"github.com/karupanerura/bootjs-emulator/internal/server"
	"github.com/karupanerura/bootjs-emulator/internal/types"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
	"golang.org/x/sync/errgroup"
)

const (
	reloadInterval  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

type Option struct {
	File    string `short:"f" long:"file" description:"[REQUIRED] Script or manifest file" required:"true"`
	Args    string `long:"args" description:"[OPTIONAL] Script argument (JSON)" required:"false"`
	Strict  bool   `long:"strict" description:"[OPTIONAL] Run the script as strict mode code" required:"false"`
	Debug   bool   `long:"debug" description:"[OPTIONAL] Dump parsed programs and enable debug logs" required:"false"`
	Listen  string `short:"l" long:"listen" description:"[OPTIONAL] Listen host and port to emulate API" required:"false"`
	LogJSON string `long:"log-json" description:"[OPTIONAL] Also write JSON logs to the file" required:"false"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opt Option
	parser := flags.NewParser(&opt, flags.Default)
	_, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		} else {
			parser.WriteHelp(os.Stdout)
			return 1
		}
	}
	if opt.Args != "" && opt.Listen != "" {
		parser.WriteHelp(os.Stdout)
		return 1
	}

	logger, closeLog, err := newLogger(opt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		return 1
	}
	defer closeLog()

	var loadOpts []script.Option
	if opt.Strict {
		loadOpts = append(loadOpts, script.WithStrict())
	}
	if opt.Debug {
		loadOpts = append(loadOpts, script.WithDebugOutput())
	}
	loader := func() (*script.Script, error) {
		return script.Load(opt.File, loadOpts...)
	}

	// server mode
	if opt.Listen != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err = serveScript(ctx, opt.Listen, loader, logger); err != nil {
			logger.Error("failed to serve script", slog.Any("error", err))
			return 1
		}
		return 0
	}

	s, err := loader()
	if err != nil {
		logger.Error("failed to load script", slog.Any("error", err))
		return 1
	}

	var scriptArgs any
	if opt.Args != "" {
		if err = json.Unmarshal([]byte(opt.Args), &scriptArgs); err != nil {
			logger.Error("failed to parse args as JSON", slog.Any("error", err))
			return 1
		}
	}

	ret, err := s.Execute(scriptArgs)
	logger.Debug("script executed", slog.String("script", s.Name), slog.Int("results", len(ret)))
	if err != nil {
		var exception types.Exception
		if errors.As(err, &exception) {
			if _, err = fmt.Fprintln(os.Stderr, err.Error()); err != nil {
				logger.Error("failed to dump script error", slog.Any("error", err))
			}
			if err = dumpJSON(os.Stderr, exception.Exception()); err != nil {
				logger.Error("failed to dump script error as JSON", slog.Any("error", err))
			}
			return 1
		} else {
			logger.Error("failed to execute script", slog.Any("error", err))
			return 1
		}
	}
	if err = dumpJSON(os.Stdout, ret); err != nil {
		logger.Error("failed to dump script result", slog.Any("error", err))
	}

	return 0
}

// newLogger logs text to stderr and, with --log-json, JSON lines to a file
// as well.
func newLogger(opt Option) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if opt.Debug {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}
	closer := func() {}
	if opt.LogJSON != "" {
		f, err := os.OpenFile(opt.LogJSON, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("os.OpenFile(%q): %w", opt.LogJSON, err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		closer = func() { _ = f.Close() }
	}
	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

func serveScript(ctx context.Context, listen string, loader func() (*script.Script, error), logger *slog.Logger) error {
	handler, err := server.NewHTTPHandler(loader, logger)
	if err != nil {
		return err
	}

	srv := http.Server{
		Handler: handler,
		Addr:    listen,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info("listen HTTP", slog.String("addr", listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		return handler.Reload(ctx, reloadInterval)
	})
	eg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("srv.Shutdown: %w", err)
		}
		handler.Wait()
		logger.Info("server stopped")
		return nil
	})
	return eg.Wait()
}

func dumpJSON(w io.Writer, v any) error {
	opts := []json.EncodeOptionFunc{json.DisableHTMLEscape()}
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		if isatty.IsTerminal(f.Fd()) {
			opts = append(opts, json.Colorize(json.DefaultColorScheme))
		}
	}

	b, err := json.MarshalIndentWithOption(v, "", "\t", opts...)
	if err != nil {
		return fmt.Errorf("json.MarshalIndentWithOption: %w", err)
	}

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
