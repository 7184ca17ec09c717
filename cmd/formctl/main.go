package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/tailored-agentic-units/formstate/config"
	"github.com/tailored-agentic-units/formstate/form"
	"github.com/tailored-agentic-units/formstate/observability"
	"github.com/tailored-agentic-units/formstate/replay"
	"github.com/tailored-agentic-units/formstate/rpc"
	"github.com/tailored-agentic-units/formstate/schema"
	"github.com/tailored-agentic-units/formstate/store"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to config file (JSON, or YAML by extension)")
		defFile     = flag.String("def", "", "Form definition YAML to build the form from")
		scriptFile  = flag.String("script", "", "Replay script YAML to run against the form")
		serve       = flag.Bool("serve", false, "Serve the form RPC service instead of running a script")
		addr        = flag.String("addr", "", "Listen address (overrides config)")
		definitions = flag.String("definitions", "", "Directory of form definitions to serve (overrides config)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging to stderr")
		trace       = flag.Bool("trace", false, "Include every emitted event in the output")
	)
	flag.Parse()

	if !*serve && *scriptFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: formctl [-config <file>] [-def <definition>] -script <script>")
		fmt.Fprintln(os.Stderr, "       formctl [-config <file>] -serve [-definitions <dir>] [-addr <addr>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configFile != "" {
		loaded, err := config.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *definitions != "" {
		cfg.Server.Definitions = *definitions
	}

	logger := newLogger(*verbose)
	slog.SetDefault(logger)

	var recorder *observability.Recorder
	observer := observability.Observer(observability.NewSlogObserver(logger))
	if *trace {
		recorder = observability.NewRecorder(0)
		observer = observability.NewMultiObserver(observer, recorder)
	}
	observability.RegisterObserver("slog", observer)

	closer, err := store.Register(cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open checkpoint stores: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *serve {
		err = runServer(ctx, cfg, logger)
	} else {
		err = runScript(ctx, os.Stdout, cfg.Form, *defFile, *scriptFile, observer, recorder)
	}
	if err != nil {
		logger.Error("formctl failed", "error", err)
		closer.Close()
		os.Exit(1)
	}
}

// newLogger writes text to a terminal and JSON lines otherwise.
func newLogger(verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

type output struct {
	FormID string                `json:"formId"`
	Name   string                `json:"name,omitempty"`
	Phase  string                `json:"phase"`
	Steps  int                   `json:"steps"`
	Error  string                `json:"error,omitempty"`
	View   form.View             `json:"view"`
	Events []observability.Event `json:"events,omitempty"`
}

func runScript(ctx context.Context, w io.Writer, cfg config.FormConfig, defFile, scriptFile string, observer observability.Observer, recorder *observability.Recorder) error {
	script, err := replay.LoadFile(scriptFile)
	if err != nil {
		return err
	}

	var f *form.Form
	if defFile != "" {
		def, err := schema.LoadFile(defFile)
		if err != nil {
			return err
		}
		f, err = def.Build(cfg)
		if err != nil {
			return err
		}
	} else {
		f, err = form.New(cfg)
		if err != nil {
			return err
		}
	}

	result, runErr := replay.Run(ctx, f, script, replay.WithObserver(observer))

	out := output{
		FormID: f.ID(),
		Name:   f.Name(),
		Phase:  f.SubmitPhase().String(),
		Steps:  result.Steps,
		View:   result.Final.View,
	}
	if runErr != nil {
		out.Error = runErr.Error()
	}
	if recorder != nil {
		out.Events = recorder.Events()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	return runErr
}

// loadCatalog reads every definition in dir. No dir serves inline forms only.
func loadCatalog(dir string) (*schema.Catalog, error) {
	if dir == "" {
		return schema.NewCatalog(), nil
	}
	return schema.LoadDir(dir)
}

func runServer(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	catalog, err := loadCatalog(cfg.Server.Definitions)
	if err != nil {
		return err
	}

	observer, err := observability.GetObserver(cfg.Form.Observer)
	if err != nil {
		return err
	}
	service := rpc.NewServer(cfg.Form,
		rpc.WithCatalog(catalog),
		rpc.WithServerObserver(observer),
	)

	mux := http.NewServeMux()
	mux.Handle(service.Handler())

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("serving forms", "addr", cfg.Server.Addr, "definitions", catalog.Names())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped", "sessions", len(service.Sessions()))
	return nil
}
