// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command appstatus queries the status of applications by racing the
// configured upstream sources, printing one JSON status per line.
//
// Usage:
//
//	appstatus [-config file.yaml] [-deadline 15s] [-metrics :9090] [-v N] [-dev] id...
//	appstatus [-config file.yaml] -serve :8080
//
// With -serve, appstatus instead serves a simulated upstream source
// over HTTP, so that other appstatus processes can use it as an http
// source.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gogama/appstatus"
	"github.com/gogama/appstatus/internal/config"
	"github.com/gogama/appstatus/logging"
	"github.com/gogama/appstatus/observability"
	"github.com/gogama/appstatus/observability/noop"
	"github.com/gogama/appstatus/observability/prom"
	"github.com/gogama/appstatus/status"
	"github.com/gogama/appstatus/upstream"
	"github.com/gogama/appstatus/upstream/httpsource"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	deadline   time.Duration
	metrics    string
	serve      string
	verbosity  int
	dev        bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("appstatus", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.DurationVar(&opts.deadline, "deadline", 0, "deadline of each request (overrides config)")
	fs.StringVar(&opts.metrics, "metrics", "", "listen address of the Prometheus endpoint (overrides config)")
	fs.StringVar(&opts.serve, "serve", "", "serve a simulated source on this address instead of querying")
	fs.IntVar(&opts.verbosity, "v", -1, "log verbosity (overrides config)")
	fs.BoolVar(&opts.dev, "dev", false, "human-readable development logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "appstatus: %v\n", err)
		return 2
	}

	logger := newLogger(cfg.Log, stderr)

	if opts.serve != "" {
		if err = serve(ctx, opts.serve, cfg, logger); err != nil {
			logger.Error(err, "Server failed")
			return 1
		}
		return 0
	}

	ids := fs.Args()
	if len(ids) == 0 {
		fmt.Fprintln(stderr, "appstatus: no application ids given")
		fs.Usage()
		return 2
	}

	var rec observability.Recorder = noop.Recorder{}
	if cfg.Metrics != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec = prom.NewRecorder(reg)
		stopMetrics, err := startMetrics(cfg.Metrics, reg, logger)
		if err != nil {
			logger.Error(err, "Failed to start metrics endpoint", "addr", cfg.Metrics)
			return 1
		}
		defer stopMetrics()
	}

	handlers := &appstatus.HandlerGroup{}
	logging.Install(handlers, logger)
	observability.Install(handlers, rec)
	client := &appstatus.Client{
		Sources:       cfg.Build(),
		TimeoutPolicy: cfg.DeadlinePolicy(),
		Handlers:      handlers,
	}

	statuses := queryAll(ctx, client, ids)

	enc := json.NewEncoder(stdout)
	code := 0
	for _, st := range statuses {
		if err = enc.Encode(st); err != nil {
			fmt.Fprintf(stderr, "appstatus: %v\n", err)
			return 1
		}
		if _, ok := st.(status.Failure); ok {
			code = 1
		}
	}
	return code
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	if opts.deadline != 0 {
		cfg.Deadline = opts.deadline.String()
	}
	if opts.metrics != "" {
		cfg.Metrics = opts.metrics
	}
	if opts.verbosity >= 0 {
		cfg.Log.Verbosity = opts.verbosity
	}
	if opts.dev {
		cfg.Log.Development = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds a zap logger writing to w, exposed as a logr.Logger.
// logr verbosity V maps to zap level -V.
func newLogger(cfg config.Log, w io.Writer) logr.Logger {
	var encoder zapcore.Encoder
	if cfg.Development {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	level := zap.NewAtomicLevelAt(zapcore.Level(-cfg.Verbosity))
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), level)
	return zapr.NewLogger(zap.New(core))
}

// queryAll queries every id concurrently. The statuses are in the same
// order as ids.
func queryAll(ctx context.Context, g appstatus.ContextGetter, ids []string) []status.Status {
	statuses := make([]status.Status, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			statuses[i] = g.GetApplicationStatusContext(ctx, id)
		}(i, id)
	}
	wg.Wait()
	return statuses
}

func startMetrics(addr string, gatherer prometheus.Gatherer, logger logr.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "Metrics endpoint failed")
		}
	}()
	logger.Info("Serving metrics", "addr", ln.Addr().String())
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}

// serveSource picks the source served by -serve: the first configured
// simulator.
func serveSource(cfg *config.Config) (upstream.Source, error) {
	for i, src := range cfg.Sources {
		if src.Kind == config.KindSimulator {
			return cfg.Build()[i], nil
		}
	}
	return nil, errors.New("no simulator source configured")
}

func serve(ctx context.Context, addr string, cfg *config.Config, logger logr.Logger) error {
	src, err := serveSource(cfg)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	server := &http.Server{Handler: httpsource.NewHandler(src), ReadHeaderTimeout: 10 * time.Second}
	logger.Info("Serving simulated source", "addr", ln.Addr().String(), "source", upstream.Name(src, 0))

	done := make(chan error, 1)
	go func() { done <- server.Serve(ln) }()
	select {
	case err = <-done:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
