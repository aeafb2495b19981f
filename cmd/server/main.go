// Command server runs the scheduling engine as an HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fogsched/api"
	"fogsched/config"
	"fogsched/logger"
	"fogsched/observability"
	"fogsched/strategy"
	"fogsched/version"
)

// serverConfig is the full configuration tree of the service binary.
type serverConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	API           api.Config      `yaml:"api" mapstructure:"api"`
	Scheduler     strategy.Config `yaml:"scheduler" mapstructure:"scheduler"`
	Observability obsConfig       `yaml:"observability" mapstructure:"observability"`
}

// obsConfig switches the OTLP exporters on and points them somewhere.
type obsConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
}

func (c *serverConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "fogsched-server"
	}
	c.ServiceConfig.ApplyDefaults()
	c.API.ApplyDefaults()
	c.Scheduler.ApplyDefaults()
	if c.Observability.Endpoint == "" {
		c.Observability.Endpoint = "localhost:4318"
		c.Observability.Insecure = true
	}
}

func (c *serverConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return err
	}
	return c.Scheduler.Validate()
}

func main() {
	configFile := flag.String("config", "", "path to config.yml (searched when empty)")
	envFile := flag.String("env", "", "path to .env file (searched when empty)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetFullVersion())
		return
	}

	var cfg serverConfig
	opts := []config.LoaderOption{}
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	if err := config.LoadConfig("fogsched-server", &cfg, opts...); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(&cfg.Logging)
	log := logger.Get("server")
	log.Info("starting", map[string]interface{}{
		"version":     version.GetShortVersion(),
		"environment": cfg.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Observability.Enabled {
		tracerCfg := observability.DefaultTracerConfig(cfg.Name)
		tracerCfg.ServiceVersion = version.GetShortVersion()
		tracerCfg.Environment = cfg.Environment
		tracerCfg.Endpoint = cfg.Observability.Endpoint
		tracerCfg.Insecure = cfg.Observability.Insecure
		tp, err := observability.InitTracer(ctx, &tracerCfg)
		if err != nil {
			log.Fatal("tracer init failed", logger.ErrorFields("observability", err))
		}
		defer shutdownProvider(log, "tracer", tp.Shutdown)

		meterCfg := observability.DefaultMeterConfig(cfg.Name)
		meterCfg.ServiceVersion = version.GetShortVersion()
		meterCfg.Environment = cfg.Environment
		meterCfg.Endpoint = cfg.Observability.Endpoint
		meterCfg.Insecure = cfg.Observability.Insecure
		mp, err := observability.InitMeter(ctx, &meterCfg)
		if err != nil {
			log.Fatal("meter init failed", logger.ErrorFields("observability", err))
		}
		defer shutdownProvider(log, "meter", mp.Shutdown)

		metrics, err = observability.NewMetrics(observability.Meter(cfg.Name))
		if err != nil {
			log.Fatal("instrument init failed", logger.ErrorFields("observability", err))
		}
	}

	registry := buildRegistry(metrics)
	srv := api.New(cfg.API, registry, log,
		api.WithSchedulingDefaults(cfg.Scheduler),
		api.WithMetrics(metrics),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("exited with error", logger.ErrorFields("run", err))
		os.Exit(1)
	}
	log.Info("stopped")
}

// buildRegistry wraps every built-in strategy with the instrumentation the
// deployment asked for.
func buildRegistry(metrics *observability.Metrics) *strategy.Registry {
	base := strategy.DefaultRegistry()
	reg := strategy.NewRegistry()
	for _, name := range base.List() {
		s, _ := base.Get(name)
		s = strategy.WithLogging(s, logger.Get("strategy"))
		if metrics != nil {
			s = strategy.WithMetrics(s, metrics)
			s = strategy.WithTracing(s, "schedule")
		}
		reg.Register(s)
	}
	return reg
}

func shutdownProvider(log *logger.Logger, name string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn("provider shutdown failed", map[string]interface{}{
			"provider": name,
			"error":    err.Error(),
		})
	}
}
