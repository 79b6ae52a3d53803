// FILE: lixenwraith/cfgtree/example/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/cfgtree"
	"github.com/lixenwraith/cfgtree/format/toml"
)

// AppConfig is the typed view of the configuration.
type AppConfig struct {
	Server struct {
		Host     string `toml:"host"`
		Port     int64  `toml:"port"`
		LogLevel string `toml:"log_level"`
	} `toml:"server"`
	FeatureFlags map[string]bool `toml:"feature_flags"`
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	dir, err := os.MkdirTemp("", "cfgtree-example")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create work directory")
	}
	defer os.RemoveAll(dir)
	configFilePath := filepath.Join(dir, "config.toml")

	// =========================================================================
	// PART 1: INITIAL FILE
	// =========================================================================
	logger.Info().Msg("part 1: creating initial configuration file")

	initial := cfgtree.NewTreeWithFormat(toml.Info)
	initial.Set(cfgtree.P("server.host"), cfgtree.String("localhost"))
	initial.Set(cfgtree.P("server.port"), cfgtree.Int(8080))
	initial.Set(cfgtree.P("server.log_level"), cfgtree.String("info"))
	initial.SetComment(cfgtree.P("server.log_level"), "one of debug, info, warn, error")
	initial.Set(cfgtree.P("feature_flags.enable_metrics"), cfgtree.Bool(true))

	store := cfgtree.NewFileStore(configFilePath, toml.New())
	store.Logger = &logger
	if err := store.Save(initial); err != nil {
		logger.Fatal().Err(err).Msg("failed to write initial file")
	}

	// =========================================================================
	// PART 2: BUILDER
	// Defaults < file < environment < arguments, then spec and validators.
	// =========================================================================
	logger.Info().Msg("part 2: building the configuration")

	os.Setenv("APP_SERVER_PORT", "8888")
	defer os.Unsetenv("APP_SERVER_PORT")

	defaults := &AppConfig{}
	defaults.Server.Host = "0.0.0.0"
	defaults.Server.Port = 80
	defaults.Server.LogLevel = "warn"

	spec := cfgtree.NewSpec(false)
	spec.DefineInList(cfgtree.P("server.log_level"), cfgtree.String("info"),
		cfgtree.String("debug"), cfgtree.String("info"), cfgtree.String("warn"), cfgtree.String("error"))

	validator := func(c cfgtree.Config) error {
		v, _ := c.Get(cfgtree.P("server.port"))
		port, ok := v.AsInt()
		if !ok {
			return fmt.Errorf("server.port must be an integer, got %s", v.Kind())
		}
		if port < 1024 || port > 65535 {
			return fmt.Errorf("port %d is outside the recommended range (1024-65535)", port)
		}
		return nil
	}

	cfg, err := cfgtree.NewBuilder().
		WithDefaults(defaults).
		WithFile(configFilePath, toml.New()).
		WithEnvPrefix("APP_").
		WithSpec(spec, cfgtree.LogCorrections(logger)).
		WithLogger(&logger).
		WithValidator(validator).
		Build()
	if err != nil {
		logger.Fatal().Err(err).Msg("builder failed")
	}

	var app AppConfig
	if err := cfgtree.Scan(cfg, "", &app); err != nil {
		logger.Fatal().Err(err).Msg("scan failed")
	}
	printCurrentState(&app, "Initial State (Env overrides File)")

	// =========================================================================
	// PART 3: CONCURRENT RELOAD
	// Readers keep running while the file is changed and reloaded. Every
	// read observes either the old or the new content.
	// =========================================================================
	logger.Info().Msg("part 3: reloading under concurrent readers")

	stop := make(chan struct{})
	var readers sync.WaitGroup
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				cfg.BulkRead(func(c cfgtree.Config) {
					level, _ := c.Get(cfgtree.P("server.log_level"))
					tracing := c.Contains(cfgtree.P("feature_flags.enable_tracing"))
					if s, _ := level.AsString(); (s == "debug") != tracing {
						logger.Fatal().Msg("reader observed a partially applied reload")
					}
				})
			}
		}()
	}

	modifier := cfgtree.NewFileStore(configFilePath, toml.New())
	changed := cfgtree.NewTree()
	if err := modifier.Load(changed); err != nil {
		logger.Fatal().Err(err).Msg("modifier failed to load file")
	}
	changed.Set(cfgtree.P("server.log_level"), cfgtree.String("debug"))
	changed.Set(cfgtree.P("feature_flags.enable_tracing"), cfgtree.Bool(false))
	if err := modifier.Save(changed); err != nil {
		logger.Fatal().Err(err).Msg("modifier failed to save file")
	}

	before := cfg.Stamp()
	err = cfg.BulkUpdate(func(acc *cfgtree.Accumulator) error {
		reload := &cfgtree.FileStore{Path: configFilePath, Format: toml.New(), Mode: cfgtree.ModeReplace}
		return reload.Load(acc)
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("reload failed")
	}
	time.Sleep(50 * time.Millisecond)
	close(stop)
	readers.Wait()

	logger.Info().Uint64("from", before).Uint64("to", cfg.Stamp()).Msg("reload committed")

	app = AppConfig{}
	if err := cfgtree.Scan(cfg, "", &app); err != nil {
		logger.Fatal().Err(err).Msg("scan failed")
	}
	printCurrentState(&app, "Final State (Reloaded)")
}

// printCurrentState is a helper to display the typed config state.
func printCurrentState(cfg *AppConfig, title string) {
	fmt.Println("   --------------------------------------------------")
	fmt.Printf("             %s\n", title)
	fmt.Println("   --------------------------------------------------")
	fmt.Printf("     Server Host:      %s\n", cfg.Server.Host)
	fmt.Printf("     Server Port:      %d\n", cfg.Server.Port)
	fmt.Printf("     Server Log Level: %s\n", cfg.Server.LogLevel)
	fmt.Printf("     Feature Flags:    %v\n", cfg.FeatureFlags)
	fmt.Println("   --------------------------------------------------")
}
