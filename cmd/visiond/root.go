package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"visiond/internal/boundary"
	"visiond/internal/config"
	"visiond/internal/engine"
	"visiond/internal/httpapi"
	"visiond/internal/service"
)

// newRootCmd constructs the Cobra command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "visiond",
		Short:         "Asynchronous image description daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to config file (.yaml/.json/.toml)")
	root.PersistentFlags().String("log-level", "info", "Log level: debug|info|warn|error")
	root.PersistentFlags().String("log-file", "", "Optional rotating log file path")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  runServe,
	}
	serve.Flags().String("addr", ":8080", "HTTP listen address, e.g. :8080")
	serve.Flags().String("model-dir", "", "Model directory (empty = ~/models/vision)")
	serve.Flags().Float64("temperature", 0, "Sampling temperature (0 = default)")
	serve.Flags().Int("max-tokens", 0, "Token budget per generation (0 = default)")
	serve.Flags().Bool("cancel-on-new", true, "Cancel the in-flight generation when a new request arrives")
	serve.Flags().Bool("cors", false, "Enable permissive CORS")
	root.AddCommand(serve)

	return root
}

// loadConfig merges the optional config file with flag overrides; a flag the
// user set explicitly wins over the file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		c, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}
	if cmd.Flags().Changed("addr") || cfg.Addr == "" {
		cfg.Addr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("model-dir") || cfg.ModelDir == "" {
		cfg.ModelDir, _ = cmd.Flags().GetString("model-dir")
	}
	if cmd.Flags().Changed("temperature") || cfg.Temperature == 0 {
		cfg.Temperature, _ = cmd.Flags().GetFloat64("temperature")
	}
	if cmd.Flags().Changed("max-tokens") || cfg.MaxTokens == 0 {
		cfg.MaxTokens, _ = cmd.Flags().GetInt("max-tokens")
	}
	if cmd.Flags().Changed("cancel-on-new") || cfg.CancelOnNewRequest == nil {
		v, _ := cmd.Flags().GetBool("cancel-on-new")
		cfg.CancelOnNewRequest = &v
	}
	if cmd.Flags().Changed("cors") {
		cfg.CORSEnabled, _ = cmd.Flags().GetBool("cors")
	}
	if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile, _ = cmd.Flags().GetString("log-file")
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFile)

	eng := engine.NewWithConfig(engine.Config{
		ModelDir:           cfg.ModelDir,
		Temperature:        cfg.Temperature,
		MaxTokens:          cfg.MaxTokens,
		CancelOnNewRequest: cfg.CancelOnNewRequest == nil || *cfg.CancelOnNewRequest,
		Logger:             logger,
	})
	host := boundary.NewHost(eng, logger)
	svc := service.New(eng, host)

	baseCtx, stopBase := context.WithCancel(context.Background())
	defer stopBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(logger)
	if cfg.MaxBodyBytes > 0 {
		httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	}
	if cfg.CORSEnabled {
		origins := cfg.CORSOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		httpapi.SetCORSOptions(true, origins,
			[]string{"GET", "POST", "OPTIONS"},
			[]string{"Accept", "Content-Type"})
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(svc)}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("model_dir", cfg.ModelDir).Msg("visiond listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	stopBase()
	host.CancelAll()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	if err := host.Close(); err != nil {
		logger.Error().Err(err).Msg("engine close error")
	}
	return nil
}
