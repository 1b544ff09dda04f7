package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/garnish-lang/web-garnish/internal/config"
	"github.com/garnish-lang/web-garnish/internal/garnish"
	"github.com/garnish-lang/web-garnish/internal/logging"
)

var (
	flagServePath string
	flagRoute     string
	flagOutputDir string
	flagLogLevel  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "web-garnish",
	Short: "Compile and serve a directory of garnish source files",
	Long: `web-garnish compiles a directory tree of .garnish files into bytecode
at startup and serves the resulting routes over HTTP, or dumps diagnostic
artifacts describing the compiled program.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Compile the tree and serve it over HTTP on 0.0.0.0:3000",
	RunE:  runServe,
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Compile the tree and emit diagnostic artifacts",
	RunE:  runDump,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServePath, "serve-path", "", "root directory to compile (default: current working directory)")
	rootCmd.PersistentFlags().StringVar(&flagRoute, "route", "", "route to seed the execution trace at (dump only)")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output-path", "", "directory to write dump artifacts to (default: stdout)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug|info|warn|error (default: info)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dumpCmd)
}

func resolveSettings(cmd *cobra.Command) config.Resolved {
	file, err := config.Load("web-garnish.toml")
	if err != nil {
		logging.Get().Warn().Err(err).Msg("failed to read web-garnish.toml, ignoring")
	}
	return config.Resolve(
		flagServePath, flagLogLevel,
		cmd.Flags().Changed("serve-path"), cmd.Flags().Changed("log-level"),
		file,
	)
}

func compile(servePath string, log zerolog.Logger) (*garnish.CompileResult, error) {
	files, err := garnish.DiscoverFiles(servePath)
	if err != nil {
		return nil, fmt.Errorf("discovering garnish files: %w", err)
	}
	result, err := garnish.CompileTree(servePath, files, log)
	if err != nil {
		return nil, fmt.Errorf("compiling: %w", err)
	}
	return result, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	settings := resolveSettings(cmd)
	log := logging.Init(settings.LogLevel)

	result, err := compile(settings.ServePath, log)
	if err != nil {
		return err
	}
	log.Info().Int("routes", len(result.Routes)).Str("serve_path", settings.ServePath).Msg("compiled garnish tree")

	shared := &garnish.SharedState{
		Routes:  result.Routes,
		Interp:  result.Interp,
		Symbols: result.Symbols,
		Log:     log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: settings.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	handler := shared.Handler()
	r.HandleFunc("/", handler)
	r.HandleFunc("/*", handler)

	srv := &http.Server{
		Addr:         "0.0.0.0:3000",
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server stopped unexpectedly")
		}
	}()
	log.Info().Str("addr", srv.Addr).Msg("serving")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runDump(cmd *cobra.Command, args []string) error {
	settings := resolveSettings(cmd)
	log := logging.Init(settings.LogLevel)

	result, err := compile(settings.ServePath, log)
	if err != nil {
		return err
	}

	emitter := &garnish.DumpEmitter{Result: result, Route: flagRoute}
	return emitter.WriteTo(flagOutputDir)
}
