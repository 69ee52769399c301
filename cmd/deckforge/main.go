package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/generate"
	"github.com/deckforge/deckforge/internal/jobs"
	"github.com/deckforge/deckforge/internal/logging"
	"github.com/deckforge/deckforge/internal/provider"
	"github.com/deckforge/deckforge/internal/store"
)

// CLI flags
var (
	portFlag        int
	rootFlag        string
	concurrencyFlag int
)

var rootCmd = &cobra.Command{
	Use:   "deckforge",
	Short: "Local server for assembling slide decks with AI-generated images",
	Long: `Deckforge starts a local server that manages slide decks on disk and
drives image generation for each slide through external AI services.

Examples:
  deckforge
  deckforge --port 9090
  deckforge --root ~/talks --concurrency 3`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 8080, "Port to listen on")
	rootCmd.Flags().StringVar(&rootFlag, "root", "", "Storage root directory (default: $DECKFORGE_ROOT or ~/.deckforge/decks)")
	rootCmd.Flags().IntVar(&concurrencyFlag, "concurrency", 0, "Max simultaneous generation calls (default: $DECKFORGE_CONCURRENCY or 5)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// server wires the store and orchestrator into the HTTP handlers.
type server struct {
	store *store.Store
	gen   *generate.Service
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if rootFlag != "" {
		if err := os.MkdirAll(rootFlag, 0o755); err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage root")
		}
		cfg.Root = rootFlag
	}
	if concurrencyFlag > 0 {
		cfg.Concurrency = concurrencyFlag
	}

	st := store.New(cfg.Root)

	providers := provider.Registry{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := provider.NewGemini(context.Background(), cfg.GeminiAPIKey, os.Getenv("DECKFORGE_GEMINI_MODEL"))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
		providers[gemini.Name()] = gemini
		log.Info().Msg("Gemini provider configured")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set; generation requests will be rejected")
	}

	registry := jobs.NewRegistry(jobs.DefaultTTL)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go registry.RunSweeper(sweepCtx, time.Minute)

	srv := &server{
		store: st,
		gen:   generate.NewService(st, providers, registry, cfg.Concurrency),
	}

	r := srv.routes()

	addr := fmt.Sprintf(":%d", portFlag)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      withLogging(r),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(ctx)
	}()

	log.Info().
		Int("port", portFlag).
		Str("root", cfg.Root).
		Int("concurrency", cfg.Concurrency).
		Msg("Starting deckforge server")

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func (srv *server) routes() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/decks", srv.handleListDecks).Methods(http.MethodGet)
	api.HandleFunc("/decks", srv.handleCreateDeck).Methods(http.MethodPost)
	api.HandleFunc("/decks/{deckID}", srv.handleGetDeck).Methods(http.MethodGet)
	api.HandleFunc("/decks/{deckID}", srv.handleUpdateDeck).Methods(http.MethodPatch)
	api.HandleFunc("/decks/{deckID}", srv.handleDeleteDeck).Methods(http.MethodDelete)
	api.HandleFunc("/decks/{deckID}/export", srv.handleExportDeck).Methods(http.MethodGet)
	api.HandleFunc("/decks/{deckID}/theme", srv.handleAddThemeImage).Methods(http.MethodPost)
	api.HandleFunc("/decks/{deckID}/theme/{name}", srv.handleRemoveThemeImage).Methods(http.MethodDelete)

	api.HandleFunc("/decks/{deckID}/slides", srv.handleListSlides).Methods(http.MethodGet)
	api.HandleFunc("/decks/{deckID}/slides", srv.handleCreateSlide).Methods(http.MethodPost)
	api.HandleFunc("/decks/{deckID}/slides/order", srv.handleReorderSlides).Methods(http.MethodPut)
	api.HandleFunc("/decks/{deckID}/slides/{slideID}", srv.handleGetSlide).Methods(http.MethodGet)
	api.HandleFunc("/decks/{deckID}/slides/{slideID}", srv.handleUpdateSlide).Methods(http.MethodPatch)
	api.HandleFunc("/decks/{deckID}/slides/{slideID}", srv.handleDeleteSlide).Methods(http.MethodDelete)
	api.HandleFunc("/decks/{deckID}/slides/{slideID}/style", srv.handleEffectiveStyle).Methods(http.MethodGet)
	api.HandleFunc("/decks/{deckID}/slides/{slideID}/generate", srv.handleGenerate).Methods(http.MethodPost)
	api.HandleFunc("/decks/{deckID}/slides/{slideID}/images/{imageID}", srv.handleDeleteImage).Methods(http.MethodDelete)
	api.HandleFunc("/decks/{deckID}/slides/{slideID}/images/{imageID}/pin", srv.handlePinImage).Methods(http.MethodPost)
	api.HandleFunc("/decks/{deckID}/slides/{slideID}/images/{imageID}/tweak", srv.handleTweak).Methods(http.MethodPost)
	api.HandleFunc("/decks/{deckID}/slides/{slideID}/images/{imageID}/file", srv.handleImageFile).Methods(http.MethodGet)

	api.HandleFunc("/decks/{deckID}/entities", srv.handleListDeckEntities).Methods(http.MethodGet)
	api.HandleFunc("/decks/{deckID}/entities", srv.handleAddDeckEntity).Methods(http.MethodPost)
	api.HandleFunc("/decks/{deckID}/entities/{name}", srv.handleRemoveDeckEntity).Methods(http.MethodDelete)
	api.HandleFunc("/entities", srv.handleListGlobalEntities).Methods(http.MethodGet)
	api.HandleFunc("/entities", srv.handleAddGlobalEntity).Methods(http.MethodPost)
	api.HandleFunc("/entities/{name}", srv.handleRemoveGlobalEntity).Methods(http.MethodDelete)

	api.HandleFunc("/settings", srv.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", srv.handleUpdateSettings).Methods(http.MethodPut)

	api.HandleFunc("/decks/{deckID}/generate-all", srv.handleGenerateAll).Methods(http.MethodPost)
	api.HandleFunc("/decks/{deckID}/generate-missing", srv.handleGenerateMissing).Methods(http.MethodPost)
	api.HandleFunc("/jobs/{jobID}", srv.handleJobStatus).Methods(http.MethodGet)

	return r
}
