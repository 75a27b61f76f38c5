package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/charts"
	"github.com/snappy-loop/decks/internal/config"
	"github.com/snappy-loop/decks/internal/deck"
	"github.com/snappy-loop/decks/internal/events"
	"github.com/snappy-loop/decks/internal/handlers"
	"github.com/snappy-loop/decks/internal/llm"
	"github.com/snappy-loop/decks/internal/media"
	"github.com/snappy-loop/decks/internal/services"
	"github.com/snappy-loop/decks/internal/themes"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("Starting Decks API")

	client, err := llm.NewClient(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.TextModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize model client")
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}
	providers := make([]media.Provider, 0, len(cfg.ImageModels)+2)
	for _, model := range cfg.ImageModels {
		providers = append(providers,
			media.NewInferenceProvider(httpClient, cfg.InferenceBaseURL, model, cfg.InferenceAPIToken))
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := media.NewGeminiProvider(context.Background(), cfg.GeminiAPIKey, cfg.GeminiImageModel)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize gemini provider")
		}
		defer gemini.Close()
		providers = append(providers, gemini)
	}
	providers = append(providers, media.NewURLProvider(cfg.ImageFallbackURL, cfg.ImageWidth, cfg.ImageHeight))

	chain := media.NewChain(cfg.ProviderTimeout, providers...)
	renderer := charts.NewRenderer(cfg.ChartFontPath)
	resolver := media.NewResolver(renderer, chain, cfg.SlideResolveTimeout)

	var publisher services.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicEvents)
		defer producer.Close()
		publisher = producer
	}

	// Separate sources: catalog and enhancer guard their own rng independently.
	catalog := themes.NewCatalog(rand.New(rand.NewSource(seed)))
	enhancer := deck.NewEnhancer(rand.New(rand.NewSource(seed + 1)))
	deckService := services.NewDeckService(
		client, resolver, catalog, enhancer, publisher, cfg.MaxConcurrentSlides)

	h := handlers.NewHandler(deckService)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/decks", h.CreateDeck).Methods("POST")
	api.HandleFunc("/decks/ws", h.DecksWS).Methods("GET")
	api.HandleFunc("/outlines", h.CreateOutline).Methods("POST")
	api.HandleFunc("/outlines/deck", h.CreateDeckFromOutline).Methods("POST")
	api.HandleFunc("/slides/enhance", h.EnhanceSlide).Methods("POST")
	api.HandleFunc("/models", h.ListModels).Methods("GET")
	api.HandleFunc("/themes", h.ListThemes).Methods("GET")
	api.HandleFunc("/themes", h.CreateTheme).Methods("POST")

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
		// Generation is synchronous and slow; read stays tight, write does not.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down API...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("API exited")
}
