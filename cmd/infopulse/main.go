package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/infopulse/internal/brain"
	"github.com/abelbrown/infopulse/internal/config"
	"github.com/abelbrown/infopulse/internal/coord"
	"github.com/abelbrown/infopulse/internal/fetch"
	"github.com/abelbrown/infopulse/internal/logging"
	"github.com/abelbrown/infopulse/internal/model"
	"github.com/abelbrown/infopulse/internal/otel"
	"github.com/abelbrown/infopulse/internal/state"
	"github.com/abelbrown/infopulse/internal/store"
	"github.com/abelbrown/infopulse/internal/ui"
)

func main() {
	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config.LoadDotEnv(".env")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Data directory: ~/.infopulse/
	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	if err := logging.Init(dataDir, logging.ParseLevel(cfg.LogLevel)); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	// Event journal; the ring buffer feeds the in-app overlay.
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events, err := otel.OpenFile(dataDir)
	if err != nil {
		logging.Warn("Event journal unavailable", "error", err)
		events = otel.NewNullLogger()
	}
	events.SetRingBuffer(ring)
	defer events.Close()

	// Open store
	st, err := store.Open(filepath.Join(dataDir, "infopulse.db"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	// Providers: Gemini with Google Search grounding, RSS news as key-less fallback.
	providers := brain.NewProviderManager()
	providers.AddProvider(brain.NewGeminiProvider(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Endpoint, cfg.Gemini.RequestsPerMinute))
	if cfg.News.Enabled {
		providers.AddProvider(brain.NewNewsProvider(cfg.News.Endpoint, cfg.News.MaxItems, cfg.FetchTimeout()))
	}
	providers.SetPreferred("gemini")
	providerName := ""
	if p := providers.GetAvailable(); p != nil {
		providerName = p.Name()
	}

	defaultLang, ok := model.ParseLanguage(cfg.UI.DefaultLanguage)
	if !ok {
		defaultLang = model.DefaultLanguage
	}
	appState := state.New(st, defaultLang)

	coordinator := coord.NewCoordinator(appState, fetch.NewFetcher(providers), coord.Options{
		FetchTimeout:  cfg.FetchTimeout(),
		MaxConcurrent: cfg.Refresh.MaxConcurrent,
		Policy:        coord.ParsePolicy(cfg.Refresh.Policy),
		Events:        events,
	})

	events.Emit(otel.Event{Kind: otel.KindStartup, Comp: "main", Provider: providerName, Msg: logging.Version})
	logging.Info("Providers configured", "active", providerName, "available", providers.ListAvailable())

	changed := func() tea.Msg { return ui.StateChanged{Snapshot: appState.Snapshot()} }

	uiCfg := ui.AppConfig{
		LoadState: func() tea.Cmd {
			return func() tea.Msg {
				appState.Load()
				return ui.StateLoaded{Snapshot: appState.Snapshot()}
			}
		},
		Refresh: func(topicIDs ...string) tea.Cmd {
			return func() tea.Msg {
				report := coordinator.Refresh(ctx, topicIDs...)
				return ui.RefreshComplete{
					Requested: report.Requested,
					Committed: report.Committed,
					Failed:    len(report.Failed),
					Orphaned:  report.Orphaned,
					Snapshot:  appState.Snapshot(),
				}
			}
		},
		AddTopic: func(query, scheduleTime string) tea.Cmd {
			return func() tea.Msg {
				topic, err := appState.AddTopic(query, scheduleTime)
				if err != nil {
					return ui.TopicAdded{Err: err}
				}
				events.Emit(otel.Event{Kind: otel.KindTopicAdd, Comp: "ui", TopicID: topic.ID, Query: topic.Query})
				return ui.TopicAdded{Topic: topic, Snapshot: appState.Snapshot()}
			}
		},
		RemoveTopic: func(id string) tea.Cmd {
			return func() tea.Msg {
				if appState.RemoveTopic(id) {
					events.Emit(otel.Event{Kind: otel.KindTopicRemove, Comp: "ui", TopicID: id})
				}
				return changed()
			}
		},
		MarkRead: func(id string) tea.Cmd {
			return func() tea.Msg {
				appState.MarkRead(id)
				return changed()
			}
		},
		ToggleFavorite: func(id string) tea.Cmd {
			return func() tea.Msg {
				appState.ToggleFavorite(id)
				return changed()
			}
		},
		RemoveFavorite: func(id string) tea.Cmd {
			return func() tea.Msg {
				appState.RemoveFavorite(id)
				return changed()
			}
		},
		ToggleExcluded: func(name string) tea.Cmd {
			return func() tea.Msg {
				appState.ToggleExcludedSource(name)
				return changed()
			}
		},
		SetLanguage: func(lang model.Language) tea.Cmd {
			return func() tea.Msg {
				if err := appState.SetLanguage(lang); err != nil {
					logging.Warn("Language change rejected", "lang", lang, "error", err)
				}
				return changed()
			}
		},
		APIKeyConfigured: cfg.HasGeminiKey(),
		ProviderName:     providerName,
		Version:          logging.Version,
		Events:           ring,
	}

	var opts []tea.ProgramOption
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(ui.NewApp(uiCfg), opts...)

	// Run UI (blocks until quit)
	if _, err := program.Run(); err != nil {
		logging.Error("Program exited with error", "error", err)
		log.Printf("Error running program: %v", err)
	}

	// Graceful shutdown: abandon in-flight fetches and let their batches settle.
	cancel()
	coordinator.Close()
	events.Emit(otel.Event{Kind: otel.KindShutdown, Comp: "main"})
	logging.Info("InfoPulse stopped")
}
