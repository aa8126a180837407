package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abelbrown/infopulse/internal/brain"
	"github.com/abelbrown/infopulse/internal/config"
	"github.com/abelbrown/infopulse/internal/fetch"
	"github.com/abelbrown/infopulse/internal/model"
	"github.com/abelbrown/infopulse/internal/render"
)

func runFetch() {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	lang := fs.String("lang", "", "Digest language: en or zh (default: config)")
	provider := fs.String("provider", "", "Force a provider: gemini or news")
	exclude := fs.String("exclude", "", "Comma-separated source categories to exclude")
	fs.Parse(os.Args[1:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: obs fetch [--lang en|zh] [--provider gemini|news] [--exclude a,b] <query>")
		os.Exit(1)
	}

	config.LoadDotEnv(".env")
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	l, ok := model.ParseLanguage(*lang)
	if !ok {
		if l, ok = model.ParseLanguage(cfg.UI.DefaultLanguage); !ok {
			l = model.DefaultLanguage
		}
	}

	pm := brain.NewProviderManager()
	pm.AddProvider(brain.NewGeminiProvider(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Endpoint, cfg.Gemini.RequestsPerMinute))
	pm.AddProvider(brain.NewNewsProvider(cfg.News.Endpoint, cfg.News.MaxItems, cfg.FetchTimeout()))
	p, err := selectProvider(pm, *provider)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var excluded []string
	for _, name := range strings.Split(*exclude, ",") {
		if name = strings.TrimSpace(name); name != "" {
			excluded = append(excluded, name)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout())
	defer cancel()

	name := "none"
	if p != nil {
		name = p.Name()
	}
	fmt.Printf(">>> %q via %s (%s)\n", query, name, l)

	t0 := time.Now()
	res, err := fetch.NewFetcher(pm).Fetch(ctx, fetch.Request{Query: query, Language: l, ExcludedSources: excluded})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("    %d sources in %s\n\n", len(res.Sources), time.Since(t0).Round(time.Millisecond))
	printDigest(os.Stdout, res)
}

// selectProvider pins the named provider as preferred, failing when it is
// not available. With no name, gemini is preferred and the first available
// provider is returned (nil when none is).
func selectProvider(pm *brain.ProviderManager, name string) (brain.Provider, error) {
	if name == "" {
		pm.SetPreferred("gemini")
		return pm.GetAvailable(), nil
	}
	p := pm.GetByName(name)
	if p == nil {
		return nil, fmt.Errorf("provider %q not available (available: %s)", name, strings.Join(pm.ListAvailable(), ", "))
	}
	pm.SetPreferred(name)
	return p, nil
}

// printDigest writes the rendered digest followed by its cited sources.
func printDigest(w io.Writer, res fetch.Result) {
	paragraphs := render.Render(res.Text, res.Sources)
	fmt.Fprintln(w, render.PlainString(paragraphs))

	links := 0
	for _, p := range paragraphs {
		for _, seg := range p.Segments {
			if seg.Kind == render.Hyperlink {
				links++
			}
		}
	}
	cites := render.Citations(paragraphs)
	fmt.Fprintf(w, "\n%d citations, %d inline links\n", len(cites), links)

	if len(res.Sources) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for i, src := range res.Sources {
		fmt.Fprintf(w, "  [%d] %s\n      %s\n", i+1, truncate(src.Title, 70), src.URL)
	}
}
