package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/abelbrown/infopulse/internal/model"
	"github.com/abelbrown/infopulse/internal/state"
)

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	dbHealth := fs.Bool("db", false, "Include DB health section (stored keys, timestamps)")
	fs.Parse(os.Args[1:])

	st := openDB()
	defer st.Close()

	s := state.New(st, model.DefaultLanguage)
	s.Load()
	printStats(os.Stdout, s.Snapshot(), time.Now())

	if !*dbHealth {
		return
	}

	fmt.Println()
	fmt.Println("=== DB Health ===")
	keys, err := st.Keys()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Printf("Stored keys (%d):\n", len(keys))
	for _, k := range keys {
		fmt.Printf("  %s\n", k)
	}
}

// printStats writes the statistics report for snap.
func printStats(w io.Writer, snap model.Snapshot, now time.Time) {
	unread := 0
	for _, it := range snap.Feed {
		if !it.IsRead {
			unread++
		}
	}

	fmt.Fprintf(w, "Language:              %s\n", snap.Language)
	fmt.Fprintf(w, "Topics:                %d\n", len(snap.Topics))
	fmt.Fprintf(w, "Feed items:            %d\n", len(snap.Feed))
	fmt.Fprintf(w, "Unread:                %d\n", unread)
	fmt.Fprintf(w, "Favorites:             %d\n", len(snap.Favorites))
	if len(snap.Settings.ExcludedSources) > 0 {
		fmt.Fprintf(w, "Excluded sources:      %v\n", snap.Settings.ExcludedSources)
	}

	// Per-topic item counts, in registry order.
	counts := map[string]int{}
	latest := map[string]time.Time{}
	for _, it := range snap.Feed {
		counts[it.TopicID]++
		if it.Timestamp.After(latest[it.TopicID]) {
			latest[it.TopicID] = it.Timestamp
		}
	}
	if len(snap.Topics) > 0 {
		fmt.Fprintf(w, "\nTopics (%d):\n", len(snap.Topics))
	}
	for _, t := range snap.Topics {
		last := "never"
		if ts, ok := latest[t.ID]; ok {
			last = fmt.Sprintf("%.0fh ago", now.Sub(ts).Hours())
		}
		fmt.Fprintf(w, "  %-35s %3d items  daily %s  last %s\n", truncate(t.Query, 35), counts[t.ID], t.ScheduleTime, last)
	}

	// Items whose topic has been deleted no longer exist in the feed, but
	// favorites keep their snapshot query.
	orphanFavs := map[string]int{}
	known := map[string]bool{}
	for _, t := range snap.Topics {
		known[t.ID] = true
	}
	for _, f := range snap.Favorites {
		if !known[f.TopicID] {
			orphanFavs[f.TopicQuery]++
		}
	}
	if len(orphanFavs) == 0 {
		return
	}
	names := make([]string, 0, len(orphanFavs))
	for q := range orphanFavs {
		names = append(names, q)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "\nFavorites from removed topics:\n")
	for _, q := range names {
		fmt.Fprintf(w, "  %-35s %d\n", truncate(q, 35), orphanFavs[q])
	}
}
