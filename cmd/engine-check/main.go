// Command engine-check probes the configured UCI engines: it spawns each
// binary, runs one search from the start position, and reports the result.
// Useful for verifying an engine catalog before pointing the arena at it.
// Exits 1 when any probe fails.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	appcfg "github.com/thearst3rd/chess-tournament/internal/config"
	"github.com/thearst3rd/chess-tournament/internal/engine"
	"github.com/thearst3rd/chess-tournament/internal/obslog"
)

const probeTimeout = 15 * time.Second

func main() {
	var (
		only        = flag.String("engine", "", "probe just this catalog entry")
		enginesFile = flag.String("engines", "", "extra engine catalog file (YAML)")
		movetime    = flag.Int("movetime", 200, "search budget in milliseconds")
	)
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	catalog, err := appcfg.LoadCatalog(*enginesFile)
	if err != nil {
		log.Fatalf("engine catalog error: %v", err)
	}

	names := make([]string, 0, len(catalog))
	for name := range catalog {
		if *only != "" && name != *only {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		log.Fatalf("no catalog entry matches %q", *only)
	}

	failures := 0
	for _, name := range names {
		if err := probe(catalog[name], *movetime); err != nil {
			fmt.Printf("%-12s FAIL  %v\n", name, err)
			failures++
		}
	}
	if failures > 0 {
		fmt.Printf("%d of %d engines unreachable\n", failures, len(names))
		os.Exit(1)
	}
}

func probe(spec engine.Spec, movetime int) error {
	client, err := engine.NewClient(spec, obslog.L())
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	limits := spec.Limits()
	limits.MoveTimeMillis = movetime

	start := time.Now()
	best, err := client.BestMove(ctx, "", nil, limits)
	if err != nil {
		return err
	}
	fmt.Printf("%-12s OK    %s in %s (%s)\n",
		spec.Name, best, time.Since(start).Round(time.Millisecond), spec.Command)
	return nil
}
