// Command uci-engine exposes a single arena strategy as a UCI engine over
// stdin/stdout, so external GUIs and match runners can play against it.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	appcfg "github.com/thearst3rd/chess-tournament/internal/config"
	"github.com/thearst3rd/chess-tournament/internal/obslog"
	"github.com/thearst3rd/chess-tournament/internal/strategy"
	"github.com/thearst3rd/chess-tournament/internal/uciadapter"
)

func main() {
	var (
		strategyName = flag.String("strategy", "random", "strategy to expose (prefix match ok)")
		enginesFile  = flag.String("engines", "", "extra engine catalog file (YAML)")
		seed         = flag.Int64("seed", 0, "seed for randomized strategies (0 = time-based)")
	)
	flag.Parse()

	// Stdout carries the protocol, so logs must go to stderr.
	if err := obslog.InitStderr(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	path := *enginesFile
	if path == "" {
		path = os.Getenv("ARENA_ENGINES_FILE")
	}
	catalog, err := appcfg.LoadCatalog(path)
	if err != nil {
		log.Fatalf("engine catalog error: %v", err)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	adapter, err := uciadapter.New(os.Stdin, os.Stdout, strategy.NewRegistry(catalog, *seed), *strategyName)
	if err != nil {
		log.Fatalf("adapter init error: %v", err)
	}
	if err := adapter.Run(context.Background()); err != nil {
		log.Fatalf("adapter error: %v", err)
	}
}
