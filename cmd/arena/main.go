package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/thearst3rd/chess-tournament/internal/arena"
	"github.com/thearst3rd/chess-tournament/internal/arenabuilder"
	"github.com/thearst3rd/chess-tournament/internal/archive"
	appcfg "github.com/thearst3rd/chess-tournament/internal/config"
	"github.com/thearst3rd/chess-tournament/internal/obslog"
	"github.com/thearst3rd/chess-tournament/internal/render"
	"github.com/thearst3rd/chess-tournament/internal/strategy"
	"github.com/thearst3rd/chess-tournament/internal/transcript"
	"github.com/thearst3rd/chess-tournament/internal/watch"
)

func main() {
	var (
		white    = flag.String("white", "random", "strategy for white (prefix match ok)")
		black    = flag.String("black", "random", "strategy for black (prefix match ok)")
		plyCap   = flag.Int("plycap", 0, "abort the game after this many plies (0 = config default)")
		delay    = flag.Duration("delay", 0, "pause between plies, e.g. 250ms")
		board    = flag.Bool("board", false, "print the board after every ply")
		serve    = flag.Bool("serve", false, "serve the watch API while the game runs")
		watchURL = flag.String("watch", "", "follow a remote arena at this base URL instead of playing")
		pngPath  = flag.String("png", "", "write the final position to this PNG file")
		seed     = flag.Int64("seed", 0, "seed for randomized strategies (0 = time-based)")
	)
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	console := transcript.NewConsole(os.Stdout, *board)

	if *watchURL != "" {
		if err := watch.NewFollower(*watchURL, console).Run(ctx); err != nil {
			log.Fatalf("watch error: %v", err)
		}
		return
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	deps, err := arenabuilder.New(cfg, *seed)
	if err != nil {
		log.Fatalf("arena init error: %v", err)
	}
	defer deps.Close()

	whiteStrat, err := deps.Registry.Build(*white)
	if err != nil {
		log.Fatalf("white strategy: %v", err)
	}
	defer closeStrategy(whiteStrat)
	blackStrat, err := deps.Registry.Build(*black)
	if err != nil {
		log.Fatalf("black strategy: %v", err)
	}
	defer closeStrategy(blackStrat)

	sinks := []arena.Sink{console, archive.NewRecordSink(deps.Repo)}
	if deps.Live != nil {
		sinks = append(sinks, archive.NewLiveSink(deps.Live, whiteStrat.Name(), blackStrat.Name()))
	}
	if *serve {
		sinks = append(sinks, deps.Hub)
		go func() {
			if err := deps.Server.ListenAndServe(ctx, cfg.WatchAddr); err != nil {
				obslog.L().Error("watch server failed", zap.Error(err))
			}
		}()
	}

	gameCap := cfg.PlyCap
	if *plyCap > 0 {
		gameCap = *plyCap
	}
	moveDelay := cfg.MoveDelay
	if *delay > 0 {
		moveDelay = *delay
	}

	rec, err := arena.New(arena.Config{PlyCap: gameCap, Delay: moveDelay}, sinks...).
		Play(ctx, whiteStrat, blackStrat)
	if err != nil {
		obslog.L().Warn("game interrupted", zap.Error(err))
	}

	if *pngPath != "" && rec.FinalFEN != "" {
		writeBoardPNG(*pngPath, rec.FinalFEN, rec.MovesUCI)
	}

	if *serve && ctx.Err() == nil {
		fmt.Println("watch server still running, Ctrl-C to exit")
		<-ctx.Done()
	}
}

func writeBoardPNG(path, fen string, moves []string) {
	last := ""
	if n := len(moves); n > 0 {
		last = moves[n-1]
	}
	img, err := render.Render(fen, render.Options{LastMove: last})
	if err != nil {
		obslog.L().Error("png render failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(path, img, 0o644); err != nil {
		obslog.L().Error("png write failed", zap.String("path", path), zap.Error(err))
		return
	}
	fmt.Printf("final position written to %s\n", path)
}

func closeStrategy(s strategy.Strategy) {
	if eb, ok := s.(strategy.EngineBacked); ok {
		if err := eb.Close(); err != nil {
			obslog.L().Warn("strategy close failed",
				zap.String("strategy", s.Name()), zap.Error(err))
		}
	}
}
