// Command plasmasim runs the render cycle against a recording display and
// streams every finished frame to browser clients over websocket.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-plasmatile/internal/app"
	"github.com/coreman2200/funtimes-plasmatile/internal/config"
	"github.com/coreman2200/funtimes-plasmatile/internal/driver/fake"
	"github.com/coreman2200/funtimes-plasmatile/internal/render"
	"github.com/coreman2200/funtimes-plasmatile/internal/timer"
	"github.com/coreman2200/funtimes-plasmatile/internal/ws"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		tickUs     = flag.Int("tick-us", 33, "timer tick granularity in µs (33 ≈ 30fps)")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	eAddr, eTick := *addr, *tickUs
	if cfg, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		if cfg.Sim.Addr != "" {
			eAddr = cfg.Sim.Addr
		}
		if cfg.TickUs > 0 {
			eTick = cfg.TickUs
		}
	}

	state := ws.NewState(render.TileW, render.TileH, render.TileGap)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/frames", state.HandleFramesWS)
	mux.HandleFunc("/healthz", state.HandleHealth)

	go func() {
		log.Info().Str("addr", eAddr).Msg("simulator listening")
		if err := http.ListenAndServe(eAddr, mux); err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	tmr := timer.New(timer.WithTick(time.Duration(eTick) * time.Microsecond))
	defer tmr.Close()

	core, err := app.InitCore(&fake.Driver{}, tmr)
	if err != nil {
		log.Fatal().Err(err).Msg("core init failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := core.Run(ctx, state.Publish); err != nil {
		log.Fatal().Err(err).Msg("render cycle failed")
	}
}
