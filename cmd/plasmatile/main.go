// Command plasmatile runs the mosaic demo on a real ST7735 panel. When no
// SPI port can be found it falls back to a terminal preview so the render
// cycle still runs on a development machine.
package main

import (
	"context"
	"flag"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-plasmatile/internal/app"
	"github.com/coreman2200/funtimes-plasmatile/internal/config"
	"github.com/coreman2200/funtimes-plasmatile/internal/display"
	"github.com/coreman2200/funtimes-plasmatile/internal/display/st7735"
	"github.com/coreman2200/funtimes-plasmatile/internal/display/term"
	"github.com/coreman2200/funtimes-plasmatile/internal/render"
	"github.com/coreman2200/funtimes-plasmatile/internal/timer"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		spiPort    = flag.String("spi", "", "SPI port name (empty: first available)")
		dcPin      = flag.String("dc", "GPIO24", "data/command pin name")
		rstPin     = flag.String("rst", "", "panel reset pin name (empty: none)")
		speedHz    = flag.Int("hz", 8000000, "SPI clock in Hz")
		tickUs     = flag.Int("tick-us", 1, "timer tick granularity in µs")
		inverted   = flag.Bool("inverted", false, "panel color inversion")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// Config overrides flags where set.
	eSPI, eDC, eRST, eHz, eTick := *spiPort, *dcPin, *rstPin, *speedHz, *tickUs
	if cfg, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		if cfg.SPI.Port != "" {
			eSPI = cfg.SPI.Port
		}
		if cfg.SPI.SpeedHz > 0 {
			eHz = cfg.SPI.SpeedHz
		}
		if cfg.Pins.DC != "" {
			eDC = cfg.Pins.DC
		}
		if cfg.Pins.RST != "" {
			eRST = cfg.Pins.RST
		}
		if cfg.TickUs > 0 {
			eTick = cfg.TickUs
		}
	}

	if _, err := host.Init(); err != nil {
		log.Fatal().Err(err).Msg("host init failed")
	}

	disp := openDisplay(eSPI, eDC, eRST, eHz, *inverted)
	defer disp.Halt()

	if err := disp.Fill(color.RGBA{A: 0xFF}); err != nil {
		log.Fatal().Err(err).Msg("panel clear failed")
	}

	tmr := timer.New(timer.WithTick(time.Duration(eTick) * time.Microsecond))
	defer tmr.Close()

	core, err := app.InitCore(disp, tmr)
	if err != nil {
		log.Fatal().Err(err).Msg("core init failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The single fatal boundary: any propagated cycle error ends the
	// process; the panel keeps its last frame.
	if err := core.Run(ctx, nil); err != nil {
		log.Fatal().Err(err).Msg("render cycle failed")
	}
}

// openDisplay opens the ST7735 panel, or the terminal preview when no SPI
// port is present.
func openDisplay(port, dc, rst string, hz int, inverted bool) display.Device {
	p, err := spireg.Open(port)
	if err != nil {
		log.Warn().Err(err).Msg("no SPI port; previewing on the terminal")
		return term.New(render.TileW)
	}

	dcPin := gpioreg.ByName(dc)
	if dcPin == nil {
		log.Fatal().Str("pin", dc).Msg("dc pin not found")
	}
	var rstPin gpio.PinIO
	if rst != "" {
		if rstPin = gpioreg.ByName(rst); rstPin == nil {
			log.Fatal().Str("pin", rst).Msg("rst pin not found")
		}
	}

	dev, err := st7735.NewSPI(p, dcPin, &st7735.Opts{
		W:        160,
		H:        128,
		Inverted: inverted,
		Freq:     physic.Frequency(hz) * physic.Hertz,
		RST:      rstPin,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("panel init failed")
	}
	log.Info().Stringer("dev", dev).Msg("panel initialized")
	return dev
}
