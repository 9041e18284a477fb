// Command weatherd serves the readings of a BME280 over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rubiojr/go-weatherpi/bme280"
	"github.com/rubiojr/go-weatherpi/config"
	"github.com/rubiojr/go-weatherpi/server"
	"github.com/rubiojr/go-weatherpi/weather"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}
	log = log.Level(cfg.LogLevel)

	p, closer, err := provider(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("sensor")
	}
	defer closer()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	p = weather.Instrument(p, reg)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(p, log, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("listen", cfg.Listen).Bool("debug", cfg.Debug).Str("backend", cfg.Backend).Msg("serving")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server")
			stop()
		}
	}()

	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// provider builds the measurement source selected by cfg. The returned func
// releases the bus.
func provider(cfg config.Config, log zerolog.Logger) (weather.Provider, func(), error) {
	nop := func() {}
	if cfg.Debug {
		log.Warn().Msg("debug mode, serving a fixed reading")
		return weather.NewMock(), nop, nil
	}

	if _, err := host.Init(); err != nil {
		return nil, nop, err
	}

	opts := bme280.DefaultOpts
	opts.ResetFailureFatal = cfg.ResetFailureFatal

	if cfg.PerRequest {
		open := func() (i2c.BusCloser, error) { return i2creg.Open(cfg.Bus) }
		return weather.NewPerRequest(open, cfg.Address, &opts), nop, nil
	}

	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, nop, err
	}
	closer := func() { bus.Close() }

	if cfg.Backend == config.BackendPeriph {
		p, err := weather.NewPeriph(bus, cfg.Address)
		if err != nil {
			closer()
			return nil, nop, err
		}
		return p, func() {
			p.Halt()
			closer()
		}, nil
	}

	dev := bme280.Open(bus, cfg.Address, &opts).WithLogger(log)
	if err := dev.Init(); err != nil {
		closer()
		return nil, nop, err
	}
	log.Info().Stringer("device", dev).Msg("sensor ready")
	return weather.NewSensor(dev), closer, nil
}
