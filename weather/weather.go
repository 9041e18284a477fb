// Package weather exposes the current conditions measured by a BME280 behind a
// single capability, so the HTTP layer doesn't care whether readings come
// from the sensor, a per-request sensor or a fixed stand-in.
package weather

import (
	"sync"

	"github.com/rubiojr/go-weatherpi/bme280"
	"periph.io/x/conn/v3/i2c"
)

// Provider attempts one measurement.
type Provider interface {
	Measure() (bme280.Measurements, error)
}

// ProviderFunc adapts a function to a Provider.
type ProviderFunc func() (bme280.Measurements, error)

func (f ProviderFunc) Measure() (bme280.Measurements, error) {
	return f()
}

// Sensor shares one initialized device between concurrent callers. The bus
// doesn't tolerate interleaved transactions, so measurements are serialized.
type Sensor struct {
	mu  sync.Mutex
	dev *bme280.Dev
}

// NewSensor wraps an initialized device.
func NewSensor(dev *bme280.Dev) *Sensor {
	return &Sensor{dev: dev}
}

func (s *Sensor) Measure() (bme280.Measurements, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev.Sense()
}

// Opener opens the I²C bus, usually i2creg.Open.
type Opener func() (i2c.BusCloser, error)

// PerRequest opens the bus and runs the whole initialization sequence for
// every measurement. Nothing is cached between calls, and concurrent calls
// are not serialized beyond what the bus driver does.
type PerRequest struct {
	open Opener
	addr uint16
	opts bme280.Opts
}

// NewPerRequest returns a Provider opening its own bus handle per call. nil
// opts means bme280.DefaultOpts.
func NewPerRequest(open Opener, addr uint16, opts *bme280.Opts) *PerRequest {
	if opts == nil {
		opts = &bme280.DefaultOpts
	}
	return &PerRequest{open: open, addr: addr, opts: *opts}
}

func (p *PerRequest) Measure() (bme280.Measurements, error) {
	bus, err := p.open()
	if err != nil {
		return bme280.Measurements{}, err
	}
	defer bus.Close()

	opts := p.opts
	dev, err := bme280.NewI2C(bus, p.addr, &opts)
	if err != nil {
		return bme280.Measurements{}, err
	}
	return dev.Sense()
}

// Fixed always returns the same reading. It stands in for the sensor when
// debugging away from the hardware.
type Fixed struct {
	Reading bme280.Measurements
}

// NewMock returns a Fixed provider reporting 1 for every value.
func NewMock() *Fixed {
	return &Fixed{Reading: bme280.Measurements{Temperature: 1, Pressure: 1, Humidity: 1}}
}

func (f *Fixed) Measure() (bme280.Measurements, error) {
	return f.Reading, nil
}
