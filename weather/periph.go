package weather

import (
	"sync"

	"github.com/rubiojr/go-weatherpi/bme280"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
)

// Periph reads the sensor through periph.io's bmxx80 driver instead of the
// bme280 package. Handy to cross-check readings on a new board.
type Periph struct {
	mu     sync.Mutex
	device *bmxx80.Dev
}

// NewPeriph initializes the bmxx80 driver for the device at addr.
func NewPeriph(b i2c.Bus, addr uint16) (*Periph, error) {
	dev, err := bmxx80.NewI2C(b, addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, err
	}
	return &Periph{device: dev}, nil
}

func (p *Periph) Measure() (bme280.Measurements, error) {
	e := physic.Env{}
	p.mu.Lock()
	err := p.device.Sense(&e)
	p.mu.Unlock()
	if err != nil {
		return bme280.Measurements{}, err
	}
	return bme280.FromEnv(e).Clamped(), nil
}

// Halt puts the device to sleep.
func (p *Periph) Halt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.device.Halt()
}
