// Driver for the Bosch BME280 temperature, pressure and humidity sensor over I²C.
//
// Datasheet: https://www.bosch-sensortec.com/media/boschsensortec/downloads/datasheets/bst-bme280-ds002.pdf
//
// A Dev is not safe for concurrent use. The bus is a shared hardware resource,
// callers serving concurrent requests must serialize access to a single Dev.
package bme280

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/i2c"
)

// State is the initialization progress of a Dev: Identified once the chip id
// matched and the soft reset was issued, Calibrated once the coefficients were
// read and Ready once the configuration registers were written.
type State int

const (
	Uninitialized State = iota
	Identified
	Calibrated
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Identified:
		return "Identified"
	case Calibrated:
		return "Calibrated"
	case Ready:
		return "Ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Opts holds the configuration written during Init.
type Opts struct {
	Temperature Oversampling
	Pressure    Oversampling
	Humidity    Oversampling
	Standby     Standby
	Filter      Filter
	// ResetFailureFatal aborts Init when the soft reset write fails. When
	// false the failure is logged and initialization continues.
	ResetFailureFatal bool
}

// DefaultOpts is oversampling x1 on every channel, Normal mode with a 1s
// standby and the IIR filter off.
var DefaultOpts = Opts{
	Temperature:       O1x,
	Pressure:          O1x,
	Humidity:          O1x,
	Standby:           S1s,
	Filter:            NoFilter,
	ResetFailureFatal: true,
}

// startup is the time the device needs after a soft reset before its
// registers can be read.
const startup = 2 * time.Millisecond

// Dev is a handle to a BME280.
type Dev struct {
	t     transport
	name  string
	opts  Opts
	state State
	cal   Calibration
	log   zerolog.Logger
}

// Open binds a device at addr on b without any bus traffic. Call Init before
// Sense.
func Open(b i2c.Bus, addr uint16, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &i2c.Dev{Bus: b, Addr: addr}
	dev := &Dev{
		t:    transport{c: d},
		name: d.String(),
		opts: *opts,
	}
	dev.log = zerolog.New(os.Stderr).With().Timestamp().Str("device", dev.name).Logger()
	dev.log = dev.log.Level(zerolog.InfoLevel)
	return dev
}

// NewI2C returns a BME280 at addr on b, ready to Sense.
//
// Passing nil for opts uses DefaultOpts.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	dev := Open(b, addr, opts)
	if err := dev.Init(); err != nil {
		return nil, err
	}
	return dev, nil
}

func (dev *Dev) EnableDebugging() {
	dev.log = dev.log.Level(zerolog.DebugLevel)
}

// WithLogger replaces the device logger.
func (dev *Dev) WithLogger(l zerolog.Logger) *Dev {
	dev.log = l.With().Str("device", dev.name).Logger()
	return dev
}

func (dev *Dev) String() string {
	return "BME280{" + dev.name + "}"
}

// State returns how far initialization went.
func (dev *Dev) State() State {
	return dev.state
}

// Calibration returns the coefficients read by Init, if any.
func (dev *Dev) Calibration() (Calibration, bool) {
	return dev.cal, dev.state >= Calibrated
}

// Init identifies, resets, calibrates and configures the device. Each step
// stops the sequence on failure and the state stays at the last completed
// step. Calling Init again restarts from the chip id check.
func (dev *Dev) Init() error {
	dev.state = Uninitialized

	id, err := dev.t.writeRead(regChipID, 1)
	if err != nil {
		return err
	}
	dev.log.Debug().Msgf("chip id 0x%02X", id[0])
	if id[0] != chipID {
		return &ChipError{Got: id[0]}
	}

	if err := dev.t.writeReg(regSoftReset, softResetCmd); err != nil {
		if dev.opts.ResetFailureFatal {
			return err
		}
		dev.log.Warn().Err(err).Msg("soft reset failed, continuing")
	} else {
		time.Sleep(startup)
	}
	dev.state = Identified

	if err := dev.calibrate(); err != nil {
		return err
	}
	dev.state = Calibrated

	if err := dev.configure(); err != nil {
		return err
	}
	dev.state = Ready
	return nil
}

func (dev *Dev) calibrate() error {
	pt, err := dev.t.writeRead(regCalibPT, calibPTLen)
	if err != nil {
		return err
	}
	h, err := dev.t.writeRead(regCalibH, calibHLen)
	if err != nil {
		return err
	}
	var ptb [calibPTLen]byte
	var hb [calibHLen]byte
	copy(ptb[:], pt)
	copy(hb[:], h)
	dev.cal = ParseCalibration(ptb, hb)
	dev.log.Debug().Str("calibration", dev.cal.String()).Msg("calibrated")
	return nil
}

// configure selects Normal mode. ctrl_hum only takes effect after ctrl_meas
// is written, so the order matters.
func (dev *Dev) configure() error {
	regs := []struct {
		reg, v byte
	}{
		{regCtrlHum, byte(dev.opts.Humidity & 7)},
		{regCtrlMeas, ctrlMeas(dev.opts.Temperature, dev.opts.Pressure, Normal)},
		{regConfig, config(dev.opts.Standby, dev.opts.Filter, false)},
	}
	for _, r := range regs {
		if err := dev.t.writeReg(r.reg, r.v); err != nil {
			return err
		}
		dev.log.Debug().Msgf("0x%02X <- 0x%02X", r.reg, r.v)
	}
	return nil
}

// Sense reads one sample and compensates it.
//
// It fails with ErrNoCalibrationData, without touching the bus, when the
// calibration coefficients weren't read yet.
func (dev *Dev) Sense() (Measurements, error) {
	if dev.state < Calibrated {
		return Measurements{}, ErrNoCalibrationData
	}
	b, err := dev.t.writeRead(regData, dataLen)
	if err != nil {
		return Measurements{}, err
	}
	var buf [dataLen]byte
	copy(buf[:], b)
	raw := DecodeSample(buf)
	dev.log.Debug().
		Uint32("press", raw.Pressure).
		Uint32("temp", raw.Temperature).
		Uint32("hum", raw.Humidity).
		Msg("raw sample")
	return Compensate(raw, &dev.cal)
}
