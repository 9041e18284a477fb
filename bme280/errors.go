package bme280

import (
	"errors"
	"fmt"
)

var (
	// ErrBus is matched by every transport level failure.
	ErrBus = errors.New("bme280: i2c bus error")
	// ErrUnsupportedChip is returned when the chip id register doesn't hold 0x60.
	ErrUnsupportedChip = errors.New("bme280: unsupported chip")
	// ErrNoCalibrationData is returned by Sense before the calibration
	// coefficients were read, e.g. when Init wasn't called or failed.
	ErrNoCalibrationData = errors.New("bme280: no calibration data")
	// ErrInvalidData is returned when compensation hits a non-physical
	// intermediate, such as a non-positive pressure denominator.
	ErrInvalidData = errors.New("bme280: invalid data")
	// ErrCompensationFailed is returned when a compensated value isn't finite.
	ErrCompensationFailed = errors.New("bme280: compensation failed")
)

// BusError wraps a failed register transaction.
type BusError struct {
	Op  string // "read" or "write"
	Reg byte
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("bme280: %s register 0x%02X: %v", e.Op, e.Reg, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrBus) hold for any *BusError.
func (e *BusError) Is(target error) bool { return target == ErrBus }

// ChipError reports the identity byte read from a device that isn't a BME280.
type ChipError struct {
	Got byte
}

func (e *ChipError) Error() string {
	return fmt.Sprintf("bme280: unsupported chip id 0x%02X, expected 0x%02X", e.Got, chipID)
}

func (e *ChipError) Is(target error) bool { return target == ErrUnsupportedChip }

// Kind returns a short stable label for err, suitable as a metric label.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrBus):
		return "bus"
	case errors.Is(err, ErrUnsupportedChip):
		return "unsupported_chip"
	case errors.Is(err, ErrNoCalibrationData):
		return "no_calibration"
	case errors.Is(err, ErrInvalidData):
		return "invalid_data"
	case errors.Is(err, ErrCompensationFailed):
		return "compensation_failed"
	}
	return "error"
}
