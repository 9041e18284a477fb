package bme280

import (
	"fmt"
	"math"

	"periph.io/x/conn/v3/physic"
)

// Operating range of the sensor, from the datasheet.
const (
	TemperatureMin float32 = -40  // °C
	TemperatureMax float32 = 85   // °C
	PressureMin    float32 = 300  // hPa
	PressureMax    float32 = 1100 // hPa
	HumidityMin    float32 = 0    // %RH
	HumidityMax    float32 = 100  // %RH
)

// Measurements is one compensated reading.
type Measurements struct {
	Temperature float32 `json:"temperature"` // °C
	Pressure    float32 `json:"pressure"`    // hPa
	Humidity    float32 `json:"humidity"`    // %RH
}

// Clamped returns m with every value constrained to the operating range.
func (m Measurements) Clamped() Measurements {
	return Measurements{
		Temperature: clamp(m.Temperature, TemperatureMin, TemperatureMax),
		Pressure:    clamp(m.Pressure, PressureMin, PressureMax),
		Humidity:    clamp(m.Humidity, HumidityMin, HumidityMax),
	}
}

// Env converts m to periph units.
func (m Measurements) Env() physic.Env {
	return physic.Env{
		Temperature: physic.ZeroCelsius + physic.Temperature(float64(m.Temperature)*float64(physic.Celsius)),
		Pressure:    physic.Pressure(float64(m.Pressure) * float64(100*physic.Pascal)),
		Humidity:    physic.RelativeHumidity(float64(m.Humidity) * float64(physic.PercentRH)),
	}
}

// FromEnv converts periph units to a Measurements. Values are not clamped.
func FromEnv(e physic.Env) Measurements {
	return Measurements{
		Temperature: float32(float64(e.Temperature-physic.ZeroCelsius) / float64(physic.Celsius)),
		Pressure:    float32(float64(e.Pressure) / float64(100*physic.Pascal)),
		Humidity:    float32(float64(e.Humidity) / float64(physic.PercentRH)),
	}
}

func (m Measurements) String() string {
	return fmt.Sprintf("%.2f°C %.2fhPa %.2f%%rH", m.Temperature, m.Pressure, m.Humidity)
}

// RawSample holds the uncompensated ADC values of one burst read.
type RawSample struct {
	Pressure    uint32 // 20 bits
	Temperature uint32 // 20 bits
	Humidity    uint32 // 16 bits
}

// DecodeSample extracts the three ADC values from the 0xF7..0xFE burst.
func DecodeSample(b [dataLen]byte) RawSample {
	return RawSample{
		Pressure:    uint32(b[0])<<12 | uint32(b[1])<<4 | uint32(b[2])>>4,
		Temperature: uint32(b[3])<<12 | uint32(b[4])<<4 | uint32(b[5])>>4,
		Humidity:    uint32(b[6])<<8 | uint32(b[7]),
	}
}

// TFine is the fine temperature computed by CompensateTemperature. Pressure
// and humidity compensation of a sample are only correct when given the
// TFine of the same sample.
type TFine int32

// Compensate runs the three compensation steps on s, in the only valid
// order: temperature, pressure then humidity.
func Compensate(s RawSample, c *Calibration) (Measurements, error) {
	t, tf, err := CompensateTemperature(s.Temperature, c)
	if err != nil {
		return Measurements{}, err
	}
	p, err := CompensatePressure(s.Pressure, c, tf)
	if err != nil {
		return Measurements{}, err
	}
	h, err := CompensateHumidity(s.Humidity, c, tf)
	if err != nil {
		return Measurements{}, err
	}
	return Measurements{Temperature: t, Pressure: p, Humidity: h}, nil
}

// CompensateTemperature returns the temperature in °C and the fine
// temperature needed by CompensatePressure and CompensateHumidity.
//
// This is the floating point formula of the datasheet, section 8.1.
func CompensateTemperature(raw uint32, c *Calibration) (float32, TFine, error) {
	var1 := float32(raw)/16384.0 - float32(c.T1)/1024.0
	var1 = var1 * float32(c.T2)
	var2 := float32(raw)/131072.0 - float32(c.T1)/8192.0
	var2 = var2 * var2 * float32(c.T3)
	sum := var1 + var2
	if !finite(sum) {
		return 0, 0, ErrCompensationFailed
	}
	return clamp(sum/5120.0, TemperatureMin, TemperatureMax), TFine(sum), nil
}

// CompensatePressure returns the pressure in hPa.
//
// tf must come from CompensateTemperature on the same sample; a zero or stale
// value silently produces a wrong pressure.
func CompensatePressure(raw uint32, c *Calibration, tf TFine) (float32, error) {
	var1 := float32(tf)/2.0 - 64000.0
	var2 := var1 * var1 * float32(c.P6) / 32768.0
	var2 = var2 + var1*float32(c.P5)*2.0
	var2 = var2/4.0 + float32(c.P4)*65536.0
	var3 := float32(c.P3) * var1 * var1 / 524288.0
	var1 = (var3 + float32(c.P2)*var1) / 524288.0
	var1 = (1.0 + var1/32768.0) * float32(c.P1)
	if !(var1 > 0) {
		// Would divide by zero or flip the sign.
		return 0, ErrInvalidData
	}
	p := float32(1048576.0) - float32(raw)
	p = (p - var2/4096.0) * 3125.0
	if p < 2147483648.0 {
		p = p * 2.0 / var1
	} else {
		p = p / var1 * 2.0
	}
	var1 = float32(c.P9) * ((p / 8.0) * (p / 8.0) / 8192.0) / 4096.0
	var2 = p * float32(c.P8) / 32768.0
	p = p + (var1+var2+float32(c.P7))/16.0
	if !finite(p) {
		return 0, ErrCompensationFailed
	}
	// Pa to hPa.
	return clamp(p/100.0, PressureMin, PressureMax), nil
}

// CompensateHumidity returns the relative humidity in %RH.
//
// tf must come from CompensateTemperature on the same sample.
func CompensateHumidity(raw uint32, c *Calibration, tf TFine) (float32, error) {
	var1 := float32(tf) - 76800.0
	var2 := float32(c.H4)*64.0 + float32(c.H5)/16384.0*var1
	var3 := float32(raw) - var2
	var4 := float32(c.H2) / 65536.0
	var5 := 1.0 + float32(c.H3)/67108864.0*var1
	var6 := 1.0 + float32(c.H6)/67108864.0*var1*var5
	var6 = var3 * var4 * (var5 * var6)
	h := var6 * (1.0 - float32(c.H1)*var6/524288.0)
	if !finite(h) {
		return 0, ErrCompensationFailed
	}
	return clamp(h, HumidityMin, HumidityMax), nil
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}
