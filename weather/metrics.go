package weather

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rubiojr/go-weatherpi/bme280"
)

// Instrumented records every measurement of the wrapped Provider as
// Prometheus metrics.
type Instrumented struct {
	next        Provider
	temperature prometheus.Gauge
	pressure    prometheus.Gauge
	humidity    prometheus.Gauge
	results     *prometheus.CounterVec
	duration    prometheus.Histogram
}

// Instrument wraps p and registers its collectors with reg.
func Instrument(p Provider, reg prometheus.Registerer) *Instrumented {
	i := &Instrumented{
		next: p,
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weather_temperature_celsius",
			Help: "Last measured temperature.",
		}),
		pressure: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weather_pressure_hectopascals",
			Help: "Last measured atmospheric pressure.",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weather_humidity_percent",
			Help: "Last measured relative humidity.",
		}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_measurements_total",
			Help: "Measurements attempted, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "weather_measurement_duration_seconds",
			Help:    "Time spent producing a measurement, bus transactions included.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}
	reg.MustRegister(i.temperature, i.pressure, i.humidity, i.results, i.duration)
	return i
}

func (i *Instrumented) Measure() (bme280.Measurements, error) {
	start := time.Now()
	m, err := i.next.Measure()
	i.duration.Observe(time.Since(start).Seconds())
	i.results.WithLabelValues(bme280.Kind(err)).Inc()
	if err != nil {
		return m, err
	}
	i.temperature.Set(float64(m.Temperature))
	i.pressure.Set(float64(m.Pressure))
	i.humidity.Set(float64(m.Humidity))
	return m, nil
}
