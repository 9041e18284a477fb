// Package config reads the weather station settings from the environment,
// optionally seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	BackendNative = "native"
	BackendPeriph = "periph"
)

type Config struct {
	Listen            string        // WEATHER_LISTEN
	Debug             bool          // WEATHER_DEBUG, serve a fixed reading
	Bus               string        // WEATHER_I2C_BUS, i2creg name, empty for the first bus
	Address           uint16        // WEATHER_I2C_ADDR
	Backend           string        // WEATHER_BACKEND
	PerRequest        bool          // WEATHER_PER_REQUEST
	ResetFailureFatal bool          // WEATHER_RESET_FATAL
	LogLevel          zerolog.Level // WEATHER_LOG_LEVEL
}

// Default is the configuration used when no variable is set.
var Default = Config{
	Listen:            ":8000",
	Address:           0x76,
	Backend:           BackendNative,
	ResetFailureFatal: true,
	LogLevel:          zerolog.InfoLevel,
}

// Load reads files into the environment, without overriding variables
// already set, then parses the environment. Missing files are ignored.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: loading %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default
	var err error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && err == nil {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && err == nil {
			b, perr := strconv.ParseBool(strings.TrimSpace(v))
			if perr != nil {
				err = fmt.Errorf("config: %s: %w", key, perr)
				return
			}
			*dst = b
		}
	}

	str("WEATHER_LISTEN", &c.Listen)
	boolean("WEATHER_DEBUG", &c.Debug)
	str("WEATHER_I2C_BUS", &c.Bus)
	boolean("WEATHER_PER_REQUEST", &c.PerRequest)
	boolean("WEATHER_RESET_FATAL", &c.ResetFailureFatal)
	str("WEATHER_BACKEND", &c.Backend)
	if v, ok := lookup("WEATHER_I2C_ADDR"); ok && err == nil {
		// Base 0 accepts 0x76 as well as 118.
		a, perr := strconv.ParseUint(strings.TrimSpace(v), 0, 16)
		if perr != nil {
			err = fmt.Errorf("config: WEATHER_I2C_ADDR: %w", perr)
		}
		c.Address = uint16(a)
	}
	if v, ok := lookup("WEATHER_LOG_LEVEL"); ok && err == nil {
		l, perr := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(v)))
		if perr != nil {
			err = fmt.Errorf("config: WEATHER_LOG_LEVEL: %w", perr)
		}
		c.LogLevel = l
	}
	if err != nil {
		return Config{}, err
	}

	switch c.Backend {
	case BackendNative, BackendPeriph:
	default:
		return Config{}, fmt.Errorf("config: WEATHER_BACKEND: unknown backend %q", c.Backend)
	}
	if c.PerRequest && c.Backend != BackendNative {
		return Config{}, errors.New("config: WEATHER_PER_REQUEST requires the native backend")
	}
	return c, nil
}
