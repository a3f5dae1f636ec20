package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvSize           = "RAMGEN_SIZE"
	EnvBus            = "RAMGEN_BUS"
	EnvArchitecture   = "RAMGEN_ARCH"
	EnvTestbench      = "RAMGEN_TESTBENCH"
	EnvBurst          = "RAMGEN_BURST"
	EnvPipelineStages = "RAMGEN_PIPELINE_STAGES"
	EnvLogLevel       = "RAMGEN_LOG_LEVEL"
)

// LoadEnvFile loads variables from a dotenv file without overriding the
// ones already set. A missing ".env" is not an error; a missing explicitly
// named file is.
func LoadEnvFile(path string) error {
	if path == "" {
		err := godotenv.Load()
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}

	return godotenv.Load(path)
}

// ApplyEnv overrides configuration fields from the process environment.
func ApplyEnv(c Config) (Config, error) {
	return ApplyLookup(c, os.LookupEnv)
}

// ApplyLookup overrides configuration fields from lookup and validates the
// result.
func ApplyLookup(c Config, lookup func(string) (string, bool)) (Config, error) {
	var errs ValidationErrors

	collect := func(err error) {
		var fe *FieldError
		if errors.As(err, &fe) {
			errs = append(errs, fe)
		}
	}

	if v, ok := lookup(EnvSize); ok {
		s, err := ParseSizeClass(v)
		collect(err)
		c.Size = s
	}

	if v, ok := lookup(EnvBus); ok {
		b, err := ParseBusInterface(v)
		collect(err)
		c.Features.Bus = b
	}

	if v, ok := lookup(EnvArchitecture); ok {
		a, err := ParseArchitecture(v)
		collect(err)
		c.Features.Architecture = a
	}

	if v, ok := lookup(EnvTestbench); ok {
		m, err := ParseTestMethodology(v)
		collect(err)
		c.Features.Methodology = m
	}

	if v, ok := lookup(EnvBurst); ok {
		p, err := ParseBurstPolicy(v)
		collect(err)
		c.Features.Burst = p
	}

	if v, ok := lookup(EnvPipelineStages); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, &FieldError{
				Field: "pipelineStages", Value: v, Reason: "is not an integer",
			})
		} else {
			c.Features.PipelineStages = n
		}
	}

	if len(errs) > 0 {
		return Config{}, errs
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}
