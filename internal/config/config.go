// Package config loads the board wiring description. The pattern, tile size
// and frame interval are compile-time constants; only wiring lives here.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SPI struct {
	Port    string `yaml:"port"`     // spireg name, e.g. SPI0.0 or /dev/spidev0.0
	SpeedHz int    `yaml:"speed_hz"` // e.g. 8000000
}

type Pins struct {
	DC  string `yaml:"dc"`  // data/command select, e.g. GPIO24
	RST string `yaml:"rst"` // panel reset, optional
}

type Sim struct {
	Addr string `yaml:"addr"` // simulator HTTP listen address
}

type Config struct {
	SPI    SPI  `yaml:"spi,omitempty"`
	Pins   Pins `yaml:"pins,omitempty"`
	TickUs int  `yaml:"tick_us,omitempty"` // timer tick granularity in µs
	Sim    Sim  `yaml:"sim,omitempty"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
