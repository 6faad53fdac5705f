package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DevicePool configures one simulated or physical device type.
type DevicePool struct {
	Enabled bool `yaml:"enabled"`
	Count   int  `yaml:"count"`
}

type Config struct {
	Logger struct {
		Verbosity string `yaml:"verbosity"`
	} `yaml:"logger"`
	Devices struct {
		// Preferred hardware type for dispatch: "gpu" or "fpga".
		Preferred string     `yaml:"preferred"`
		GPU       DevicePool `yaml:"gpu"`
		FPGA      DevicePool `yaml:"fpga"`
	} `yaml:"devices"`
}

// Default returns the configuration used when no file is supplied:
// one GPU, no FPGA, info-level logging.
func Default() *Config {
	var cfg Config
	cfg.Logger.Verbosity = "info"
	cfg.Devices.Preferred = "gpu"
	cfg.Devices.GPU = DevicePool{Enabled: true, Count: 1}
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects configurations the device layer cannot honor.
func (c *Config) Validate() error {
	switch c.Devices.Preferred {
	case "", "gpu", "fpga":
	default:
		return fmt.Errorf("config: unknown preferred device type %q", c.Devices.Preferred)
	}
	if c.Devices.GPU.Enabled && c.Devices.GPU.Count <= 0 {
		return fmt.Errorf("config: gpu pool enabled with count %d", c.Devices.GPU.Count)
	}
	if c.Devices.FPGA.Enabled && c.Devices.FPGA.Count <= 0 {
		return fmt.Errorf("config: fpga pool enabled with count %d", c.Devices.FPGA.Count)
	}
	return nil
}
