package main

import (
	"fmt"
	"os"

	"github.com/jancona/dabmsc/msc"
	"gopkg.in/yaml.v3"
)

// Config is the decoder configuration file. Command line flags override it.
type Config struct {
	Mode       int  `yaml:"mode"`       // transmission mode 1..4
	Address    int  `yaml:"address"`    // sub-channel start address in CUs
	Size       int  `yaml:"size"`       // sub-channel size in CUs
	Protection int  `yaml:"protection"` // EEP level 1..4
	OptionB    bool `yaml:"option_b"`   // EEP-B instead of EEP-A
	DABPlus    bool `yaml:"dabplus"`    // check DAB+ fire codes

	Scale float32 `yaml:"scale"` // soft value scale factor, 0 means 1

	Serial struct {
		Port string `yaml:"port"`
		Baud int    `yaml:"baud"`
	} `yaml:"serial"`

	Metrics string `yaml:"metrics"` // listen address for Prometheus metrics
}

func defaultConfig() Config {
	c := Config{Mode: 1, Protection: 3, Scale: 1}
	c.Serial.Baud = 115200
	return c
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(filename string) (Config, error) {
	config := defaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return config, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return config, nil
}

func (c Config) Geometry() (msc.FrameGeometry, error) {
	return msc.GeometryForMode(c.Mode)
}

func (c Config) Subchannel() msc.SubchannelConfig {
	return msc.SubchannelConfig{
		Address:    c.Address,
		Size:       c.Size,
		Protection: c.Protection - 1,
		OptionB:    c.OptionB,
	}
}
