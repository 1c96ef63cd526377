package lorarx

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// A profile names a radio configuration in a YAML file so that command line
// invocations don't have to repeat the same three flags for every capture.
//
//	spreading_factor: 8
//	code_rate: 4
//	explicit_header: true
type profile struct {
	SpreadingFactor int  `yaml:"spreading_factor"`
	CodeRate        int  `yaml:"code_rate"`
	ExplicitHeader  bool `yaml:"explicit_header"`
}

// LoadProfile reads a YAML decode profile and validates it with the same
// rules as NewDecoder.
func LoadProfile(path string) (Config, error) {
	var data, readErr = os.ReadFile(path)
	if readErr != nil {
		return Config{}, fmt.Errorf("reading profile: %w", readErr)
	}

	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Config{}, fmt.Errorf("parsing profile %s: %w", path, err)
	}

	var config = Config{
		SpreadingFactor: p.SpreadingFactor,
		CodeRate:        p.CodeRate,
		Header:          p.ExplicitHeader,
	}
	if err := config.check(); err != nil {
		return Config{}, fmt.Errorf("profile %s: %w", path, err)
	}

	return config, nil
}
