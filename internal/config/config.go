// Package config loads the optional TOML configuration for the training
// tool. Every field is a pointer so that an absent key leaves the
// corresponding default untouched.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"glyph-recog/internal/recog"
)

// Config mirrors the TOML file layout.
type Config struct {
	Train TrainConfig `toml:"train"`
}

// TrainConfig holds the tunables of a training run.
type TrainConfig struct {
	ScaleWidth    *int     `toml:"scale_width"`
	ScaleHeight   *int     `toml:"scale_height"`
	LineWidth     *int     `toml:"line_width"`
	Threshold     *int     `toml:"threshold"`
	MaxYShift     *int     `toml:"max_y_shift"`
	Charset       *string  `toml:"charset"`
	MinPadSamples *int     `toml:"min_pad_samples"`
	MinScore      *float64 `toml:"min_score"`
	MinFraction   *float64 `toml:"min_fraction"`
}

// Load reads the config file at path. A missing file is not an error and
// yields an empty config; a malformed file is.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Apply overlays the set config values onto params and returns the
// result together with the outlier knobs (zero when unset, which selects
// the built-in defaults downstream).
func (c *Config) Apply(params recog.Params) (recog.Params, float64, float64, error) {
	t := c.Train
	if t.ScaleWidth != nil {
		params.ScaleW = *t.ScaleWidth
	}
	if t.ScaleHeight != nil {
		params.ScaleH = *t.ScaleHeight
	}
	if t.LineWidth != nil {
		params.LineWidth = *t.LineWidth
	}
	if t.Threshold != nil {
		params.Threshold = *t.Threshold
	}
	if t.MaxYShift != nil {
		params.MaxYShift = *t.MaxYShift
	}
	if t.MinPadSamples != nil {
		params.MinPadSamples = *t.MinPadSamples
	}
	if t.Charset != nil {
		cs, err := ParseCharset(*t.Charset)
		if err != nil {
			return params, 0, 0, err
		}
		params.Charset = cs
	}

	var minScore, minFract float64
	if t.MinScore != nil {
		minScore = *t.MinScore
	}
	if t.MinFraction != nil {
		minFract = *t.MinFraction
	}
	return params, minScore, minFract, nil
}

// ParseCharset maps a config/flag string to a charset.
func ParseCharset(s string) (recog.Charset, error) {
	switch s {
	case "", "unknown":
		return recog.CharsetUnknown, nil
	case "digits":
		return recog.CharsetDigits, nil
	case "upper-alpha":
		return recog.CharsetUpperAlpha, nil
	case "lower-alpha":
		return recog.CharsetLowerAlpha, nil
	case "upper-roman":
		return recog.CharsetUpperRoman, nil
	case "lower-roman":
		return recog.CharsetLowerRoman, nil
	default:
		return recog.CharsetUnknown, fmt.Errorf("unknown charset %q", s)
	}
}
