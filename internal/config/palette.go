package config

import (
	"github.com/olivierh59500/particle-rules/internal/palette"
)

// Palette builds the type color table, applying the configured colors over
// the defaults.
func (c *Config) Palette() (*palette.Palette, error) {
	p := palette.New(len(c.Types))
	for _, t := range c.Types {
		if t.Color == "" {
			continue
		}
		if err := p.Set(t.ID, t.Color); err != nil {
			return nil, err
		}
	}
	return p, nil
}
