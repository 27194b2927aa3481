package config

import (
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sim.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Len(t, c.Types, 5)
	assert.Len(t, c.Rules, 25)
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
width = 200
height = 100
layout = "perlin"
workers = 3

[[types]]
id = 1
name = "yellow"
count = 10
range_min = 0
range_max = 20
color = "#ffcc00"

[[types]]
id = 2
count = 5
range_min = 2
range_max = 30

[[rules]]
affected = 1
source = 2
strength = -0.5
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 200, c.Width)
	assert.Equal(t, 100, c.Height)
	assert.Equal(t, 3, c.Workers)
	assert.Equal(t, "perlin", c.Layout)
	assert.Equal(t, 0.1, c.Dt, "unset keys keep their default")
	require.Len(t, c.Types, 2)
	assert.Equal(t, "#ffcc00", c.Types[0].Color)
	assert.Equal(t, []RuleConfig{{Affected: 1, Source: 2, Strength: -0.5}}, c.Rules)
}

func TestLoadWithoutTypesUsesDefaults(t *testing.T) {
	c, err := Load(writeFile(t, "width = 300\nheight = 300\n"))
	require.NoError(t, err)
	assert.Len(t, c.Types, 5)
	assert.Len(t, c.Rules, 25)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
	_, err = Load(writeFile(t, "width = \"wide\"\n"))
	assert.Error(t, err)
	_, err = Load(writeFile(t, "width = -1\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -3 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"friction overshoot", func(c *Config) { c.Friction = 20 }},
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"bad layout", func(c *Config) { c.Layout = "spiral" }},
		{"no types", func(c *Config) { c.Types = nil }},
		{"zero id", func(c *Config) { c.Types[0].ID = 0 }},
		{"duplicate id", func(c *Config) { c.Types[1].ID = 1 }},
		{"negative count", func(c *Config) { c.Types[0].Count = -1 }},
		{"empty band", func(c *Config) { c.Types[0].RangeMin = c.Types[0].RangeMax }},
		{"unknown source", func(c *Config) { c.Rules[0].Source = 42 }},
		{"duplicate rule", func(c *Config) { c.Rules[1] = c.Rules[0] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestBuild(t *testing.T) {
	c := Default()
	c.Width, c.Height = 120, 90
	for i := range c.Types {
		c.Types[i].Count = 4
	}
	c.Rules = []RuleConfig{
		{Affected: 1, Source: 2, Strength: 0.5},
		{Affected: 2, Source: 2, Strength: -0.25},
	}

	world, rules, err := Build(c, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 20, world.Len())
	require.Len(t, rules, 2)

	assert.Equal(t, 0.5, rules[0].Strength())
	assert.Equal(t, world.Group(1), rules[0].Affected())
	assert.Equal(t, world.Group(2), rules[0].Source())
	assert.Equal(t, -0.25, rules[1].Strength())

	c.Width = 0
	_, _, err = Build(c, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestPalette(t *testing.T) {
	c := Default()
	c.Types[1].Color = "#010203"
	p, err := c.Palette()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{1, 2, 3, 255}, p.Color(2))
	assert.Equal(t, color.RGBA{255, 255, 0, 255}, p.Color(1))

	c.Types[0].Color = "#nothex"
	_, err = c.Palette()
	assert.Error(t, err)
}

func TestSampleConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "particle-rules.toml"))
	require.NoError(t, err)
	assert.Len(t, c.Types, 3)
	assert.Len(t, c.Rules, 6)
	_, err = c.Palette()
	assert.NoError(t, err)
}
