package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/odrmap/utils/config"
	"gopkg.in/yaml.v2"
)

func TestNewRuntimeConfigDefaults(t *testing.T) {
	var c config.Config
	err := yaml.UnmarshalStrict([]byte(`
input:
  file: town.yaml
control:
  junction:
    seed_offset: 3
`), &c)
	require.NoError(t, err)
	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSampleStep, rc.C.Geometry.SampleStep)
	assert.Equal(t, config.DefaultNearestSamples, rc.C.Geometry.NearestSamples)
	assert.Equal(t, uint64(3), rc.C.Junction.SeedOffset)
	assert.Equal(t, "town.yaml", rc.All.Input.File)
}

func TestNewRuntimeConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		in   config.Input
		ok   bool
	}{
		{"file only", config.Input{File: "a.yml"}, true},
		{"mongo", config.Input{URI: "mongodb://localhost", DB: "map", Col: "town"}, true},
		{"nothing", config.Input{}, false},
		{"mongo without col", config.Input{URI: "mongodb://localhost", DB: "map"}, false},
		{"wrong file extension", config.Input{File: "a.json"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := config.NewRuntimeConfig(config.Config{Input: c.in})
			if c.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNewRuntimeConfigOutput(t *testing.T) {
	_, err := config.NewRuntimeConfig(config.Config{
		Input:  config.Input{File: "a.yaml"},
		Output: &config.Output{},
	})
	assert.Error(t, err)
}
