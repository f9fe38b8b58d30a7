package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct{ Limit int }

type sampleConf struct {
	Limit int `json:"limit"`
}

func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	err := reg.Register("s", func(conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{Limit: c.Limit}, nil
	})
	require.NoError(t, err)

	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"limit": 3}})
	require.NoError(t, err)
	assert.Equal(t, 3, inst.Limit)

	// env overrides arrive as strings
	inst, err = reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"limit": "7"}})
	require.NoError(t, err)
	assert.Equal(t, 7, inst.Limit)
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	require.NoError(t, reg.Register("x", func(map[string]any) (int, error) { return 1, nil }))
	assert.Error(t, reg.Register("x", func(map[string]any) (int, error) { return 2, nil }))
	assert.Error(t, reg.Register("nil", nil))
	_, err := reg.Create(ModuleConfig{Type: "y"})
	assert.ErrorContains(t, err, "unknown module type")
	assert.Equal(t, []string{"x"}, reg.Names())
}
