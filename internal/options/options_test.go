package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type sessionConfig struct {
	limit   uint64
	strict  bool
	applied []string
}

func withLimit(n uint64) Option[*sessionConfig] {
	return New(func(c *sessionConfig) error {
		if n == 0 {
			return errors.New("limit must be positive")
		}
		c.limit = n
		c.applied = append(c.applied, "limit")

		return nil
	})
}

func withStrict() Option[*sessionConfig] {
	return NoError(func(c *sessionConfig) {
		c.strict = true
		c.applied = append(c.applied, "strict")
	})
}

func TestApply(t *testing.T) {
	cfg := &sessionConfig{}
	err := Apply(cfg, withLimit(1024), withStrict())
	require.NoError(t, err)
	require.Equal(t, uint64(1024), cfg.limit)
	require.True(t, cfg.strict)
	require.Equal(t, []string{"limit", "strict"}, cfg.applied)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	cfg := &sessionConfig{}
	err := Apply(cfg, withLimit(0), withStrict())
	require.Error(t, err)
	require.False(t, cfg.strict)
	require.Empty(t, cfg.applied)
}

func TestApply_NoOptions(t *testing.T) {
	cfg := &sessionConfig{}
	require.NoError(t, Apply(cfg))
	require.Equal(t, &sessionConfig{}, cfg)
}
