package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modelmachine/modelmachine/internal/config"
)

func TestLoadUsesBuiltinDefaultsWithNoEnv(t *testing.T) {
	d := config.Load()
	require.Equal(t, "mm-2", d.Variant)
	require.Equal(t, 16, d.WordBits)
}

func TestLoadHonorsEnvOverrides(t *testing.T) {
	t.Setenv("MM_VARIANT", "mm-0")
	t.Setenv("MM_WORD_BITS", "8")
	t.Setenv("MM_PROTECT_MEMORY", "true")

	d := config.Load()
	require.Equal(t, "mm-0", d.Variant)
	require.Equal(t, 8, d.WordBits)
	require.True(t, d.ProtectMemory)

	os.Unsetenv("MM_VARIANT")
	os.Unsetenv("MM_WORD_BITS")
	os.Unsetenv("MM_PROTECT_MEMORY")
}
