package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arindamb69/AI-ML-Quiz/internal/config"
)

type testConfig struct {
	HTTP struct {
		Port int32
	}
	LLM struct {
		Provider string
		Model    string
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad(t *testing.T) {
	t.Run("reads values from file", func(t *testing.T) {
		p := writeConfigFile(t, `
http:
  port: 8080
llm:
  provider: ollama
  model: llama3
`)

		var c testConfig
		require.NoError(t, config.Load(p, &c))
		require.Equal(t, int32(8080), c.HTTP.Port)
		require.Equal(t, "ollama", c.LLM.Provider)
		require.Equal(t, "llama3", c.LLM.Model)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		p := writeConfigFile(t, `
http:
  port: 8080
llm:
  provider: ollama
`)
		t.Setenv("LLM_PROVIDER", "groq")

		var c testConfig
		require.NoError(t, config.Load(p, &c))
		require.Equal(t, "groq", c.LLM.Provider)
		require.Equal(t, int32(8080), c.HTTP.Port)
	})

	t.Run("missing file fails", func(t *testing.T) {
		var c testConfig
		require.Error(t, config.Load(filepath.Join(t.TempDir(), "nope.yaml"), &c))
	})
}
