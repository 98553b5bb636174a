package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdflow/internal/prompt"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, prompt.DefaultInteraction, cfg.Prompts.Interaction)
	assert.Equal(t, prompt.DefaultInteractionError, cfg.Prompts.InteractionError)
	assert.Equal(t, prompt.DefaultBlackboard, cfg.Prompts.Blackboard)
	assert.Empty(t, cfg.Prompts.Document)
	assert.Empty(t, cfg.Model)
	assert.Nil(t, cfg.Temperature)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
prompts:
  document: "You are a friendly tutor."
  interaction: "Rewrite the question."
model: gemini-2.0-flash
temperature: 0.3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "You are a friendly tutor.", cfg.Prompts.Document)
	assert.Equal(t, "Rewrite the question.", cfg.Prompts.Interaction)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.3, *cfg.Temperature, 1e-9)

	// Unset fields still get defaults.
	assert.Equal(t, prompt.DefaultInteractionError, cfg.Prompts.InteractionError)
	assert.Equal(t, prompt.DefaultBlackboard, cfg.Prompts.Blackboard)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompts: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
