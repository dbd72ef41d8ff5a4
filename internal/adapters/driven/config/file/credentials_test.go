package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCredentials(t *testing.T) {
	t.Run("reads keys from environment", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test-openai")
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

		creds, err := LoadCredentials(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "sk-test-openai", creds.OpenAIKey)
		assert.Equal(t, "sk-ant-test", creds.AnthropicKey)
	})

	t.Run("missing keys are empty", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("ANTHROPIC_API_KEY", "")
		os.Unsetenv("OPENAI_API_KEY")
		os.Unsetenv("ANTHROPIC_API_KEY")

		creds, err := LoadCredentials(t.TempDir())
		require.NoError(t, err)

		assert.Empty(t, creds.OpenAIKey)
		assert.Empty(t, creds.AnthropicKey)
	})

	t.Run("seeds from dotenv file", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		os.Unsetenv("OPENAI_API_KEY")

		dir := t.TempDir()
		content := "OPENAI_API_KEY=sk-from-dotenv\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0600))

		creds, err := LoadCredentials(dir)
		require.NoError(t, err)

		assert.Equal(t, "sk-from-dotenv", creds.OpenAIKey)
	})

	t.Run("environment wins over dotenv", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-from-env")

		dir := t.TempDir()
		content := "OPENAI_API_KEY=sk-from-dotenv\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0600))

		creds, err := LoadCredentials(dir)
		require.NoError(t, err)

		assert.Equal(t, "sk-from-env", creds.OpenAIKey)
	})
}
