package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const templatePath = "../../config/seed/bot_config.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigFlatten(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "config", "flatten", "--format", "json", templatePath)
		require.NoError(t, err)

		flat := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(out), &flat))
		assert.Equal(t, "Assistant", flat["chatbot_name"])
		assert.Equal(t, "light", flat["theme"])
	})

	t.Run("text sắp xếp theo key", func(t *testing.T) {
		out, err := execute(t, "config", "flatten", templatePath)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.NotEmpty(t, lines)
		assert.Contains(t, lines, `theme = "light"`)
		for i := 1; i < len(lines); i++ {
			assert.LessOrEqual(t, lines[i-1], lines[i])
		}
	})

	t.Run("file không tồn tại", func(t *testing.T) {
		_, err := execute(t, "config", "flatten", "missing.yaml")
		assert.Error(t, err)
	})
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "config", "flatten", "--format", "xml", templatePath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}
