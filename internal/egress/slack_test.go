package egress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fionafan/callout/internal/config"
)

func TestNewSlackNotifierValidatesConfig(t *testing.T) {
	_, err := NewSlackNotifier(config.SlackConfig{Channel: "#experiments"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot token")

	_, err = NewSlackNotifier(config.SlackConfig{BotToken: "xoxb-test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel")

	n, err := NewSlackNotifier(config.SlackConfig{BotToken: "xoxb-test", Channel: "#experiments"})
	require.NoError(t, err)
	assert.Equal(t, "slack", n.Name())
}
