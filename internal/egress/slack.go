package egress

import (
	"context"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/fionafan/callout/internal/config"
	"github.com/fionafan/callout/internal/errors"
)

type SlackNotifier struct {
	client  *slack.Client
	channel string
}

func NewSlackNotifier(cfg config.SlackConfig) (*SlackNotifier, error) {
	if cfg.BotToken == "" {
		return nil, errors.InvalidInput("slack bot token is required")
	}
	if cfg.Channel == "" {
		return nil, errors.InvalidInput("slack channel is required")
	}
	return &SlackNotifier{
		client:  slack.New(cfg.BotToken),
		channel: cfg.Channel,
	}, nil
}

func (n *SlackNotifier) Name() string {
	return "slack"
}

func (n *SlackNotifier) Send(ctx context.Context, text string) error {
	_, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return errors.Wrap(err, "failed to send Slack message")
	}
	slog.Debug("Slack message sent", "channel", n.channel)
	return nil
}

func (n *SlackNotifier) Health(ctx context.Context) error {
	if n.client == nil {
		return errors.Transient("Slack client not initialized")
	}
	if _, err := n.client.AuthTestContext(ctx); err != nil {
		return errors.Transient("Slack connection failed")
	}
	return nil
}
