package telegram

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/lotbot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// allowedUpdates limits Bot API delivery to the update kinds the routers handle.
var allowedUpdates = []string{"message"}

// buildPoller picks a webhook or long poller from the run mode.
func buildPoller(cfg *coreconfig.Config) tele.Poller {
	if strings.EqualFold(strings.TrimSpace(cfg.Telegram.RunMode), coreconfig.RunModeWebhook) {
		return &tele.Webhook{
			Listen:         fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port),
			AllowedUpdates: allowedUpdates,
			Endpoint:       &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}
	return &tele.LongPoller{
		Timeout:        longPollTimeout(cfg),
		AllowedUpdates: allowedUpdates,
	}
}

func longPollTimeout(cfg *coreconfig.Config) time.Duration {
	if sec := cfg.Telegram.LongPollTimeoutSeconds; sec > 0 {
		return time.Duration(sec) * time.Second
	}
	return defaultLongPollTimeout
}
