package runner

import (
	"context"

	"go-careers-scraper/internal/dedup"
	"go-careers-scraper/internal/delivery"
	"go-careers-scraper/internal/models"
	"go-careers-scraper/internal/telegram"
)

// WebhookNotifier posts every result to a subscriber.
type WebhookNotifier struct {
	Webhook *delivery.Webhook
}

func (n WebhookNotifier) Notify(ctx context.Context, _ models.ScrapeInput, result models.FetchResult) error {
	return n.Webhook.Deliver(ctx, result)
}

// TelegramNotifier sends a run summary to a chat, followed by one message per
// posting not announced by an earlier run when Seen is set.
type TelegramNotifier struct {
	Bot  *telegram.Bot
	Seen *dedup.JobSet
}

func (n TelegramNotifier) Notify(_ context.Context, input models.ScrapeInput, result models.FetchResult) error {
	if err := n.Bot.SendRunSummary(input.CompanyID, result); err != nil {
		return err
	}
	if !result.Success || n.Seen == nil {
		return nil
	}
	return n.Bot.SendNewJobs(input.CompanyID, result.Jobs, n.Seen)
}
