package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-careers-scraper/internal/dedup"
	"go-careers-scraper/internal/models"
)

// maxListedJobs bounds how many postings one summary message lists.
const maxListedJobs = 10

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api    sender
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// escapeLinkURL escapes the characters MarkdownV2 reserves inside (...) of a link.
func escapeLinkURL(url string) string {
	return strings.NewReplacer("\\", "\\\\", ")", "\\)").Replace(url)
}

// SendRunSummary posts one message describing a finished fetch.
func (b *Bot) SendRunSummary(companyID string, result models.FetchResult) error {
	msg := tgbotapi.NewMessage(b.chatID, summaryText(companyID, result))
	msg.ParseMode = "MarkdownV2"
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

func summaryText(companyID string, result models.FetchResult) string {
	if companyID == "" {
		companyID = "unknown company"
	}

	var sb strings.Builder
	if !result.Success {
		fmt.Fprintf(&sb, "❌ *%s*: fetch failed\n", escapeMarkdown(companyID))
		fmt.Fprintf(&sb, "%s\n", escapeMarkdown(result.Message))
		if result.Error != "" {
			fmt.Fprintf(&sb, "`%s`\n", strings.NewReplacer("`", "'", "\\", "/").Replace(result.Error))
		}
		return sb.String()
	}

	fmt.Fprintf(&sb, "🏢 *%s*: %d jobs via %s\n", escapeMarkdown(companyID), result.TotalCount, escapeMarkdown(result.Method))
	if result.Message != "" {
		fmt.Fprintf(&sb, "ℹ️ %s\n", escapeMarkdown(result.Message))
	}
	for i, job := range result.Jobs {
		if i == maxListedJobs {
			fmt.Fprintf(&sb, "… and %d more\n", len(result.Jobs)-maxListedJobs)
			break
		}
		line := escapeMarkdown(job.Title)
		if job.ApplyURL != "" {
			line = fmt.Sprintf("[%s](%s)", line, escapeLinkURL(job.ApplyURL))
		}
		if job.Location != "" {
			line += " 📍 " + escapeMarkdown(job.Location)
		}
		fmt.Fprintf(&sb, "• %s\n", line)
	}
	return sb.String()
}

// SendJob posts a single posting with a link button.
func (b *Bot) SendJob(job models.NormalizedJob) error {
	msgText := fmt.Sprintf("💼 *%s*\n", escapeMarkdown(job.Title))
	if job.Department != "" {
		msgText += fmt.Sprintf("🏷️ %s\n", escapeMarkdown(job.Department))
	}
	loc := job.Location
	if loc == "" {
		loc = "N/A"
	}
	msgText += fmt.Sprintf("📍 %s\n", escapeMarkdown(loc))
	msgText += fmt.Sprintf("🕒 %s\n", escapeMarkdown(job.Type))
	msgText += fmt.Sprintf("📅 %s\n", escapeMarkdown(job.PostedDate.Format("2006-01-02")))

	msg := tgbotapi.NewMessage(b.chatID, msgText)
	msg.ParseMode = "MarkdownV2"
	if job.ApplyURL != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🔗 View Job", job.ApplyURL)),
		)
	}

	_, err := b.api.Send(msg)
	return err
}

// SendNewJobs posts one message per job that seen has not announced for
// companyID yet, at most maxListedJobs per call. The rest are covered by the
// run summary.
func (b *Bot) SendNewJobs(companyID string, jobs []models.NormalizedJob, seen *dedup.JobSet) error {
	fresh := seen.Unseen(companyID, jobs)
	if len(fresh) > maxListedJobs {
		fresh = fresh[:maxListedJobs]
	}
	for _, job := range fresh {
		if err := b.SendJob(job); err != nil {
			return fmt.Errorf("send job %s: %w", job.ID, err)
		}
	}
	return nil
}
