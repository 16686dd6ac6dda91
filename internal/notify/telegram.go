// Package notify pushes run summaries to Telegram. Optional: the rest
// of the pipeline works the same with no notifier configured.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Francocima/master-skills-scraper/internal/orchestrator"
)

type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// RunFinished reports a terminal run to the configured chat.
func (t *TelegramNotifier) RunFinished(snap orchestrator.Snapshot) {
	text := fmt.Sprintf(
		"🕸 <b>Scrape %s</b>\n"+
			"🔍 %s / %s\n"+
			"📄 %d pages fetched\n"+
			"✅ %d accepted, ♻️ %d duplicates",
		snap.Status,
		snap.Query.Keywords,
		snap.Query.Location,
		snap.PagesFetched,
		snap.RecordsAccepted,
		snap.RecordsDuplicate,
	)
	if snap.ErrorDetail != "" {
		text += fmt.Sprintf("\n⚠️ %s", snap.ErrorDetail)
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML" //use HTML for bold/italic
	t.bot.Send(msg)
}
