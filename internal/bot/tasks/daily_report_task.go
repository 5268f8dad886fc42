package tasks

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/sentinela/internal/moderation"
)

// newDailyReportTask creates the scheduled task that sends the daily
// moderation report to the admin chat.
func newDailyReportTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "daily_report")

	return func(ctx context.Context) error {
		adminChatID := deps.Config.Telegram.AdminChatID
		if adminChatID == 0 {
			log.WarnContext(ctx, "No admin chat configured, skipping daily report")
			return nil
		}

		stats, err := deps.Service.DailyStats(ctx)
		if err != nil {
			// Still deliver the degraded report so the admins see the failure.
			log.ErrorContext(ctx, "Daily stats computation failed, sending degraded report", "error", err)
		}

		if _, sendErr := deps.TgBot.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: adminChatID,
			Text:   FormatDailyReport(stats),
		}); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send daily report", "error", sendErr)
			return fmt.Errorf("failed to send daily report: %w", sendErr)
		}

		log.InfoContext(ctx, "Daily report sent", "chat_id", adminChatID, "daily_messages", stats.DailyMessages)
		return err
	}
}

// FormatDailyReport renders the daily statistics as the report message
// sent to the admin chat.
func FormatDailyReport(stats *moderation.DailyStats) string {
	if stats.Error != "" {
		return fmt.Sprintf("📊 Daily moderation report\n\n⚠️ Report unavailable: %s", stats.Error)
	}

	return fmt.Sprintf(`📊 Daily moderation report

• 📨 Messages analyzed: %d
• ✅ Approved: %d
• ⚠️ Flagged for review: %d
• 🗑️ Deleted: %d

🎯 Accuracy today: %.1f%%
📈 Change vs last week: %.1f%%

Total messages processed: %d`,
		stats.DailyMessages,
		stats.Approved,
		stats.Flagged,
		stats.Deleted,
		stats.Accuracy,
		stats.Improvement,
		stats.TotalProcessed,
	)
}
