// Package bot — render.go собирает тексты сообщений для игрока.
// Все функции чистые: HTML с упоминанием игрока, ставкой в SOL,
// гранями кубиков и итогом розыгрыша.
package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"serotonyl.ru/dice-helper/internal/common"
	"serotonyl.ru/dice-helper/internal/features/game"
)

// playerMention строит кликабельное упоминание игрока по его id.
// Имени у нас нет (сессию создал главный бот), поэтому текст ссылки общий.
func playerMention(initiatorID int64) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">Игрок</a>`, initiatorID)
}

// RenderAnnouncement — анонс перед броском.
//
// Формат:
//
//	🎲 Игрок бросает кости!
//	💰 Ставка: 0.0500 SOL
func RenderAnnouncement(initiatorID int64, betLamports int64) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎲 %s бросает кости!\n", playerMention(initiatorID)))
	sb.WriteString(fmt.Sprintf("💰 Ставка: %s", common.FormatLamports(betLamports)))
	return sb.String()
}

// RenderOutcome — итог розыгрыша.
//
// Формат (выигрыш):
//
//	🎲 Игрок бросает кости!
//	⚂ ⚃ ⚄ ⚅ ⚅
//	Сумма: 24 очка
//
//	🏆 Peak Performer! ×5
//	💰 Выплата: 0.2500 SOL
func RenderOutcome(initiatorID int64, betLamports int64, out *game.Outcome) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎲 %s бросает кости!\n", playerMention(initiatorID)))
	sb.WriteString(common.FormatDice(out.Rolls))
	sb.WriteString(fmt.Sprintf("\nСумма: %d %s\n\n", out.Sum, common.PluralizePoints(out.Sum)))

	switch out.Result {
	case game.ResultBust:
		sb.WriteString("💥 Единица! Ставка сгорела\n")
		sb.WriteString(fmt.Sprintf("💸 Потеряно: %s", common.FormatLamports(betLamports)))
	case game.ResultWin:
		label := tgbotapi.EscapeText(tgbotapi.ModeHTML, out.Tier.Label)
		sb.WriteString(fmt.Sprintf("🏆 %s ×%d\n", label, out.Tier.Multiplier))
		sb.WriteString(fmt.Sprintf("💰 Выплата: %s", common.FormatLamports(betLamports*out.Tier.Multiplier)))
	case game.ResultLossNoTier:
		sb.WriteString("😐 Сумма не попала ни в один диапазон\n")
		sb.WriteString(fmt.Sprintf("💸 Потеряно: %s", common.FormatLamports(betLamports)))
	}
	return sb.String()
}
