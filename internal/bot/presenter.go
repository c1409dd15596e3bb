// Package bot — presenter.go отправляет игроку анонс и результат броска.
// Вся доставка best-effort: ошибки транспорта логируются и не прерывают
// розыгрыш — авторитетен сохранённый статус сессии, а не чат.
package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dice-helper/internal/features/game"
	"serotonyl.ru/dice-helper/internal/features/session"
)

// Presenter показывает розыгрыш в чате через Telegram Bot API.
type Presenter struct {
	api   *tgbotapi.BotAPI
	delay time.Duration // косметическая пауза перед показом результата
}

// NewPresenter создаёт презентер.
func NewPresenter(api *tgbotapi.BotAPI, delay time.Duration) *Presenter {
	return &Presenter{api: api, delay: delay}
}

// AnnounceRoll отправляет анонс броска и возвращает id сообщения
// для последующего редактирования. 0 — отправить не удалось.
func (p *Presenter) AnnounceRoll(ctx context.Context, s *session.Session) int {
	msg := tgbotapi.NewMessage(s.ChatID, RenderAnnouncement(s.InitiatorID, s.BetAmountLamports))
	msg.ParseMode = tgbotapi.ModeHTML

	sent, err := p.api.Send(msg)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"chat_id":    s.ChatID,
			"session_id": s.SessionID,
		}).Error("Не удалось отправить анонс броска")
		return 0
	}
	return sent.MessageID
}

// PresentOutcome показывает итог: после паузы редактирует анонс на месте,
// а если редактирование не удалось (сообщение удалено, слишком старое,
// анонс вообще не отправился) — шлёт новое сообщение с тем же текстом.
func (p *Presenter) PresentOutcome(ctx context.Context, s *session.Session, messageID int, out *game.Outcome) {
	p.pace(ctx)

	text := RenderOutcome(s.InitiatorID, s.BetAmountLamports, out)
	logger := log.WithFields(log.Fields{
		"chat_id":    s.ChatID,
		"session_id": s.SessionID,
	})

	if messageID != 0 {
		edit := tgbotapi.NewEditMessageText(s.ChatID, messageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		_, err := p.api.Send(edit)
		if err == nil {
			return
		}
		logger.WithError(err).WithField("message_id", messageID).
			Warn("Редактирование анонса не удалось, шлём новое сообщение")
	}

	msg := tgbotapi.NewMessage(s.ChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := p.api.Send(msg); err != nil {
		logger.WithError(err).Error("Не удалось отправить результат броска")
	}
}

// pace выдерживает косметическую паузу, не задерживая shutdown.
func (p *Presenter) pace(ctx context.Context) {
	if p.delay <= 0 {
		return
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
