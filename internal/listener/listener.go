// Package listener держит долгоживущую подписку LISTEN/NOTIFY на канал
// игровых сессий и на каждое уведомление запускает одну попытку
// захвата-и-розыгрыша в отдельной горутине.
//
// Дедупликации здесь нет намеренно: дубликаты и гонки уведомлений
// безопасны, потому что захват сессии атомарен на стороне БД.
package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dice-helper/internal/common"
)

// reconnectDelay — пауза перед переподключением после обрыва соединения.
const reconnectDelay = 5 * time.Second

// Handler — одна попытка захвата-и-розыгрыша для указанного game id.
type Handler func(ctx context.Context, mainBotGameID string)

// Listener подписан на канал уведомлений о готовых сессиях.
// Для LISTEN используется отдельное соединение, не пул: pgxpool
// возвращает соединения в оборот, а подписка должна жить постоянно.
type Listener struct {
	dsn     string
	channel string
	handler Handler
	conn    *pgx.Conn

	// ограничитель параллелизма розыгрышей
	inflight chan struct{}
}

// New создаёт слушатель канала уведомлений.
func New(dsn, channel string, maxInflight int, handler Handler) *Listener {
	if maxInflight <= 0 {
		maxInflight = 64
	}
	return &Listener{
		dsn:      dsn,
		channel:  channel,
		handler:  handler,
		inflight: make(chan struct{}, maxInflight),
	}
}

// Connect устанавливает соединение и выполняет LISTEN.
// Ошибка на старте фатальна для процесса — это решает вызывающий код.
func (l *Listener) Connect(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		_ = conn.Close(ctx)
		return err
	}
	l.conn = conn
	log.WithField("channel", l.channel).Info("Подписка на уведомления установлена")
	return nil
}

// Run крутит цикл получения уведомлений до отмены контекста.
// Обрыв соединения посреди работы не фатален: переподключаемся с паузой,
// пропущенные за время обрыва сессии подберёт репер.
func (l *Listener) Run(ctx context.Context) {
	defer func() {
		if l.conn != nil {
			_ = l.conn.Close(context.Background())
		}
	}()

	for {
		notification, err := l.conn.WaitForNotification(ctx)
		if ctx.Err() != nil {
			log.Info("Слушатель останавливается (ctx done)")
			return
		}
		if err != nil {
			log.WithError(err).Warn("Подписка оборвалась, переподключаемся")
			if !l.reconnect(ctx) {
				return
			}
			continue
		}

		gameID, err := parsePayload(notification.Payload)
		if err != nil {
			// Чужой или битый payload — логируем и живём дальше
			log.WithError(err).WithField("payload", notification.Payload).
				Warn("Некорректное уведомление, пропущено")
			continue
		}

		// лимит параллелизма: цикл подписки не блокируется розыгрышами
		l.inflight <- struct{}{}
		go func(id string) {
			defer func() { <-l.inflight }()
			l.handler(ctx, id)
		}(gameID)
	}
}

// Dispatch запускает попытку розыгрыша вне цикла подписки (для репера).
func (l *Listener) Dispatch(ctx context.Context, mainBotGameID string) {
	l.inflight <- struct{}{}
	go func() {
		defer func() { <-l.inflight }()
		l.handler(ctx, mainBotGameID)
	}()
}

// reconnect пытается восстановить подписку, пока жив контекст.
func (l *Listener) reconnect(ctx context.Context) bool {
	if l.conn != nil {
		_ = l.conn.Close(context.Background())
		l.conn = nil
	}
	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(reconnectDelay):
		}
		if err := l.Connect(ctx); err != nil {
			log.WithError(err).Warn("Переподключение не удалось, повторим")
			continue
		}
		return true
	}
}

// notifyPayload — ожидаемая форма уведомления от главного бота.
type notifyPayload struct {
	MainBotGameID string `json:"main_bot_game_id"`
}

// parsePayload разбирает payload уведомления.
// Любая другая форма (не-JSON, нет поля, пустое поле) — ошибка,
// уведомление отбрасывается без падения подписки.
func parsePayload(payload string) (string, error) {
	var p notifyPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", err
	}
	if p.MainBotGameID == "" {
		return "", common.ErrEmptyGameID
	}
	return p.MainBotGameID, nil
}
