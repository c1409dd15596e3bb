// Package config загружает конфигурацию хелпер-бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`

	// --- Worker ---
	// Идентификатор этого хелпера, записывается в helper_bot_id при захвате.
	// Пустое значение — сгенерируем UUID при старте.
	HelperBotID string `envconfig:"HELPER_BOT_ID" default:""`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"helperbot"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"dice_casino"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`

	// --- Listener ---
	// Канал NOTIFY, на который главный бот публикует готовые сессии
	NotifyChannel string `envconfig:"NOTIFY_CHANNEL" default:"game_sessions"`
	// Сколько розыгрышей обрабатываем параллельно. Иначе "go на каждое
	// уведомление" = утечка памяти при шторме уведомлений.
	ListenerMaxInflight int `envconfig:"LISTENER_MAX_INFLIGHT" default:"64"`

	// --- Presenter ---
	// Косметическая пауза между анонсом и показом результата
	PresentDelay time.Duration `envconfig:"PRESENT_DELAY" default:"2s"`

	// --- Reaper ---
	// pending_pickup старше этого срока реплеится репером
	ReplayPendingAfter time.Duration `envconfig:"REPLAY_PENDING_AFTER" default:"1m"`
	// in_progress старше этого срока репортится оператору
	ReportStuckAfter time.Duration `envconfig:"REPORT_STUCK_AFTER" default:"5m"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if c.NotifyChannel == "" {
		return fmt.Errorf("NOTIFY_CHANNEL не задан")
	}
	if c.ListenerMaxInflight <= 0 {
		return fmt.Errorf("LISTENER_MAX_INFLIGHT должен быть > 0")
	}
	if c.PresentDelay < 0 {
		return fmt.Errorf("PRESENT_DELAY не может быть отрицательным")
	}
	if c.ReplayPendingAfter <= 0 || c.ReportStuckAfter <= 0 {
		return fmt.Errorf("некорректные REPLAY_PENDING_AFTER/REPORT_STUCK_AFTER")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
