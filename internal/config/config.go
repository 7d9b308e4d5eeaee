package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tg-slots-bot/internal/availability"
)

type Config struct {
	TelegramToken   string
	CalendarURL     string
	OwnerContactURL string

	Location         *time.Location
	WorkDayStartHour int
	WorkDayEndHour   int
	DaysAhead        int
	SlotDuration     time.Duration
	FetchTimeout     time.Duration

	ReloadInterval time.Duration
	DigestChatID   int64
	DigestTime     string

	MetricsAddr string
	Env         string
	LogLevel    string
}

// raw — значения в том виде, в каком их отдаёт viper.
type raw struct {
	TelegramToken    string        `mapstructure:"TELEGRAM_TOKEN"`
	CalendarURL      string        `mapstructure:"CALENDAR_URL"`
	ICalURL          string        `mapstructure:"ICAL_URL"`
	OwnerContactURL  string        `mapstructure:"OWNER_CONTACT_URL"`
	Timezone         string        `mapstructure:"TIMEZONE"`
	WorkDayStartHour int           `mapstructure:"WORK_DAY_START_HOUR"`
	WorkDayEndHour   int           `mapstructure:"WORK_DAY_END_HOUR"`
	DaysAhead        int           `mapstructure:"DAYS_AHEAD"`
	SlotDuration     time.Duration `mapstructure:"SLOT_DURATION"`
	FetchTimeout     time.Duration `mapstructure:"FETCH_TIMEOUT"`
	ReloadInterval   time.Duration `mapstructure:"RELOAD_INTERVAL"`
	DigestChatID     int64         `mapstructure:"DIGEST_CHAT_ID"`
	DigestTime       string        `mapstructure:"DIGEST_TIME"`
	MetricsAddr      string        `mapstructure:"METRICS_ADDR"`
	Env              string        `mapstructure:"ENV"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
}

// Load читает .env (если есть), config.yaml из . или ./config (если есть)
// и переменные окружения. Окружение важнее файла.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("CALENDAR_URL", "")
	v.SetDefault("ICAL_URL", "")
	v.SetDefault("OWNER_CONTACT_URL", "")
	v.SetDefault("TIMEZONE", "Asia/Yekaterinburg")
	v.SetDefault("WORK_DAY_START_HOUR", 9)
	v.SetDefault("WORK_DAY_END_HOUR", 23)
	v.SetDefault("DAYS_AHEAD", 7)
	v.SetDefault("SLOT_DURATION", "1h")
	v.SetDefault("FETCH_TIMEOUT", "15s")
	v.SetDefault("RELOAD_INTERVAL", "3s")
	v.SetDefault("DIGEST_CHAT_ID", 0)
	v.SetDefault("DIGEST_TIME", "09:00")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения config.yaml: %w", err)
		}
	}

	var r raw
	if err := v.Unmarshal(&r); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфига: %w", err)
	}
	return r.build()
}

func (r raw) build() (*Config, error) {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("неверный TIMEZONE: %w", err)
	}

	calendarURL := r.CalendarURL
	if calendarURL == "" {
		calendarURL = r.ICalURL
	}
	if calendarURL == "" {
		return nil, fmt.Errorf("переменная CALENDAR_URL не задана")
	}
	if _, err := url.ParseRequestURI(calendarURL); err != nil {
		return nil, fmt.Errorf("неверный CALENDAR_URL: %w", err)
	}

	digestAt, err := time.Parse("15:04", r.DigestTime)
	if err != nil {
		return nil, fmt.Errorf("неверный DIGEST_TIME %q, нужен формат ЧЧ:ММ", r.DigestTime)
	}
	if r.FetchTimeout <= 0 {
		return nil, fmt.Errorf("неверный FETCH_TIMEOUT: %s", r.FetchTimeout)
	}
	if r.ReloadInterval < 0 {
		return nil, fmt.Errorf("неверный RELOAD_INTERVAL: %s", r.ReloadInterval)
	}

	cfg := &Config{
		TelegramToken:    r.TelegramToken,
		CalendarURL:      calendarURL,
		OwnerContactURL:  r.OwnerContactURL,
		Location:         loc,
		WorkDayStartHour: r.WorkDayStartHour,
		WorkDayEndHour:   r.WorkDayEndHour,
		DaysAhead:        r.DaysAhead,
		SlotDuration:     r.SlotDuration,
		FetchTimeout:     r.FetchTimeout,
		ReloadInterval:   r.ReloadInterval,
		DigestChatID:     r.DigestChatID,
		DigestTime:       digestAt.Format("15:04"),
		MetricsAddr:      r.MetricsAddr,
		Env:              r.Env,
		LogLevel:         r.LogLevel,
	}
	if err := cfg.Availability().Validate(); err != nil {
		return nil, fmt.Errorf("неверные рабочие часы: %w", err)
	}
	return cfg, nil
}

// Availability — неизменяемые параметры расчёта слотов.
func (c *Config) Availability() availability.Settings {
	return availability.Settings{
		Location:         c.Location,
		WorkDayStartHour: c.WorkDayStartHour,
		WorkDayEndHour:   c.WorkDayEndHour,
		DaysAhead:        c.DaysAhead,
		SlotDuration:     c.SlotDuration,
	}
}

// RequireTelegram нужен командам, которые ходят в Telegram.
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("переменная TELEGRAM_TOKEN не задана")
	}
	return nil
}

func (c *Config) DigestEnabled() bool {
	return c.DigestChatID != 0
}
