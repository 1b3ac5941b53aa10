package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	APIBaseURL    string
	DatabasePath  string
	Timezone      *time.Location
	DigestTime    string
	WebhookURL    string
	ServerPort    string

	// Optional CalDAV publishing of upcoming activities.
	CalDAVURL      string
	CalDAVUsername string
	CalDAVPassword string
	CalDAVPath     string

	// Optional allow-list of Telegram IDs. Empty means open to everyone;
	// access control proper happens at the backend, via login.
	AllowedIDs []int64
}

func Load() (*Config, error) {
	// .env is optional, real deployments set plain env vars
	_ = godotenv.Load()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	baseURL := strings.TrimRight(os.Getenv("SIMCAT_API_URL"), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("SIMCAT_API_URL is required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/caturbot.db"
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "Asia/Jakarta"
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	digestTime := os.Getenv("DIGEST_TIME")
	if digestTime == "" {
		digestTime = "07:00"
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	var allowed []int64
	if raw := os.Getenv("ALLOWED_TELEGRAM_IDS"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid ALLOWED_TELEGRAM_IDS entry %q", part)
			}
			allowed = append(allowed, id)
		}
	}

	return &Config{
		TelegramToken:  token,
		APIBaseURL:     baseURL,
		DatabasePath:   dbPath,
		Timezone:       tz,
		DigestTime:     digestTime,
		WebhookURL:     os.Getenv("WEBHOOK_URL"),
		ServerPort:     serverPort,
		CalDAVURL:      os.Getenv("CALDAV_URL"),
		CalDAVUsername: os.Getenv("CALDAV_USERNAME"),
		CalDAVPassword: os.Getenv("CALDAV_PASSWORD"),
		CalDAVPath:     os.Getenv("CALDAV_CALENDAR_PATH"),
		AllowedIDs:     allowed,
	}, nil
}

func (c *Config) IsAllowedUser(telegramID int64) bool {
	if len(c.AllowedIDs) == 0 {
		return true
	}
	for _, id := range c.AllowedIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
