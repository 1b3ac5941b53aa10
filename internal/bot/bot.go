package bot

import (
	"context"
	"fmt"
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ukmcatur/caturbot/config"
	"github.com/ukmcatur/caturbot/internal/service"
	"github.com/ukmcatur/caturbot/internal/storage"
)

type Bot struct {
	api              *tgbotapi.BotAPI
	cfg              *config.Config
	storage          *storage.Storage
	authService      *service.AuthService
	scheduleService  *service.ScheduleService
	equipmentService *service.EquipmentService
	userService      *service.UserService
	calendarService  *service.CalendarService
	server           *http.Server
}

func New(cfg *config.Config, storage *storage.Storage, authSvc *service.AuthService, schedSvc *service.ScheduleService, equipSvc *service.EquipmentService, userSvc *service.UserService, calSvc *service.CalendarService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("Authorized as @%s", api.Self.UserName)

	bot := &Bot{
		api:              api,
		cfg:              cfg,
		storage:          storage,
		authService:      authSvc,
		scheduleService:  schedSvc,
		equipmentService: equipSvc,
		userService:      userSvc,
		calendarService:  calSvc,
	}

	bot.setCommands()

	return bot, nil
}

func (b *Bot) setCommands() {
	commands := []tgbotapi.BotCommand{
		{Command: "jadwal", Description: "📅 Jadwal kegiatan"},
		{Command: "kegiatanku", Description: "♟ Kegiatan yang kuikuti"},
		{Command: "alat", Description: "🧰 Daftar alat"},
		{Command: "pinjaman", Description: "📦 Pinjamanku"},
		{Command: "profil", Description: "👤 Profil"},
		{Command: "export", Description: "📤 Ekspor kalender (.ics)"},
		{Command: "help", Description: "❓ Bantuan"},
	}

	cfg := tgbotapi.NewSetMyCommands(commands...)
	if _, err := b.api.Request(cfg); err != nil {
		log.Printf("Failed to set commands: %v", err)
	}
}

func (b *Bot) SetupWebhook() error {
	webhookURL := b.cfg.WebhookURL + "/bot"

	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("create webhook: %w", err)
	}

	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	info, err := b.api.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("get webhook info: %w", err)
	}
	if info.LastErrorDate != 0 {
		log.Printf("Webhook last error: %s", info.LastErrorMessage)
	}

	log.Printf("Webhook set to: %s", webhookURL)
	return nil
}

// Start consumes updates until the context is cancelled. With a
// webhook URL configured it serves Telegram's pushes; without one it
// falls back to long polling, which is what local development uses.
func (b *Bot) Start(ctx context.Context) error {
	var updates tgbotapi.UpdatesChannel

	if b.cfg.WebhookURL != "" {
		updates = b.api.ListenForWebhook("/bot")

		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})

		b.server = &http.Server{Addr: ":" + b.cfg.ServerPort}

		go func() {
			log.Printf("Starting webhook server on :%s", b.cfg.ServerPort)
			if err := b.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("HTTP server error: %v", err)
			}
		}()
	} else {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 30
		updates = b.api.GetUpdatesChan(u)
		log.Println("Polling for updates")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-updates:
			go b.handleUpdate(update)
		}
	}
}

func (b *Bot) Stop(ctx context.Context) error {
	if b.server != nil {
		return b.server.Shutdown(ctx)
	}
	b.api.StopReceivingUpdates()
	return nil
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) editMessage(chatID int64, msgID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = "HTML"
	edit.ReplyMarkup = keyboard
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Edit message: %v", err)
	}
}

// SendDocument uploads a generated file, used for the .ics export.
func (b *Bot) SendDocument(chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	_, err := b.api.Send(doc)
	return err
}
