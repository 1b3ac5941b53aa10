package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ukmcatur/caturbot/config"
	"github.com/ukmcatur/caturbot/internal/bot"
	"github.com/ukmcatur/caturbot/internal/clients/caldav"
	"github.com/ukmcatur/caturbot/internal/clients/simcat"
	"github.com/ukmcatur/caturbot/internal/scheduler"
	"github.com/ukmcatur/caturbot/internal/service"
	"github.com/ukmcatur/caturbot/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	api := simcat.NewClient(cfg.APIBaseURL)
	publisher := caldav.NewClient(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, cfg.CalDAVPath)

	authSvc := service.NewAuthService(store, api)
	schedSvc := service.NewScheduleService(api)
	equipSvc := service.NewEquipmentService(api)
	userSvc := service.NewUserService(store, api)
	calSvc := service.NewCalendarService(schedSvc, publisher, cfg.Timezone)

	tgBot, err := bot.New(cfg, store, authSvc, schedSvc, equipSvc, userSvc, calSvc)
	if err != nil {
		log.Fatalf("Failed to init bot: %v", err)
	}

	if cfg.WebhookURL != "" {
		if err := tgBot.SetupWebhook(); err != nil {
			log.Fatalf("Failed to setup webhook: %v", err)
		}
	}

	sched := scheduler.New(cfg, store, schedSvc, calSvc)
	sched.SetSender(tgBot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sched.Start(ctx); err != nil {
			log.Printf("Scheduler error: %v", err)
		}
	}()

	go func() {
		if err := tgBot.Start(ctx); err != nil {
			log.Printf("Bot error: %v", err)
		}
	}()

	log.Println("Caturbot started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := tgBot.Stop(shutdownCtx); err != nil {
		log.Printf("Error stopping bot: %v", err)
	}

	log.Println("Caturbot stopped")
}
