package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/config"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/db"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/event"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/realtime"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/server"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/catalog"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/freelancer"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/onboarding"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/wallet"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Redis tidak connect: ", err)
	}

	events, err := event.NewEventPublisher(cfg.RabbitMQURI)
	if err != nil {
		log.Fatal(err)
	}
	defer events.Close()

	hub := realtime.NewHub()
	go hub.Run()

	freelancers := freelancer.NewFreelancerService(gdb, events)
	wizards := onboarding.NewManager(onboarding.Deps{
		Store:     onboarding.NewRedisDraftStore(rdb, cfg.DraftTTL),
		Gateway:   freelancers,
		Refresher: freelancers,
		Skills:    catalog.NewSkillRepository(gdb, rdb, cfg.SkillCacheTTL),
		Seeder:    freelancers,
		IdleTTL:   cfg.DraftTTL,
	})

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go wizards.RunSweeper(sweepCtx, time.Minute)

	app := server.New(server.Deps{
		DB:            gdb,
		Hub:           hub,
		Wizards:       wizards,
		Freelancers:   freelancers,
		Gigs:          catalog.NewGigService(gdb),
		Refunds:       wallet.NewRefundService(gdb, wallet.NewWalletService(gdb), events),
		JWTSecret:     cfg.JWTSecret,
		JWTExpiresMin: cfg.JWTExpiresMin,
		FrontendURL:   cfg.FrontendBaseURL,
		SubmitTimeout: cfg.SubmitTimeout,
		DefaultLocale: cfg.DefaultLocale,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal(err)
	}
}
