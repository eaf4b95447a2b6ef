package main

import (
	"os"
	"os/signal"
	"squaresPoolBot/config"
	"squaresPoolBot/database"
	"squaresPoolBot/scheduler"
	"squaresPoolBot/services"
	"squaresPoolBot/utils/logger"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"
)

var db *gorm.DB

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Error loading configuration: %v", err)
	}
	logger.Init(cfg.LogLevel)

	db, err = database.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	err = database.Migrate(db)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	err = services.RunDefaultPoolMigration(db, cfg.DefaultPoolName)
	if err != nil {
		logger.Fatalf("Error running default pool migration: %v", err)
	}

	var dg *discordgo.Session
	if cfg.BotEnabled() {
		dg, err = discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			logger.Fatalf("Error creating Discord session: %v", err)
		}

		dg.AddHandler(interactionCreate)
		dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
			err := s.UpdateGameStatus(0, "Running the squares pool!")
			if err != nil {
				return
			}
		})

		dg.Identify.Intents = discordgo.IntentsGuilds

		err = dg.Open()
		if err != nil {
			logger.Fatalf("Error opening Discord session: %v", err)
		}
		defer func(dg *discordgo.Session) {
			err := dg.Close()
			if err != nil {
				logger.Errorf("Error closing Discord session: %v", err)
			}
		}(dg)

		err = services.RegisterCommands(dg)
		if err != nil {
			logger.Fatalf("Error registering commands: %v", err)
		}
	} else {
		logger.Info("DISCORD_BOT_TOKEN not set, running without the Discord bot")
	}

	if cfg.SchedulerEnabled {
		cronService, err := scheduler.SetupCron(dg, db, cfg)
		if err != nil {
			logger.Fatalf("Error starting scheduler: %v", err)
		}
		defer cronService.Stop()
	}

	logger.Info("Bot is running. Press CTRL+C to exit.")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		services.HandleSlashCommand(s, i, db)
	}
}
