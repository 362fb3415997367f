package main

import (
	"log"

	"admod-bot/bot"
	"admod-bot/command"
	"admod-bot/config"
	"admod-bot/database"
	"admod-bot/handlers"

	"github.com/spf13/viper"
)

func main() {
	config.LoadConfig()

	store, err := database.Open(viper.GetString("moderation.dbPath"))
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer store.Close()

	bot.Run(store, handlers.Register, command.GetCommandDefinitions())
}
