package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"admod-bot/database"
	"admod-bot/moderation"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// Bot encapsulates the bot's state.
type Bot struct {
	Session *discordgo.Session
	Store   *database.Store
	Engine  *moderation.Engine

	commands []*discordgo.ApplicationCommand
}

// NewBot creates and initializes a new Bot instance over an opened store.
func NewBot(store *database.Store) (*Bot, error) {
	token := viper.GetString("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("no bot token provided")
	}

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentMessageContent

	return &Bot{
		Session: dg,
		Store:   store,
		Engine:  moderation.NewEngine(store, store, store, store),
	}, nil
}

// RegisterCommands stores the slash command definitions to be created on start.
func (b *Bot) RegisterCommands(commands []*discordgo.ApplicationCommand) {
	b.commands = append(b.commands, commands...)
}

// Start opens the bot's session, registers handlers and slash commands and
// launches the scheduler.
func (b *Bot) Start(registerHandlers func(*Bot)) error {
	registerHandlers(b)

	err := b.Session.Open()
	if err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	for _, cmd := range b.commands {
		_, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, viper.GetString("bot.guildId"), cmd)
		if err != nil {
			log.Printf("Cannot create '%v' command: %v", cmd.Name, err)
		}
	}

	startScheduler(b.Session, b.Store)

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully closes the bot's session.
func (b *Bot) Stop() {
	stopScheduler()
	if b.Session != nil {
		b.Session.Close()
	}
	fmt.Println("Bot stopped gracefully.")
}

// Run is the main entry point for the bot application.
func Run(store *database.Store, registerHandlers func(*Bot), commands []*discordgo.ApplicationCommand) {
	bot, err := NewBot(store)
	if err != nil {
		log.Fatalf("Error initializing bot: %v", err)
	}

	bot.RegisterCommands(commands)

	if err := bot.Start(registerHandlers); err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	bot.Stop()
}
