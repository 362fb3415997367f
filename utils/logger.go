package utils

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

const (
	ColorInfo  = 0x00ff00 // Green
	ColorWarn  = 0xffff00 // Yellow
	ColorError = 0xff0000 // Red
)

var (
	session   *discordgo.Session
	channelID string
)

// InitLogger initializes the logger with a Discord session.
func InitLogger(s *discordgo.Session) {
	session = s
	channelID = viper.GetString("bot.adminChannelId")
	if channelID == "" {
		log.Println("Warning: bot.adminChannelId is not set in config.yaml. Admin notifications will be disabled.")
	}
}

// Log sends a moderation event to the admin channel.
func Log(level, event, details string) {
	if session == nil || channelID == "" {
		log.Printf("[%s] Event: %s, Details: %s", level, event, details)
		return
	}

	var color int
	switch level {
	case "INFO":
		color = ColorInfo
	case "WARN":
		color = ColorWarn
	case "ERROR":
		color = ColorError
	default:
		color = ColorInfo
	}

	embed := &discordgo.MessageEmbed{
		Title:     event,
		Color:     color,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Details",
				Value: details,
			},
		},
	}

	_, err := session.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		log.Printf("Error sending log message to Discord: %v", err)
	}
}

// Info logs an informational moderation event.
func Info(event, details string) {
	Log("INFO", event, details)
}

// Warn logs a moderation event that needs human review.
func Warn(event, details string) {
	Log("WARN", event, details)
}

// Error logs a failed moderation action.
func Error(event, details string) {
	Log("ERROR", event, details)
}

// Mention formats a user mention for notification texts.
func Mention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}
