package handlers

import (
	"log"

	"admod-bot/bot"
	"admod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// CommandDispatcher is the central handler for all application command
// interactions. It performs permission checks and then dispatches the
// interaction to the appropriate handler.
func CommandDispatcher(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	auth, err := utils.NewAuth()
	if err != nil {
		log.Printf("Failed to create auth instance: %v", err)
		return
	}

	commandPermissions := map[string]string{
		"rules":        "guest",
		"admin":        "admin",
		"ban":          "admin",
		"unban":        "admin",
		"topics":       "admin",
		"topic_switch": "admin",
		"topic_btime":  "admin",
		"topic_cwarn":  "admin",
		"topic_sdays":  "admin",
		"message":      "admin",
	}

	commandName := i.ApplicationCommandData().Name
	requiredLevel, ok := commandPermissions[commandName]

	if ok {
		if !auth.CheckPermission(s, i, requiredLevel) {
			respondEphemeral(s, i, "🚫 You do not have permission to run this command.")
			return
		}
	}

	switch commandName {
	case "rules":
		HandleRules(s, i)
	case "admin":
		HandleAdmin(b, s, i)
	case "ban":
		HandleBan(b, s, i)
	case "unban":
		HandleUnban(b, s, i)
	case "topics":
		HandleTopics(b, s, i)
	case "topic_switch":
		HandleTopicSwitch(b, s, i)
	case "topic_btime":
		HandleTopicBlockTime(b, s, i)
	case "topic_cwarn":
		HandleTopicWarnLimit(b, s, i)
	case "topic_sdays":
		HandleTopicRepeatWindow(b, s, i)
	case "message":
		HandleMessage(b, s, i)
	default:
		respondEphemeral(s, i, "🚫 Unknown command.")
	}
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
