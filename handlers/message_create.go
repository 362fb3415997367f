package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"admod-bot/bot"
	"admod-bot/models"
	"admod-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// MessageCreate returns the handler that feeds every group message through
// the moderation engine and applies its verdict.
func MessageCreate(b *bot.Bot) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		// Ignore the bot's own messages and other bots.
		if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
			return
		}

		guildID := viper.GetString("bot.guildId")
		if guildID == "" || m.GuildID != guildID {
			return
		}

		event, ok := buildPostEvent(m)
		if !ok {
			return
		}

		verdict, err := b.Engine.Evaluate(event)
		if err != nil {
			// The event was not processed; nothing was written.
			log.Printf("Moderation evaluation failed for message %s: %v", m.ID, err)
			utils.Error("Moderation failure", fmt.Sprintf("Message %s could not be evaluated.", messageLink(m)))
			return
		}

		for _, flag := range verdict.Review {
			utils.Warn("Suspicious similarity", fmt.Sprintf(
				"%s posted a message %.0f%% similar to an earlier ad.\nEarlier text: %s\nMessage: %s",
				utils.Mention(event.UserID), flag.Score*100, flag.MatchedText, messageLink(m),
			))
		}

		switch verdict.Outcome {
		case models.OutcomeWarned:
			applyWarning(s, m, event, verdict)
		case models.OutcomeBanned:
			applyBan(s, m, event, verdict)
		}
	}
}

// buildPostEvent extracts the moderation-relevant parts of a message. The
// second return value is false for messages with nothing to evaluate.
func buildPostEvent(m *discordgo.MessageCreate) (models.PostEvent, bool) {
	userID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		return models.PostEvent{}, false
	}

	threadID, err := strconv.ParseInt(m.ChannelID, 10, 64)
	if err != nil {
		return models.PostEvent{}, false
	}

	firstName := m.Author.GlobalName
	if firstName == "" {
		firstName = m.Author.Username
	}

	return models.PostEvent{
		UserID:    userID,
		FirstName: firstName,
		ThreadID:  threadID,
		MessageID: m.ID,
		Text:      m.Content,
		PhotoID:   photoFingerprint(m.Attachments),
	}, true
}

// photoFingerprint derives an opaque fingerprint for the first image
// attachment. Attachment ids change on every upload, but filename and byte
// size survive a re-upload of the same file.
func photoFingerprint(attachments []*discordgo.MessageAttachment) string {
	for _, att := range attachments {
		if att == nil || !strings.HasPrefix(att.ContentType, "image/") {
			continue
		}
		return fmt.Sprintf("%s/%d", att.Filename, att.Size)
	}
	return ""
}

func applyWarning(s *discordgo.Session, m *discordgo.MessageCreate, event models.PostEvent, verdict models.Verdict) {
	deleteMessage(s, m)

	text := fmt.Sprintf("⚠️ %s, your message was removed: %s\nWarning %d/%d.%s",
		utils.Mention(event.UserID), verdict.Reason, verdict.WarningCount, verdict.WarningsLimit, rulesFooter())

	if _, err := s.ChannelMessageSend(m.ChannelID, text); err != nil {
		log.Printf("Error sending warning reply: %v", err)
	}
}

func applyBan(s *discordgo.Session, m *discordgo.MessageCreate, event models.PostEvent, verdict models.Verdict) {
	deleteMessage(s, m)

	// For an open-ended ban the timeout is capped by the platform; the
	// hourly sweep keeps re-applying it.
	until := time.Now().Add(bot.MaxTimeout)
	if verdict.BannedUntil > 0 {
		until = time.Unix(verdict.BannedUntil, 0)
	}

	if err := s.GuildMemberTimeout(m.GuildID, m.Author.ID, &until); err != nil {
		// Best effort: the ledger was already reset by the engine and the
		// ban record stands; admins get told instead of the pipeline dying.
		log.Printf("Error restricting user %s: %v", m.Author.ID, err)
		utils.Error("Restriction failed", fmt.Sprintf("Could not restrict %s: %v", utils.Mention(event.UserID), err))
	}

	duration := "permanently"
	if verdict.BlockDays > 0 {
		duration = fmt.Sprintf("for %d days", verdict.BlockDays)
	}

	text := fmt.Sprintf("🚫 %s, %s\nYou have been restricted %s for repeated violations.%s",
		utils.Mention(event.UserID), verdict.Reason, duration, rulesFooter())

	if _, err := s.ChannelMessageSend(m.ChannelID, text); err != nil {
		log.Printf("Error sending ban notice: %v", err)
	}

	utils.Info("User restricted", fmt.Sprintf("%s (ID: %d) was restricted %s for repeated violations.",
		utils.Mention(event.UserID), event.UserID, duration))
}

func deleteMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		log.Printf("Error deleting message %s: %v", m.ID, err)
	}
}

func messageLink(m *discordgo.MessageCreate) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", m.GuildID, m.ChannelID, m.ID)
}

func rulesFooter() string {
	rulesURL := viper.GetString("bot.rulesUrl")
	if rulesURL == "" {
		return ""
	}
	return fmt.Sprintf("\nPlease read the rules: <%s>", rulesURL)
}
