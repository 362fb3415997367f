package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"admod-bot/bot"
	"admod-bot/database"
	"admod-bot/models"
	"admod-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

const rulesText = "This bot keeps the group free of repeated advertisements.\n\n" +
	"**Actions treated as violations:**\n" +
	"1) Posting the same ad more often than the topic's repeat interval allows.\n" +
	"2) Duplicating the same message across different topics.\n" +
	"3) Posting commercial ads in topics not meant for them.\n\n" +
	"The bot removes the offending message and issues a warning; once the " +
	"topic's warning limit is reached the user is restricted from posting.\n\n" +
	"If you spot a mistake in your own ad, edit the message instead of " +
	"deleting and reposting it — a repost within the repeat interval counts " +
	"as a duplicate."

// HandleRules handles the logic for the /rules command.
func HandleRules(s *discordgo.Session, i *discordgo.InteractionCreate) {
	text := rulesText
	if rulesURL := viper.GetString("bot.rulesUrl"); rulesURL != "" {
		text += fmt.Sprintf("\n\nFull rules: <%s>", rulesURL)
	}
	respondEphemeral(s, i, text)
}

// HandleAdmin handles the logic for the /admin command.
func HandleAdmin(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	now := time.Now().Unix()

	bans, err := b.Store.ListActiveBans(now)
	if err != nil {
		log.Printf("Error listing active bans: %v", err)
		respondEphemeral(s, i, "🚫 Could not load the ban list.")
		return
	}

	var sb strings.Builder
	sb.WriteString("**Admin panel**\n\n")
	sb.WriteString("`/ban user days` — restrict a user, 0 days for an open-ended restriction.\n")
	sb.WriteString("`/unban user` — lift a restriction.\n")
	sb.WriteString("`/topics` — show per-topic moderation settings.\n\n")

	if len(bans) == 0 {
		sb.WriteString("**No restricted users.**")
	} else {
		sb.WriteString("**Restricted users:**\n")
		for _, ban := range bans {
			left := "permanent"
			if !ban.Permanent() {
				days := (ban.BannedUntil - now + secondsPerDay - 1) / secondsPerDay
				left = fmt.Sprintf("%d day(s) left", days)
			}
			sb.WriteString(fmt.Sprintf("- %s (ID: %d) — %s, reason: %s\n",
				ban.FirstName, ban.UserID, left, ban.Reason))
		}
	}

	respondEphemeral(s, i, sb.String())
}

const secondsPerDay = int64(24 * 3600)

// HandleBan handles the logic for the /ban command.
func HandleBan(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	optionMap := mapOptions(i)

	userOpt, ok := optionMap["user"]
	if !ok {
		respondEphemeral(s, i, "🚫 A user is required.")
		return
	}
	target := userOpt.UserValue(s)

	days := 0
	if opt, ok := optionMap["days"]; ok {
		days = int(opt.IntValue())
	}

	targetID, err := strconv.ParseInt(target.ID, 10, 64)
	if err != nil {
		respondEphemeral(s, i, "🚫 Invalid user.")
		return
	}

	var bannedUntil int64
	until := time.Now().Add(bot.MaxTimeout)
	if days > 0 {
		bannedUntil = time.Now().Unix() + int64(days)*secondsPerDay
		until = time.Unix(bannedUntil, 0)
	}

	if err := s.GuildMemberTimeout(i.GuildID, target.ID, &until); err != nil {
		log.Printf("Error restricting user %s: %v", target.ID, err)
		respondEphemeral(s, i, fmt.Sprintf("🚫 Could not restrict the user: %v", err))
		return
	}

	if err := b.Store.AddBan(models.BanRecord{
		UserID:      targetID,
		FirstName:   target.Username,
		BannedUntil: bannedUntil,
		Reason:      "Manually restricted by an administrator",
	}); err != nil {
		log.Printf("Error recording manual ban: %v", err)
	}

	duration := "permanently"
	if days > 0 {
		duration = fmt.Sprintf("for %d day(s)", days)
	}

	respondEphemeral(s, i, fmt.Sprintf("✅ %s (ID: %d) restricted %s.", target.Username, targetID, duration))
	utils.Info("User restricted", fmt.Sprintf("%s (ID: %d) was restricted %s by an administrator.",
		utils.Mention(targetID), targetID, duration))
}

// HandleUnban handles the logic for the /unban command.
func HandleUnban(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	optionMap := mapOptions(i)

	userOpt, ok := optionMap["user"]
	if !ok {
		respondEphemeral(s, i, "🚫 A user is required.")
		return
	}
	target := userOpt.UserValue(s)

	targetID, err := strconv.ParseInt(target.ID, 10, 64)
	if err != nil {
		respondEphemeral(s, i, "🚫 Invalid user.")
		return
	}

	if err := s.GuildMemberTimeout(i.GuildID, target.ID, nil); err != nil {
		log.Printf("Error lifting timeout for user %s: %v", target.ID, err)
		respondEphemeral(s, i, fmt.Sprintf("🚫 Could not lift the restriction: %v", err))
		return
	}

	if err := b.Store.RemoveBan(targetID); err != nil {
		log.Printf("Error removing ban record: %v", err)
	}

	respondEphemeral(s, i, fmt.Sprintf("✅ %s (ID: %d) unbanned.", target.Username, targetID))
	utils.Info("User unbanned", fmt.Sprintf("%s (ID: %d) was unbanned by an administrator.",
		utils.Mention(targetID), targetID))
}

// HandleTopics handles the logic for the /topics command.
func HandleTopics(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	topics, err := b.Store.ListTopics()
	if err != nil {
		log.Printf("Error listing topics: %v", err)
		respondEphemeral(s, i, "🚫 Could not load topic settings.")
		return
	}

	if len(topics) == 0 {
		respondEphemeral(s, i, "No topics observed yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 **Topic settings**\n\n")
	for _, topic := range topics {
		state := "🔴 disabled"
		if topic.Enabled {
			state = "🟢 enabled"
		}
		blockTime := "permanent"
		if topic.BlockDays > 0 {
			blockTime = fmt.Sprintf("%d day(s)", topic.BlockDays)
		}
		warnText := strconv.Itoa(topic.WarningsLimit)
		if topic.WarningsLimit == 1 {
			warnText = "1 (immediate)"
		}
		sb.WriteString(fmt.Sprintf("<#%d> — %s\nAd repeat interval: %d day(s), restriction: %s, warnings before restriction: %s\n\n",
			topic.ThreadID, state, topic.AdRepeatWindowDays, blockTime, warnText))
	}

	respondEphemeral(s, i, sb.String())
}

// HandleTopicSwitch handles the logic for the /topic_switch command.
func HandleTopicSwitch(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	threadID, ok := topicArg(b, s, i)
	if !ok {
		return
	}

	enabled, err := b.Store.ToggleEnabled(threadID)
	if err != nil {
		respondTopicError(s, i, err)
		return
	}

	state := "disabled 🔴"
	if enabled {
		state = "enabled 🟢"
	}
	respondEphemeral(s, i, fmt.Sprintf("Moderation for <#%d> is now %s.", threadID, state))
}

// HandleTopicBlockTime handles the logic for the /topic_btime command.
func HandleTopicBlockTime(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	threadID, ok := topicArg(b, s, i)
	if !ok {
		return
	}
	days := intArg(i, "days")

	if err := b.Store.SetBlockDays(threadID, days); err != nil {
		respondTopicError(s, i, err)
		return
	}

	blockTime := "permanent"
	if days > 0 {
		blockTime = fmt.Sprintf("%d day(s)", days)
	}
	respondEphemeral(s, i, fmt.Sprintf("Restriction length for <#%d> set to %s.", threadID, blockTime))
	announceTopicChange(b, s, threadID)
}

// HandleTopicWarnLimit handles the logic for the /topic_cwarn command.
func HandleTopicWarnLimit(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	threadID, ok := topicArg(b, s, i)
	if !ok {
		return
	}
	limit := intArg(i, "limit")

	if err := b.Store.SetWarningsLimit(threadID, limit); err != nil {
		respondTopicError(s, i, err)
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("Warnings before restriction for <#%d> set to %d.", threadID, limit))
	announceTopicChange(b, s, threadID)
}

// HandleTopicRepeatWindow handles the logic for the /topic_sdays command.
func HandleTopicRepeatWindow(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	threadID, ok := topicArg(b, s, i)
	if !ok {
		return
	}
	days := intArg(i, "days")

	if err := b.Store.SetAdRepeatWindowDays(threadID, days); err != nil {
		respondTopicError(s, i, err)
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("Ad repeat interval for <#%d> set to %d day(s).", threadID, days))
	announceTopicChange(b, s, threadID)
}

// HandleMessage handles the logic for the /message command. It relays a test
// message into a topic, which doubles as a check that the bot can post there.
func HandleMessage(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	threadID, ok := topicArg(b, s, i)
	if !ok {
		return
	}

	text := ""
	if opt, found := mapOptions(i)["text"]; found {
		text = opt.StringValue()
	}
	if text == "" {
		respondEphemeral(s, i, "🚫 A message text is required.")
		return
	}

	if _, err := s.ChannelMessageSend(strconv.FormatInt(threadID, 10), text); err != nil {
		log.Printf("Error sending test message to topic %d: %v", threadID, err)
		respondEphemeral(s, i, fmt.Sprintf("🚫 Could not post into <#%d>: %v", threadID, err))
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("✅ Message posted into <#%d>.", threadID))
}

// announceTopicChange posts the updated settings summary into the topic
// itself so its members see the new rules.
func announceTopicChange(b *bot.Bot, s *discordgo.Session, threadID int64) {
	topic, err := b.Store.Topic(threadID)
	if err != nil {
		log.Printf("Error loading topic %d for announcement: %v", threadID, err)
		return
	}

	blockTime := "permanent"
	if topic.BlockDays > 0 {
		blockTime = fmt.Sprintf("%d day(s)", topic.BlockDays)
	}
	warnText := fmt.Sprintf("after %d warnings", topic.WarningsLimit)
	if topic.WarningsLimit == 1 {
		warnText = "immediately, at the first warning"
	}

	text := fmt.Sprintf("Topic settings changed.\n"+
		"• One ad may be posted at most once every %d day(s).\n"+
		"• Restriction length: %s.\n"+
		"• A restriction is applied %s.",
		topic.AdRepeatWindowDays, blockTime, warnText)

	if _, err := s.ChannelMessageSend(strconv.FormatInt(threadID, 10), text); err != nil {
		log.Printf("Error announcing settings in topic %d: %v", threadID, err)
	}
}

func mapOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		optionMap[opt.Name] = opt
	}
	return optionMap
}

func topicArg(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) (int64, bool) {
	opt, ok := mapOptions(i)["topic"]
	if !ok {
		respondEphemeral(s, i, "🚫 A topic channel is required.")
		return 0, false
	}

	channel := opt.ChannelValue(s)
	if channel == nil {
		respondEphemeral(s, i, "🚫 Unknown channel.")
		return 0, false
	}

	threadID, err := strconv.ParseInt(channel.ID, 10, 64)
	if err != nil {
		respondEphemeral(s, i, "🚫 Invalid channel.")
		return 0, false
	}

	return threadID, true
}

func intArg(i *discordgo.InteractionCreate, name string) int {
	if opt, ok := mapOptions(i)[name]; ok {
		return int(opt.IntValue())
	}
	return 0
}

func respondTopicError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	if errors.Is(err, database.ErrNoResult) {
		respondEphemeral(s, i, "🚫 Topic not found — no posts have been observed in it yet.")
		return
	}

	log.Printf("Error updating topic settings: %v", err)
	respondEphemeral(s, i, fmt.Sprintf("🚫 Could not update the topic: %v", err))
}
