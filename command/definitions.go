package command

import "github.com/bwmarrin/discordgo"

// RulesCommand defines the structure for the /rules command.
type RulesCommand struct{}

// Definition returns the application command definition.
func (c *RulesCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "rules",
		Description: "Show the group rules enforced by the bot",
	}
}

// AdminCommand defines the structure for the /admin command.
type AdminCommand struct{}

// Definition returns the application command definition.
func (c *AdminCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "admin",
		Description: "Show the admin panel and the list of restricted users",
	}
}

// BanCommand defines the structure for the /ban command.
type BanCommand struct{}

// Definition returns the application command definition.
func (c *BanCommand) Definition() *discordgo.ApplicationCommand {
	minDays := float64(0)
	maxDays := float64(365)
	return &discordgo.ApplicationCommand{
		Name:        "ban",
		Description: "Restrict a user from posting",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "user",
				Description: "The user to restrict",
				Type:        discordgo.ApplicationCommandOptionUser,
				Required:    true,
			},
			{
				Name:        "days",
				Description: "Restriction length in days, 0 for permanent",
				Type:        discordgo.ApplicationCommandOptionInteger,
				Required:    true,
				MinValue:    &minDays,
				MaxValue:    maxDays,
			},
		},
	}
}

// UnbanCommand defines the structure for the /unban command.
type UnbanCommand struct{}

// Definition returns the application command definition.
func (c *UnbanCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "unban",
		Description: "Lift a user's restriction",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "user",
				Description: "The user to unban",
				Type:        discordgo.ApplicationCommandOptionUser,
				Required:    true,
			},
		},
	}
}

// TopicsCommand defines the structure for the /topics command.
type TopicsCommand struct{}

// Definition returns the application command definition.
func (c *TopicsCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "topics",
		Description: "Show the moderation settings of every observed topic",
	}
}

// TopicSwitchCommand defines the structure for the /topic_switch command.
type TopicSwitchCommand struct{}

// Definition returns the application command definition.
func (c *TopicSwitchCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "topic_switch",
		Description: "Toggle moderation for a topic on or off",
		Options:     []*discordgo.ApplicationCommandOption{topicOption()},
	}
}

// TopicBlockTimeCommand defines the structure for the /topic_btime command.
type TopicBlockTimeCommand struct{}

// Definition returns the application command definition.
func (c *TopicBlockTimeCommand) Definition() *discordgo.ApplicationCommand {
	minDays := float64(0)
	maxDays := float64(365)
	return &discordgo.ApplicationCommand{
		Name:        "topic_btime",
		Description: "Set a topic's restriction length",
		Options: []*discordgo.ApplicationCommandOption{
			topicOption(),
			{
				Name:        "days",
				Description: "Days from 0 to 365, 0 means permanent",
				Type:        discordgo.ApplicationCommandOptionInteger,
				Required:    true,
				MinValue:    &minDays,
				MaxValue:    maxDays,
			},
		},
	}
}

// TopicWarnLimitCommand defines the structure for the /topic_cwarn command.
type TopicWarnLimitCommand struct{}

// Definition returns the application command definition.
func (c *TopicWarnLimitCommand) Definition() *discordgo.ApplicationCommand {
	minWarns := float64(1)
	maxWarns := float64(10)
	return &discordgo.ApplicationCommand{
		Name:        "topic_cwarn",
		Description: "Set how many warnings a topic allows before a restriction",
		Options: []*discordgo.ApplicationCommandOption{
			topicOption(),
			{
				Name:        "limit",
				Description: "Warnings from 1 to 10, 1 restricts immediately",
				Type:        discordgo.ApplicationCommandOptionInteger,
				Required:    true,
				MinValue:    &minWarns,
				MaxValue:    maxWarns,
			},
		},
	}
}

// TopicRepeatWindowCommand defines the structure for the /topic_sdays command.
type TopicRepeatWindowCommand struct{}

// Definition returns the application command definition.
func (c *TopicRepeatWindowCommand) Definition() *discordgo.ApplicationCommand {
	minDays := float64(1)
	maxDays := float64(10)
	return &discordgo.ApplicationCommand{
		Name:        "topic_sdays",
		Description: "Set the minimum interval between identical ads in a topic",
		Options: []*discordgo.ApplicationCommandOption{
			topicOption(),
			{
				Name:        "days",
				Description: "Days from 1 to 10",
				Type:        discordgo.ApplicationCommandOptionInteger,
				Required:    true,
				MinValue:    &minDays,
				MaxValue:    maxDays,
			},
		},
	}
}

// MessageCommand defines the structure for the /message command.
type MessageCommand struct{}

// Definition returns the application command definition.
func (c *MessageCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "message",
		Description: "Send a test message into a topic through the bot",
		Options: []*discordgo.ApplicationCommandOption{
			topicOption(),
			{
				Name:        "text",
				Description: "The text to send",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    true,
			},
		},
	}
}

func topicOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        "topic",
		Description: "The topic channel",
		Type:        discordgo.ApplicationCommandOptionChannel,
		Required:    true,
	}
}
