package bot

import (
	"log"
	"strconv"
	"time"

	"admod-bot/database"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// MaxTimeout is the longest restriction Discord accepts in one call;
// open-ended bans are re-applied by the sweep until an admin unbans the user.
const MaxTimeout = 28 * 24 * time.Hour

var c *cron.Cron

// startScheduler starts the cron jobs.
func startScheduler(s *discordgo.Session, store *database.Store) {
	log.Println("Initializing scheduler...")
	c = cron.New()
	_, err := c.AddFunc("@hourly", func() {
		sweepBans(s, store)
	})
	if err != nil {
		log.Fatalf("Could not set up cron job: %v", err)
	}
	c.Start()
	log.Println("Ban sweep scheduled to run hourly.")

	// Catch up on anything that expired while the bot was down.
	go sweepBans(s, store)
}

// stopScheduler stops the cron jobs.
func stopScheduler() {
	if c != nil {
		c.Stop()
		log.Println("Scheduler stopped.")
	}
}

// sweepBans lifts restrictions whose expiry has passed, drops their records
// and keeps open-ended restrictions applied.
func sweepBans(s *discordgo.Session, store *database.Store) {
	guildID := viper.GetString("bot.guildId")
	if guildID == "" {
		return
	}

	now := time.Now()

	expired, err := store.ExpiredBans(now.Unix())
	if err != nil {
		log.Printf("Error listing expired bans: %v", err)
		return
	}

	for _, ban := range expired {
		userID := strconv.FormatInt(ban.UserID, 10)
		if err := s.GuildMemberTimeout(guildID, userID, nil); err != nil {
			log.Printf("Error lifting timeout for user %s: %v", userID, err)
		}
		if err := store.RemoveBan(ban.UserID); err != nil {
			log.Printf("Error removing expired ban for user %s: %v", userID, err)
			continue
		}
		log.Printf("Ban expired for user %s", userID)
	}

	active, err := store.ListActiveBans(now.Unix())
	if err != nil {
		log.Printf("Error listing active bans: %v", err)
		return
	}

	for _, ban := range active {
		if !ban.Permanent() {
			continue
		}
		until := now.Add(MaxTimeout)
		userID := strconv.FormatInt(ban.UserID, 10)
		if err := s.GuildMemberTimeout(guildID, userID, &until); err != nil {
			log.Printf("Error re-applying permanent timeout for user %s: %v", userID, err)
		}
	}

	if len(expired) > 0 {
		log.Printf("Ban sweep finished, %d restriction(s) lifted.", len(expired))
	}
}
