package notifier

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/coney-counter/coney-counter-api/internal/achievements"
	"github.com/coney-counter/coney-counter-api/internal/config"
	"github.com/coney-counter/coney-counter-api/internal/models"
)

type Notifier interface {
	NotifyAchievements(user models.User, defs []achievements.Definition) error
	NotifyLevelUp(user models.User, level int) error
	NotifyApproval(user models.User) error
}

// Sender is the part of a discordgo session the notifier uses.
type Sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   Sender
	channelID string
}

// NewDiscordNotifier opens a bot session. It errors when the bot token or
// channel is missing so the caller can fall back to Noop.
func NewDiscordNotifier(cfg *config.Config) (*DiscordNotifier, error) {
	if cfg.DiscordBotToken == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	if cfg.DiscordChannelID == "" {
		return nil, fmt.Errorf("discord channel ID is empty")
	}
	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return NewDiscordNotifierWithSession(session, cfg.DiscordChannelID), nil
}

func NewDiscordNotifierWithSession(session Sender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{session: session, channelID: channelID}
}

func (n *DiscordNotifier) send(message string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	_, err := n.session.ChannelMessageSend(n.channelID, message)
	return err
}

func (n *DiscordNotifier) NotifyAchievements(user models.User, defs []achievements.Definition) error {
	if len(defs) == 0 {
		return nil
	}
	return n.send(AchievementMessage(user, defs))
}

func (n *DiscordNotifier) NotifyLevelUp(user models.User, level int) error {
	return n.send(fmt.Sprintf("⬆️ **Level Up!**\n**%s** reached level **%d**", user.DisplayName(), level))
}

func (n *DiscordNotifier) NotifyApproval(user models.User) error {
	return n.send(fmt.Sprintf("👋 **%s** just joined Coney Counter. Welcome to the chili parlor!", user.DisplayName()))
}

func AchievementMessage(user models.User, defs []achievements.Definition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 **Achievement Unlocked**\n**User:** %s", user.DisplayName())
	for _, d := range defs {
		fmt.Fprintf(&b, "\n%s **%s** (%s): %s", d.Icon, d.Title, achievements.TierOf(d.ID), d.Description)
	}
	return b.String()
}

// Noop drops every notification.
type Noop struct{}

func (Noop) NotifyAchievements(models.User, []achievements.Definition) error { return nil }
func (Noop) NotifyLevelUp(models.User, int) error                           { return nil }
func (Noop) NotifyApproval(models.User) error                               { return nil }
