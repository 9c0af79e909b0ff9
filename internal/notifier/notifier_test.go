package notifier

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/coney-counter/coney-counter-api/internal/achievements"
	"github.com/coney-counter/coney-counter-api/internal/config"
	"github.com/coney-counter/coney-counter-api/internal/models"
)

type recordingSender struct {
	channel  string
	messages []string
}

func (s *recordingSender) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.channel = channelID
	s.messages = append(s.messages, content)
	return &discordgo.Message{Content: content}, nil
}

func TestDiscordNotifier(t *testing.T) {
	sender := &recordingSender{}
	n := NewDiscordNotifierWithSession(sender, "chan-1")
	user := models.User{Username: "chili_dog"}

	first, _ := achievements.Get("first-coney")
	explorer, _ := achievements.Get("brand-explorer")
	if err := n.NotifyAchievements(user, []achievements.Definition{first, explorer}); err != nil {
		t.Fatalf("NotifyAchievements returned error: %v", err)
	}
	if err := n.NotifyAchievements(user, nil); err != nil {
		t.Fatalf("NotifyAchievements with nothing returned error: %v", err)
	}
	if err := n.NotifyLevelUp(user, 4); err != nil {
		t.Fatalf("NotifyLevelUp returned error: %v", err)
	}

	if sender.channel != "chan-1" {
		t.Errorf("expected channel chan-1, got %s", sender.channel)
	}
	if len(sender.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sender.messages))
	}
	if !strings.Contains(sender.messages[0], "First Bite") || !strings.Contains(sender.messages[0], "Brand Explorer") {
		t.Errorf("achievement message missing titles: %s", sender.messages[0])
	}
	if !strings.Contains(sender.messages[1], "level **4**") {
		t.Errorf("unexpected level message: %s", sender.messages[1])
	}
}

func TestNewDiscordNotifier_MissingConfig(t *testing.T) {
	if _, err := NewDiscordNotifier(&config.Config{}); err == nil {
		t.Error("expected error without a bot token")
	}
	if _, err := NewDiscordNotifier(&config.Config{DiscordBotToken: "x"}); err == nil {
		t.Error("expected error without a channel")
	}
}

func TestMailer_SendApproval(t *testing.T) {
	m := NewMailer(&config.Config{
		SMTPHost:    "smtp.example.com",
		SMTPUser:    "bot",
		SMTPPass:    "secret",
		SMTPFrom:    "coney@example.com",
		FrontendURL: "https://coney.example.com/",
	})

	var gotAddr string
	var gotTo []string
	var gotMsg string
	m.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	err := m.SendApproval(models.User{Email: "eater@example.com", Name: "Eater"})
	if err != nil {
		t.Fatalf("SendApproval returned error: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Errorf("unexpected addr %s", gotAddr)
	}
	if len(gotTo) != 1 || gotTo[0] != "eater@example.com" {
		t.Errorf("unexpected recipients %v", gotTo)
	}
	if !strings.Contains(gotMsg, "Subject: Your Coney Counter account is approved") {
		t.Errorf("missing subject: %s", gotMsg)
	}
	if !strings.Contains(gotMsg, "https://coney.example.com\r\n") && !strings.Contains(gotMsg, "https://coney.example.com\n") {
		t.Errorf("missing frontend link: %s", gotMsg)
	}
}

func TestMailer_NotConfigured(t *testing.T) {
	m := NewMailer(&config.Config{})
	if err := m.SendApproval(models.User{Email: "a@b.c"}); !errors.Is(err, ErrEmailNotConfigured) {
		t.Errorf("expected ErrEmailNotConfigured, got %v", err)
	}
}
