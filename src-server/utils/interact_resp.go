package utils

import (
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

// =========================================================
// Pre-built discordgo interaction responses for convenience
// =========================================================

// Send a reply only the invoking user can see.
func InteractRespHiddenReply(as *AppState, s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	startTimer := time.Now()
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: content,
		},
	}); err != nil {
		slog.Warn("InteractRespHiddenReply: can't respond", "error", err)
		return
	}
	Send(as.MetricChans.DiscordSendMessage, float64(time.Since(startTimer).Microseconds()))
}

// Replace the content of a deferred response.
func InteractRespEdit(as *AppState, s *discordgo.Session, i *discordgo.InteractionCreate, content string, embeds ...*discordgo.MessageEmbed) {
	startTimer := time.Now()
	edit := &discordgo.WebhookEdit{Content: &content}
	if len(embeds) > 0 {
		edit.Embeds = &embeds
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		slog.Warn("InteractRespEdit: can't edit deferred response", "error", err)
		return
	}
	Send(as.MetricChans.DiscordSendMessage, float64(time.Since(startTimer).Microseconds()))
}
