package handler

import (
	"fmt"
	"time"

	"schedly/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func Ping(as *utils.AppState) {
	id := "ping"
	as.AddAppCmdHandler(id, pingHandler(as))
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:        id,
		Description: "Check that the scheduler is alive.",
	})
}

// health is what /ping reports. A negative DB latency means the database
// did not answer; a negative count means today's events could not be read.
type health struct {
	uptime    time.Duration
	gateway   time.Duration
	db        time.Duration
	today     int
	zone      string
	nextTitle string
	nextStart time.Time
}

func (h health) embed() *discordgo.MessageEmbed {
	db := "no answer"
	if h.db >= 0 {
		db = fmt.Sprintf("%dµs", h.db.Microseconds())
	}
	today := "unknown"
	if h.today >= 0 {
		today = fmt.Sprintf("%d", h.today)
	}
	next := "nothing scheduled"
	if h.nextTitle != "" {
		next = fmt.Sprintf("%s <t:%d:R>", h.nextTitle, h.nextStart.Unix())
	}
	return &discordgo.MessageEmbed{
		Title:       "schedly is up",
		Description: fmt.Sprintf("Running for %s, times shown in %s.", h.uptime.Truncate(time.Second), h.zone),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Gateway", Value: fmt.Sprintf("%dms", h.gateway.Milliseconds()), Inline: true},
			{Name: "Database", Value: db, Inline: true},
			{Name: "Events today", Value: today, Inline: true},
			{Name: "Up next", Value: next},
		},
	}
}

func pingHandler(as *utils.AppState) func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		loc := as.Config.GetLocation()
		h := health{
			uptime:  as.GetUptime(),
			gateway: s.HeartbeatLatency(),
			db:      -1,
			today:   -1,
			zone:    loc.String(),
		}

		dbTimer := time.Now()
		if err := as.RawDB.PingContext(as.Context()); err == nil {
			h.db = time.Since(dbTimer)
		}

		now := time.Now().In(loc)
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		if events, err := as.Store.ListEvents(as.Context(), midnight, midnight.AddDate(0, 0, 1)); err == nil {
			h.today = len(events)
		}
		if events, err := as.Store.ListEvents(as.Context(), now, time.Time{}); err == nil {
			for _, e := range events {
				if e.Start().After(now) {
					h.nextTitle, h.nextStart = e.Title, e.Start()
					break
				}
			}
		}

		startTimer := time.Now()
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Flags:  discordgo.MessageFlagsEphemeral,
				Embeds: []*discordgo.MessageEmbed{h.embed()},
			},
		}); err != nil {
			return fmt.Errorf("pingHandler: %w", err)
		}
		utils.Send(as.MetricChans.DiscordSendMessage, float64(time.Since(startTimer).Microseconds()))
		return nil
	}
}
