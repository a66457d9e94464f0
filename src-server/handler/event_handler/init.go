package event_handler

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"schedly/src-server/nlp"
	"schedly/src-server/recurrence"
	"schedly/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// Discord refuses messages with more embeds than this.
const maxEmbeds = 10

// Init injects one "schedule" slash command with multiple subcommands
// into appCmdInfo and appCmdHandler in AppState.
func Init(as *utils.AppState) {
	localCmdInfo := make(
		[]*discordgo.ApplicationCommandOption, 0,
	)
	localCmdHandler := make(
		map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) error,
	)

	// injecting info and handler into 2 local maps
	preview(as, &localCmdInfo, localCmdHandler)
	create(as, &localCmdInfo, localCmdHandler)
	list(as, &localCmdInfo, localCmdHandler)
	remove(as, &localCmdInfo, localCmdHandler)

	id := "schedule"
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:        id,
		Description: "Turn text into events and manage them.",
		Options:     localCmdInfo,
	})
	as.AddAppCmdHandler(id, func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		data := i.ApplicationCommandData()
		if len(data.Options) == 0 {
			return nil
		}
		if handler, ok := localCmdHandler[data.Options[0].Name]; ok {
			return handler(s, i)
		}
		return nil
	})
}

// textOptions are shared by preview and create.
var textOptions = []*discordgo.ApplicationCommandOption{
	{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "text",
		Description: "e.g. CS 101 lecture Mon/Wed/Fri 9:30-10:20 until Dec 10 @ Hall B",
		Required:    true,
	},
	{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "timezone",
		Description: "IANA zone or abbreviation, defaults to the server zone",
	},
}

func subOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options[0].Options
	optionMap := make(
		map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options),
	)
	for _, opt := range options {
		optionMap[opt.Name] = opt
	}
	return optionMap
}

func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, handler string) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		slog.Warn("can't respond", "handler", handler, "content", "deferring", "error", err)
	}
}

// parseText reads the text and timezone options and parses them.
func parseText(as *utils.AppState, i *discordgo.InteractionCreate) nlp.Fields {
	optionMap := subOptions(i)
	text := optionMap["text"].StringValue()
	hint := as.Config.GetLocation().String()
	if value, ok := optionMap["timezone"]; ok && strings.TrimSpace(value.StringValue()) != "" {
		hint = value.StringValue()
	}
	return as.ParseText(text, hint, time.Now())
}

// fieldsEmbed shows what the parser understood.
func fieldsEmbed(f nlp.Fields) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       f.Title,
		Description: f.Description,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Start Date",
				Value:  fmt.Sprintf("<t:%d:f>", f.Start.Unix()),
				Inline: true,
			},
			{
				Name:   "End Date",
				Value:  fmt.Sprintf("<t:%d:f>", f.End.Unix()),
				Inline: true,
			},
		},
	}
	if f.Location != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Location", Value: f.Location})
	}

	zone := f.Timezone
	if f.TimezoneFallback {
		zone += " (unknown zone, fell back)"
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Timezone", Value: zone, Inline: true})

	if f.IsRecurring() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Repeats", Value: describeRepeat(f)})
	}

	var missing []string
	if !f.HasDate {
		missing = append(missing, "date")
	}
	if !f.HasTime {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: "No " + strings.Join(missing, " or ") + " found, defaults used",
		}
	}
	return embed
}

// describeRepeat renders a rule like "every 2 weeks on Mon, Wed until 2026-12-10".
func describeRepeat(f nlp.Fields) string {
	var b strings.Builder
	switch f.Frequency {
	case recurrence.Daily:
		b.WriteString("daily")
	case recurrence.Monthly:
		b.WriteString("monthly")
	default:
		if f.RepeatEveryWeeks > 1 {
			fmt.Fprintf(&b, "every %d weeks", f.RepeatEveryWeeks)
		} else {
			b.WriteString("weekly")
		}
		if len(f.RepeatDays) > 0 {
			days := make([]string, len(f.RepeatDays))
			for i, d := range f.RepeatDays {
				days[i] = d.String()[:3]
			}
			b.WriteString(" on " + strings.Join(days, ", "))
		}
	}
	if f.RepeatUntil != nil {
		b.WriteString(" until " + f.RepeatUntil.String())
	}
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
