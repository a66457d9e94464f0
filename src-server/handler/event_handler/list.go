package event_handler

import (
	"fmt"
	"time"

	"schedly/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func list(as *utils.AppState, cmdInfo *[]*discordgo.ApplicationCommandOption, cmdHandler map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) error) {
	id := "list"
	*cmdInfo = append(*cmdInfo, &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        id,
		Description: "List events in a date range.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "when",
				Description: "A day such as \"tomorrow\" or \"Dec 10\", defaults to today",
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "days",
				Description: "How many days to list, defaults to 1",
				MinValue:    func() *float64 { v := 1.0; return &v }(),
				MaxValue:    31,
			},
		},
	})
	cmdHandler[id] = listHandler(as)
}

func listHandler(as *utils.AppState) func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		deferResponse(s, i, "schedule-list")

		// #region - resolve the date range
		optionMap := subOptions(i)
		loc := as.Config.GetLocation()
		searchDate := "today"
		from := time.Now().In(loc)
		if value, ok := optionMap["when"]; ok {
			searchDate = value.StringValue()
			f := as.ParseText(searchDate, loc.String(), time.Now())
			if !f.HasDate {
				utils.InteractRespEdit(as, s, i, fmt.Sprintf("Can't understand the date %q", searchDate))
				return nil
			}
			from = f.Start.In(loc)
		}
		from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
		days := 1
		if value, ok := optionMap["days"]; ok {
			days = int(value.IntValue())
		}
		to := from.AddDate(0, 0, days)
		// #endregion

		events, err := as.Store.ListEvents(as.Context(), from.UTC(), to.UTC())
		if err != nil {
			utils.InteractRespEdit(as, s, i, fmt.Sprintf("Can't get events in range\n```\n%s\n```", err.Error()))
			return fmt.Errorf("listHandler: %w", err)
		}

		// #region - compose & send the message
		embeds := make([]*discordgo.MessageEmbed, 0, maxEmbeds)
		for _, event := range events {
			if len(embeds) == maxEmbeds {
				break
			}
			embeds = append(embeds, event.ToDiscordEmbed())
		}
		content := fmt.Sprintf("No event for %s", searchDate)
		if len(events) > 0 {
			content = fmt.Sprintf("There are %s for %s", plural(len(events), "event"), searchDate)
		}
		if len(events) > maxEmbeds {
			content += fmt.Sprintf(", showing the first %d", maxEmbeds)
		}
		utils.InteractRespEdit(as, s, i, content, embeds...)
		// #endregion
		return nil
	}
}
