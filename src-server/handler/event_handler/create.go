package event_handler

import (
	"errors"
	"fmt"
	"log/slog"

	"schedly/src-server/model"
	"schedly/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func create(as *utils.AppState, cmdInfo *[]*discordgo.ApplicationCommandOption, cmdHandler map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) error) {
	id := "create"
	*cmdInfo = append(*cmdInfo, &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        id,
		Description: "Create an event or a repeating series from text.",
		Options:     textOptions,
	})
	cmdHandler[id] = createHandler(as)
}

func createHandler(as *utils.AppState) func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		deferResponse(s, i, "schedule-create")
		f := parseText(as, i)
		ctx := as.Context()

		// #region - store
		var (
			events  []*model.Event
			content string
			err     error
		)
		if f.IsRecurring() {
			var result *model.SeriesResult
			if result, err = as.Store.CreateSeries(ctx, f.Descriptor()); err == nil {
				events = result.Events
				content = fmt.Sprintf("Series created with %s", plural(len(events), "occurrence"))
				if result.Truncated {
					content += " (open-ended, cut at the limit)"
				}
			}
		} else {
			var event *model.Event
			if event, err = as.Store.CreateEvent(ctx, model.EventInput{
				Title:       f.Title,
				Description: f.Description,
				Location:    f.Location,
				Start:       f.Start,
				End:         f.End,
			}); err == nil {
				events = []*model.Event{event}
				content = "Event created"
			}
		}
		// #endregion

		// #region - compose & send the message
		var conflictErr *model.ConflictError
		switch {
		case errors.As(err, &conflictErr):
			embeds := make([]*discordgo.MessageEmbed, 0, maxEmbeds)
			for _, c := range conflictErr.Report.Conflicts {
				if len(embeds) == maxEmbeds {
					break
				}
				embeds = append(embeds, &discordgo.MessageEmbed{
					Title:       c.Existing.Title,
					Description: fmt.Sprintf("<t:%d:f> - <t:%d:t>", c.Existing.Start.Unix(), c.Existing.End.Unix()),
				})
			}
			utils.InteractRespEdit(as, s, i,
				fmt.Sprintf("Nothing was saved, %s overlap existing events", plural(conflictErr.Report.Total, "time")),
				embeds...,
			)
			return nil
		case err != nil:
			utils.InteractRespEdit(as, s, i, fmt.Sprintf("Can't create event\n```\n%s\n```", err.Error()))
			return fmt.Errorf("createHandler: %w", err)
		}

		embeds := make([]*discordgo.MessageEmbed, 0, maxEmbeds)
		for _, event := range events {
			if len(embeds) == maxEmbeds {
				break
			}
			embeds = append(embeds, event.ToDiscordEmbed())
		}
		utils.InteractRespEdit(as, s, i, content, embeds...)
		slog.Info("created from discord", "title", f.Title, "events", len(events), "guild", i.GuildID)
		// #endregion
		return nil
	}
}
