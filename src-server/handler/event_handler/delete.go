package event_handler

import (
	"errors"
	"fmt"

	"schedly/src-server/model"
	"schedly/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func remove(as *utils.AppState, cmdInfo *[]*discordgo.ApplicationCommandOption, cmdHandler map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) error) {
	id := "delete"
	*cmdInfo = append(*cmdInfo, &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        id,
		Description: "Delete an event. Occurrences of a series are skipped.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "id",
				Description: "The event ID, shown in the footer of its embed",
				Required:    true,
			},
		},
	})
	cmdHandler[id] = deleteHandler(as)
}

func deleteHandler(as *utils.AppState) func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		id := subOptions(i)["id"].StringValue()
		switch err := as.Store.DeleteEvent(as.Context(), id); {
		case errors.Is(err, model.ErrNotFound):
			utils.InteractRespHiddenReply(as, s, i, fmt.Sprintf("No event with ID `%s`", id))
		case err != nil:
			utils.InteractRespHiddenReply(as, s, i, fmt.Sprintf("Can't delete event\n```\n%s\n```", err.Error()))
			return fmt.Errorf("deleteHandler: %w", err)
		default:
			utils.InteractRespHiddenReply(as, s, i, fmt.Sprintf("Event `%s` deleted", id))
		}
		return nil
	}
}
