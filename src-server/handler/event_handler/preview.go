package event_handler

import (
	"time"

	"schedly/src-server/recurrence"
	"schedly/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func preview(as *utils.AppState, cmdInfo *[]*discordgo.ApplicationCommandOption, cmdHandler map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) error) {
	id := "preview"
	*cmdInfo = append(*cmdInfo, &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        id,
		Description: "Show what a text would be scheduled as, without saving it.",
		Options:     textOptions,
	})
	cmdHandler[id] = previewHandler(as)
}

func previewHandler(as *utils.AppState) func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		f := parseText(as, i)
		content := "Here is what I understood"
		if f.IsRecurring() {
			exp, err := recurrence.Expand(f.Descriptor(), as.Store.Limits().Expansion)
			switch {
			case err != nil:
				content = "The repeat rule is invalid: " + err.Error()
			case exp.Truncated:
				content += ", " + plural(len(exp.Occurrences), "occurrence") + " (cut at the limit)"
			default:
				content += ", " + plural(len(exp.Occurrences), "occurrence")
			}
		}

		startTimer := time.Now()
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Flags:   discordgo.MessageFlagsEphemeral,
				Content: content,
				Embeds:  []*discordgo.MessageEmbed{fieldsEmbed(f)},
			},
		}); err != nil {
			return err
		}
		utils.Send(as.MetricChans.DiscordSendMessage, float64(time.Since(startTimer).Microseconds()))
		return nil
	}
}
