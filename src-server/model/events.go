package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"schedly/src-server/conflict"
	"schedly/src-server/recurrence"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
)

// Event is one row on the calendar: either a standalone event or a
// materialized occurrence of a Series. Skipped occurrences have no row.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string `bun:"id,pk"`         // required
	Title       string `bun:"title,notnull"` // required
	Description string `bun:"description"`
	Location    string `bun:"location"`

	StartDateUnixUTC int64 `bun:"start_date,notnull"` // required
	EndDateUnixUTC   int64 `bun:"end_date,notnull"`   // required

	// series linkage, blank for standalone events
	SeriesID                 string `bun:"series_id,nullzero"`
	OriginalStartDateUnixUTC int64  `bun:"original_start,nullzero"`
	IsException              bool   `bun:"is_exception"`

	CreatedAt int64 `bun:"created_at,notnull"`
	UpdatedAt int64 `bun:"updated_at"`
	Sequence  int   `bun:"sequence"`

	Series *Series `bun:"rel:belongs-to,join:series_id=id"`
}

func (e *Event) Start() time.Time { return time.Unix(e.StartDateUnixUTC, 0).UTC() }
func (e *Event) End() time.Time   { return time.Unix(e.EndDateUnixUTC, 0).UTC() }

// OriginalStart is zero for standalone events.
func (e *Event) OriginalStart() time.Time {
	if e.OriginalStartDateUnixUTC == 0 {
		return time.Time{}
	}
	return time.Unix(e.OriginalStartDateUnixUTC, 0).UTC()
}

func (e *Event) Interval() conflict.Interval {
	return conflict.Interval{ID: e.ID, Title: e.Title, Start: e.Start(), End: e.End()}
}

func (e *Event) Occurrence() recurrence.Occurrence {
	return recurrence.Occurrence{
		SeriesID:      e.SeriesID,
		OriginalStart: e.OriginalStart(),
		Start:         e.Start(),
		End:           e.End(),
		IsException:   e.IsException,
		Title:         e.Title,
		Description:   e.Description,
		Location:      e.Location,
	}
}

// setOccurrence copies the presentable fields of occ onto the row.
func (e *Event) setOccurrence(occ recurrence.Occurrence) {
	e.Title = occ.Title
	e.Description = occ.Description
	e.Location = occ.Location
	e.StartDateUnixUTC = occ.Start.Unix()
	e.EndDateUnixUTC = occ.End.Unix()
}

func (e *Event) validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: event id is blank", ErrInvalidEvent)
	case strings.TrimSpace(e.Title) == "":
		return fmt.Errorf("%w: title is blank", ErrInvalidEvent)
	case e.StartDateUnixUTC == 0:
		return fmt.Errorf("%w: start date is blank", ErrInvalidEvent)
	case e.EndDateUnixUTC <= e.StartDateUnixUTC:
		return fmt.Errorf("%w: end date must be after start date", ErrInvalidEvent)
	case e.SeriesID != "" && e.OriginalStartDateUnixUTC == 0:
		return fmt.Errorf("%w: series occurrence without original start", ErrInvalidEvent)
	}
	return nil
}

// Upsert inserts the event or, when the id already exists, updates it and
// bumps its sequence.
func (e *Event) Upsert(ctx context.Context, db bun.IDB) error {
	if err := e.validate(); err != nil {
		return fmt.Errorf("(*Event).Upsert: %w", err)
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UTC().Unix()
	}

	exists, err := db.NewSelect().
		Model((*Event)(nil)).
		Where("id = ?", e.ID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("(*Event).Upsert: %w", err)
	}

	switch exists {
	case true:
		e.UpdatedAt = time.Now().UTC().Unix()
		e.Sequence++
		if _, err := db.NewUpdate().
			Model(e).
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Event).Upsert: %w", err)
		}
	case false:
		if _, err := db.NewInsert().
			Model(e).
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Event).Upsert: %w", err)
		}
	}

	return nil
}

func (e *Event) ToDiscordEmbed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Start Date",
				Value:  fmt.Sprintf("<t:%d:f>", e.StartDateUnixUTC),
				Inline: true,
			},
			{
				Name:   "End Date",
				Value:  fmt.Sprintf("<t:%d:f>", e.EndDateUnixUTC),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: e.ID,
		},
	}
	if e.Location != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Location",
			Value: e.Location,
		})
	}
	if e.SeriesID != "" {
		value := e.SeriesID
		if e.IsException {
			value += " (edited)"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Series",
			Value: value,
		})
	}
	return embed
}
