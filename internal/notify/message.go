package notify

import (
	"fmt"
	"strings"

	"fightcal/internal/model"
	"fightcal/internal/normalize"
)

// EmbedField is one name/value pair inside an embed.
type EmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Embed is a rich message block in the shape the chat platform and its
// webhooks both accept.
type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// Message is the payload delivered to a destination.
type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds"`
}

// EventMessage renders one event record as a single-event embed: name as
// title, trimmed description as body, the event URL as the link, plus date
// and location fields.
func EventMessage(rec model.EventRecord) Message {
	embed := Embed{
		Title:       rec.EventName,
		Description: strings.TrimSpace(rec.EventDescription),
		Fields: []EmbedField{
			{Name: "Event Date:", Value: rec.EventDate.Format(normalize.CivilLayout)},
			{Name: "Location:", Value: orNA(rec.EventLocation)},
		},
	}
	if rec.EventURL != nil {
		embed.URL = *rec.EventURL
	}
	return Message{Embeds: []Embed{embed}}
}

// WeeklyDigest aggregates a week's events into one embed, one field per
// event. One digest goes to each destination instead of one message per
// event.
func WeeklyDigest(recs []model.EventRecord) Message {
	embed := Embed{Title: "UFC events this week"}
	for _, rec := range recs {
		embed.Fields = append(embed.Fields, EmbedField{
			Name: rec.EventName,
			Value: fmt.Sprintf("Date: %s, Location: %s",
				rec.EventDate.Format(normalize.CivilLayout), orNA(rec.EventLocation)),
		})
	}
	return Message{Embeds: []Embed{embed}}
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}
