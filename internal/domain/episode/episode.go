// Package episode provides the Episode domain entity.
package episode

import "time"

// Episode represents a single podcast episode.
// It is read-only once handed to the player.
type Episode struct {
	ID               string    `json:"id" validate:"required"`
	Title            string    `json:"title"`
	Thumbnail        string    `json:"thumbnail"`
	Members          string    `json:"members"`
	PublishedAt      time.Time `json:"published_at"`
	PublishedLabel   string    `json:"published_label"`           // e.g. "8 jan 21"
	Duration         int       `json:"duration" validate:"gte=0"` // seconds
	DurationAsString string    `json:"duration_as_string"`        // HH:MM:SS
	Description      string    `json:"description"`               // HTML body
	URL              string    `json:"url"`                       // playable media URL
}

// New builds an episode and fills in the derived display fields.
func New(id, title, thumbnail, members string, publishedAt time.Time, durationSec int, description, url, locale string) Episode {
	if durationSec < 0 {
		durationSec = 0
	}
	return Episode{
		ID:               id,
		Title:            title,
		Thumbnail:        thumbnail,
		Members:          members,
		PublishedAt:      publishedAt,
		PublishedLabel:   FormatPublished(publishedAt, locale),
		Duration:         durationSec,
		DurationAsString: FormatDuration(durationSec),
		Description:      description,
		URL:              url,
	}
}

// IsPlayable reports whether the episode carries a media URL.
func (e *Episode) IsPlayable() bool {
	return e.URL != ""
}

// Length returns the episode duration as a time.Duration.
func (e *Episode) Length() time.Duration {
	return time.Duration(e.Duration) * time.Second
}
