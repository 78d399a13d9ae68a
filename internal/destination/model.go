package destination

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"gorm.io/datatypes"

	"nearmex/internal/apperr"
)

type Destination struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Name        string                      `gorm:"size:128;not null" json:"name"`
	FullName    string                      `gorm:"size:255" json:"full_name"`
	Description string                      `gorm:"type:text" json:"description"`
	Image       string                      `gorm:"size:512" json:"image"`
	Category    string                      `gorm:"size:64;index" json:"category"`
	MapURL      string                      `gorm:"column:map_url;type:text" json:"map_url"`
	Schedule    string                      `gorm:"size:255" json:"schedule"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Latitude    *float64                    `json:"latitude"`
	Longitude   *float64                    `json:"longitude"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// Coordinate decodes a JSON number, a numeric string, "" or null. The admin
// form posts coordinates as strings.
type Coordinate struct {
	Value *float64
}

func (c *Coordinate) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		c.Value = nil
		return nil
	}
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		c.Value = nil
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return apperr.Invalid("Coordinates must be numbers")
	}
	c.Value = &f
	return nil
}

// Input is the admin-editable shape of a destination.
type Input struct {
	Name        string     `json:"name"`
	FullName    string     `json:"full_name"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Category    string     `json:"category"`
	MapURL      string     `json:"map_url"`
	Schedule    string     `json:"schedule"`
	Tags        []string   `json:"tags"`
	Latitude    Coordinate `json:"latitude"`
	Longitude   Coordinate `json:"longitude"`
}

func (in *Input) Normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperr.Invalid("Name is required")
	}
	if v := in.Latitude.Value; v != nil && (*v < -90 || *v > 90) {
		return apperr.Invalid("Latitude must be between -90 and 90")
	}
	if v := in.Longitude.Value; v != nil && (*v < -180 || *v > 180) {
		return apperr.Invalid("Longitude must be between -180 and 180")
	}
	in.MapURL = EmbedSource(in.MapURL)

	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	in.Tags = tags
	return nil
}

func (in *Input) destination() *Destination {
	return &Destination{
		Name:        in.Name,
		FullName:    in.FullName,
		Description: in.Description,
		Image:       in.Image,
		Category:    in.Category,
		MapURL:      in.MapURL,
		Schedule:    in.Schedule,
		Tags:        datatypes.JSONSlice[string](in.Tags),
		Latitude:    in.Latitude.Value,
		Longitude:   in.Longitude.Value,
	}
}

func (in *Input) columns() map[string]any {
	return map[string]any{
		"name":        in.Name,
		"full_name":   in.FullName,
		"description": in.Description,
		"image":       in.Image,
		"category":    in.Category,
		"map_url":     in.MapURL,
		"schedule":    in.Schedule,
		"tags":        datatypes.JSONSlice[string](in.Tags),
		"latitude":    in.Latitude.Value,
		"longitude":   in.Longitude.Value,
	}
}

// EmbedSource reduces a pasted map embed snippet to its iframe src. Anything
// that is not an iframe is returned trimmed.
func EmbedSource(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(strings.ToLower(raw), "<iframe") {
		return raw
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	if src, ok := doc.Find("iframe").First().Attr("src"); ok && strings.TrimSpace(src) != "" {
		return strings.TrimSpace(src)
	}
	return raw
}
