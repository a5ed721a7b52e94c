// Package normalize maps the heterogeneous raw event records served by the
// authority onto the canonical Event shape the pipeline consumes. Mapping is
// pure and lenient: malformed fields degrade to zero values, never errors.
package normalize

import (
	"time"

	"eventhound/internal/models"
	"eventhound/internal/timeutil"
)

// RawLocal is a locally authored event as stored in the events collection.
type RawLocal struct {
	ID          models.ID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	StartDate   string       `json:"startDate"`
	EndDate     string       `json:"endDate"`
	City        string       `json:"city"`
	Address     string       `json:"address"`
	Category    string       `json:"category"`
	Price       models.Price `json:"price"`
	CreatorID   models.ID    `json:"creatorId"`
	CreatedAt   string       `json:"createdAt"`
}

// RawExternal is an externally ingested event as stored in the
// externalEvents collection. The external feed nests the location and names
// the title differently.
type RawExternal struct {
	ID        models.ID `json:"id"`
	Name      string    `json:"name"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	Location  struct {
		City    string `json:"city"`
		Address string `json:"address"`
	} `json:"location"`
	Category string       `json:"category"`
	Price    models.Price `json:"price"`
}

// Local converts a locally authored record.
func Local(raw RawLocal) models.Event {
	return models.Event{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		StartDate:   parseDate(raw.StartDate),
		EndDate:     parseDate(raw.EndDate),
		Location: models.Location{
			City:    raw.City,
			Address: raw.Address,
		},
		Category:  raw.Category,
		Price:     raw.Price,
		CreatorID: raw.CreatorID,
		CreatedAt: parseDate(raw.CreatedAt),
	}
}

// External converts an externally ingested record. External events carry no
// creator and are read-only from this system's perspective.
func External(raw RawExternal) models.Event {
	return models.Event{
		ID:        raw.ID,
		Title:     raw.Name,
		StartDate: parseDate(raw.StartDate),
		EndDate:   parseDate(raw.EndDate),
		Location: models.Location{
			City:    raw.Location.City,
			Address: raw.Location.Address,
		},
		Category:   raw.Category,
		Price:      raw.Price,
		IsExternal: true,
	}
}

// Locals converts a batch of local records.
func Locals(raws []RawLocal) []models.Event {
	events := make([]models.Event, 0, len(raws))
	for _, raw := range raws {
		events = append(events, Local(raw))
	}
	return events
}

// Externals converts a batch of external records.
func Externals(raws []RawExternal) []models.Event {
	events := make([]models.Event, 0, len(raws))
	for _, raw := range raws {
		events = append(events, External(raw))
	}
	return events
}

// LocalWire converts an Event back to its wire form for create and update
// requests. Zero dates become empty strings.
func LocalWire(ev models.Event) RawLocal {
	return RawLocal{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		StartDate:   formatDate(ev.StartDate),
		EndDate:     formatDate(ev.EndDate),
		City:        ev.Location.City,
		Address:     ev.Location.Address,
		Category:    ev.Category,
		Price:       ev.Price,
		CreatorID:   ev.CreatorID,
		CreatedAt:   formatDate(ev.CreatedAt),
	}
}

func parseDate(s string) time.Time {
	return timeutil.Parse(s)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
