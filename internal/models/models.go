// Package models holds the canonical data model shared by the stores, the
// filter pipeline, and the ingestion layer.
package models

import "time"

// Location is where an event takes place.
type Location struct {
	City    string `json:"city"`
	Address string `json:"address"`
}

// Event is the canonical event shape consumed by the filter pipeline.
// Locally authored and externally ingested records are both normalized into
// this form; see the normalize package.
type Event struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate,omitempty"`
	Location    Location  `json:"location"`
	Category    string    `json:"category"`
	Price       Price     `json:"price"`
	CreatorID   ID        `json:"creatorId,omitempty"`
	IsExternal  bool      `json:"isExternal"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Favorite marks an event as a favorite of a user.
type Favorite struct {
	ID        ID        `json:"id"`
	UserID    ID        `json:"userId"`
	EventID   ID        `json:"eventId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Interest marks a user as interested in attending an event.
type Interest struct {
	ID      ID `json:"id"`
	EventID ID `json:"eventId"`
	UserID  ID `json:"userId"`
}

// Like is a directed like between two users.
type Like struct {
	ID         ID `json:"id"`
	FromUserID ID `json:"fromUserId"`
	ToUserID   ID `json:"toUserId"`
}

// Comment is a user comment on an event.
type Comment struct {
	ID        ID        `json:"id"`
	EventID   ID        `json:"eventId"`
	UserID    ID        `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
