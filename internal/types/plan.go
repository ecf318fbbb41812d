package types

import (
	"time"

	"github.com/google/uuid"
)

// Plan is a group trip being put together: one owner, a destination, a
// date window and a short invite code collaborators join with.
type Plan struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	InviteCode  string    `json:"invite_code"`
	Passcode    string    `json:"-"` // bcrypt hash, empty when the plan is open
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TravelerPreferences is one collaborator's input into the generation
// prompt. One row per (plan, user).
type TravelerPreferences struct {
	PlanID       uuid.UUID `json:"plan_id"`
	UserID       uuid.UUID `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	Budget       string    `json:"budget"`       // e.g. "shoestring", "mid-range", "splurge"
	TravelStyle  string    `json:"travel_style"` // e.g. "relaxed", "packed schedule"
	MustDos      []string  `json:"must_dos"`
	DietaryNotes string    `json:"dietary_notes"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreatePlanRequest struct {
	Name        string `json:"name"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"` // ISO date
	EndDate     string `json:"end_date"`
	Passcode    string `json:"passcode,omitempty"`
}

type JoinPlanRequest struct {
	InviteCode string `json:"invite_code"`
	Passcode   string `json:"passcode,omitempty"`
}

type UpsertPreferencesRequest struct {
	DisplayName  string   `json:"display_name"`
	Budget       string   `json:"budget"`
	TravelStyle  string   `json:"travel_style"`
	MustDos      []string `json:"must_dos"`
	DietaryNotes string   `json:"dietary_notes"`
}

// SavedItinerary is the persisted generation result for a plan, stored as
// a JSONB document with the citations that grounded it.
type SavedItinerary struct {
	ID        uuid.UUID        `json:"id"`
	PlanID    uuid.UUID        `json:"plan_id"`
	Document  Itinerary        `json:"document"`
	Citations []GroundingChunk `json:"citations"`
	CreatedAt time.Time        `json:"created_at"`
}
