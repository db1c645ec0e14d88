package model

import "time"

// Booking statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Participant statuses and roles.
const (
	ParticipantJoined = "joined"
	RoleOwner         = "owner"
	RoleParticipant   = "participant"
)

// Booking is a reservation of a content item that other people can join
// through its share token.
type Booking struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	ItemType     string        `json:"itemType"`
	ItemID       string        `json:"itemId"`
	ItemData     ItemSnapshot  `json:"itemData"`
	TravelDate   string        `json:"travelDate"`
	Guests       int           `json:"guests"`
	Status       string        `json:"status"`
	ShareToken   string        `json:"shareToken,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Participants []Participant `json:"participants"`
}

// HasParticipant reports whether userID already joined.
func (b Booking) HasParticipant(userID string) bool {
	for _, p := range b.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Participant is a person attached to a booking.  Participants are only
// ever appended.
type Participant struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    *string   `json:"phone,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
	Status   string    `json:"status"`
	Role     string    `json:"role"`
}

// SharedPreview is what a share-token holder sees before joining.  It
// leaves out the contact details of people already on the booking.
type SharedPreview struct {
	ID               string       `json:"id"`
	ItemType         string       `json:"itemType"`
	ItemID           string       `json:"itemId"`
	ItemData         ItemSnapshot `json:"itemData"`
	TravelDate       string       `json:"travelDate"`
	Guests           int          `json:"guests"`
	Status           string       `json:"status"`
	ParticipantCount int          `json:"participantCount"`
}

// Preview returns the public view of b.
func (b Booking) Preview() SharedPreview {
	return SharedPreview{
		ID:               b.ID,
		ItemType:         b.ItemType,
		ItemID:           b.ItemID,
		ItemData:         b.ItemData,
		TravelDate:       b.TravelDate,
		Guests:           b.Guests,
		Status:           b.Status,
		ParticipantCount: len(b.Participants),
	}
}
