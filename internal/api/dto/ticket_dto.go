package dto

import (
	"time"

	"github.com/spec-kit/road-damage-service/internal/domain"
)

// CreateTicketRequest payload. Damage fields are forwarded from the
// upstream detector; status and priority are not accepted.
type CreateTicketRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Location         string   `json:"location"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	DamagePercentage *float64 `json:"damage_percentage,omitempty"`
	TotalDetections  *int     `json:"total_detections,omitempty"`
	DamagedAreaPx    *int64   `json:"damaged_area_px,omitempty"`
	ImagePath        *string  `json:"image_path,omitempty"`
	AnnotatedImage   *string  `json:"annotated_image,omitempty"`
}

// UpdateStatusRequest payload for admin triage.
type UpdateStatusRequest struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

// TicketOwner is attached to admin views only.
type TicketOwner struct {
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID               string                `json:"id"`
	OwnerID          string                `json:"owner_id"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Location         string                `json:"location"`
	Latitude         *float64              `json:"latitude,omitempty"`
	Longitude        *float64              `json:"longitude,omitempty"`
	Status           domain.TicketStatus   `json:"status"`
	Priority         domain.TicketPriority `json:"priority"`
	DamagePercentage float64               `json:"damage_percentage"`
	TotalDetections  int                   `json:"total_detections"`
	DamagedAreaPx    int64                 `json:"damaged_area_px"`
	ImagePath        *string               `json:"image_path,omitempty"`
	AnnotatedImage   *string               `json:"annotated_image,omitempty"`
	AdminNotes       *string               `json:"admin_notes,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	Owner            *TicketOwner          `json:"owner,omitempty"`
}

// TicketHistoryResponse is one audit log entry.
type TicketHistoryResponse struct {
	ID        string              `json:"id"`
	ActorID   string              `json:"actor_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Notes     *string             `json:"notes,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}
