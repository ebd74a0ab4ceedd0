package dto

import "github.com/noah-isme/volunteer-hub-api/internal/models"

// EventRequest carries writable event fields. Create and PUT require every field
// except is_published; PATCH applies only the fields present.
type EventRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	Date        *string `json:"date" validate:"omitempty"`
	StartTime   *string `json:"start_time" validate:"omitempty,clock"`
	EndTime     *string `json:"end_time" validate:"omitempty,clock"`
	Location    *string `json:"location" validate:"omitempty,min=1,max=255"`
	IsPublished *bool   `json:"is_published"`
}

// Missing returns the names of required fields absent from a full write.
func (r EventRequest) Missing() []string {
	var missing []string
	if r.Title == nil {
		missing = append(missing, "title")
	}
	if r.Description == nil {
		missing = append(missing, "description")
	}
	if r.Date == nil {
		missing = append(missing, "date")
	}
	if r.StartTime == nil {
		missing = append(missing, "start_time")
	}
	if r.EndTime == nil {
		missing = append(missing, "end_time")
	}
	if r.Location == nil {
		missing = append(missing, "location")
	}
	return missing
}

// EventResponse exposes an event with the read-only ngo alias of its owner.
type EventResponse struct {
	models.Event
	NGO string `json:"ngo"`
}

// NewEventResponse wraps an event for output.
func NewEventResponse(e *models.Event) EventResponse {
	return EventResponse{Event: *e, NGO: e.CreatedBy}
}

// NewEventResponses wraps a slice of events.
func NewEventResponses(events []models.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, NewEventResponse(&events[i]))
	}
	return out
}
