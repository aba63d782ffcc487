// AngelaMos | 2026
// dto.go

package booking

type StartSessionRequest struct {
	BusinessID string `json:"business_id" validate:"required,uuid"`
}

type StartSessionResponse struct {
	SessionID    string          `json:"session_id"`
	BusinessID   string          `json:"business_id"`
	BusinessName string          `json:"business_name"`
	Services     []ServiceOption `json:"services"`
}

type SelectServiceRequest struct {
	ServiceID string `json:"service_id" validate:"required"`
}

type SlotsResponse struct {
	Date      string         `json:"date"`
	TimeSlots []SlotResponse `json:"time_slots"`
}

type SlotResponse struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type ConfirmRequest struct {
	ServiceID string `json:"service_id" validate:"required"`
	Date      string `json:"date"       validate:"required"`
	Slot      string `json:"slot"       validate:"required"`
}

type ConfirmationResponse struct {
	BusinessName string `json:"business_name"`
	ServiceName  string `json:"service_name"`
	Date         string `json:"date"`
	Slot         string `json:"slot"`
}
