package dto

// CreateTripRequestRequest represents the payload to request joining a trip
type CreateTripRequestRequest struct {
	Message string `json:"message"`
}

// TripRequestResponse represents a join request in responses
type TripRequestResponse struct {
	ID        string           `json:"id"`
	TripID    string           `json:"trip_id"`
	UserID    string           `json:"user_id"`
	Message   *string          `json:"message"`
	Status    string           `json:"status"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
	Requester *ProfileResponse `json:"requester,omitempty"`
	Trip      *TripResponse    `json:"trip,omitempty"`
}

// TripRequestListResponse envelope
type TripRequestListResponse struct {
	Requests []TripRequestResponse `json:"requests"`
}

// CreateTripRequestResponse envelope
type CreateTripRequestResponse struct {
	Request TripRequestResponse `json:"request"`
}
