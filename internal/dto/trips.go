package dto

// CreateTripRequest represents the payload to create a trip
type CreateTripRequest struct {
	Title        string   `json:"title"`
	Destination  string   `json:"destination"`
	Description  string   `json:"description"`
	StartDate    string   `json:"start_date"` // ISO 8601 format: YYYY-MM-DD or RFC3339
	EndDate      string   `json:"end_date"`   // ISO 8601 format: YYYY-MM-DD or RFC3339
	Budget       string   `json:"budget"`
	MaxTravelers int      `json:"max_travelers"`
	Interests    []string `json:"interests"`
	Status       string   `json:"status"` // planning | confirmed | completed | cancelled
}

// UpdateTripRequest represents fields allowed to update a trip
// All fields are optional; only provided ones will be updated
type UpdateTripRequest struct {
	Title        *string   `json:"title"`
	Destination  *string   `json:"destination"`
	Description  *string   `json:"description"`
	StartDate    *string   `json:"start_date"`
	EndDate      *string   `json:"end_date"`
	Budget       *string   `json:"budget"`
	MaxTravelers *int      `json:"max_travelers"`
	Interests    *[]string `json:"interests"`
	Status       *string   `json:"status"`
}

// TripResponse represents a trip object in responses
type TripResponse struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id"`
	Title            string   `json:"title"`
	Destination      string   `json:"destination"`
	Description      string   `json:"description"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	Budget           string   `json:"budget"`
	MaxTravelers     int      `json:"max_travelers"`
	CurrentTravelers int      `json:"current_travelers"`
	Interests        []string `json:"interests"`
	ImageURL         *string  `json:"image_url"`
	Status           string   `json:"status"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// CreateTripResponse envelope
type CreateTripResponse struct {
	Trip TripResponse `json:"trip"`
}

// Pagination info
type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// TripListResponse envelope
type TripListResponse struct {
	Trips      []TripResponse `json:"trips"`
	Pagination Pagination     `json:"pagination"`
}
