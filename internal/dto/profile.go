package dto

// ProfileResponse represents a public profile in responses
type ProfileResponse struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	FullName  *string  `json:"full_name"`
	Bio       *string  `json:"bio"`
	AvatarURL *string  `json:"avatar_url"`
	Location  *string  `json:"location"`
	Age       *int     `json:"age"`
	Gender    *string  `json:"gender"`
	Interests []string `json:"interests"`
	Languages []string `json:"languages"`
	CreatedAt string   `json:"created_at"`
}

// UpdateProfileRequest represents fields allowed to update a profile.
// All fields are optional; only provided ones will be updated
type UpdateProfileRequest struct {
	Username  *string   `json:"username"`
	FullName  *string   `json:"full_name"`
	Bio       *string   `json:"bio"`
	Location  *string   `json:"location"`
	Age       *int      `json:"age"`
	Gender    *string   `json:"gender"`
	Interests *[]string `json:"interests"`
	Languages *[]string `json:"languages"`
}

// ProfileEnvelope wraps a single profile
type ProfileEnvelope struct {
	Profile ProfileResponse `json:"profile"`
}
