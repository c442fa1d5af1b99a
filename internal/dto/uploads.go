package dto

// UploadResponse returns the public URL of a stored image
type UploadResponse struct {
	URL string `json:"url"`
}
