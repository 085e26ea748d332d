package dto

import (
	"time"

	"shorts-player/domain/model"
)

// RandomVideoResponse is the body of GET /api/videos/random
type RandomVideoResponse struct {
	VideoID     string     `json:"videoId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

func NewRandomVideoResponse(v *model.VideoRecord) RandomVideoResponse {
	return RandomVideoResponse{
		VideoID:     v.VideoID,
		Title:       v.Title,
		Description: v.Description,
		Category:    v.Category,
		PublishedAt: v.PublishedAt,
	}
}

// Res is the generic message body used for errors
type Res struct {
	Message string `json:"message"`
}
