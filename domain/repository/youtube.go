package repository

import (
	"context"

	"shorts-player/domain/dto"
)

// MaxVideoIDsPerCall is the videos.list batch limit.
const MaxVideoIDsPerCall = 50

// IYouTube defines the read-only YouTube operations used by the refresh engine
type IYouTube interface {
	SearchVideos(ctx context.Context, req *dto.YouTubeSearchRequest) (*dto.YouTubeSearchResponse, error)
	// GetVideoStatuses looks up at most MaxVideoIDsPerCall ids. Unknown ids are
	// absent from the result.
	GetVideoStatuses(ctx context.Context, videoIDs []string) ([]dto.YouTubeVideoStatus, error)
}
