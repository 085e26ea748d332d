package dto

import "time"

// YouTubeSearchRequest represents one search.list call
type YouTubeSearchRequest struct {
	Q               string `json:"q"`
	MaxResults      int64  `json:"max_results,omitempty"`
	PageToken       string `json:"page_token,omitempty"`
	VideoCategoryID string `json:"video_category_id,omitempty"`
	VideoDuration   string `json:"video_duration,omitempty"` // any, short, medium, long
	PublishedAfter  string `json:"published_after,omitempty"`
	PublishedBefore string `json:"published_before,omitempty"`
	RegionCode      string `json:"region_code,omitempty"`
	Order           string `json:"order,omitempty"`
}

// YouTubeSearchItem is a single search hit
type YouTubeSearchItem struct {
	VideoID     string    `json:"video_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"published_at"`
}

// YouTubeSearchResponse is one page of search results
type YouTubeSearchResponse struct {
	Items         []YouTubeSearchItem `json:"items"`
	NextPageToken string              `json:"next_page_token,omitempty"`
	TotalResults  int64               `json:"total_results"`
}

// YouTubeRegionRestriction mirrors contentDetails.regionRestriction
type YouTubeRegionRestriction struct {
	Allowed []string `json:"allowed,omitempty"`
	Blocked []string `json:"blocked,omitempty"`
}

// YouTubeVideoStatus is the availability metadata returned by videos.list
type YouTubeVideoStatus struct {
	VideoID           string                    `json:"video_id"`
	PrivacyStatus     string                    `json:"privacy_status"`
	Embeddable        bool                      `json:"embeddable"`
	RegionRestriction *YouTubeRegionRestriction `json:"region_restriction,omitempty"`
}

// Available reports whether the video is public, embeddable and not region restricted.
func (s YouTubeVideoStatus) Available() bool {
	if s.PrivacyStatus != "public" || !s.Embeddable {
		return false
	}
	if s.RegionRestriction == nil {
		return true
	}
	return len(s.RegionRestriction.Allowed) == 0 && len(s.RegionRestriction.Blocked) == 0
}
