package youtube

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shorts-player/domain/dto"
	"shorts-player/domain/repository"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const maxSearchResults = 50

// Client represents the read-only YouTube Data API client
type Client struct {
	service *youtube.Service
}

// Config represents YouTube API configuration
type Config struct {
	APIKey       string `json:"api_key"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// Endpoint overrides the API base URL (tests, proxies).
	Endpoint string `json:"endpoint,omitempty"`
}

// NewYouTubeClient creates a client in API key mode, or OAuth mode when a
// refresh token is configured.
func NewYouTubeClient(ctx context.Context, config *Config, extra ...option.ClientOption) (repository.IYouTube, error) {
	var opts []option.ClientOption
	switch {
	case config.RefreshToken != "" && config.ClientID != "":
		oauth2Config := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Scopes:       []string{youtube.YoutubeReadonlyScope},
			Endpoint:     google.Endpoint,
		}
		token := &oauth2.Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(-1 * time.Minute), // Force refresh on first use
		}
		opts = append(opts, option.WithTokenSource(oauth2Config.TokenSource(ctx, token)))
	case config.APIKey != "":
		opts = append(opts, option.WithAPIKey(config.APIKey))
	default:
		return nil, fmt.Errorf("youtube client requires an API key or OAuth refresh token")
	}
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint))
	}
	opts = append(opts, extra...)

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{service: service}, nil
}

// SearchVideos runs one search.list page restricted to videos
func (c *Client) SearchVideos(ctx context.Context, req *dto.YouTubeSearchRequest) (*dto.YouTubeSearchResponse, error) {
	call := c.service.Search.List([]string{"snippet"}).
		Q(req.Q).
		Type("video")

	maxResults := req.MaxResults
	if maxResults <= 0 || maxResults > maxSearchResults {
		maxResults = maxSearchResults
	}
	call = call.MaxResults(maxResults)

	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	}
	if req.Order != "" {
		call = call.Order(req.Order)
	}
	if req.VideoCategoryID != "" {
		call = call.VideoCategoryId(req.VideoCategoryID)
	}
	if req.VideoDuration != "" {
		call = call.VideoDuration(req.VideoDuration)
	}
	if req.RegionCode != "" {
		call = call.RegionCode(req.RegionCode)
	}
	if req.PublishedAfter != "" {
		if publishedAfter, err := time.Parse(time.RFC3339, req.PublishedAfter); err == nil {
			call = call.PublishedAfter(publishedAfter.Format(time.RFC3339))
		}
	}
	if req.PublishedBefore != "" {
		if publishedBefore, err := time.Parse(time.RFC3339, req.PublishedBefore); err == nil {
			call = call.PublishedBefore(publishedBefore.Format(time.RFC3339))
		}
	}

	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search videos: %w", err)
	}

	out := &dto.YouTubeSearchResponse{
		Items:         make([]dto.YouTubeSearchItem, 0, len(response.Items)),
		NextPageToken: response.NextPageToken,
	}
	if response.PageInfo != nil {
		out.TotalResults = response.PageInfo.TotalResults
	}
	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		publishedAt, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		out.Items = append(out.Items, dto.YouTubeSearchItem{
			VideoID:     item.Id.VideoId,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			PublishedAt: publishedAt,
		})
	}
	return out, nil
}

// GetVideoStatuses looks up privacy, embeddability and region restrictions
func (c *Client) GetVideoStatuses(ctx context.Context, videoIDs []string) ([]dto.YouTubeVideoStatus, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	if len(videoIDs) > repository.MaxVideoIDsPerCall {
		return nil, fmt.Errorf("too many video ids: %d > %d", len(videoIDs), repository.MaxVideoIDsPerCall)
	}

	response, err := c.service.Videos.List([]string{"status", "contentDetails"}).
		Id(strings.Join(videoIDs, ",")).
		MaxResults(int64(len(videoIDs))).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get video statuses: %w", err)
	}

	statuses := make([]dto.YouTubeVideoStatus, 0, len(response.Items))
	for _, video := range response.Items {
		statuses = append(statuses, convertToVideoStatus(video))
	}
	return statuses, nil
}

func convertToVideoStatus(video *youtube.Video) dto.YouTubeVideoStatus {
	status := dto.YouTubeVideoStatus{VideoID: video.Id}
	if video.Status != nil {
		status.PrivacyStatus = video.Status.PrivacyStatus
		status.Embeddable = video.Status.Embeddable
	}
	if video.ContentDetails != nil && video.ContentDetails.RegionRestriction != nil {
		status.RegionRestriction = &dto.YouTubeRegionRestriction{
			Allowed: video.ContentDetails.RegionRestriction.Allowed,
			Blocked: video.ContentDetails.RegionRestriction.Blocked,
		}
	}
	return status
}
