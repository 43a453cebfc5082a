package extraction

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// Transcript is the spoken text of a video
type Transcript struct {
	Title     string
	Fragments []string
}

// Text joins the fragments with single spaces in their original order
func (t *Transcript) Text() string {
	return strings.Join(t.Fragments, " ")
}

// TranscriptFetcher retrieves the transcript of a video by id
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoID string) (*Transcript, error)
}

// VideoAPI is the part of the YouTube client used to read captions
type VideoAPI interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
	GetTranscriptCtx(ctx context.Context, video *youtube.Video, lang string) (youtube.VideoTranscript, error)
}

// preferredLanguages orders caption tracks; anything else falls back to the first track
var preferredLanguages = []string{"ko", "en"}

var errNoCaptions = errors.New("video has no caption tracks")

// YouTubeTranscripts reads a video's caption track through the YouTube client
type YouTubeTranscripts struct {
	API VideoAPI
}

// NewYouTubeTranscripts returns a fetcher that shares client for its requests
func NewYouTubeTranscripts(client *http.Client) *YouTubeTranscripts {
	return &YouTubeTranscripts{API: &youtube.Client{HTTPClient: client}}
}

// FetchTranscript implements TranscriptFetcher
func (y *YouTubeTranscripts) FetchTranscript(ctx context.Context, videoID string) (*Transcript, error) {
	if videoID == "" {
		return nil, errors.New("missing video id")
	}

	video, err := y.API.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load video %s: %w", videoID, err)
	}
	if len(video.CaptionTracks) == 0 {
		return nil, errNoCaptions
	}
	track := pickTrack(video.CaptionTracks)

	segments, err := y.API.GetTranscriptCtx(ctx, video, track.LanguageCode)
	if err != nil {
		if errors.Is(err, youtube.ErrTranscriptDisabled) {
			return nil, errNoCaptions
		}
		return nil, fmt.Errorf("failed to load %s transcript: %w", track.LanguageCode, err)
	}

	transcript := &Transcript{Title: strings.TrimSpace(video.Title)}
	for _, s := range segments {
		if fragment := strings.TrimSpace(s.Text); fragment != "" {
			transcript.Fragments = append(transcript.Fragments, fragment)
		}
	}
	if len(transcript.Fragments) == 0 {
		return nil, errNoCaptions
	}
	return transcript, nil
}

func pickTrack(tracks []youtube.CaptionTrack) youtube.CaptionTrack {
	for _, lang := range preferredLanguages {
		for _, t := range tracks {
			if strings.HasPrefix(strings.ToLower(t.LanguageCode), lang) {
				return t
			}
		}
	}
	return tracks[0]
}
