package extraction

import (
	"context"
	"net/http"
	"testing"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVideoAPI struct {
	video       *youtube.Video
	videoErr    error
	transcripts map[string]youtube.VideoTranscript
	err         error

	requestedID   string
	requestedLang string
}

func (f *fakeVideoAPI) GetVideoContext(ctx context.Context, id string) (*youtube.Video, error) {
	f.requestedID = id
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	return f.video, nil
}

func (f *fakeVideoAPI) GetTranscriptCtx(ctx context.Context, video *youtube.Video, lang string) (youtube.VideoTranscript, error) {
	f.requestedLang = lang
	if f.err != nil {
		return nil, f.err
	}
	return f.transcripts[lang], nil
}

func stewVideo() *youtube.Video {
	return &youtube.Video{
		ID:    "abcdefghijk",
		Title: " 김치찌개 만들기 ",
		CaptionTracks: []youtube.CaptionTrack{
			{LanguageCode: "en"},
			{LanguageCode: "ko", Kind: "asr"},
		},
	}
}

func TestFetchTranscript(t *testing.T) {
	api := &fakeVideoAPI{
		video: stewVideo(),
		transcripts: map[string]youtube.VideoTranscript{
			"en": {{Text: "wrong language"}},
			"ko": {
				{Text: "김치를 '볶고'", StartMs: 0},
				{Text: "   ", StartMs: 2100},
				{Text: "물을 붓는다", StartMs: 3100},
			},
		},
	}
	y := &YouTubeTranscripts{API: api}

	tr, err := y.FetchTranscript(t.Context(), "abcdefghijk")
	require.NoError(t, err)

	assert.Equal(t, "abcdefghijk", api.requestedID)
	assert.Equal(t, "ko", api.requestedLang)
	assert.Equal(t, "김치찌개 만들기", tr.Title)
	assert.Equal(t, []string{"김치를 '볶고'", "물을 붓는다"}, tr.Fragments)
	assert.Equal(t, "김치를 '볶고' 물을 붓는다", tr.Text())
}

func TestFetchTranscriptWithoutCaptions(t *testing.T) {
	bare := &youtube.Video{ID: "abcdefghijk", Title: "No captions"}
	y := &YouTubeTranscripts{API: &fakeVideoAPI{video: bare}}
	_, err := y.FetchTranscript(t.Context(), "abcdefghijk")
	require.ErrorIs(t, err, errNoCaptions)

	disabled := &YouTubeTranscripts{API: &fakeVideoAPI{video: stewVideo(), err: youtube.ErrTranscriptDisabled}}
	_, err = disabled.FetchTranscript(t.Context(), "abcdefghijk")
	require.ErrorIs(t, err, errNoCaptions)

	blank := &YouTubeTranscripts{API: &fakeVideoAPI{
		video:       stewVideo(),
		transcripts: map[string]youtube.VideoTranscript{"ko": {{Text: " "}}},
	}}
	_, err = blank.FetchTranscript(t.Context(), "abcdefghijk")
	require.ErrorIs(t, err, errNoCaptions)

	_, err = y.FetchTranscript(t.Context(), "")
	require.Error(t, err)
}

func TestFetchTranscriptVideoError(t *testing.T) {
	y := &YouTubeTranscripts{API: &fakeVideoAPI{videoErr: youtube.ErrVideoPrivate}}
	_, err := y.FetchTranscript(t.Context(), "abcdefghijk")
	assert.ErrorIs(t, err, youtube.ErrVideoPrivate)
	assert.NotErrorIs(t, err, errNoCaptions)
}

func TestPickTrack(t *testing.T) {
	tracks := []youtube.CaptionTrack{{LanguageCode: "ja"}, {LanguageCode: "en-US"}}
	assert.Equal(t, "en-US", pickTrack(tracks).LanguageCode)
	assert.Equal(t, "ja", pickTrack(tracks[:1]).LanguageCode)

	tracks = append(tracks, youtube.CaptionTrack{LanguageCode: "ko"})
	assert.Equal(t, "ko", pickTrack(tracks).LanguageCode)
}

func TestNewYouTubeTranscriptsUsesClient(t *testing.T) {
	httpClient := &http.Client{}
	y := NewYouTubeTranscripts(httpClient)
	client, ok := y.API.(*youtube.Client)
	require.True(t, ok)
	assert.Same(t, httpClient, client.HTTPClient)
}
