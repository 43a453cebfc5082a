package extraction

import (
	"net/url"
	"strings"
)

// Source is where recipe text comes from
type Source string

const (
	SourceVideo Source = "video"
	SourcePage  Source = "page"
)

var videoHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// Classify parses rawURL and decides whether it names a video or a web page
func Classify(rawURL string) (Source, *url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", nil, inputError(MsgInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", nil, inputError(MsgInvalidURL, nil)
	}
	if u.Hostname() == "" {
		return "", nil, inputError(MsgInvalidURL, nil)
	}
	if videoHosts[strings.ToLower(u.Hostname())] {
		return SourceVideo, u, nil
	}
	return SourcePage, u, nil
}

// VideoID is the v query parameter, otherwise the last non-empty path segment
func VideoID(u *url.URL) string {
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(segments[i]); s != "" {
			return s
		}
	}
	return ""
}

// VideoThumbnailURL is the high-quality still for a video id
func VideoThumbnailURL(id string) string {
	return "https://img.youtube.com/vi/" + url.PathEscape(id) + "/hqdefault.jpg"
}
