// pipeline.go
//
// Recipe journal service with fridge tracking and URL recipe extraction
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of recipe-journal.
// recipe-journal is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// recipe-journal is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with recipe-journal.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package extraction turns a recipe URL into a structured recipe by
// acquiring its text (a video transcript or a scraped page) and asking a
// language model to structure it.
package extraction

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// MaxTextLength bounds the text sent to the model, in characters
const MaxTextLength = 30000

// Pipeline runs one extraction per call; it holds no per-request state
type Pipeline struct {
	Pages       PageFetcher
	Transcripts TranscriptFetcher
	Structurer  Structurer
	Cache       Cache
	Logger      *zap.Logger
	MaxText     int
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// acquired is the text and page-derived metadata for one URL
type acquired struct {
	text      string
	title     string
	thumbnail string
}

// Extract classifies rawURL, acquires its text and structures it
func (p *Pipeline) Extract(ctx context.Context, rawURL string) (*Recipe, error) {
	source, u, err := Classify(rawURL)
	if err != nil {
		observe(source, KindOf(err).String())
		return nil, err
	}
	sourceURL := u.String()

	if p.Cache != nil {
		cached, err := p.Cache.Get(ctx, sourceURL)
		switch {
		case err == nil:
			observe(source, "cached")
			return cached, nil
		case !errors.Is(err, ErrCacheMiss):
			p.logger().Warn("extraction cache read failed", zap.Error(err))
		}
	}

	recipe, err := p.extract(ctx, source, sourceURL, func() (*acquired, error) {
		if source == SourceVideo {
			return p.acquireVideo(ctx, VideoID(u))
		}
		return p.acquirePage(ctx, sourceURL)
	})
	if err != nil {
		kind := KindOf(err)
		observe(source, kind.String())
		if kind == KindInput {
			p.logger().Info("extraction rejected", zap.String("url", sourceURL), zap.Error(err))
		} else {
			p.logger().Error("extraction failed", zap.String("url", sourceURL), zap.Error(err))
		}
		return nil, err
	}
	observe(source, "success")

	if p.Cache != nil {
		if err := p.Cache.Set(ctx, sourceURL, recipe); err != nil {
			p.logger().Warn("extraction cache write failed", zap.Error(err))
		}
	}
	return recipe, nil
}

func (p *Pipeline) extract(ctx context.Context, source Source, sourceURL string, acquire func() (*acquired, error)) (*Recipe, error) {
	a, err := acquire()
	if err != nil {
		return nil, err
	}

	max := p.MaxText
	if max <= 0 {
		max = MaxTextLength
	}
	text := Truncate(strings.TrimSpace(a.text), max)
	if text == "" {
		return nil, inputError(MsgInsufficientText, nil)
	}

	if p.Structurer == nil || !p.Structurer.Configured() {
		return nil, configError(MsgNotConfigured, nil)
	}

	recipe, err := p.Structurer.Structure(ctx, text)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, e
		}
		return nil, upstreamError(MsgModelFailed, err)
	}

	recipe.Finalize(sourceURL, a.thumbnail, a.title)
	p.logger().Debug("extraction structured",
		zap.String("source", string(source)),
		zap.Int("textLength", len([]rune(text))),
		zap.Int("ingredients", len(recipe.Ingredients)),
		zap.Int("steps", len(recipe.Steps)))
	return recipe, nil
}

func (p *Pipeline) acquireVideo(ctx context.Context, videoID string) (*acquired, error) {
	if p.Transcripts == nil || videoID == "" {
		return nil, inputError(MsgNoTranscript, nil)
	}
	transcript, err := p.Transcripts.FetchTranscript(ctx, videoID)
	if err != nil {
		return nil, inputError(MsgNoTranscript, err)
	}
	return &acquired{
		text:      transcript.Text(),
		title:     transcript.Title,
		thumbnail: VideoThumbnailURL(videoID),
	}, nil
}

func (p *Pipeline) acquirePage(ctx context.Context, url string) (*acquired, error) {
	page, err := p.Pages.FetchPage(ctx, url)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, e
		}
		return nil, inputError(MsgFetchFailed, err)
	}
	return &acquired{text: page.Text, title: page.Title, thumbnail: page.Thumbnail}, nil
}
