// Package videoref extracts canonical YouTube video identifiers from URLs.
package videoref

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidReference is returned when a URL carries no recognizable video identifier.
var ErrInvalidReference = errors.New("invalid YouTube URL")

// Matches the first 11-character id after either a watch?v= or a youtu.be/ prefix.
// The video itself is never checked for existence.
var videoURLPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/)([\w-]{11})`)

const cacheKeyPrefix = "generatedNotes:"

// VideoRef is the 11-character identifier of a video.
type VideoRef string

func (ref VideoRef) String() string {
	return string(ref)
}

// WatchURL returns the canonical watch page URL for the video.
func (ref VideoRef) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + string(ref)
}

// CacheKey returns the notes cache key for the video.
// Every URL form of the same video shares one key.
func (ref VideoRef) CacheKey() string {
	return cacheKeyPrefix + string(ref)
}

// Resolve extracts the VideoRef from a watch?v= or shortened youtu.be URL.
func Resolve(url string) (VideoRef, error) {
	match := videoURLPattern.FindStringSubmatch(url)
	if match == nil {
		return "", fmt.Errorf("%q: %w", url, ErrInvalidReference)
	}
	return VideoRef(match[1]), nil
}
