package caption

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/at-ishikawa/tubenotes/internal/videoref"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	DefaultYouTubeBaseURL = "https://www.youtube.com"

	playerResponseMarker = "ytInitialPlayerResponse"
	captionTracksPath    = "captions.playerCaptionsTracklistRenderer.captionTracks"
	userAgent            = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

var tagPattern = regexp.MustCompile(`</?[^>]+(>|$)`)

// YouTubeProvider reads caption tracks advertised on a video's watch page.
type YouTubeProvider struct {
	client *resty.Client
}

var _ Provider = (*YouTubeProvider)(nil)

func NewYouTubeProvider(baseURL string) *YouTubeProvider {
	if baseURL == "" {
		baseURL = DefaultYouTubeBaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetHeader("User-Agent", userAgent)
	return &YouTubeProvider{client: client}
}

func (p *YouTubeProvider) Fragments(ctx context.Context, ref videoref.VideoRef, lang string) ([]Fragment, error) {
	watchPage, err := p.get(ctx, "/watch", map[string]string{"v": string(ref)})
	if err != nil {
		return nil, fmt.Errorf("watch page of %s > %w", ref, err)
	}

	playerResponse, ok := extractJSONObject(string(watchPage), playerResponseMarker)
	if !ok {
		return nil, fmt.Errorf("%s not found on the watch page of %s", playerResponseMarker, ref)
	}

	tracks := gjson.Get(playerResponse, captionTracksPath).Array()
	if len(tracks) == 0 {
		return nil, fmt.Errorf("video %s: %w", ref, ErrNoCaptionsAvailable)
	}
	trackURL, ok := selectTrack(tracks, lang)
	if !ok {
		return nil, fmt.Errorf("video %s, lang %s: %w", ref, lang, ErrNoCaptionsAvailable)
	}

	timedText, err := p.get(ctx, trackURL, nil)
	if err != nil {
		return nil, fmt.Errorf("caption track of %s > %w", ref, err)
	}
	fragments, err := parseTimedText(timedText)
	if err != nil {
		return nil, fmt.Errorf("parseTimedText > %w", err)
	}
	return fragments, nil
}

func (p *YouTubeProvider) get(ctx context.Context, url string, query map[string]string) ([]byte, error) {
	res, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("client.R.Get > %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status code: %d, body: %s", res.StatusCode(), string(res.Body()))
	}
	return res.Body(), nil
}

// selectTrack prefers a manual track in lang over an auto-generated one,
// then falls back to regional variants such as en-GB.
func selectTrack(tracks []gjson.Result, lang string) (string, bool) {
	candidates := []func(vssID string) bool{
		func(vssID string) bool { return vssID == "."+lang },
		func(vssID string) bool { return vssID == "a."+lang },
		func(vssID string) bool { return strings.HasPrefix(vssID, "."+lang+"-") },
		func(vssID string) bool { return strings.HasPrefix(vssID, "a."+lang+"-") },
	}
	for _, matches := range candidates {
		for _, track := range tracks {
			if matches(track.Get("vssId").String()) {
				baseURL := track.Get("baseUrl").String()
				if baseURL != "" {
					return baseURL, true
				}
			}
		}
	}
	return "", false
}

type timedTextDocument struct {
	Texts []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

func parseTimedText(body []byte) ([]Fragment, error) {
	var document timedTextDocument
	if err := xml.Unmarshal(body, &document); err != nil {
		return nil, fmt.Errorf("xml.Unmarshal > %w", err)
	}

	fragments := make([]Fragment, 0, len(document.Texts))
	for _, line := range document.Texts {
		start, _ := strconv.ParseFloat(line.Start, 64)
		duration, _ := strconv.ParseFloat(line.Dur, 64)
		fragments = append(fragments, Fragment{
			Text:     tagPattern.ReplaceAllString(html.UnescapeString(line.Text), ""),
			Start:    start,
			Duration: duration,
		})
	}
	return fragments, nil
}

// extractJSONObject returns the first balanced JSON object following marker.
func extractJSONObject(content, marker string) (string, bool) {
	markerIndex := strings.Index(content, marker)
	if markerIndex < 0 {
		return "", false
	}
	rest := content[markerIndex+len(marker):]
	firstBrace := strings.IndexByte(rest, '{')
	if firstBrace < 0 {
		return "", false
	}

	braceCount := 0
	inString := false
	escapeNext := false
	for i := firstBrace; i < len(rest); i++ {
		ch := rest[i]
		if escapeNext {
			escapeNext = false
			continue
		}
		if ch == '\\' && inString {
			escapeNext = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				return rest[firstBrace : i+1], true
			}
		}
	}
	return "", false
}
