package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"coursegen-backend/internal/models"
)

const maxProxyBody = 10 * 1024 * 1024

var (
	errNoCaptionManifest = errors.New("caption track manifest not found in page")
	errNoEnglishTrack    = errors.New("no English or auto-generated caption track")
)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type timedTextXML struct {
	XMLName xml.Name      `xml:"transcript"`
	Texts   []timedTextEl `xml:"text"`
}

type timedTextEl struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

// ProxyPageStrategy scrapes the watch page through a pass-through content
// proxy and downloads the first English (or auto-generated) caption track.
type ProxyPageStrategy struct {
	httpClient *http.Client
	proxyBase  string
}

func NewProxyPageStrategy(httpClient *http.Client, proxyBase string) *ProxyPageStrategy {
	return &ProxyPageStrategy{httpClient: httpClient, proxyBase: proxyBase}
}

func (s *ProxyPageStrategy) Name() string { return "proxy_page" }

func (s *ProxyPageStrategy) Fetch(ctx context.Context, videoID string) ([]models.Segment, error) {
	page, err := s.get(ctx, WatchURL(videoID))
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}

	tracks, err := extractCaptionTracks(page)
	if err != nil {
		return nil, err
	}

	track, ok := pickTrack(tracks)
	if !ok {
		return nil, errNoEnglishTrack
	}

	captions, err := s.get(ctx, track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch caption track: %w", err)
	}

	segments, err := parseTimedText(captions)
	if err != nil {
		return nil, fmt.Errorf("parse caption track: %w", err)
	}
	return segments, nil
}

func (s *ProxyPageStrategy) proxyURL(target string) string {
	sep := "?"
	if strings.Contains(s.proxyBase, "?") {
		sep = "&"
	}
	return s.proxyBase + sep + "url=" + url.QueryEscape(target)
}

func (s *ProxyPageStrategy) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.proxyURL(target), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("proxy returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxProxyBody))
}

// extractCaptionTracks finds the captionTracks array embedded in the player
// response script of a watch page.
func extractCaptionTracks(page []byte) ([]captionTrack, error) {
	var sources []string

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err == nil {
		doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
			text := sel.Text()
			if strings.Contains(text, `"captionTracks"`) {
				sources = append(sources, text)
			}
		})
	}
	// Some proxies hand back the raw player response instead of markup.
	sources = append(sources, string(page))

	for _, src := range sources {
		if tracks, ok := decodeTrackList(src); ok {
			return tracks, nil
		}
	}
	return nil, errNoCaptionManifest
}

func decodeTrackList(src string) ([]captionTrack, bool) {
	idx := strings.Index(src, `"captionTracks"`)
	if idx < 0 {
		return nil, false
	}
	rest := src[idx+len(`"captionTracks"`):]
	start := strings.Index(rest, "[")
	if start < 0 {
		return nil, false
	}

	var tracks []captionTrack
	if err := json.NewDecoder(strings.NewReader(rest[start:])).Decode(&tracks); err != nil {
		return nil, false
	}
	return tracks, len(tracks) > 0
}

func pickTrack(tracks []captionTrack) (captionTrack, bool) {
	for _, t := range tracks {
		if t.BaseURL == "" {
			continue
		}
		lang := strings.ToLower(t.LanguageCode)
		if lang == "en" || strings.HasPrefix(lang, "en-") || t.Kind == "asr" {
			return t, true
		}
	}
	return captionTrack{}, false
}

func parseTimedText(data []byte) ([]models.Segment, error) {
	var tt timedTextXML
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&tt); err != nil {
		return nil, err
	}

	segments := make([]models.Segment, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		text := strings.Join(strings.Fields(html.UnescapeString(t.Text)), " ")
		if text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(t.Start, 64)
		dur, _ := strconv.ParseFloat(t.Dur, 64)
		segments = append(segments, models.Segment{
			StartSeconds:    start,
			DurationSeconds: dur,
			Text:            text,
		})
	}

	if len(segments) == 0 {
		return nil, errNoSegments
	}
	return segments, nil
}
