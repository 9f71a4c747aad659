package transcript

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trackURL = "https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ&lang=en"

const watchPage = `<!DOCTYPE html><html><head><title>Video</title></head><body>
<script nonce="x">var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
{"baseUrl":"https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ&lang=de","languageCode":"de","kind":""},
{"baseUrl":"https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ&lang=en","languageCode":"en","kind":"asr"}
],"audioTracks":[]}}};</script>
</body></html>`

const timedText = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="2.1">Firewalls &amp;amp; routers</text>
<text start="2.6" dur="1.0">   </text>
<text start="3.6" dur="2.4">block &lt;bad&gt; traffic</text>
</transcript>`

func newProxy(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Query().Get("url")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
}

func TestProxyPageStrategy_Fetch(t *testing.T) {
	srv := newProxy(t, map[string]string{
		WatchURL(testVideoID): watchPage,
		trackURL:              timedText,
	})
	defer srv.Close()

	s := NewProxyPageStrategy(srv.Client(), srv.URL)
	segs, err := s.Fetch(context.Background(), testVideoID)
	require.NoError(t, err)

	require.Len(t, segs, 2)
	assert.Equal(t, 0.5, segs[0].StartSeconds)
	assert.Equal(t, 2.1, segs[0].DurationSeconds)
	assert.Equal(t, "Firewalls & routers", segs[0].Text)
	assert.Equal(t, "block <bad> traffic", segs[1].Text)
	assert.Equal(t, 3.6, segs[1].StartSeconds)
}

func TestProxyPageStrategy_NoManifest(t *testing.T) {
	srv := newProxy(t, map[string]string{
		WatchURL(testVideoID): "<html><body>no captions here</body></html>",
	})
	defer srv.Close()

	_, err := NewProxyPageStrategy(srv.Client(), srv.URL).Fetch(context.Background(), testVideoID)
	assert.ErrorIs(t, err, errNoCaptionManifest)
}

func TestProxyPageStrategy_ProxyFailure(t *testing.T) {
	srv := newProxy(t, map[string]string{})
	defer srv.Close()

	_, err := NewProxyPageStrategy(srv.Client(), srv.URL).Fetch(context.Background(), testVideoID)
	assert.ErrorContains(t, err, "status 404")
}

func TestPickTrack(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "fr", LanguageCode: "fr"},
		{BaseURL: "asr", LanguageCode: "es", Kind: "asr"},
		{BaseURL: "en", LanguageCode: "en-GB"},
	}
	got, ok := pickTrack(tracks)
	require.True(t, ok)
	assert.Equal(t, "asr", got.BaseURL)

	_, ok = pickTrack([]captionTrack{{BaseURL: "fr", LanguageCode: "fr"}})
	assert.False(t, ok)
}

func TestAltServiceStrategy_Fetch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrapped", `{"transcript":[{"text":"hello","start":0,"duration":1.5},{"text":" ","start":1.5,"duration":1},{"text":"world","start":2.5,"duration":1}]}`},
		{"bare array", `[{"text":"hello","start":0,"duration":1.5},{"text":"world","start":2.5,"duration":1}]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/transcript", r.URL.Path)
				assert.Equal(t, testVideoID, r.URL.Query().Get("video_id"))
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			segs, err := NewAltServiceStrategy(srv.Client(), srv.URL+"/").Fetch(context.Background(), testVideoID)
			require.NoError(t, err)
			require.Len(t, segs, 2)
			assert.Equal(t, "world", segs[1].Text)
			assert.Equal(t, 2.5, segs[1].StartSeconds)
		})
	}
}

func TestAltServiceStrategy_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("video_id") == "emptyVideo1" {
			fmt.Fprint(w, `{"transcript":[]}`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewAltServiceStrategy(srv.Client(), srv.URL)

	_, err := s.Fetch(context.Background(), testVideoID)
	assert.ErrorContains(t, err, "status 502")

	_, err = s.Fetch(context.Background(), "emptyVideo1")
	assert.ErrorIs(t, err, errNoSegments)
}
