package transcript

import (
	urlpkg "net/url"
	"regexp"
	"strings"
)

var (
	bareIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	urlIDPattern  = regexp.MustCompile(`(?:[?&]v=|youtu\.be/|/embed/|/shorts/|/v/)([a-zA-Z0-9_-]{11})`)
)

// ExtractVideoID normalizes a video reference (watch URL, short link, embed
// URL or bare 11-character id) to its canonical id.
func ExtractVideoID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalidReference
	}

	if bareIDPattern.MatchString(ref) {
		return ref, nil
	}

	parsed, err := urlpkg.Parse(ref)
	if err == nil && parsed.Host != "" {
		host := strings.ToLower(parsed.Host)
		path := strings.Trim(parsed.Path, "/")

		// youtube.com/watch?v=VIDEO_ID
		if strings.Contains(host, "youtube.com") {
			if v := parsed.Query().Get("v"); bareIDPattern.MatchString(v) {
				return v, nil
			}

			parts := strings.Split(path, "/")
			if len(parts) >= 2 {
				switch parts[0] {
				case "embed", "shorts", "v":
					if bareIDPattern.MatchString(parts[1]) {
						return parts[1], nil
					}
				}
			}
		}

		// youtu.be/VIDEO_ID
		if strings.Contains(host, "youtu.be") {
			candidate := strings.Split(path, "/")[0]
			if bareIDPattern.MatchString(candidate) {
				return candidate, nil
			}
		}
	}

	// Scheme-less or otherwise unusual forms
	if m := urlIDPattern.FindStringSubmatch(ref); len(m) > 1 {
		return m[1], nil
	}

	return "", ErrInvalidReference
}

// WatchURL is the canonical page for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
