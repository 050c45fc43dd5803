// Package storage keeps test artifacts such as failure screenshots.
package storage

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ArtifactStore persists artifacts and returns a URI for each one
type ArtifactStore interface {
	SaveScreenshot(ctx context.Context, sessionID, name string, data []byte) (string, error)
}

// ScreenshotKey builds a unique object key under prefix/sessionID.
// The name is reduced to a safe file stem.
func ScreenshotKey(prefix, sessionID, name string) string {
	stem := sanitize(strings.TrimSuffix(name, ".png"))
	if stem == "" {
		stem = "screenshot"
	}
	return path.Join(prefix, sanitize(sessionID), stem+"-"+uuid.NewString()[:8]+".png")
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

func contentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".png"):
		return "image/png"
	case strings.HasSuffix(key, ".jpg"), strings.HasSuffix(key, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	}
	return "application/octet-stream"
}
