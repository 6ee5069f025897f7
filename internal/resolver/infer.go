package resolver

import (
	"context"
	"unicode"
	"unicode/utf8"

	"github.com/presencekit/bridge/internal/activity"
	"go.uber.org/zap"
)

// bucket maps an application name to its repository directory: the literal
// first character when alphabetic, "0-9" when numeric, an escaped "#"
// otherwise.
func bucket(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	switch {
	case unicode.IsLetter(r):
		return string(r)
	case unicode.IsDigit(r):
		return "0-9"
	default:
		return "%23"
	}
}

// infer fetches the presence-definition document for name and maps it to a
// presentation category. Any fetch or parse failure yields Playing; an
// unrecognized document yields no category, leaving the caller's default.
func (s *Service) infer(ctx context.Context, name string) (activity.Category, bool) {
	doc, err := s.meta.metadata(ctx, bucket(name), name)
	if err != nil {
		s.log.Debug("category inference failed",
			zap.String("name", name),
			zap.Error(err))
		return activity.CategoryPlaying, true
	}
	return mapCategory(doc)
}

func mapCategory(doc *metadataDoc) (activity.Category, bool) {
	switch doc.Category {
	case "socials":
		if hasTag(doc.Tags, "video") {
			return activity.CategoryWatching, true
		}
	case "anime":
		if hasTag(doc.Tags, "video", "media", "streaming") {
			return activity.CategoryWatching, true
		}
	case "music":
		return activity.CategoryListening, true
	case "videos":
		return activity.CategoryWatching, true
	}
	return 0, false
}

func hasTag(tags []string, wanted ...string) bool {
	for _, tag := range tags {
		for _, w := range wanted {
			if tag == w {
				return true
			}
		}
	}
	return false
}
