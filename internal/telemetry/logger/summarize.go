package logger

import (
	"encoding/hex"
	"fmt"
	"log/slog"
)

const (
	// maxStringAttr is the longest string attribute logged verbatim.
	maxStringAttr = 512
	// bytesPreview is how many leading bytes of a []byte attribute are shown.
	bytesPreview = 8
)

// summarize replaces byte slices with a length and hex preview and truncates
// oversized strings. Groups are handled recursively.
func summarize(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if s := a.Value.String(); len(s) > maxStringAttr {
			return slog.String(a.Key, TruncateString(s))
		}
	case slog.KindAny:
		if b, ok := a.Value.Any().([]byte); ok {
			return slog.String(a.Key, SummarizeBytes(b))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = summarize(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// SummarizeBytes renders b as "<n bytes: prefix...>".
func SummarizeBytes(b []byte) string {
	if len(b) <= bytesPreview {
		return fmt.Sprintf("<%d bytes: %s>", len(b), hex.EncodeToString(b))
	}
	return fmt.Sprintf("<%d bytes: %s...>", len(b), hex.EncodeToString(b[:bytesPreview]))
}

// TruncateString shortens s to the attribute limit, noting the original size.
func TruncateString(s string) string {
	if len(s) <= maxStringAttr {
		return s
	}
	return fmt.Sprintf("%s...(%d bytes)", s[:maxStringAttr], len(s))
}
