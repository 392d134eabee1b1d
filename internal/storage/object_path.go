package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
)

var errEmptyPayload = errors.New("empty payload")

func sanitizePathSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 32)
		case ch == '-', ch == '_':
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

func normalizeExtension(ext string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if cleaned := sanitizePathSegment(trimmed); cleaned != "" {
		return cleaned
	}
	return "bin"
}

func sanitizeFileBase(value string) string {
	replaced := strings.ReplaceAll(strings.TrimSpace(value), " ", "-")
	return strings.Trim(sanitizePathSegment(replaced), "-_")
}

// BuildObjectPath 生成 <category>/<scope>/<yyyy>/<mm>/<dd>/<base>.<ext>。
// scope 为空时省略该层。
func BuildObjectPath(opts SaveOptions) string {
	at := opts.At
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()

	category := sanitizePathSegment(opts.Category)
	if category == "" {
		category = "misc"
	}
	base := sanitizeFileBase(opts.BaseName)
	if base == "" {
		base = fmt.Sprintf("%d", at.UnixNano())
	}
	datedir := fmt.Sprintf("%04d/%02d/%02d", at.Year(), at.Month(), at.Day())
	filename := fmt.Sprintf("%s.%s", base, normalizeExtension(opts.Extension))

	if scope := sanitizeFileBase(opts.Scope); scope != "" {
		return path.Join(category, scope, datedir, filename)
	}
	return path.Join(category, datedir, filename)
}

// ScopeOf returns the scope segment of a key produced by BuildObjectPath
// under category, or "" when the key does not belong to it.
func ScopeOf(category, key string) string {
	cleaned := path.Clean("/" + strings.TrimSpace(key))
	parts := strings.Split(strings.TrimPrefix(cleaned, "/"), "/")
	// category/scope/yyyy/mm/dd/file
	if len(parts) != 6 || parts[0] != sanitizePathSegment(category) {
		return ""
	}
	return parts[1]
}

func detectContentType(opts SaveOptions) string {
	if ct := strings.TrimSpace(opts.ContentType); ct != "" {
		return ct
	}
	typeName := mime.TypeByExtension("." + normalizeExtension(opts.Extension))
	if typeName == "" {
		return "application/octet-stream"
	}
	return typeName
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

// SanitizeToken lowercases the provided token and keeps alphanumeric, dash, and underscore characters only.
func SanitizeToken(value string) string {
	return sanitizePathSegment(value)
}

// checkPayload rejects empty data and cancelled contexts before any I/O.
func checkPayload(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return errEmptyPayload
	}
	return ctx.Err()
}
