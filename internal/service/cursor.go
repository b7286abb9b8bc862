package service

import (
	"strconv"
	"strings"
	"time"

	"gratitude/internal/models"
)

// EncodeCursor renders a global feed position as "<createdAt>_<id>" with the
// timestamp in RFC3339Nano UTC.
func EncodeCursor(createdAt time.Time, id uint) string {
	return createdAt.UTC().Format(time.RFC3339Nano) + "_" + strconv.FormatUint(uint64(id), 10)
}

// DecodeCursor parses a global feed cursor.
func DecodeCursor(cursor string) (time.Time, uint, error) {
	i := strings.LastIndex(cursor, "_")
	if i <= 0 || i == len(cursor)-1 {
		return time.Time{}, 0, invalidCursor()
	}
	ts, err := time.Parse(time.RFC3339Nano, cursor[:i])
	if err != nil {
		return time.Time{}, 0, invalidCursor()
	}
	id, err := strconv.ParseUint(cursor[i+1:], 10, 64)
	if err != nil || id == 0 {
		return time.Time{}, 0, invalidCursor()
	}
	return ts.UTC(), uint(id), nil
}

// EncodeIDCursor renders a company feed cursor.
func EncodeIDCursor(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseIDCursor parses a company feed cursor, which is a bare thanks id.
func ParseIDCursor(cursor string) (uint, error) {
	id, err := strconv.ParseUint(cursor, 10, 64)
	if err != nil || id == 0 {
		return 0, invalidCursor()
	}
	return uint(id), nil
}

func invalidCursor() error {
	return models.NewFieldError("cursor", "invalid cursor")
}
