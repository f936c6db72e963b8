package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Cursor is the opaque pagination state we encode/decode.
// UserID + UpdatedNano (unix nanoseconds) establish a stable position in a
// list ordered by (updated_at DESC, user_id DESC). Nanoseconds keep rows that
// share a millisecond distinct on stores with finer timestamps.
type Cursor struct {
	UserID      string `json:"user_id"`
	UpdatedNano int64  `json:"updated_nano,omitempty"`
}

// CursorAt returns the cursor positioned on the item at (updated, userID).
func CursorAt(updated time.Time, userID string) Cursor {
	return Cursor{UserID: userID, UpdatedNano: updated.UnixNano()}
}

// IsZero reports whether c is the first-page cursor.
func (c Cursor) IsZero() bool { return c.UserID == "" && c.UpdatedNano == 0 }

// Newer reports whether (t1, id1) sorts before (t2, id2) in
// (updated_at DESC, user_id DESC) order, at the precision cursors compare.
func Newer(t1 time.Time, id1 string, t2 time.Time, id2 string) bool {
	n1, n2 := t1.UnixNano(), t2.UnixNano()
	if n1 != n2 {
		return n1 > n2
	}
	return id1 > id2
}

// After reports whether an item at (updated, userID) comes after the cursor
// in (updated_at DESC, user_id DESC) order.
func (c Cursor) After(updated time.Time, userID string) bool {
	if c.IsZero() {
		return true
	}
	return Newer(time.Unix(0, c.UpdatedNano), c.UserID, updated, userID)
}

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}
	return c, nil
}

// Page holds zero-based page/limit parameters after clamping.
type Page struct {
	Page  int
	Limit int
}

// Clamp applies defaults and bounds: a non-positive limit becomes def, a limit
// above max becomes max, and a negative page becomes 0.
func Clamp(page, limit, def, max int) Page {
	if limit <= 0 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	if page < 0 {
		page = 0
	}
	return Page{Page: page, Limit: limit}
}

// Window returns the [start, end) slice bounds of this page over total items
// and whether more items follow.
func (p Page) Window(total int) (start, end int, hasMore bool) {
	start = p.Page * p.Limit
	if start > total {
		start = total
	}
	end = start + p.Limit
	if end > total {
		end = total
	}
	return start, end, (p.Page+1)*p.Limit < total
}
