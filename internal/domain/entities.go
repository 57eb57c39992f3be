package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UnknownTitle is shown for records whose title is empty on the server
const UnknownTitle = "Unknown"

// Record is one employee entry as displayed to the user
type Record struct {
	ID    int    // Remote-assigned identifier, immutable once created
	Title string // Display title
	Name  string // File leaf name (FileLeafRef), empty for plain list items
	Size  int64  // File length in bytes, 0 when no file is attached
}

// HasID reports whether the record can be targeted by update or delete
func (r Record) HasID() bool {
	return r.ID > 0
}

// FormattedSize returns the file size in a human-readable format
func (r Record) FormattedSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case r.Size <= 0:
		return ""
	case r.Size >= mb:
		return fmt.Sprintf("%.1f MB", float64(r.Size)/float64(mb))
	case r.Size >= kb:
		return fmt.Sprintf("%d KB", r.Size/kb)
	default:
		return fmt.Sprintf("%d B", r.Size)
	}
}

// Item is a list item as returned by the remote list service
type Item struct {
	ID          int       `json:"Id"`
	Title       *string   `json:"Title"`
	FileLeafRef string    `json:"FileLeafRef,omitempty"`
	File        *ItemFile `json:"File,omitempty"`
}

// ItemFile is the expanded File lookup of a document library item
type ItemFile struct {
	Length FlexInt `json:"Length"`
}

// ToRecord projects a raw item into a Record, defaulting absent fields
func (it Item) ToRecord() Record {
	rec := Record{
		ID:    it.ID,
		Title: UnknownTitle,
		Name:  it.FileLeafRef,
	}
	if it.Title != nil && *it.Title != "" {
		rec.Title = *it.Title
	}
	if it.File != nil {
		rec.Size = int64(it.File.Length)
	}
	return rec
}

// FlexInt decodes an integer the server may send either as a JSON number or
// as a quoted string (File/Length is a string on most list services).
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", data, err)
	}
	*f = FlexInt(n)
	return nil
}

// MarshalJSON implements json.Marshaler
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(f))
}

// Fields is a create or update payload keyed by internal field name
type Fields map[string]any
