package domain

import (
	"strconv"
	"strings"
)

// Field names of the employee list
const (
	FieldID          = "Id"
	FieldTitle       = "Title"
	FieldFileLeafRef = "FileLeafRef"
	FieldFileLength  = "File/Length"
	ExpandFile       = "File"
)

// Query describes one read against a remote collection.
// ID == 0 means "list all"; remote ids start at 1.
type Query struct {
	Collection string
	Select     []string
	Expand     []string
	Filter     string
	ID         int
}

// ByID returns a copy of the query scoped to a single item
func (q Query) ByID(id int) Query {
	q.ID = id
	return q
}

// IsList reports whether the query targets the whole collection
func (q Query) IsList() bool {
	return q.ID == 0
}

// Key returns the operation signature used to identify cached reads:
// items:{collection}:select={...}:expand={...}[:filter={...}]:{all|id=N}
func (q Query) Key() string {
	var b strings.Builder
	b.WriteString("items:")
	b.WriteString(strings.ToLower(q.Collection))
	b.WriteString(":select=")
	b.WriteString(strings.Join(q.Select, ","))
	b.WriteString(":expand=")
	b.WriteString(strings.Join(q.Expand, ","))
	if q.Filter != "" {
		b.WriteString(":filter=")
		b.WriteString(q.Filter)
	}
	if q.IsList() {
		b.WriteString(":all")
	} else {
		b.WriteString(":id=")
		b.WriteString(strconv.Itoa(q.ID))
	}
	return b.String()
}

// CollectionPrefix returns the key prefix shared by every read of a collection
func CollectionPrefix(collection string) string {
	return "items:" + strings.ToLower(collection) + ":"
}
