package querycache

import (
	"fmt"
	"strings"

	"notehub/internal/model"
)

// Key kinds. Invalidation after a mutation matches on the kind
// discriminant, never on the rendered string.
const (
	KindNotesList = "notes-list"
	KindNote      = "note"
)

// Key identifies one cacheable read. Two keys that compare equal share
// one cache slot and one in-flight request.
type Key struct {
	Kind   string
	Page   int
	Search string
	Tag    string
	NoteID string
}

// ListKey builds the key for a paginated list query, normalized so
// logically equal queries collide: search is trimmed and the "All"
// pseudo-tag means no filter.
func ListKey(page int, search, tag string) Key {
	if page < 1 {
		page = 1
	}
	return Key{
		Kind:   KindNotesList,
		Page:   page,
		Search: strings.TrimSpace(search),
		Tag:    model.NormalizeTagFilter(tag),
	}
}

func NoteKey(id string) Key {
	return Key{Kind: KindNote, NoteID: strings.TrimSpace(id)}
}

func (k Key) IsList() bool {
	return k.Kind == KindNotesList
}

func (k Key) String() string {
	if k.Kind == KindNote {
		return fmt.Sprintf("%s|%s", k.Kind, k.NoteID)
	}
	return fmt.Sprintf("%s|p=%d|s=%s|t=%s", k.Kind, k.Page, k.Search, k.Tag)
}
