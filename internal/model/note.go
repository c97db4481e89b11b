package model

import "strings"

// Tag values accepted by the remote API. The set is closed: the server
// rejects anything else.
const (
	TagTodo     = "Todo"
	TagWork     = "Work"
	TagPersonal = "Personal"
	TagMeeting  = "Meeting"
	TagShopping = "Shopping"
)

// TagAll is not a real tag; list queries use it to mean "no tag filter".
const TagAll = "All"

type Note struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Tag       string `json:"tag"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type NotesPage struct {
	Notes      []Note `json:"notes"`
	TotalPages int    `json:"totalPages"`
}

type CreateNotePayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tag     string `json:"tag"`
}

func Tags() []string {
	return []string{TagTodo, TagWork, TagPersonal, TagMeeting, TagShopping}
}

func ValidTag(tag string) bool {
	switch tag {
	case TagTodo, TagWork, TagPersonal, TagMeeting, TagShopping:
		return true
	}
	return false
}

// NormalizeTagFilter maps the pseudo-tag "All" (or an empty value) to
// "no filter" so that equal logical queries share one cache slot.
func NormalizeTagFilter(tag string) string {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" || trimmed == TagAll {
		return ""
	}
	return trimmed
}
