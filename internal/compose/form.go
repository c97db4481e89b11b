// Package compose implements the note composition flow: field value
// resolution, validation, and the submit state machine that ties the
// draft store to the create mutation.
package compose

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"notehub/internal/model"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

type FormValues struct {
	Title   string
	Content string
	Tag     string
}

// ResolveFieldValues is the one precedence rule for what a freshly
// opened form shows: initial data (edit mode) overrides the draft
// (create mode) overrides built-in defaults. Edit mode never reads the
// draft store.
func ResolveFieldValues(mode Mode, initial *FormValues, d model.Draft) FormValues {
	if mode == ModeEdit {
		if initial == nil {
			return FormValues{}
		}
		return *initial
	}
	return FormValues{Title: d.Title, Content: d.Content, Tag: d.Tag}
}

// Validate checks all rules and reports every violation together, keyed
// by field name. It is pure and synchronous; nothing here touches the
// network.
func Validate(v FormValues) map[string]string {
	errs := make(map[string]string)
	// Limits count characters, not bytes.
	title := strings.TrimSpace(v.Title)
	if utf8.RuneCountInString(title) < 3 {
		errs["title"] = "Title must be at least 3 characters"
	} else if utf8.RuneCountInString(title) > 50 {
		errs["title"] = "Title must be at most 50 characters"
	}
	if v.Tag == "" {
		errs["tag"] = "Tag is required"
	} else if !model.ValidTag(v.Tag) {
		errs["tag"] = fmt.Sprintf("Tag must be one of: %s", strings.Join(model.Tags(), ", "))
	}
	if utf8.RuneCountInString(v.Content) > 500 {
		errs["content"] = "Content must be at most 500 characters"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
