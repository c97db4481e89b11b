package model

// Draft is the single in-progress note a user is composing. There is
// exactly one logical instance per profile; it lives until the note is
// actually created.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tag     string `json:"tag"`
}

func DefaultDraft() Draft {
	return Draft{Title: "", Content: "", Tag: TagTodo}
}

// DraftPatch carries a partial draft update; nil fields keep the
// current value.
type DraftPatch struct {
	Title   *string
	Content *string
	Tag     *string
}
