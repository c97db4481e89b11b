// Package devserver implements the NoteHub REST surface against an
// in-memory store, so the client stack can be exercised without the
// public API.
package devserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"notehub/internal/compose"
	"notehub/internal/model"
	"notehub/internal/pkg/response"
)

type NotesHandler struct {
	store *Store
}

func NewNotesHandler(store *Store) *NotesHandler {
	return &NotesHandler{store: store}
}

func (h *NotesHandler) List(c *gin.Context) {
	page := 1
	if value := c.Query("page"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			page = parsed
		}
	}
	tag := c.Query("tag")
	if tag != "" && !model.ValidTag(tag) {
		response.Error(c, http.StatusBadRequest, "unknown tag")
		return
	}
	c.JSON(http.StatusOK, h.store.List(page, c.Query("search"), tag))
}

func (h *NotesHandler) Get(c *gin.Context) {
	note, err := h.store.Get(c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

type createNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tag     string `json:"tag"`
}

func (h *NotesHandler) Create(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	// Same rules the client form enforces; the server is authoritative.
	if errs := compose.Validate(compose.FormValues(req)); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "validation failed", "errors": errs})
		return
	}
	note := h.store.Create(model.CreateNotePayload(req))
	c.JSON(http.StatusCreated, note)
}

func (h *NotesHandler) Delete(c *gin.Context) {
	note, err := h.store.Delete(c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}
