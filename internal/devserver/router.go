package devserver

import (
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"notehub/internal/middleware"
)

type RouterDeps struct {
	Notes       *NotesHandler
	JWTSecret   []byte
	WriteWindow time.Duration
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	authed := router.Group("")
	authed.Use(middleware.BearerAuth(deps.JWTSecret))
	authed.GET("/notes", deps.Notes.List)
	authed.GET("/notes/:id", deps.Notes.Get)
	authed.POST("/notes", middleware.RateLimit(deps.WriteWindow), deps.Notes.Create)
	authed.DELETE("/notes/:id", deps.Notes.Delete)

	return router
}
