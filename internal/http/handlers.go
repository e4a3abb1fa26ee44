package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hero-service/internal/hero"
)

type Options struct {
	Logger *slog.Logger
	// StoreURL is shown by /db_url. Callers pass a credential-free form.
	StoreURL   string
	CORSOrigin string
	Now        func() time.Time
}

type Server struct {
	R      *gin.Engine
	Heroes hero.Store
	Log    *slog.Logger
	Now    func() time.Time

	storeURL string
}

func NewServer(heroes hero.Store, opts Options) *Server {
	r := gin.New()
	s := &Server{
		R:        r,
		Heroes:   heroes,
		Log:      opts.Logger,
		Now:      opts.Now,
		storeURL: opts.StoreURL,
	}
	if s.Log == nil {
		s.Log = slog.Default()
	}
	if s.Now == nil {
		s.Now = time.Now
	}

	r.Use(Recovery(s.Log), RequestLogger(s.Log))
	if opts.CORSOrigin != "" {
		r.Use(CORS(opts.CORSOrigin))
	}

	r.GET("/", s.root)
	r.GET("/db_url", s.dbURL)
	r.GET("/health", s.health)
	r.POST("/heroes/", s.createHero)
	r.GET("/heroes/", s.listHeroes)

	return s
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello, World!"})
}

func (s *Server) dbURL(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": s.storeURL})
}

func (s *Server) health(c *gin.Context) {
	if err := s.Heroes.Ping(c.Request.Context()); err != nil {
		s.Log.WarnContext(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "time": s.Now().UTC()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "time": s.Now().UTC()})
}

func (s *Server) createHero(c *gin.Context) {
	var req heroCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		s.validationFailed(c, bindError(err))
		return
	}
	created, err := s.Heroes.Create(c.Request.Context(), req.toHero())
	if err != nil {
		var ve *hero.ValidationError
		if errors.As(err, &ve) {
			s.validationFailed(c, ve)
			return
		}
		s.internalError(c, "create hero", err)
		return
	}
	c.JSON(http.StatusCreated, heroFromStore(created))
}

func (s *Server) listHeroes(c *gin.Context) {
	hs, err := s.Heroes.List(c.Request.Context())
	if err != nil {
		s.internalError(c, "list heroes", err)
		return
	}
	out := make([]heroRead, 0, len(hs))
	for _, h := range hs {
		out = append(out, heroFromStore(h))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) validationFailed(c *gin.Context, ve *hero.ValidationError) {
	c.JSON(http.StatusUnprocessableEntity, errorBody{
		Error:   "validation failed",
		Details: ve.Fields,
	})
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	s.Log.ErrorContext(c.Request.Context(), op+" failed", "error", err)
	c.JSON(http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

type errorBody struct {
	Error   string            `json:"error"`
	Details []hero.FieldError `json:"details,omitempty"`
}

// heroCreate is the accepted request body. It has no id field, so a
// caller-supplied id never reaches the store.
type heroCreate struct {
	Name       string `json:"name" binding:"required"`
	SecretName string `json:"secret_name" binding:"required"`
	Age        *int   `json:"age" binding:"omitempty,gte=0,lte=2147483647"`
}

func (r heroCreate) toHero() hero.Hero {
	return hero.Hero{Name: r.Name, SecretName: r.SecretName, Age: r.Age}
}

type heroRead struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	SecretName string `json:"secret_name"`
	Age        *int   `json:"age"`
}

func heroFromStore(h hero.Hero) heroRead {
	return heroRead{ID: h.ID, Name: h.Name, SecretName: h.SecretName, Age: h.Age}
}
