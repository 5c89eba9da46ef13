// Package server exposes the sentiment service over HTTP: a JSON API, a
// server rendered form page and the script that drives it.
package server

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/sentiserve/internal/antiforgery"
	"github.com/spacesedan/sentiserve/internal/ml"
	"github.com/spacesedan/sentiserve/internal/models"
	"github.com/spacesedan/sentiserve/internal/sentiment"
)

//go:embed templates static
var assets embed.FS

// Predictor is the part of the sentiment service the handlers depend on.
type Predictor interface {
	Predict(ctx context.Context, text string) (models.SentimentPrediction, error)
	Compare(ctx context.Context, text string) (sentiment.Comparison, error)
	Metrics() (ml.Metrics, bool)
	Model() *ml.Model
	State() sentiment.State
}

type Options struct {
	// Dev adds error details to 5xx responses.
	Dev bool
	// CacheHealthy is reported on /healthz when a cache is configured.
	CacheHealthy *atomic.Bool
}

type Server struct {
	svc    Predictor
	forms  *antiforgery.Protector
	opts   Options
	router *gin.Engine
}

// New builds the router and registers every route.
func New(svc Predictor, forms *antiforgery.Protector, opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())
	router.SetHTMLTemplate(tmpl)

	s := &Server{svc: svc, forms: forms, opts: opts, router: router}

	router.GET("/", s.ShowForm)
	router.POST("/", s.SubmitForm)
	router.StaticFS("/static", http.FS(static))
	router.GET("/healthz", s.Health)

	api := router.Group("/api/sentiment")
	api.POST("/predict", s.Predict)
	api.POST("/compare", s.Compare)
	api.GET("/metrics", s.ModelMetrics)

	return s, nil
}

func (s *Server) Handler() http.Handler { return s.router }

// errorResponse writes status with a generic message, adding the error text
// in dev mode.
func (s *Server) errorResponse(c *gin.Context, status int, message string, err error) {
	body := gin.H{"error": message}
	if s.opts.Dev && err != nil {
		body["detail"] = err.Error()
	}
	c.JSON(status, body)
}
