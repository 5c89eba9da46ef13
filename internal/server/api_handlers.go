package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/sentiserve/internal/ml"
	"github.com/spacesedan/sentiserve/internal/models"
	"github.com/spacesedan/sentiserve/internal/sentiment"
)

// bindText reads a request body holding a single JSON string.
func bindText(c *gin.Context) (string, bool) {
	var text string
	if err := c.ShouldBindJSON(&text); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON string"})
		return "", false
	}
	return text, true
}

func (s *Server) predictionFailed(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, ml.ErrInference) {
		s.errorResponse(c, http.StatusServiceUnavailable, "model is not ready", err)
		return
	}
	s.errorResponse(c, http.StatusInternalServerError, "prediction failed", err)
}

// Predict handles POST /api/sentiment/predict.
func (s *Server) Predict(c *gin.Context) {
	text, ok := bindText(c)
	if !ok {
		return
	}

	ctx := sentiment.WithSource(c.Request.Context(), "api")
	prediction, err := s.svc.Predict(ctx, text)
	if err != nil {
		s.predictionFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PredictResponse{
		Sentiment:   prediction.Label(),
		Probability: prediction.Probability,
	})
}

// Compare handles POST /api/sentiment/compare.
func (s *Server) Compare(c *gin.Context) {
	text, ok := bindText(c)
	if !ok {
		return
	}

	ctx := sentiment.WithSource(c.Request.Context(), "compare")
	cmp, err := s.svc.Compare(ctx, text)
	if err != nil {
		s.predictionFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CompareResponse{
		Sentiment:   cmp.Prediction.Label(),
		Probability: cmp.Prediction.Probability,
		VaderScore:  cmp.VaderScore,
		VaderLabel:  cmp.VaderLabel,
	})
}

// ModelMetrics handles GET /api/sentiment/metrics.
func (s *Server) ModelMetrics(c *gin.Context) {
	metrics, ok := s.svc.Metrics()
	model := s.svc.Model()
	if !ok || model == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model is not ready", "state": s.svc.State().String()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metrics":         metrics,
		"vocabulary_size": model.VocabularySize(),
		"fingerprint":     model.Fingerprint(),
		"trained_at":      model.TrainedAt(),
	})
}

// Health handles GET /healthz. Anything other than a Ready model is a 503.
func (s *Server) Health(c *gin.Context) {
	state := s.svc.State()
	body := gin.H{"model": state.String()}

	healthy := state == sentiment.StateReady
	if s.opts.CacheHealthy != nil {
		cacheUp := s.opts.CacheHealthy.Load()
		body["cache"] = cacheUp
		healthy = healthy && cacheUp
	}

	if healthy {
		body["status"] = "ok"
	} else {
		body["status"] = "degraded"
	}

	status := http.StatusOK
	if state != sentiment.StateReady {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, body)
}
