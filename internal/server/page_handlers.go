package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/sentiserve/internal/antiforgery"
	"github.com/spacesedan/sentiserve/internal/ml"
	"github.com/spacesedan/sentiserve/internal/sentiment"
)

type pageResult struct {
	Sentiment   string
	Probability string
}

type pageData struct {
	TokenField string
	Token      string
	Text       string
	Result     *pageResult
	Error      string
}

func (s *Server) render(c *gin.Context, status int, data pageData) {
	data.TokenField = antiforgery.FieldName
	data.Token = s.forms.Issue(c.Writer, c.Request)
	c.HTML(status, "index.html", data)
}

// ShowForm handles GET /.
func (s *Server) ShowForm(c *gin.Context) {
	s.render(c, http.StatusOK, pageData{})
}

// SubmitForm handles POST /. The request token is checked before anything
// else; blank input re-renders the empty form.
func (s *Server) SubmitForm(c *gin.Context) {
	if err := s.forms.Validate(c.Request); err != nil {
		_ = c.Error(err)
		c.String(http.StatusBadRequest, "invalid request verification token")
		return
	}

	text := c.PostForm("text")
	if strings.TrimSpace(text) == "" {
		s.render(c, http.StatusOK, pageData{})
		return
	}

	ctx := sentiment.WithSource(c.Request.Context(), "page")
	prediction, err := s.svc.Predict(ctx, text)
	if err != nil {
		_ = c.Error(err)
		status := http.StatusInternalServerError
		if errors.Is(err, ml.ErrInference) {
			status = http.StatusServiceUnavailable
		}
		data := pageData{Text: text, Error: "Error analyzing sentiment."}
		if s.opts.Dev {
			data.Error += " " + err.Error()
		}
		s.render(c, status, data)
		return
	}

	s.render(c, http.StatusOK, pageData{
		Text: text,
		Result: &pageResult{
			Sentiment:   prediction.Label(),
			Probability: formatProbability(prediction.Probability),
		},
	})
}

func formatProbability(p float64) string {
	return strconv.FormatFloat(p, 'f', 4, 64)
}
