// Package api exposes fetches over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
)

// Runner is what the handlers need from internal/runner.
type Runner interface {
	Run(ctx context.Context, input models.ScrapeInput) models.FetchResult
	Last(companyID string) (models.FetchResult, bool)
}

// ScrapeRequest is the body of POST /scrape. Timeout is in milliseconds.
type ScrapeRequest struct {
	CareersURL string `json:"careersUrl"`
	CompanyID  string `json:"companyId"`
	APIBaseURL string `json:"apiBaseUrl"`
	Timeout    int    `json:"timeout"`
	Retries    int    `json:"retries"`
}

type Handler struct {
	runner   Runner
	defaults models.ScrapeInput
	log      logger.Logger
}

// NewRouter builds the HTTP API. defaults supplies timeout and retries when a
// request omits them. metrics is mounted at /metrics when non-nil.
func NewRouter(log logger.Logger, runner Runner, defaults models.ScrapeInput, metrics http.Handler) *gin.Engine {
	h := &Handler{runner: runner, defaults: defaults, log: log}

	r := gin.New()
	r.Use(recoveryMiddleware(log), loggerMiddleware(log))

	r.GET("/", h.health)
	r.POST("/scrape", h.scrape)
	r.GET("/results/:companyId", h.lastResult)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
	return r
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Careers scraper API is running!",
		"status":  "healthy",
	})
}

func (h *Handler) scrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	input, err := h.toInput(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.runner.Run(c.Request.Context(), input)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

func (h *Handler) lastResult(c *gin.Context) {
	result, ok := h.runner.Last(c.Param("companyId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no result for company"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) toInput(req ScrapeRequest) (models.ScrapeInput, error) {
	if req.CareersURL == "" && (req.APIBaseURL == "" || req.CompanyID == "") {
		return models.ScrapeInput{}, errors.New("careersUrl, or apiBaseUrl with companyId, is required")
	}
	for _, raw := range []string{req.CareersURL, req.APIBaseURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return models.ScrapeInput{}, errors.New("invalid url: " + raw)
		}
	}
	if req.Timeout < 0 || req.Retries < 0 {
		return models.ScrapeInput{}, errors.New("timeout and retries must not be negative")
	}

	input := models.ScrapeInput{
		CareersURL: req.CareersURL,
		CompanyID:  req.CompanyID,
		APIBaseURL: req.APIBaseURL,
		Timeout:    h.defaults.Timeout,
		Retries:    h.defaults.Retries,
	}
	if req.Timeout > 0 {
		input.Timeout = time.Duration(req.Timeout) * time.Millisecond
	}
	if req.Retries > 0 {
		input.Retries = req.Retries
	}
	return input, nil
}
