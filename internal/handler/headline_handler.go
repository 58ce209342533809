package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"headlines/internal/bridge"
	"headlines/internal/domain"
)

const articlesPrefix = "/articles/"

type HeadlineStore interface {
	State() domain.NewsUIState
	Source() string
	LoadHeadlines(ctx context.Context, sourceID string) domain.NewsUIState
	Refresh(ctx context.Context) domain.NewsUIState
	GetArticleByID(id string) (domain.Article, bool)
	ClearError()
}

type HeadlineHandler struct {
	store   HeadlineStore
	sources map[string]struct{}
	logger  *slog.Logger
}

// NewHeadlineHandler serves store. Only the listed source ids can be loaded.
func NewHeadlineHandler(store HeadlineStore, sources []string, logger *slog.Logger) *HeadlineHandler {
	allowed := make(map[string]struct{}, len(sources))
	for _, id := range sources {
		allowed[id] = struct{}{}
	}
	return &HeadlineHandler{
		store:   store,
		sources: allowed,
		logger:  logger.With("component", "http"),
	}
}

// NewRouter registers every route on a fresh engine. A nil gatherer leaves
// /metrics unregistered.
func NewRouter(h *HeadlineHandler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/headlines", h.GetHeadlines)
	r.POST("/headlines/refresh", h.Refresh)
	r.POST("/headlines/load/:source", h.Load)
	r.DELETE("/headlines/error", h.ClearError)
	r.GET("/headlines/:id", h.GetArticle)
	r.GET("/headlines/:id/token", h.GetToken)
	r.GET("/articles/*token", h.OpenArticle)
	r.GET("/health", h.GetHealth)

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

func (h *HeadlineHandler) GetHeadlines(c *gin.Context) {
	c.JSON(http.StatusOK, h.stateResponse(h.store.State()))
}

func (h *HeadlineHandler) Refresh(c *gin.Context) {
	state := h.store.Refresh(c.Request.Context())
	h.respondLoad(c, state)
}

func (h *HeadlineHandler) Load(c *gin.Context) {
	sourceID := c.Param("source")
	if _, ok := h.sources[sourceID]; !ok {
		h.logger.Debug("rejected unknown source", "source_id", sourceID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source"})
		return
	}

	state := h.store.LoadHeadlines(c.Request.Context(), sourceID)
	h.respondLoad(c, state)
}

// respondLoad answers 502 when the load failed; the body still carries the
// stale articles.
func (h *HeadlineHandler) respondLoad(c *gin.Context, state domain.NewsUIState) {
	status := http.StatusOK
	if state.Error != nil {
		h.logger.Warn("load failed", "source_id", h.store.Source(), "error", *state.Error)
		status = http.StatusBadGateway
	}
	c.JSON(status, h.stateResponse(state))
}

func (h *HeadlineHandler) ClearError(c *gin.Context) {
	h.store.ClearError()
	c.Status(http.StatusNoContent)
}

func (h *HeadlineHandler) GetArticle(c *gin.Context) {
	article, ok := h.store.GetArticleByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	c.JSON(http.StatusOK, articleResponse(article))
}

func (h *HeadlineHandler) GetToken(c *gin.Context) {
	article, ok := h.store.GetArticleByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: bridge.Encode(article)})
}

// OpenArticle resolves a navigation token without touching the store. The
// token is read from the escaped path since it may carry encoded slashes.
func (h *HeadlineHandler) OpenArticle(c *gin.Context) {
	token := strings.TrimPrefix(c.Request.URL.EscapedPath(), articlesPrefix)
	article, ok := bridge.Decode(token)
	if !ok {
		h.logger.Debug("invalid navigation token", "token_length", len(token))
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not available"})
		return
	}
	c.JSON(http.StatusOK, articleResponse(article))
}

func (h *HeadlineHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"source": h.store.Source(),
	})
}

func (h *HeadlineHandler) stateResponse(state domain.NewsUIState) StateResponse {
	articles := make([]ArticleResponse, 0, len(state.Articles))
	for _, a := range state.Articles {
		articles = append(articles, articleResponse(a))
	}
	return StateResponse{
		Source:    h.store.Source(),
		Articles:  articles,
		IsLoading: state.IsLoading,
		Error:     state.Error,
	}
}

func articleResponse(a domain.Article) ArticleResponse {
	return ArticleResponse{
		ID:          a.ID(),
		Source:      a.Source.Name,
		Author:      a.Author,
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		ImageURL:    a.ImageURL,
		PublishedAt: a.PublishedAt,
		Content:     a.CleanContent(),
		Token:       bridge.Encode(a),
	}
}
