package newsapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"headlines/internal/metrics"
)

const headlinesBody = `{
	"status": "ok",
	"totalResults": 2,
	"articles": [
		{
			"source": {"id": "bbc-news", "name": "BBC News"},
			"author": "BBC News",
			"title": "Old",
			"description": null,
			"url": "https://bbc.com/old",
			"urlToImage": "https://bbc.com/old.jpg",
			"publishedAt": "2024-01-01T10:00:00Z",
			"content": "Something happened [+120 chars]"
		},
		{
			"source": {"id": null, "name": "BBC News"},
			"author": null,
			"title": "New",
			"description": "Desc",
			"url": "https://bbc.com/new",
			"urlToImage": null,
			"publishedAt": "2024-01-02T10:00:00Z",
			"content": null
		}
	]
}`

type ClientTestSuite struct {
	suite.Suite
	ctx      context.Context
	logger   *slog.Logger
	metrics  *metrics.Metrics
	requests atomic.Int32
	handler  http.HandlerFunc
	server   *httptest.Server
	client   *Client
}

func (s *ClientTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.requests.Store(0)
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(headlinesBody))
	}

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.handler(w, r)
	}))

	s.client = New(Config{BaseURL: s.server.URL, Timeout: 2 * time.Second}, s.metrics, s.logger)
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) TestFetchHeadlines_Success() {
	resp, err := s.client.FetchHeadlines(s.ctx, "bbc-news", "key", 20)

	s.Require().NoError(err)
	s.Equal("ok", resp.Status)
	s.Equal(2, resp.TotalResults)
	s.Require().Len(resp.Articles, 2)

	first := resp.Articles[0]
	s.Equal("Old", first.Title)
	s.Require().NotNil(first.Source.ID)
	s.Equal("bbc-news", *first.Source.ID)
	s.Nil(first.Description)
	s.Require().NotNil(first.URLToImage)
	s.Equal("https://bbc.com/old.jpg", *first.URLToImage)

	second := resp.Articles[1]
	s.Nil(second.Source.ID)
	s.Nil(second.Author)
	s.Nil(second.Content)

	s.Equal(int32(1), s.requests.Load())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.FetchTotal.WithLabelValues(metrics.OutcomeSuccess)))
}

func (s *ClientTestSuite) TestFetchHeadlines_QueryParameters() {
	var got url.Values
	var path string
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"status":"ok","totalResults":0,"articles":[]}`))
	}

	_, err := s.client.FetchHeadlines(s.ctx, "techcrunch", "secret", 5)

	s.Require().NoError(err)
	s.Equal("/top-headlines", path)
	s.Equal("techcrunch", got.Get("sources"))
	s.Equal("secret", got.Get("apiKey"))
	s.Equal("5", got.Get("pageSize"))
}

func (s *ClientTestSuite) TestFetchHeadlines_DefaultPageSize() {
	var pageSize string
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		pageSize = r.URL.Query().Get("pageSize")
		_, _ = w.Write([]byte(`{"status":"ok","totalResults":0,"articles":[]}`))
	}

	_, err := s.client.FetchHeadlines(s.ctx, "cnn", "key", 0)

	s.Require().NoError(err)
	s.Equal("20", pageSize)
}

func (s *ClientTestSuite) TestFetchHeadlines_NonOKStatus() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid or incorrect."}`))
	}

	resp, err := s.client.FetchHeadlines(s.ctx, "cnn", "bad", 20)

	s.Nil(resp)
	var te *TransportError
	s.Require().ErrorAs(err, &te)
	s.Equal(http.StatusUnauthorized, te.StatusCode)
	s.Equal("apiKeyInvalid", te.Code)
	s.Equal("Your API key is invalid or incorrect.", te.Detail())
	s.Equal(int32(1), s.requests.Load(), "no retry on failure")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.FetchTotal.WithLabelValues(metrics.OutcomeFailure)))
}

func (s *ClientTestSuite) TestFetchHeadlines_ServerErrorWithoutBody() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}

	_, err := s.client.FetchHeadlines(s.ctx, "cnn", "key", 20)

	var te *TransportError
	s.Require().ErrorAs(err, &te)
	s.Equal(http.StatusBadGateway, te.StatusCode)
	s.Equal("unexpected status 502", te.Detail())
	s.Equal(int32(1), s.requests.Load())
}

func (s *ClientTestSuite) TestFetchHeadlines_MalformedPayload() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","articles":[{`))
	}

	_, err := s.client.FetchHeadlines(s.ctx, "cnn", "key", 20)

	var te *TransportError
	s.Require().ErrorAs(err, &te)
	s.Equal("decode response", te.Op)
	s.Error(errors.Unwrap(te))
}

func (s *ClientTestSuite) TestFetchHeadlines_StatusErrorBody() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error"}`))
	}

	_, err := s.client.FetchHeadlines(s.ctx, "cnn", "key", 20)

	var te *TransportError
	s.Require().ErrorAs(err, &te)
	s.Equal(http.StatusOK, te.StatusCode)
	s.Empty(te.Code)
	s.Equal("api returned status error", te.Detail())
}

func (s *ClientTestSuite) TestFetchHeadlines_StatusErrorBodyKeepsCodeAndMessage() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","code":"sourcesTooMany","message":"You have requested too many sources in a single request."}`))
	}

	_, err := s.client.FetchHeadlines(s.ctx, "cnn", "key", 20)

	var te *TransportError
	s.Require().ErrorAs(err, &te)
	s.Equal(http.StatusOK, te.StatusCode)
	s.Equal("sourcesTooMany", te.Code)
	s.Equal("You have requested too many sources in a single request.", te.Detail())
}

func (s *ClientTestSuite) TestFetchHeadlines_Timeout() {
	release := make(chan struct{})
	defer close(release)
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}
	client := New(Config{BaseURL: s.server.URL, Timeout: 50 * time.Millisecond}, nil, s.logger)

	_, err := client.FetchHeadlines(s.ctx, "cnn", "secret-key", 20)

	var te *TransportError
	s.Require().ErrorAs(err, &te)
	s.Equal("execute request", te.Op)
	s.NotContains(err.Error(), "secret-key")
}

func (s *ClientTestSuite) TestFetchHeadlines_ConnectionRefused() {
	s.server.Close()

	_, err := s.client.FetchHeadlines(s.ctx, "cnn", "key", 20)

	var te *TransportError
	s.Require().ErrorAs(err, &te)
	s.Zero(te.StatusCode)
}

func (s *ClientTestSuite) TestFetchHeadlines_RateLimitHonoursContext() {
	client := New(Config{BaseURL: s.server.URL, Timeout: time.Second, RateLimit: 0.001, Burst: 1}, nil, s.logger)

	_, err := client.FetchHeadlines(s.ctx, "cnn", "key", 20)
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
	defer cancel()

	_, err = client.FetchHeadlines(ctx, "cnn", "key", 20)

	var te *TransportError
	s.Require().ErrorAs(err, &te)
	s.Equal("rate limit", te.Op)
	s.Equal(int32(1), s.requests.Load())
}

func (s *ClientTestSuite) TestRedact() {
	u, err := url.Parse("https://newsapi.org/v2/top-headlines?apiKey=abc&sources=cnn")
	s.Require().NoError(err)

	s.Equal("https://newsapi.org/v2/top-headlines?apiKey=REDACTED&sources=cnn", redact(u))
}
