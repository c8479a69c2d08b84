package resolver_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sdko-org/lawchat-api/internal/config"
	"github.com/sdko-org/lawchat-api/internal/dataset"
	"github.com/sdko-org/lawchat-api/internal/gemini"
	"github.com/sdko-org/lawchat-api/internal/models"
	"github.com/sdko-org/lawchat-api/internal/resolver"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Full pipeline with the real client and cache: a stub provider behind
// httptest, a dataset loaded from disk, and the resolver across them.
func TestPipelineEndToEnd(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	datasetPath := filepath.Join(t.TempDir(), "questions_dataset.yaml")
	require.NoError(t, os.WriteFile(datasetPath, []byte(
		"- question: \"ဥပဒေအရ ခိုးယူမှုအပြစ်ဒဏ်\"\n  answer: \"Y\"\n"), 0600))
	cache, err := dataset.Load(logger, datasetPath)
	require.NoError(t, err)

	newResolver := func(handler http.HandlerFunc) *resolver.Resolver {
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)
		client := gemini.NewClient(logger, &config.Config{
			GoogleAPIKey:   "test-key",
			GeminiModel:    "gemini-pro",
			GeminiEndpoint: server.URL,
			AITimeout:      time.Second,
		})
		return resolver.New(logger, client, cache, time.Second)
	}

	const question = "ဥပဒေအရ ခိုးယူမှုအပြစ်ဒဏ်"

	t.Run("provider answers", func(t *testing.T) {
		r := newResolver(func(w http.ResponseWriter, req *http.Request) {
			fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"X"}]}}]}`)
		})
		result, err := r.Resolve(context.Background(), question)
		require.NoError(t, err)
		assert.Equal(t, resolver.Result{Answer: "X", Source: models.SourceAI}, result)
	})

	t.Run("provider down, dataset answers", func(t *testing.T) {
		r := newResolver(func(w http.ResponseWriter, req *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		})
		result, err := r.Resolve(context.Background(), question)
		require.NoError(t, err)
		assert.Equal(t, resolver.Result{Answer: "Y", Source: models.SourceDataset}, result)
	})

	t.Run("provider down, dataset miss", func(t *testing.T) {
		r := newResolver(func(w http.ResponseWriter, req *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		})
		result, err := r.Resolve(context.Background(), "မသိသောမေးခွန်း")
		require.NoError(t, err)
		assert.Equal(t, resolver.FallbackAnswer, result.Answer)
		assert.Equal(t, models.SourceFallback, result.Source)
	})
}
