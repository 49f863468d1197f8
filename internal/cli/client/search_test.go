package client

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rootWith(sub *cobra.Command, apiURL string) *cobra.Command {
	root := &cobra.Command{Use: "search-cli"}
	root.PersistentFlags().Bool("output", false, "")
	root.PersistentFlags().String("api-url", apiURL, "")
	root.AddCommand(sub)
	return root
}

func TestSearchCmd_SendsOnlyChangedFlags(t *testing.T) {
	var got map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/organizations/org-1/search", r.URL.Path)
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"data":{"search_id":"s","results":[],"pagination":{"page":1}}}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	root := rootWith(SearchCmd(), srv.URL)
	root.SetOut(&out)
	root.SetArgs([]string{"search", "bail support", "--org", "org-1", "-t", "program,service", "--limit", "5"})
	require.NoError(t, root.Execute())

	assert.Equal(t, []string{"bail support"}, got["q"])
	assert.Equal(t, []string{"program,service"}, got["types"])
	assert.Equal(t, []string{"5"}, got["limit"])
	assert.NotContains(t, got, "page")
	assert.NotContains(t, got, "verified")
	assert.Contains(t, out.String(), "No results found.")
}

func TestSearchCmd_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"[VALIDATION_ERROR] invalid search mode"}`))
	}))
	defer srv.Close()

	root := rootWith(SearchCmd(), srv.URL)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"search", "bail", "--mode", "slow"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid search mode")
}

func TestQuickCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/quick", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"results":[{"id":"p1","type":"program","title":"Healing Circle"}]}}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	root := rootWith(QuickCmd(), srv.URL)
	root.SetOut(&out)
	root.SetArgs([]string{"quick", "heal"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "Healing Circle")
}

func TestProvidersCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"name":"internal","available":true},{"name":"media_hub","category":"Media & stories","available":false}]}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	root := rootWith(ProvidersCmd(), srv.URL)
	root.SetOut(&out)
	root.SetArgs([]string{"providers"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "internal")
	assert.Contains(t, out.String(), "down")
}

func TestPrintSearch(t *testing.T) {
	var out bytes.Buffer
	printSearch(&out, &domain.UnifiedSearchResponse{
		Intent: domain.IntentFindProgram,
		Results: []domain.SearchResult{
			{ID: "p1", Type: domain.ResultTypeProgram, Title: "Healing Circle", URL: "/programs/p1", Score: 0.9},
		},
		Pagination:  domain.Pagination{Page: 1, Limit: 1, Total: 3, HasMore: true},
		Warnings:    []string{"Media & stories results are temporarily unavailable"},
		Suggestions: []string{"healing programs outcomes"},
	})

	text := out.String()
	assert.Contains(t, text, "! Media & stories results are temporarily unavailable")
	assert.Contains(t, text, "Found 3 results")
	assert.Contains(t, text, "Healing Circle [program] (0.90)")
	assert.Contains(t, text, "--page 2")
	assert.Contains(t, text, "Try: healing programs outcomes")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
