//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloo-solutions/justicesearch/internal/api/handlers"
	"github.com/cloo-solutions/justicesearch/internal/cli/admin"
	"github.com/cloo-solutions/justicesearch/internal/mediahub"
	"github.com/cloo-solutions/justicesearch/internal/provider"
	"github.com/cloo-solutions/justicesearch/internal/query"
	"github.com/cloo-solutions/justicesearch/internal/repository"
	"github.com/cloo-solutions/justicesearch/internal/server"
	"github.com/cloo-solutions/justicesearch/internal/service"
	"github.com/cloo-solutions/justicesearch/internal/storage"
	"github.com/cloo-solutions/justicesearch/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap/zaptest"
)

const seedYAML = `
entities:
  - id: 0b6c3c3e-6f0e-4c1b-9a57-3c1c2f1d9a01
    type: organization
    title: Just Reinvest
    region: NSW
  - type: program
    title: NSW Healing on Country Program
    description: Cultural healing camps led by Elders
    region: NSW
    organization_id: 0b6c3c3e-6f0e-4c1b-9a57-3c1c2f1d9a01
    tags: [healing, culture]
    elder_approved: true
  - type: program
    title: Healing Circle
    description: Weekly yarning circle
    region: VIC
  - type: service
    title: Aboriginal Legal Service
    description: Bail support and court representation
    region: NSW
  - type: person
    title: Aunty May Roberts
    description: Elder and healing practitioner
    role: Elder
`

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	Pool       *pgxpool.Pool
	MediaHub   *httptest.Server
	Server     *httptest.Server
	BinaryDir  string
	HTTPClient *http.Client
}

// SetupE2EEnv starts Postgres, seeds it, fakes the media hub and serves the
// real router over HTTP.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	records, err := admin.ParseSeed([]byte(seedYAML), time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to parse seed: %v", err)
	}
	if _, err := repository.NewTxRunner(pool).Import(ctx, records); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	hub := httptest.NewServer(http.HandlerFunc(fakeMediaHub))

	// presigning is computed locally, so no object store needs to run
	signer, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "e2e",
		SecretAccessKey: "e2e",
		Bucket:          "justice-media",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}

	logger := zaptest.NewLogger(t)
	store, err := provider.NewStoreProvider(repository.NewEntityRepository(pool), provider.StoreConfig{}, logger)
	if err != nil {
		t.Fatalf("failed to create store provider: %v", err)
	}
	media := provider.NewMediaHubProvider(mediahub.NewClient(hub.URL, "e2e-key"), signer,
		provider.MediaHubConfig{ProjectID: "justice-hub"}, logger)

	registry, err := provider.NewRegistry(store, media)
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	svc := service.NewSearchService(registry, query.NewBuilder(query.DefaultGazetteer()), service.Config{}, logger)

	srv := httptest.NewServer(server.NewRouter(server.RouterConfig{
		Logger:        logger,
		SearchHandler: handlers.NewSearchHandler(svc, registry),
	}))

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		Pool:       pool,
		MediaHub:   hub,
		Server:     srv,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	t.Cleanup(store.Close)
	return env
}

func fakeMediaHub(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/health":
		w.WriteHeader(http.StatusOK)
	case "/api/v1/media":
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{
					"id":             "m-1",
					"title":          "Healing camp on Country",
					"media_type":     "photo",
					"thumbnail_url":  "s3:///thumbs/camp.jpg",
					"cultural_tags":  []string{"healing"},
					"elder_approved": true,
				},
				{
					"id":         "m-2",
					"title":      "Elders share healing stories",
					"media_type": "story",
				},
			},
		})
	default:
		http.NotFound(w, r)
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.MediaHub != nil {
		e.MediaHub.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		_ = e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		_ = os.RemoveAll(e.BinaryDir)
	}
}

// BuildBinaries builds the search CLI
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "justicesearch-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "search"), "./cmd/search")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build search: %v\n%s", err, out)
	}
}

// RunSearch runs the search CLI against the test server
func (e *E2ETestEnv) RunSearch(args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "search"), args...)
	cmd.Env = append(os.Environ(), fmt.Sprintf("JUSTICESEARCH_API_URL=%s", e.Server.URL))
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request and returns the status and decoded envelope.
func (e *E2ETestEnv) Get(path string, params url.Values) (int, *APIResponse, error) {
	target := e.Server.URL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	resp, err := e.HTTPClient.Get(target)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
	}
	return resp.StatusCode, &apiResp, nil
}
