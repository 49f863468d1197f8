package admin

import (
	"bytes"
	"context"
	"testing"

	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/cloo-solutions/justicesearch/internal/provider"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedProvider string

func (n namedProvider) Name() string                         { return string(n) }
func (n namedProvider) IsAvailable(ctx context.Context) bool { return true }
func (n namedProvider) Search(ctx context.Context, q string, sc domain.SearchContext) ([]domain.SearchResult, error) {
	return nil, nil
}

func TestReportAvailability(t *testing.T) {
	providers := []provider.Provider{namedProvider("internal"), namedProvider("media_hub")}

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, reportAvailability(cmd, providers, map[string]bool{"internal": true, "media_hub": true}))
	assert.Contains(t, out.String(), "internal     ok")

	out.Reset()
	err := reportAvailability(cmd, providers, map[string]bool{"internal": true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 providers unavailable")
	assert.Contains(t, out.String(), "media_hub    unavailable")
}

func TestServeCmd_Flags(t *testing.T) {
	cmd := ServeCmd()
	assert.NotNil(t, cmd.Flags().Lookup("port"))
	assert.NotNil(t, cmd.Flags().Lookup("no-migrate"))
}
