package admin

import (
	"testing"
	"time"

	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seedTime = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestParseSeed(t *testing.T) {
	data := []byte(`
entities:
  - type: intervention
    title: Healing on Country
    description: Cultural camps for young people
    region: NSW
    organization_id: 7d0e6a2c-41f3-4c55-9d53-7a1d1e0c9a10
    tags: [healing, culture]
    elder_approved: true
  - id: 7d0e6a2c-41f3-4c55-9d53-7a1d1e0c9a10
    type: organization
    title: Just Reinvest
`)

	records, err := ParseSeed(data, seedTime)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, domain.ResultTypeOrganization, records[0].Type)
	assert.Equal(t, "7d0e6a2c-41f3-4c55-9d53-7a1d1e0c9a10", records[0].ID)

	program := records[1]
	assert.Equal(t, domain.ResultTypeProgram, program.Type)
	assert.NotEmpty(t, program.ID)
	assert.Equal(t, "NSW", program.Region)
	assert.Equal(t, []string{"healing", "culture"}, program.Tags)
	assert.True(t, program.ElderApproved)
	assert.Equal(t, seedTime, program.CreatedAt)
}

func TestParseSeed_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "entities: [\n"},
		{"unknown type", "entities:\n  - type: event\n    title: x\n"},
		{"media is not stored", "entities:\n  - type: media\n    title: x\n"},
		{"missing title", "entities:\n  - type: service\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.data), seedTime)
			assert.Error(t, err)
		})
	}
}
