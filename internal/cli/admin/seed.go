package admin

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/cloo-solutions/justicesearch/internal/config"
	"github.com/cloo-solutions/justicesearch/internal/database"
	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/cloo-solutions/justicesearch/internal/logger"
	"github.com/cloo-solutions/justicesearch/internal/repository"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type seedEntity struct {
	ID             string   `yaml:"id"`
	Type           string   `yaml:"type"`
	Title          string   `yaml:"title"`
	Description    string   `yaml:"description"`
	Region         string   `yaml:"region"`
	OrganizationID string   `yaml:"organization_id"`
	Category       string   `yaml:"category"`
	Role           string   `yaml:"role"`
	EvidenceLevel  string   `yaml:"evidence_level"`
	ImageURL       string   `yaml:"image_url"`
	Tags           []string `yaml:"tags"`
	ElderApproved  bool     `yaml:"elder_approved"`
}

type seedFile struct {
	Entities []seedEntity `yaml:"entities"`
}

// ParseSeed reads fixture entities from YAML. Organizations are ordered
// first so rows referencing them insert cleanly. Missing ids are generated.
func ParseSeed(data []byte, now time.Time) ([]*domain.EntityRecord, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	records := make([]*domain.EntityRecord, 0, len(f.Entities))
	for i, e := range f.Entities {
		t, err := domain.ParseResultType(e.Type)
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		if !repository.Supports(t) {
			return nil, fmt.Errorf("entity %d: store does not hold %s records", i, t)
		}
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}

		rec := domain.NewEntityRecord(id, t, e.Title, e.Description, now)
		rec.Region = e.Region
		rec.OrganizationID = e.OrganizationID
		rec.Category = e.Category
		rec.Role = e.Role
		rec.EvidenceLevel = e.EvidenceLevel
		rec.ImageURL = e.ImageURL
		rec.Tags = e.Tags
		rec.ElderApproved = e.ElderApproved
		if err := domain.ValidateEntityRecord(rec); err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		records = append(records, rec)
	}

	slices.SortStableFunc(records, func(a, b *domain.EntityRecord) int {
		return orgRank(a) - orgRank(b)
	})
	return records, nil
}

func orgRank(r *domain.EntityRecord) int {
	if r.Type == domain.ResultTypeOrganization {
		return 0
	}
	return 1
}

// SeedCmd loads fixture entities into the store in one transaction.
func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load fixture entities into the store",
		Long:  "Inserts programs, services, people, organizations and research from a YAML file. Nothing is written if any row fails.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read seed file: %w", err)
			}
			records, err := ParseSeed(data, time.Now().UTC())
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log, err := logger.NewLogger(cfg.Environment, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			ctx := context.Background()
			pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns})
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer pool.Close()

			counts, err := repository.NewTxRunner(pool).Import(ctx, records)
			if err != nil {
				return err
			}

			fields := []zap.Field{zap.Int("entities", len(records))}
			for rt, n := range counts {
				fields = append(fields, zap.Int(string(rt), n))
			}
			log.Info("seeded store", fields...)
			return nil
		},
	}
}
