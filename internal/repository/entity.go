package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbtx is the subset of pgxpool.Pool and pgx.Tx the repositories use.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EntityQuery is one per-type lookup against the store. Patterns are ILIKE
// patterns already escaped with '\'; a row matches when any of them matches
// its title or description.
type EntityQuery struct {
	Type           domain.ResultType
	Patterns       []string
	Region         string
	OrganizationID string
	VerifiedOnly   bool
	Limit          int
}

// tableSpec describes how one result type maps onto its table. Every
// select list yields the same columns in the same order so one scanner
// serves all types.
type tableSpec struct {
	table       string
	titleCol    string
	descCol     string
	regionCol   string
	orgCol      string
	selectCols  string
	joinOrgName bool
	verifiable  bool
}

var tableSpecs = map[domain.ResultType]tableSpec{
	domain.ResultTypeProgram: {
		table:     "interventions",
		titleCol:  "t.name",
		descCol:   "t.description",
		regionCol: "t.state",
		orgCol:    "t.organization_id",
		selectCols: `t.id::text, t.name, COALESCE(t.description, ''), COALESCE(t.state, ''),
		 COALESCE(t.organization_id::text, ''), COALESCE(o.name, ''), COALESCE(t.category, ''), '',
		 COALESCE(t.evidence_level, ''), '', COALESCE(t.tags, '{}'),
		 COALESCE((t.metadata->>'elder_approved')::boolean, false), t.created_at`,
		joinOrgName: true,
		verifiable:  true,
	},
	domain.ResultTypeService: {
		table:     "services",
		titleCol:  "t.name",
		descCol:   "t.description",
		regionCol: "t.state",
		orgCol:    "t.organization_id",
		selectCols: `t.id::text, t.name, COALESCE(t.description, ''), COALESCE(t.state, ''),
		 COALESCE(t.organization_id::text, ''), COALESCE(o.name, ''), COALESCE(t.category, ''), '',
		 '', '', COALESCE(t.tags, '{}'),
		 COALESCE((t.metadata->>'elder_approved')::boolean, false), t.created_at`,
		joinOrgName: true,
		verifiable:  true,
	},
	domain.ResultTypeOrganization: {
		table:     "organizations",
		titleCol:  "t.name",
		descCol:   "t.description",
		regionCol: "t.state",
		orgCol:    "t.id",
		selectCols: `t.id::text, t.name, COALESCE(t.description, ''), COALESCE(t.state, ''),
		 t.id::text, t.name, '', '', '', COALESCE(t.logo_url, ''), COALESCE(t.tags, '{}'),
		 COALESCE((t.metadata->>'elder_approved')::boolean, false), t.created_at`,
	},
	domain.ResultTypePerson: {
		table:    "people",
		titleCol: "t.full_name",
		descCol:  "t.bio",
		orgCol:   "t.organization_id",
		selectCols: `t.id::text, t.full_name, COALESCE(t.bio, ''), '',
		 COALESCE(t.organization_id::text, ''), COALESCE(o.name, ''), '', COALESCE(t.role, ''),
		 '', COALESCE(t.photo_url, ''), '{}'::text[],
		 false, t.created_at`,
		joinOrgName: true,
	},
	domain.ResultTypeResearch: {
		table:    "research",
		titleCol: "t.title",
		descCol:  "t.summary",
		orgCol:   "t.organization_id",
		selectCols: `t.id::text, t.title, COALESCE(t.summary, ''), '',
		 COALESCE(t.organization_id::text, ''), COALESCE(o.name, ''), COALESCE(t.category, ''), '',
		 COALESCE(t.evidence_level, ''), '', COALESCE(t.tags, '{}'),
		 false, t.created_at`,
		joinOrgName: true,
	},
}

// Supports reports whether the store holds records of type t.
func Supports(t domain.ResultType) bool {
	_, ok := tableSpecs[t]
	return ok
}

// TableName returns the table records of type t are read from.
func TableName(t domain.ResultType) string {
	return tableSpecs[t].table
}

// HasRegionColumn reports whether records of type t carry a region the
// store can filter on.
func HasRegionColumn(t domain.ResultType) bool {
	return tableSpecs[t].regionCol != ""
}

// EntityRepository reads programs, services, organizations, people and
// research from Postgres.
type EntityRepository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{db: pool, pool: pool}
}

func NewEntityRepositoryWithTx(tx pgx.Tx) *EntityRepository {
	return &EntityRepository{db: tx}
}

// Ping checks that the database is reachable.
func (r *EntityRepository) Ping(ctx context.Context) error {
	if r.pool == nil {
		return nil
	}
	return r.pool.Ping(ctx)
}

// Search runs a case-insensitive substring match for one entity type.
func (r *EntityRepository) Search(ctx context.Context, q EntityQuery) ([]*domain.EntityRecord, error) {
	query, args, err := buildEntityQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntityRows(rows, q.Type)
}

func buildEntityQuery(q EntityQuery) (string, []any, error) {
	tbl, ok := tableSpecs[q.Type]
	if !ok {
		return "", nil, fmt.Errorf("store does not hold %s records", q.Type)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = domain.DefaultLimit
	}

	query := "SELECT " + tbl.selectCols + " FROM " + tbl.table + " t"
	if tbl.joinOrgName {
		query += " LEFT JOIN organizations o ON o.id = t.organization_id"
	}

	if len(q.Patterns) == 0 {
		return "", nil, fmt.Errorf("no search patterns")
	}

	var args []any
	match := make([]string, 0, len(q.Patterns))
	for _, p := range q.Patterns {
		args = append(args, p)
		match = append(match, fmt.Sprintf("%s ILIKE $%d ESCAPE '\\' OR COALESCE(%s, '') ILIKE $%d ESCAPE '\\'",
			tbl.titleCol, len(args), tbl.descCol, len(args)))
	}
	query += " WHERE (" + strings.Join(match, " OR ") + ")"

	if q.Region != "" && tbl.regionCol != "" {
		args = append(args, q.Region)
		query += fmt.Sprintf(" AND UPPER(%s) = UPPER($%d)", tbl.regionCol, len(args))
	}

	if q.OrganizationID != "" {
		args = append(args, q.OrganizationID)
		query += fmt.Sprintf(" AND %s::text = $%d", tbl.orgCol, len(args))
	}

	if q.VerifiedOnly && tbl.verifiable {
		query += " AND t.metadata @> '{\"elder_approved\": true}'::jsonb"
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY t.created_at DESC, t.id LIMIT $%d", len(args))

	return query, args, nil
}

func scanEntityRows(rows pgx.Rows, t domain.ResultType) ([]*domain.EntityRecord, error) {
	var results []*domain.EntityRecord
	for rows.Next() {
		e := domain.EntityRecord{Type: t}
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.Region,
			&e.OrganizationID, &e.OrganizationName, &e.Category, &e.Role,
			&e.EvidenceLevel, &e.ImageURL, &e.Tags,
			&e.ElderApproved, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, &e)
	}
	return results, rows.Err()
}

// Create inserts a record into the table for its type. It exists for
// seeding and tests; the search path never writes.
func (r *EntityRepository) Create(ctx context.Context, e *domain.EntityRecord) error {
	if err := domain.ValidateEntityRecord(e); err != nil {
		return err
	}
	metadata := fmt.Sprintf(`{"elder_approved": %t}`, e.ElderApproved)

	var err error
	switch e.Type {
	case domain.ResultTypeOrganization:
		_, err = r.db.Exec(ctx,
			`INSERT INTO organizations (id, name, description, state, logo_url, tags, metadata, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.ID, e.Title, nullableString(e.Description), nullableString(e.Region), nullableString(e.ImageURL), tagsOrEmpty(e.Tags), metadata, e.CreatedAt,
		)
	case domain.ResultTypeProgram:
		_, err = r.db.Exec(ctx,
			`INSERT INTO interventions (id, name, description, state, organization_id, category, evidence_level, tags, metadata, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			e.ID, e.Title, nullableString(e.Description), nullableString(e.Region), nullableString(e.OrganizationID),
			nullableString(e.Category), nullableString(e.EvidenceLevel), tagsOrEmpty(e.Tags), metadata, e.CreatedAt,
		)
	case domain.ResultTypeService:
		_, err = r.db.Exec(ctx,
			`INSERT INTO services (id, name, description, state, organization_id, category, tags, metadata, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, e.Title, nullableString(e.Description), nullableString(e.Region), nullableString(e.OrganizationID),
			nullableString(e.Category), tagsOrEmpty(e.Tags), metadata, e.CreatedAt,
		)
	case domain.ResultTypePerson:
		_, err = r.db.Exec(ctx,
			`INSERT INTO people (id, full_name, bio, role, organization_id, photo_url, metadata, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.ID, e.Title, nullableString(e.Description), nullableString(e.Role), nullableString(e.OrganizationID),
			nullableString(e.ImageURL), metadata, e.CreatedAt,
		)
	case domain.ResultTypeResearch:
		_, err = r.db.Exec(ctx,
			`INSERT INTO research (id, title, summary, organization_id, category, evidence_level, tags, metadata, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, e.Title, nullableString(e.Description), nullableString(e.OrganizationID),
			nullableString(e.Category), nullableString(e.EvidenceLevel), tagsOrEmpty(e.Tags), metadata, e.CreatedAt,
		)
	default:
		return fmt.Errorf("store does not hold %s records", e.Type)
	}
	return err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
