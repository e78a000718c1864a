package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MOYARU/uxaudit/internal/report"
	"github.com/MOYARU/uxaudit/internal/runstate"
)

const batchSize = 100

type Postgres struct{ Pool *pgxpool.Pool }

func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	p, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Postgres{Pool: p}, nil
}

func (s *Postgres) Close() {
	s.Pool.Close()
}

func (s *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS audits (
  id UUID PRIMARY KEY,
  url TEXT NOT NULL,
  status TEXT NOT NULL CHECK (status IN ('QUEUED','CRAWLING','ANALYZING','COMPLETED','FAILED')),
  config_snapshot JSONB,
  total_pages INTEGER NOT NULL DEFAULT 0,
  pages_scanned INTEGER NOT NULL DEFAULT 0,
  issues_found INTEGER NOT NULL DEFAULT 0,
  global_score INTEGER CHECK (global_score BETWEEN 0 AND 100),
  score_breakdown JSONB,
  summary TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  started_at TIMESTAMPTZ,
  completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_audits_status_created ON audits (status, created_at);

CREATE TABLE IF NOT EXISTS audit_pages (
  id UUID PRIMARY KEY,
  audit_id UUID NOT NULL REFERENCES audits(id) ON DELETE CASCADE,
  url TEXT NOT NULL,
  title TEXT,
  screenshots JSONB,
  performance_metrics JSONB,
  page_score INTEGER NOT NULL,
  score_breakdown JSONB,
  status_code INTEGER NOT NULL DEFAULT 200,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_audit_pages_audit ON audit_pages (audit_id);

CREATE TABLE IF NOT EXISTS audit_issues (
  id BIGSERIAL PRIMARY KEY,
  audit_id UUID NOT NULL REFERENCES audits(id) ON DELETE CASCADE,
  page_id UUID REFERENCES audit_pages(id) ON DELETE CASCADE,
  rule_id TEXT NOT NULL,
  category TEXT NOT NULL,
  severity TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  framework TEXT,
  criterion TEXT,
  selector TEXT,
  recommendation TEXT,
  effort_level TEXT,
  impact INTEGER NOT NULL DEFAULT 0,
  code_snippet TEXT,
  fix_snippet TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_issues_audit_severity ON audit_issues (audit_id, severity);
`)
	return err
}

func (s *Postgres) CreateAudit(ctx context.Context, a Audit) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO audits (id, url, status, config_snapshot, total_pages, created_at)
		VALUES ($1::uuid, $2, $3, $4::jsonb, $5, $6)
	`, a.ID, a.URL, string(a.Status), encodeJSON(a.Config), a.TotalPages, a.CreatedAt)
	return err
}

func (s *Postgres) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := s.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) MarkCrawling(ctx context.Context, id string, startedAt time.Time) error {
	return s.exec(ctx, `
		UPDATE audits SET status='CRAWLING', started_at=$2
		WHERE id=$1::uuid
	`, id, startedAt)
}

func (s *Postgres) MarkAnalyzing(ctx context.Context, id string, totalPages int) error {
	return s.exec(ctx, `
		UPDATE audits SET status='ANALYZING', total_pages=$2, pages_scanned=$2
		WHERE id=$1::uuid
	`, id, totalPages)
}

func (s *Postgres) SavePage(ctx context.Context, auditID string, p Page) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO audit_pages (
		  id, audit_id, url, title, screenshots, performance_metrics,
		  page_score, score_breakdown, status_code
		) VALUES ($1::uuid, $2::uuid, $3, $4, $5::jsonb, $6::jsonb, $7, $8::jsonb, $9)
	`, p.ID, auditID, p.URL, nullableString(p.Title), encodeJSON(p.Screenshots),
		encodeJSON(p.PerformanceMetrics), p.PageScore, encodeJSON(p.ScoreBreakdown), p.StatusCode)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// SaveIssues pipelines the inserts in chunks of batchSize inside one
// transaction.
func (s *Postgres) SaveIssues(ctx context.Context, auditID, pageID string, issues []report.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for start := 0; start < len(issues); start += batchSize {
		end := min(start+batchSize, len(issues))
		chunk := issues[start:end]

		batch := &pgx.Batch{}
		for _, is := range chunk {
			batch.Queue(`
INSERT INTO audit_issues (
  audit_id, page_id, rule_id, category, severity, title, description,
  framework, criterion, selector, recommendation, effort_level, impact,
  code_snippet, fix_snippet
) VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
				auditID,
				nullableString(pageID),
				is.ID,
				is.Category,
				string(is.Severity),
				is.Title,
				is.Description,
				nullableString(is.Framework),
				nullableString(is.Criterion),
				nullableString(is.Selector),
				nullableString(is.Recommendation),
				nullableString(string(is.EffortLevel)),
				is.Impact,
				nullableString(is.CodeSnippet),
				nullableString(is.FixSnippet),
			)
		}

		br := tx.SendBatch(ctx, batch)
		for range chunk {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert issue: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Postgres) Complete(ctx context.Context, id string, sum Summary) error {
	return s.exec(ctx, `
		UPDATE audits
		SET status='COMPLETED', global_score=$2, score_breakdown=$3::jsonb,
		    issues_found=$4, pages_scanned=$5, completed_at=$6
		WHERE id=$1::uuid
	`, id, sum.GlobalScore, encodeJSON(sum.ScoreBreakdown), sum.IssuesFound, sum.PagesScanned, sum.CompletedAt)
}

func (s *Postgres) Fail(ctx context.Context, id, summary string, at time.Time) error {
	return s.exec(ctx, `
		UPDATE audits SET status='FAILED', summary=$2, completed_at=$3
		WHERE id=$1::uuid
		  AND status IN ('QUEUED','CRAWLING','ANALYZING')
	`, id, summary, at)
}

func (s *Postgres) Get(ctx context.Context, id string) (Audit, error) {
	var (
		a         Audit
		status    string
		cfgJSON   []byte
		breakdown []byte
		summary   *string
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT id::text, url, status, config_snapshot, total_pages, pages_scanned,
		       issues_found, global_score, score_breakdown, summary,
		       created_at, started_at, completed_at
		FROM audits WHERE id=$1::uuid
	`, id).Scan(&a.ID, &a.URL, &status, &cfgJSON, &a.TotalPages, &a.PagesScanned,
		&a.IssuesFound, &a.GlobalScore, &breakdown, &summary,
		&a.CreatedAt, &a.StartedAt, &a.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Audit{}, ErrNotFound
		}
		return Audit{}, err
	}
	a.Status = runstate.Status(status)
	if len(cfgJSON) > 0 {
		if err := json.Unmarshal(cfgJSON, &a.Config); err != nil {
			return Audit{}, fmt.Errorf("decode config snapshot: %w", err)
		}
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &a.ScoreBreakdown); err != nil {
			return Audit{}, fmt.Errorf("decode score breakdown: %w", err)
		}
	}
	if summary != nil {
		a.Summary = *summary
	}
	return a, nil
}

// encodeJSON renders v for a jsonb parameter; nil maps become "{}".
func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return "{}"
	}
	return string(b)
}

func nullableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
