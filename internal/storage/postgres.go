package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/pegasusinfo/newsintel/internal/feed"
	"github.com/pegasusinfo/newsintel/internal/logger"
)

// Archive stores enriched articles in PostgreSQL for later querying.
type Archive struct {
	db *sql.DB
}

func NewArchive(connectionString string) (*Archive, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	archive := &Archive{db: db}
	if err := archive.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("article archive connected")
	return archive, nil
}

func (ar *Archive) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id               SERIAL PRIMARY KEY,
		link             TEXT UNIQUE NOT NULL,
		title            TEXT NOT NULL,
		source           TEXT,
		primary_category TEXT,
		published_at     TIMESTAMPTZ,
		impact_level     TEXT,
		sentiment        TEXT,
		is_sensitive     BOOLEAN NOT NULL DEFAULT FALSE,
		trending_score   DOUBLE PRECISION NOT NULL DEFAULT 0,
		summary          TEXT,
		insight          TEXT,
		archived_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_articles_category ON articles (primary_category);
	CREATE INDEX IF NOT EXISTS idx_articles_published ON articles (published_at);
	`
	_, err := ar.db.Exec(schema)
	return err
}

// SaveArticles upserts enriched articles keyed by link.
func (ar *Archive) SaveArticles(ctx context.Context, articles []feed.Article) error {
	const query = `
	INSERT INTO articles (
		link, title, source, primary_category, published_at,
		impact_level, sentiment, is_sensitive, trending_score, summary, insight
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (link) DO UPDATE SET
		primary_category = EXCLUDED.primary_category,
		impact_level     = EXCLUDED.impact_level,
		sentiment        = EXCLUDED.sentiment,
		is_sensitive     = EXCLUDED.is_sensitive,
		trending_score   = EXCLUDED.trending_score,
		summary          = EXCLUDED.summary,
		insight          = EXCLUDED.insight`

	tx, err := ar.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range articles {
		var published sql.NullTime
		if a.Published != nil {
			published = sql.NullTime{Time: *a.Published, Valid: true}
		}

		if _, err := tx.ExecContext(ctx, query,
			a.Link, a.Title, a.Source, a.Category(), published,
			a.ImpactLevel, a.Sentiment, a.Sensitive, a.TrendingScore,
			a.Summary, a.Insight,
		); err != nil {
			return fmt.Errorf("archive article %s: %w", a.Link, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive transaction: %w", err)
	}

	logger.Info("articles archived", "count", len(articles))
	return nil
}

// CountSince returns how many articles were archived after the given time.
func (ar *Archive) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := ar.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE archived_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count archived articles: %w", err)
	}
	return count, nil
}

// DeleteOlderThan prunes archived articles past the retention window and
// returns how many rows were removed.
func (ar *Archive) DeleteOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	res, err := ar.db.ExecContext(ctx,
		`DELETE FROM articles WHERE archived_at < $1`, time.Now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("prune archive: %w", err)
	}
	return res.RowsAffected()
}

func (ar *Archive) Close() error {
	return ar.db.Close()
}
