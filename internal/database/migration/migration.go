package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"handoc/internal/database"
	"handoc/internal/logger"
)

type migrationStep struct {
	Name string
	SQL  string
}

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
  name       TEXT        PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id                      UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email                   TEXT        NOT NULL UNIQUE,
  username                TEXT        NOT NULL UNIQUE,
  hashed_password         TEXT        NOT NULL,
  is_active               BOOLEAN     NOT NULL DEFAULT true,
  is_premium              BOOLEAN     NOT NULL DEFAULT false,
  is_verified             BOOLEAN     NOT NULL DEFAULT false,
  full_name               TEXT        NOT NULL DEFAULT '',
  language                TEXT        NOT NULL DEFAULT 'ko',
  timezone                TEXT        NOT NULL DEFAULT 'Asia/Seoul',
  subscription_type       TEXT        NOT NULL DEFAULT 'free',
  subscription_expires_at TIMESTAMPTZ,
  monthly_uploads         INTEGER     NOT NULL DEFAULT 0,
  total_uploads           INTEGER     NOT NULL DEFAULT 0,
  last_upload_at          TIMESTAMPTZ,
  created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
  last_login_at           TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                      UUID             PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id                 UUID             NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  filename                TEXT             NOT NULL,
  original_filename       TEXT             NOT NULL,
  file_size               BIGINT           NOT NULL CHECK (file_size >= 0),
  storage_path            TEXT             NOT NULL UNIQUE,
  mime_type               TEXT             NOT NULL,
  file_hash               TEXT             NOT NULL,
  status                  TEXT             NOT NULL DEFAULT 'uploaded'
                          CHECK (status IN ('uploaded', 'processing', 'completed', 'failed')),
  error_message           TEXT,
  page_count              INTEGER,
  word_count              INTEGER,
  language                TEXT,
  processing_started_at   TIMESTAMPTZ,
  processing_completed_at TIMESTAMPTZ,
  processing_time         DOUBLE PRECISION,
  created_at              TIMESTAMPTZ      NOT NULL DEFAULT now(),
  updated_at              TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_user_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_user_created_at ON documents (user_id, created_at DESC);`,
	},
	{
		Name: "create_index_documents_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_status ON documents (status);`,
	},
	{
		Name: "create_table_analyses",
		SQL: `CREATE TABLE IF NOT EXISTS analyses (
  id                  UUID             PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_id         UUID             NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  raw_text            TEXT             NOT NULL DEFAULT '',
  cleaned_text        TEXT             NOT NULL DEFAULT '',
  summary             TEXT             NOT NULL DEFAULT '',
  keywords            JSONB            NOT NULL DEFAULT '[]',
  qa_pairs            JSONB            NOT NULL DEFAULT '[]',
  important_sentences JSONB            NOT NULL DEFAULT '[]',
  ai_model            TEXT             NOT NULL,
  language            TEXT             NOT NULL DEFAULT 'ko',
  processing_time     DOUBLE PRECISION NOT NULL DEFAULT 0,
  confidence_score    DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (confidence_score BETWEEN 0 AND 1),
  total_pages         INTEGER          NOT NULL DEFAULT 0,
  total_words         INTEGER          NOT NULL DEFAULT 0,
  total_sentences     INTEGER          NOT NULL DEFAULT 0,
  total_paragraphs    INTEGER          NOT NULL DEFAULT 0,
  created_at          TIMESTAMPTZ      NOT NULL DEFAULT now(),
  updated_at          TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_analyses_document_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_analyses_document_created_at ON analyses (document_id, created_at DESC);`,
	},
	{
		Name: "create_table_feedback",
		SQL: `CREATE TABLE IF NOT EXISTS feedback (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id       UUID        REFERENCES users (id) ON DELETE SET NULL,
  analysis_id   UUID        REFERENCES analyses (id) ON DELETE SET NULL,
  rating        INTEGER     CHECK (rating BETWEEN 1 AND 5),
  comment       TEXT        NOT NULL DEFAULT '',
  feedback_type TEXT        NOT NULL DEFAULT 'general',
  user_agent    TEXT        NOT NULL DEFAULT '',
  ip_address    TEXT        NOT NULL DEFAULT '',
  page_url      TEXT        NOT NULL DEFAULT '',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_feedback_analysis_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_feedback_analysis_id ON feedback (analysis_id);`,
	},
}

// EnsureMigrated applies every step not yet recorded in schema_migrations.
// Each step runs in its own transaction together with its bookkeeping row.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *logger.Logger, dbHost string) error {
	start := time.Now()
	log = log.With("database")

	log.Log(map[string]any{
		"event":   "db_migration_check",
		"status":  "starting",
		"db_host": dbHost,
	})

	fail := func(step string, err error) error {
		entry := map[string]any{
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": err.Error(),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		}
		if step != "" {
			entry["migration_step"] = step
		}
		log.Log(entry)
		return err
	}

	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fail("", fmt.Errorf("failed to create schema_migrations: %w", err))
	}

	applied, err := appliedSteps(ctx, db)
	if err != nil {
		return fail("", err)
	}

	var pending []migrationStep
	for _, s := range steps {
		if !applied[s.Name] {
			pending = append(pending, s)
		}
	}

	if len(pending) == 0 {
		log.Log(map[string]any{
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema is up to date",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	log.Log(map[string]any{
		"event":         "db_migration_start",
		"status":        "in_progress",
		"pending_steps": len(pending),
		"db_host":       dbHost,
	})

	for _, step := range pending {
		stepStart := time.Now()
		err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (name, applied_at) VALUES ($1, $2)`,
				step.Name, time.Now().UTC(),
			)
			return err
		})
		if err != nil {
			return fail(step.Name, fmt.Errorf("migration step %s failed: %w", step.Name, err))
		}

		log.Log(map[string]any{
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	log.Log(map[string]any{
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func appliedSteps(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}
