// Package repos holds the Postgres persistence used by the worker. The API
// serves everything from memory; only the audit archive is durable.
package repos

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dorm-management-system/api/internal/models"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// ArchiveEntries appends audit entries to the archive table. Replays of the
// same entry are absorbed by the primary key conflict clause, so archive
// tasks stay safe to retry.
func (r *AuditRepo) ArchiveEntries(ctx context.Context, entries []models.AuditLog) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range entries {
		entry := entries[i]
		if entry.Timestamp.IsZero() {
			entry.Timestamp = time.Now().UTC()
		}
		batch.Queue(`
			INSERT INTO audit_archive (
				id, occurred_at, actor, action, details
			) VALUES (
				$1, $2, $3, $4, $5
			)
			ON CONFLICT (id) DO NOTHING
		`,
			entry.ID,
			entry.Timestamp,
			entry.User,
			entry.Action,
			entry.Details,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range entries {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// RecentEntries returns the newest archived entries, most recent first.
func (r *AuditRepo) RecentEntries(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, occurred_at, actor, action, details
		FROM audit_archive
		ORDER BY occurred_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.User, &entry.Action, &entry.Details); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
