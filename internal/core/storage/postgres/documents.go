package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/ledgerline/reportsync/internal/core/storage"
)

// CreateDocument writes the document header and its lines in one transaction.
func (a *Adapter) CreateDocument(ctx context.Context, doc *v1.FinanceDocument) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin document transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, queryInsertDocument,
		doc.ID,
		doc.TenantID,
		doc.PeriodStart,
		doc.PeriodEnd,
		doc.CreatedAt,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return storage.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert finance document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, queryInsertDocumentLine)
	if err != nil {
		return fmt.Errorf("failed to prepare document line insert: %w", err)
	}
	defer stmt.Close()

	for _, line := range doc.Lines {
		if _, err := stmt.ExecContext(ctx,
			doc.ID,
			line.Position,
			line.CategoryID,
			line.CategoryName,
			line.Amount.String(),
		); err != nil {
			return fmt.Errorf("failed to insert document line %d: %w", line.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit finance document: %w", err)
	}

	slog.Info("[Postgres] Finance document stored",
		"document_id", doc.ID,
		"tenant_id", doc.TenantID,
		"lines", len(doc.Lines))
	return nil
}

// EnqueueRecompute records a ledger recompute request for a stored document.
func (a *Adapter) EnqueueRecompute(ctx context.Context, doc *v1.FinanceDocument) error {
	if _, err := a.db.ExecContext(ctx, queryEnqueueRecompute,
		doc.ID,
		doc.TenantID,
		doc.PeriodStart,
		doc.PeriodEnd,
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to enqueue ledger recompute for document %s: %w", doc.ID, err)
	}
	return nil
}
