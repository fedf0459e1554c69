package document

import (
	"context"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/ledgerline/reportsync/internal/core/storage"
)

// QueueRecomputer hands the document to a durable recompute queue.
type QueueRecomputer struct {
	queue storage.RecomputeQueue
}

func NewQueueRecomputer(queue storage.RecomputeQueue) *QueueRecomputer {
	return &QueueRecomputer{queue: queue}
}

func (r *QueueRecomputer) Recompute(ctx context.Context, doc *v1.FinanceDocument) error {
	return r.queue.EnqueueRecompute(ctx, doc)
}
