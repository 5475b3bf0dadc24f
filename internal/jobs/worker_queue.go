package jobs

import (
	"github.com/mio/bunpo/internal/importer"
	"github.com/mio/bunpo/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	importPool *worker.Pool
	importer   *importer.Importer
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(importPool *worker.Pool, imp *importer.Importer) JobQueue {
	return &WorkerQueue{
		importPool: importPool,
		importer:   imp,
	}
}

func (q *WorkerQueue) EnqueueCatalogImport(force bool) error {
	return q.importPool.Submit(&worker.CatalogImportJob{
		Importer: q.importer,
		Force:    force,
	})
}
