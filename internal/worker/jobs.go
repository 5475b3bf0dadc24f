package worker

import (
	"context"

	"github.com/mio/bunpo/internal/importer"
	"github.com/mio/bunpo/internal/logger"
)

// CatalogImportJob seeds the catalog from the content directory.
type CatalogImportJob struct {
	Importer *importer.Importer
	Force    bool
}

func (j *CatalogImportJob) Name() string { return "catalog_import" }

func (j *CatalogImportJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if !j.Force {
		needed, err := j.Importer.Needed(ctx)
		if err != nil {
			return err
		}
		if !needed {
			log.Info("catalog already populated, skipping import")
			return nil
		}
	}
	return j.Importer.Run(ctx)
}
