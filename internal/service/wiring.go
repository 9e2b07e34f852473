package service

import (
	"context"
	"fmt"

	"prodexport/internal/archive"
	"prodexport/internal/blobstore"
	"prodexport/internal/config"
	"prodexport/internal/dbclient"
	"prodexport/internal/domain"
	"prodexport/internal/etl"
	"prodexport/internal/metrics"
	"prodexport/internal/refdata"
	"prodexport/internal/secret"
	"prodexport/internal/storage"

	_ "prodexport/internal/etl/sources"
)

// BuildOptions tweaks which collaborators Build connects.
type BuildOptions struct {
	// SkipStaging leaves the object store unconnected, for test-mode runs.
	SkipStaging bool
}

// Runtime is an ExportService plus the connections it owns.
type Runtime struct {
	Service *ExportService
	closers []func(context.Context) error
}

// Close waits for in-flight exports, bounded by ctx, then releases every
// connection opened by Build in reverse order.
func (r *Runtime) Close(ctx context.Context) error {
	if r.Service != nil {
		r.Service.WaitRunning(ctx)
	}
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.closers = nil
	return firstErr
}

// Build connects the collaborators named in cfg and returns a ready Runtime.
func Build(ctx context.Context, cfg *config.Config, secrets secret.SecretStore, opts BuildOptions) (_ *Runtime, err error) {
	rt := &Runtime{}
	defer func() {
		if err != nil {
			rt.Close(context.Background())
		}
	}()

	deps := Dependencies{
		SourceType: cfg.Source.Type,
		Archiver:   archive.NewGzip(),
		Pipeline: etl.PipelineConfig{
			BaseDir:           cfg.Export.BaseDir,
			FilePrefix:        cfg.Export.FilePrefix,
			Extension:         cfg.Export.Extension,
			Container:         cfg.Export.Container,
			ObjectName:        cfg.Export.ObjectName,
			ArchiveObjectName: cfg.Export.ArchiveObjectName,
		},
		MetricsPath: cfg.Metrics.TextfilePath,
	}

	if deps.OpenSource, err = sourceOpener(cfg.Source, secrets); err != nil {
		return nil, err
	}
	if deps.References, err = rt.references(ctx, cfg.Reference, secrets); err != nil {
		return nil, err
	}
	if !opts.SkipStaging {
		if deps.ObjectStore, err = rt.objectStore(ctx, cfg.Staging, secrets); err != nil {
			return nil, err
		}
	}

	if !cfg.History.Disabled {
		db, err := storage.New(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open run history: %w", err)
		}
		rt.closers = append(rt.closers, func(context.Context) error { return db.Close() })
		deps.History = storage.NewRunStore(db)
	}
	if cfg.Metrics.TextfilePath != "" {
		deps.Metrics = metrics.New(nil)
	}

	rt.Service = NewExportService(deps)
	return rt, nil
}

func sourceOpener(sc config.SourceConfig, secrets secret.SecretStore) (SourceOpener, error) {
	srcCfg := etl.SourceConfig{
		"table":      sc.Table,
		"collection": sc.Collection,
		"filePath":   sc.FilePath,
		"batchSize":  sc.BatchSize,
	}
	if sc.Connection != nil {
		password, err := secret.Password(secrets, sc.Connection.PasswordKey)
		if err != nil {
			return nil, fmt.Errorf("source password: %w", err)
		}
		srcCfg["connection"] = sc.Connection
		srcCfg["password"] = password
	}
	typ := sc.Type
	return func(ctx context.Context, offset int64) (etl.RecordSource, error) {
		return etl.OpenSource(ctx, typ, srcCfg, offset)
	}, nil
}

func (rt *Runtime) references(ctx context.Context, rc config.ReferenceConfig, secrets secret.SecretStore) (domain.ReferenceStore, error) {
	password, err := secret.Password(secrets, rc.Connection.PasswordKey)
	if err != nil {
		return nil, fmt.Errorf("reference password: %w", err)
	}

	switch rc.Backend {
	case config.ReferenceMongo:
		mdb, err := dbclient.ConnectMongo(ctx, rc.Connection, password)
		if err != nil {
			return nil, fmt.Errorf("reference store: %w", err)
		}
		rt.closers = append(rt.closers, mdb.Close)
		return refdata.NewMongoStore(mdb.DB, refdata.MongoCollections{
			Suppliers:  rc.Suppliers,
			Categories: rc.Categories,
			Families:   rc.Families,
		}), nil

	case config.ReferenceSQL:
		db, err := dbclient.OpenSQL(rc.Connection, password)
		if err != nil {
			return nil, fmt.Errorf("reference store: %w", err)
		}
		rt.closers = append(rt.closers, func(context.Context) error { return db.Close() })
		return refdata.NewSQLStore(db, rc.Connection.Driver, refdata.SQLTables{
			Suppliers:  rc.Suppliers,
			Categories: rc.Categories,
			Families:   rc.Families,
		})
	}
	return nil, fmt.Errorf("unknown reference backend %q", rc.Backend)
}

func (rt *Runtime) objectStore(ctx context.Context, sc config.StagingConfig, secrets secret.SecretStore) (etl.ObjectStore, error) {
	switch sc.Backend {
	case config.StagingDir:
		return blobstore.NewDirStore(sc.Dir), nil

	case config.StagingGridFS:
		password, err := secret.Password(secrets, sc.Connection.PasswordKey)
		if err != nil {
			return nil, fmt.Errorf("staging password: %w", err)
		}
		mdb, err := dbclient.ConnectMongo(ctx, sc.Connection, password)
		if err != nil {
			return nil, fmt.Errorf("object store: %w", err)
		}
		rt.closers = append(rt.closers, mdb.Close)
		return blobstore.NewGridFSStore(mdb.DB), nil
	}
	return nil, fmt.Errorf("unknown staging backend %q", sc.Backend)
}
