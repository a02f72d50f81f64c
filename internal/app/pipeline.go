package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/garyellow/agri-advisor-go/internal/advisor"
	"github.com/garyellow/agri-advisor-go/internal/config"
	"github.com/garyellow/agri-advisor-go/internal/crop"
	"github.com/garyellow/agri-advisor-go/internal/intent"
	"github.com/garyellow/agri-advisor-go/internal/knowledge"
	"github.com/garyellow/agri-advisor-go/internal/logger"
	"github.com/garyellow/agri-advisor-go/internal/metrics"
	"github.com/garyellow/agri-advisor-go/internal/r2client"
	"github.com/garyellow/agri-advisor-go/internal/sentry"
	"github.com/garyellow/agri-advisor-go/internal/snapshot"
	"github.com/garyellow/agri-advisor-go/internal/storage"
)

// Pipeline is the query path without any transport: knowledge table,
// classifier and advisor, built from configuration.
type Pipeline struct {
	Advisor    *advisor.Service
	Classifier *intent.Classifier
	Table      knowledge.Table
	DB         *storage.DB // nil without AGRI_KNOWLEDGE_DB
}

// NewPipeline builds the pipeline. The classifier is returned unstarted;
// call Classifier.Start or Classifier.Init. m may be nil.
func NewPipeline(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log *logger.Logger) (*Pipeline, error) {
	p := &Pipeline{Table: knowledge.Builtin()}

	if cfg.KnowledgeDB != "" {
		if cfg.KnowledgeR2Key != "" {
			refreshKnowledge(ctx, cfg, log)
		}
		db, err := storage.New(ctx, cfg.KnowledgeDB)
		if err != nil {
			return nil, fmt.Errorf("knowledge database: %w", err)
		}
		p.DB = db
		if p.Table, err = knowledge.Load(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		n, _ := db.CountKnowledgeRows(ctx)
		log.InfoContext(ctx, "Knowledge overrides loaded", "path", cfg.KnowledgeDB, "rows", n)
	}
	policy, ok := knowledge.ParsePolicy(cfg.Classifier.MissingCropPolicy)
	if !ok {
		policy = knowledge.PolicyClarify
	}

	strategy, err := newStrategy(ctx, cfg, p.DB, m, log)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	p.Classifier, err = intent.NewClassifier(intent.Options{
		Strategy:    strategy,
		Timeout:     cfg.Classifier.Timeout,
		InitTimeout: cfg.Classifier.InitTimeout,
		Workers:     cfg.Classifier.Workers,
		Metrics:     m,
		Logger:      log,
		OnFailure:   reportFailure,
	})
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("classifier: %w", err)
	}

	p.Advisor, err = advisor.New(advisor.Options{
		Classifier:  p.Classifier,
		Extractor:   crop.NewExtractor(cfg.Classifier.FuzzyThreshold),
		Synthesizer: knowledge.NewSynthesizer(p.Table, policy),
		Metrics:     m,
		Logger:      log,
	})
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("advisor: %w", err)
	}
	return p, nil
}

// refreshKnowledge pulls the published knowledge snapshot into
// cfg.KnowledgeDB. Failures keep whatever local copy exists.
func refreshKnowledge(ctx context.Context, cfg *config.Config, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(ctx, config.ArtifactDownload)
	defer cancel()
	log = log.WithField("key", cfg.KnowledgeR2Key)

	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    cfg.R2.Endpoint,
		AccessKeyID: cfg.R2.AccessKeyID,
		SecretKey:   cfg.R2.SecretAccessKey,
		BucketName:  cfg.R2.Bucket,
	})
	if err == nil {
		var res snapshot.Result
		if res, err = snapshot.Fetch(ctx, client, cfg.KnowledgeR2Key, cfg.KnowledgeDB); err == nil {
			log.InfoContext(ctx, "Knowledge snapshot synced", "etag", res.ETag, "downloaded", res.Downloaded)
			return
		}
	}
	log.WithError(err).WarnContext(ctx, "Knowledge snapshot unavailable, using local copy")
}

// reportFailure forwards classifier degradations to Sentry.
func reportFailure(ctx context.Context, f *intent.Failure) {
	sentry.CaptureException(ctx, f, map[string]string{
		"strategy": f.Strategy,
		"reason":   string(f.Reason),
	})
}

// Close releases the strategy and the knowledge database.
func (p *Pipeline) Close() error {
	var errs []error
	if p.Classifier != nil {
		errs = append(errs, p.Classifier.Close())
	}
	if p.DB != nil {
		errs = append(errs, p.DB.Close())
	}
	return errors.Join(errs...)
}
