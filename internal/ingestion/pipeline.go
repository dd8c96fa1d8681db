// Package ingestion persists batches of raw job records, one unit of work per record.
package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/jobmarket/internal/db"
	"github.com/jonathan/jobmarket/internal/parsing"
	"github.com/jonathan/jobmarket/internal/resolver"
	"github.com/sirupsen/logrus"
)

// Store runs units of work. A unit commits when fn returns nil and rolls
// back otherwise.
type Store interface {
	InUnit(ctx context.Context, fn func(q db.Queries) error) error
}

// Options configures failure handling.
type Options struct {
	// AbortOnFirstError stops the batch at the first failed record. When
	// false, a failed record is rolled back, recorded and skipped.
	AbortOnFirstError bool
}

// Pipeline ingests raw records into a store.
type Pipeline struct {
	store      Store
	normalizer *parsing.Normalizer
	log        logrus.FieldLogger
	opts       Options
}

// New creates a Pipeline.
func New(store Store, normalizer *parsing.Normalizer, log logrus.FieldLogger, opts Options) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		store:      store,
		normalizer: normalizer,
		log:        log,
		opts:       opts,
	}
}

type outcome int

const (
	outcomeAdded outcome = iota
	outcomeDuplicate
	outcomeRejected
)

type recordResult struct {
	outcome outcome
	jobID   uuid.UUID
	skills  int
	reason  string
}

// Ingest processes records in input order. It returns the summary of every
// record handled so far; the error is a *BatchError when the batch stopped
// early, either on cancellation or on a failure under AbortOnFirstError.
func (p *Pipeline) Ingest(ctx context.Context, records []parsing.RawRecord) (*Summary, error) {
	summary := newSummary(len(records))
	defer summary.finish()

	for i, raw := range records {
		if err := ctx.Err(); err != nil {
			p.log.WithFields(logrus.Fields{"processed": i, "total": len(records)}).Warn("ingestion cancelled")
			return summary, &BatchError{Processed: i, Total: len(records), Err: err}
		}

		url := parsing.ExternalURL(raw)
		log := p.log.WithFields(logrus.Fields{"index": i, "job_url": url})

		res, stage, err := p.ingestRecord(ctx, log, raw)
		if err != nil {
			recErr := &RecordError{Index: i, URL: url, Stage: stage, Err: err}
			summary.Failed++
			summary.Errors = append(summary.Errors, recErr)
			log.WithField("stage", stage).WithError(err).Error("record failed")

			if p.opts.AbortOnFirstError {
				return summary, &BatchError{Processed: i, Total: len(records), Err: recErr}
			}
			continue
		}

		switch res.outcome {
		case outcomeAdded:
			summary.Added++
			log.WithFields(logrus.Fields{"job_id": res.jobID, "skills": res.skills}).Debug("record added")
		case outcomeDuplicate:
			summary.Duplicates++
			log.Debug("duplicate record skipped")
		case outcomeRejected:
			summary.Rejected++
			summary.Rejections = append(summary.Rejections, Rejection{Index: i, URL: url, Reason: res.reason})
			log.WithField("reason", res.reason).Warn("record rejected")
		}
	}

	p.log.WithFields(logrus.Fields{
		"total":      summary.Total,
		"added":      summary.Added,
		"duplicates": summary.Duplicates,
		"rejected":   summary.Rejected,
		"failed":     summary.Failed,
	}).Info("ingestion finished")

	return summary, nil
}

// ingestRecord runs one record in its own unit of work and reports the stage
// it reached.
func (p *Pipeline) ingestRecord(ctx context.Context, log logrus.FieldLogger, raw parsing.RawRecord) (recordResult, string, error) {
	var (
		res   recordResult
		stage = StageDedup
	)

	err := p.store.InUnit(ctx, func(q db.Queries) error {
		if url := parsing.ExternalURL(raw); url != "" {
			exists, err := q.JobURLExists(ctx, url)
			if err != nil {
				return fmt.Errorf("failed to check job url: %w", err)
			}
			if exists {
				res = recordResult{outcome: outcomeDuplicate}
				return nil
			}
		}

		stage = StageNormalize
		job, err := p.normalizer.Normalize(raw)
		if err != nil {
			var rejected *parsing.RejectedRecord
			if errors.As(err, &rejected) {
				res = recordResult{outcome: outcomeRejected, reason: rejected.Reason}
				return nil
			}
			return err
		}

		log := log.WithField("company", job.Company)
		r := resolver.New(q, log)

		stage = StageResolveCompany
		companyID, err := r.Company(ctx, job.Company)
		if err != nil {
			return err
		}

		stage = StageResolveLocation
		locationID, err := r.Location(ctx, job.City, job.Province)
		if err != nil {
			return err
		}

		stage = StageInsertPosting
		jobID, err := q.InsertJobPosting(ctx, db.JobPostingInput{
			Title:       job.Title,
			CompanyID:   companyID,
			LocationID:  locationID,
			SalaryMin:   job.SalaryMin,
			SalaryMax:   job.SalaryMax,
			PostedDate:  job.PostedDate,
			IsRemote:    job.IsRemote,
			URL:         job.URL,
			Description: job.Description,
		})
		if errors.Is(err, db.ErrConflict) {
			return errDuplicateRace
		}
		if err != nil {
			return fmt.Errorf("failed to insert job posting: %w", err)
		}

		stage = StageLinkSkills
		for _, name := range job.Skills {
			skillID, err := r.Skill(ctx, name)
			if err != nil {
				return err
			}
			if err := q.InsertJobSkill(ctx, jobID, skillID); err != nil {
				return fmt.Errorf("failed to link skill %q: %w", name, err)
			}
		}

		stage = StageCommit
		res = recordResult{outcome: outcomeAdded, jobID: jobID, skills: len(job.Skills)}
		return nil
	})

	if errors.Is(err, errDuplicateRace) {
		log.Debug("job url stored concurrently, counting as duplicate")
		return recordResult{outcome: outcomeDuplicate}, stage, nil
	}
	if err != nil {
		return recordResult{}, stage, err
	}
	return res, stage, nil
}
