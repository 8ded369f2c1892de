package imports

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"club-import/common"
	"club-import/store"

	"github.com/sirupsen/logrus"
)

// DuplicateAction is the user's decision for a record that matched an
// existing entity
type DuplicateAction string

const (
	ActionSkip    DuplicateAction = "skip"
	ActionReplace DuplicateAction = "replace"
)

const cancelledMessage = "import cancelled before submission"

func ParseDuplicateAction(s string) (DuplicateAction, error) {
	if err := common.ValidateEnum("action", s, []string{string(ActionSkip), string(ActionReplace)}); err != nil {
		return "", err
	}
	return DuplicateAction(s), nil
}

// Applier is the part of the entity store a batched run writes through
type Applier interface {
	Create(ctx context.Context, entityType common.EntityType, fields common.Record) (*store.Entity, error)
	Update(ctx context.Context, entityType common.EntityType, id string, fields common.Record) (*store.Entity, error)
	Delete(ctx context.Context, entityType common.EntityType, id string) error
	AddTeamToCoach(ctx context.Context, coachID, teamID string) error
}

// Outcome summarizes a batched run. Created + Updated + Skipped + Deleted +
// len(Errors) always equals Total.
type Outcome struct {
	EntityType   common.EntityType    `json:"entity_type"`
	Total        int                  `json:"total"`
	Created      int                  `json:"created"`
	Updated      int                  `json:"updated"`
	Skipped      int                  `json:"skipped"`
	Deleted      int                  `json:"deleted"`
	Errors       []common.RecordError `json:"errors"`
	LinkFailures []common.RecordError `json:"link_failures,omitempty"`
	Cancelled    bool                 `json:"cancelled"`
}

func (o *Outcome) Errored() int {
	return len(o.Errors)
}

// Progress is reported once per settled batch
type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Deleted   int `json:"deleted"`
	Errored   int `json:"errored"`
}

type ProgressFunc func(Progress)

type CommitOptions struct {
	BatchSize  int
	Pacer      Pacer
	OnProgress ProgressFunc
	Log        logrus.FieldLogger
}

// OptionsFrom builds commit options from the configured batch settings
func OptionsFrom(batch common.BatchOptions, log logrus.FieldLogger) CommitOptions {
	return CommitOptions{
		BatchSize: batch.BatchSize,
		Pacer:     NewPacer(batch),
		Log:       log,
	}
}

func (o CommitOptions) logger() logrus.FieldLogger {
	if o.Log == nil {
		return logrus.StandardLogger()
	}
	return o.Log
}

// Percent is round(processed/total*100), held at 99 until every record has
// settled. An empty run is complete.
func Percent(processed, total int) int {
	if total <= 0 || processed >= total {
		return 100
	}
	p := int(math.Round(float64(processed) / float64(total) * 100))
	if p > 99 {
		p = 99
	}
	return p
}

// runBatches dispatches apply for indices [0, total) in consecutive batches.
// All calls of a batch run concurrently; settle is invoked with the batch
// bounds once every call has returned. It returns the number of indices
// dispatched and the context error if the run stopped early.
func runBatches(
	ctx context.Context,
	entityType common.EntityType,
	total int,
	opts CommitOptions,
	apply func(ctx context.Context, i int),
	settle func(start, end int) Progress,
) (int, error) {
	size := opts.BatchSize
	if size < 1 {
		size = 1
	}
	pacer := opts.Pacer
	if pacer == nil {
		pacer = NoDelay{}
	}
	report := func(p Progress) {
		if opts.OnProgress != nil {
			opts.OnProgress(p)
		}
	}

	if total == 0 {
		report(Progress{Percent: 100})
		return 0, nil
	}

	// in-flight store calls are allowed to finish after a cancel
	applyCtx := context.WithoutCancel(ctx)

	processed := 0
	batches := 0
	for start := 0; start < total; start += size {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		end := min(start+size, total)

		began := time.Now()
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				apply(applyCtx, i)
			}(i)
		}
		wg.Wait()
		common.ObserveBatch(entityType, time.Since(began))

		processed = end
		batches++
		p := settle(start, end)
		p.Processed = processed
		p.Total = total
		p.Percent = Percent(processed, total)
		report(p)

		opts.logger().WithFields(logrus.Fields{
			"entity_type": entityType,
			"batch":       batches,
			"processed":   processed,
			"total":       total,
		}).Debug("batch settled")

		if end < total {
			if err := pacer.Wait(ctx, batches); err != nil {
				return processed, err
			}
		}
	}
	return processed, nil
}

type resultKind int

const (
	resultFailed resultKind = iota
	resultCreated
	resultUpdated
	resultSkipped
	resultDeleted
)

type recordResult struct {
	kind    resultKind
	err     error
	linkErr error
}

func (o *Outcome) progress() Progress {
	return Progress{
		Created: o.Created,
		Updated: o.Updated,
		Skipped: o.Skipped,
		Deleted: o.Deleted,
		Errored: len(o.Errors),
	}
}

func (o *Outcome) fold(index, rowNumber int, name string, res recordResult) {
	switch res.kind {
	case resultCreated:
		o.Created++
	case resultUpdated:
		o.Updated++
	case resultSkipped:
		o.Skipped++
	case resultDeleted:
		o.Deleted++
	default:
		msg := "unknown error"
		if res.err != nil {
			msg = res.err.Error()
		}
		o.Errors = append(o.Errors, common.RecordError{Index: index, RowNumber: rowNumber, Name: name, Message: msg})
	}
	if res.linkErr != nil {
		o.LinkFailures = append(o.LinkFailures, common.RecordError{
			Index: index, RowNumber: rowNumber, Name: name, Message: res.linkErr.Error(),
		})
	}
}

func (o *Outcome) record(log logrus.FieldLogger, err error) {
	common.CountRecords(o.EntityType, "created", o.Created)
	common.CountRecords(o.EntityType, "updated", o.Updated)
	common.CountRecords(o.EntityType, "skipped", o.Skipped)
	common.CountRecords(o.EntityType, "deleted", o.Deleted)
	common.CountRecords(o.EntityType, "errored", len(o.Errors))

	entry := log.WithFields(logrus.Fields{
		"entity_type":   o.EntityType,
		"total":         o.Total,
		"created":       o.Created,
		"updated":       o.Updated,
		"skipped":       o.Skipped,
		"deleted":       o.Deleted,
		"errored":       len(o.Errors),
		"link_failures": len(o.LinkFailures),
	})
	if o.Cancelled {
		entry.WithError(err).Warn("batched run cancelled")
		return
	}
	entry.Info("batched run completed")
}

// Commit applies the planned records to the store in batches. Store failures are
// collected per record and never stop the run. There is no rollback.
func Commit(
	ctx context.Context,
	entityType common.EntityType,
	records []PlannedRecord,
	actions map[int]DuplicateAction,
	applier Applier,
	opts CommitOptions,
) *Outcome {
	outcome := &Outcome{EntityType: entityType, Total: len(records), Errors: []common.RecordError{}}
	results := make([]recordResult, len(records))

	apply := func(ctx context.Context, i int) {
		defer func() {
			if r := recover(); r != nil {
				results[i] = recordResult{kind: resultFailed, err: fmt.Errorf("%v", r)}
			}
		}()
		results[i] = commitRecord(ctx, entityType, &records[i], actions, applier, opts.logger())
	}
	settle := func(start, end int) Progress {
		for i := start; i < end; i++ {
			r := &records[i]
			outcome.fold(r.Index, r.RowNumber, r.Name, results[i])
		}
		return outcome.progress()
	}

	processed, err := runBatches(ctx, entityType, len(records), opts, apply, settle)
	if err != nil {
		outcome.Cancelled = true
		for i := processed; i < len(records); i++ {
			r := &records[i]
			outcome.Errors = append(outcome.Errors, common.RecordError{
				Index: r.Index, RowNumber: r.RowNumber, Name: r.Name, Message: cancelledMessage,
			})
		}
	}
	outcome.record(opts.logger(), err)
	return outcome
}

func commitRecord(
	ctx context.Context,
	entityType common.EntityType,
	rec *PlannedRecord,
	actions map[int]DuplicateAction,
	applier Applier,
	log logrus.FieldLogger,
) recordResult {
	fields := rec.Fields.Clone()
	if entityType == common.EntityPlayers && rec.TeamMatch != nil && !fields.Has("team_id") {
		fields["team_id"] = rec.TeamMatch.ID
	}

	if rec.Duplicate != nil {
		action, ok := actions[rec.Index]
		if !ok || action != ActionReplace {
			return recordResult{kind: resultSkipped}
		}
		if _, err := applier.Update(ctx, entityType, rec.Duplicate.ID, fields); err != nil {
			return recordResult{kind: resultFailed, err: err}
		}
		return recordResult{kind: resultUpdated}
	}

	created, err := applier.Create(ctx, entityType, fields)
	if err != nil {
		return recordResult{kind: resultFailed, err: err}
	}

	res := recordResult{kind: resultCreated}
	if entityType == common.EntityTeams && rec.CoachMatch != nil {
		if err := applier.AddTeamToCoach(ctx, rec.CoachMatch.ID, created.ID); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"team_id":  created.ID,
				"coach_id": rec.CoachMatch.ID,
			}).Warn("failed to link team to coach")
			res.linkErr = err
		}
	}
	return res
}
