// Package queue defines the background jobs exchanged between the dev server
// and the worker.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// ArchiveImageTask is scheduled each time a report arrives with an inline
// photo, so the worker can copy it into object storage.
const ArchiveImageTask = "animal:archive_image"

// ArchivePayload tells the worker which report to archive.
type ArchivePayload struct {
	AnimalID int64 `json:"animal_id"`
}

// Enqueuer adapts the asynq client to the server's Archiver interface.
type Enqueuer struct {
	Client *asynq.Client
	Log    zerolog.Logger
}

// Submit enqueues the archive job, logging instead of failing the request
// when the queue is unavailable.
func (e *Enqueuer) Submit(animalID int64) {
	if err := EnqueueArchive(context.Background(), e.Client, ArchivePayload{AnimalID: animalID}); err != nil {
		e.Log.Error().Err(err).Int64("animal_id", animalID).Msg("enqueue archive")
	}
}

// EnqueueArchive enqueues an image-archival job.
func EnqueueArchive(ctx context.Context, client *asynq.Client, payload ArchivePayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(ArchiveImageTask, data)
	if _, err := client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue archive task: %w", err)
	}
	return nil
}
