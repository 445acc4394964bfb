// Package worker turns inline report photos into archived objects: it decodes
// the base64 image a report arrived with and copies the JPEG into object
// storage, recording the object key back on the record.
package worker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"fujao/internal/model"
	"fujao/internal/queue"
)

// AnimalStore is the slice of the store the archiver needs.
type AnimalStore interface {
	AnimalByID(ctx context.Context, id int64) (*model.Animal, error)
	SetImageObject(ctx context.Context, id int64, objectKey string) error
}

// ObjectStore is where decoded photos end up. Nil disables the upload, in
// which case the archiver only validates the image.
type ObjectStore interface {
	UploadPhoto(ctx context.Context, objectKey string, data []byte) error
}

// Archiver holds the pieces needed to archive one report photo.
type Archiver struct {
	store   AnimalStore
	objects ObjectStore
	log     zerolog.Logger
}

// NewArchiver constructs an Archiver.
func NewArchiver(store AnimalStore, objects ObjectStore, log zerolog.Logger) *Archiver {
	return &Archiver{store: store, objects: objects, log: log}
}

// Archive decodes the report's inline photo and uploads it. Reports without a
// photo are a no-op.
func (a *Archiver) Archive(ctx context.Context, animalID int64) error {
	animal, err := a.store.AnimalByID(ctx, animalID)
	if err != nil {
		return fmt.Errorf("load animal %d: %w", animalID, err)
	}
	if animal.ImagemBase64 == nil || *animal.ImagemBase64 == "" {
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(*animal.ImagemBase64)
	if err != nil {
		return fmt.Errorf("decode image of animal %d: %w", animalID, err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid image on animal %d: %w", animalID, err)
	}

	if a.objects == nil {
		a.log.Debug().Int64("animal_id", animalID).Str("format", format).
			Int("width", cfg.Width).Int("height", cfg.Height).
			Msg("no object store configured, image validated only")
		return nil
	}

	objectKey := fmt.Sprintf("animais/%s.jpg", uuid.NewString())
	if err := a.objects.UploadPhoto(ctx, objectKey, data); err != nil {
		return fmt.Errorf("upload image of animal %d: %w", animalID, err)
	}
	if err := a.store.SetImageObject(ctx, animalID, objectKey); err != nil {
		return fmt.Errorf("record object key for animal %d: %w", animalID, err)
	}
	a.log.Info().Int64("animal_id", animalID).Str("object_key", objectKey).
		Int("bytes", len(data)).Msg("report photo archived")
	return nil
}

// Handler registers the archive job on an asynq mux for the worker binary.
func (a *Archiver) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.ArchiveImageTask, a.handleArchive)
	return mux
}

func (a *Archiver) handleArchive(ctx context.Context, task *asynq.Task) error {
	var payload queue.ArchivePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := a.Archive(ctx, payload.AnimalID); err != nil {
		a.log.Error().Err(err).Int64("animal_id", payload.AnimalID).Msg("archive failed")
		return err
	}
	return nil
}
