package processing

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fujao/internal/model"
	"fujao/internal/storage"
	"fujao/internal/worker"
)

type syncObjectStore struct {
	done chan string
}

func (s *syncObjectStore) UploadPhoto(_ context.Context, objectKey string, _ []byte) error {
	s.done <- objectKey
	return nil
}

func TestPoolArchivesSubmittedReports(t *testing.T) {
	store := storage.NewMemoryStore()

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	b64 := base64.StdEncoding.EncodeToString(buf.Bytes())
	animal := &model.Animal{Nome: "Rex", Perdido: true, UsuarioID: 1, ImagemBase64: &b64}
	if err := store.CreateAnimal(context.Background(), animal); err != nil {
		t.Fatalf("create: %v", err)
	}

	objects := &syncObjectStore{done: make(chan string, 1)}
	pool := New(worker.NewArchiver(store, objects, zerolog.Nop()), 1, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	pool.Submit(animal.ID)

	select {
	case <-objects.done:
	case <-time.After(5 * time.Second):
		t.Fatal("archive job never ran")
	}
}

func TestPoolDropsJobsWhenFull(t *testing.T) {
	store := storage.NewMemoryStore()
	pool := New(worker.NewArchiver(store, nil, zerolog.Nop()), 1, zerolog.Nop())

	// Not started: the buffer fills and further submissions are dropped
	// without blocking.
	for i := int64(0); i < 100; i++ {
		pool.Submit(i)
	}
}

func TestNewClampsWorkerCount(t *testing.T) {
	pool := New(nil, 0, zerolog.Nop())
	if pool.workers != 1 {
		t.Fatalf("workers = %d, want 1", pool.workers)
	}
}
