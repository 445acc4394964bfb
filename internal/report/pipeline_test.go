package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"fujao/internal/api"
	"fujao/internal/device"
	"fujao/internal/localstore"
	"fujao/internal/model"
)

type stubLocation struct {
	coord    model.GeoCoordinate
	err      error
	highErr  error
	requests []device.Accuracy
}

func (s *stubLocation) Current(_ context.Context, accuracy device.Accuracy) (model.GeoCoordinate, error) {
	s.requests = append(s.requests, accuracy)
	if s.err != nil {
		return model.GeoCoordinate{}, s.err
	}
	if accuracy == device.AccuracyHigh && s.highErr != nil {
		return model.GeoCoordinate{}, s.highErr
	}
	return s.coord, nil
}

type stubImageSource struct {
	capability device.Capability
	asset      *model.ImageAsset
	err        error
}

func (s stubImageSource) Capability() device.Capability { return s.capability }

func (s stubImageSource) Acquire(context.Context) (*model.ImageAsset, error) {
	return s.asset, s.err
}

func grantAll(device.Capability, string) bool { return true }

func openStore(t *testing.T) *localstore.Store {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "estado.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

type capture struct {
	calls int64
	body  atomic.Value // model.Animal
}

func captureServer(t *testing.T, status int) (*capture, *api.Client) {
	t.Helper()
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&c.calls, 1)
		var animal model.Animal
		if err := json.NewDecoder(r.Body).Decode(&animal); err != nil {
			t.Errorf("decode request: %v", err)
		}
		c.body.Store(animal)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusCreated {
			animal.ID = 42
			json.NewEncoder(w).Encode(animal)
		} else {
			w.Write([]byte(`{"message":"erro interno"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return c, api.New(srv.URL, zerolog.Nop())
}

func (c *capture) animal(t *testing.T) model.Animal {
	t.Helper()
	v := c.body.Load()
	if v == nil {
		t.Fatal("no request captured")
	}
	return v.(model.Animal)
}

func TestValidateRequiresName(t *testing.T) {
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	p := New(nil, &stubLocation{}, gate, store, zerolog.Nop())

	p.Draft().Nome = "   "
	p.setCoordinate(model.GeoCoordinate{Latitude: -15.79, Longitude: -47.89})

	if err := p.Validate(); !errors.Is(err, ErrMissingName) {
		t.Fatalf("err = %v, want ErrMissingName", err)
	}
}

func TestValidateRequiresCoordinate(t *testing.T) {
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	p := New(nil, &stubLocation{}, gate, store, zerolog.Nop())

	p.Draft().Nome = "Rex"

	if err := p.Validate(); !errors.Is(err, ErrMissingLocation) {
		t.Fatalf("err = %v, want ErrMissingLocation", err)
	}
}

func TestValidateAcceptsZeroCoordinate(t *testing.T) {
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	p := New(nil, &stubLocation{}, gate, store, zerolog.Nop())

	p.Draft().Nome = "Rex"
	p.setCoordinate(model.GeoCoordinate{Latitude: 0, Longitude: 0})

	if err := p.Validate(); err != nil {
		t.Fatalf("coordinate 0,0 rejected: %v", err)
	}
}

func TestSubmitValidationFailsBeforeTransport(t *testing.T) {
	rec, client := captureServer(t, http.StatusCreated)
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	p := New(client, &stubLocation{}, gate, store, zerolog.Nop())

	if _, err := p.Submit(context.Background(), 1); !errors.Is(err, ErrMissingName) {
		t.Fatalf("err = %v, want ErrMissingName", err)
	}
	if n := atomic.LoadInt64(&rec.calls); n != 0 {
		t.Fatalf("server reached %d times, want 0", n)
	}
}

func TestSubmitWithoutAnyCoordinate(t *testing.T) {
	rec, client := captureServer(t, http.StatusCreated)
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	loc := &stubLocation{err: device.ErrNoLocationProvider}
	p := New(client, loc, gate, store, zerolog.Nop())

	p.Draft().Nome = "Rex"

	_, err := p.Submit(context.Background(), 1)
	if !errors.Is(err, ErrLocationUnavailable) {
		t.Fatalf("err = %v, want ErrLocationUnavailable", err)
	}
	if n := atomic.LoadInt64(&rec.calls); n != 0 {
		t.Fatalf("server reached %d times, want 0", n)
	}
}

func TestSubmitRefreshRecoversMissingCoordinate(t *testing.T) {
	rec, client := captureServer(t, http.StatusCreated)
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	loc := &stubLocation{coord: model.GeoCoordinate{Latitude: -15.79, Longitude: -47.89}}
	p := New(client, loc, gate, store, zerolog.Nop())

	// No AcquireLocation beforehand: the submit-time read supplies the pin.
	p.Draft().Nome = "Rex"

	if _, err := p.Submit(context.Background(), 1); err != nil {
		t.Fatalf("submit: %v", err)
	}
	sent := rec.animal(t)
	if sent.Latitude != -15.79 || sent.Longitude != -47.89 {
		t.Fatalf("sent coordinate %v,%v", sent.Latitude, sent.Longitude)
	}
}

func TestAcquireLocationDeniedLeavesStateUntouched(t *testing.T) {
	store := openStore(t)
	deny := func(device.Capability, string) bool { return false }
	gate := device.NewGate(store, deny)
	loc := &stubLocation{coord: model.GeoCoordinate{Latitude: 1, Longitude: 2}}
	p := New(nil, loc, gate, store, zerolog.Nop())

	err := p.AcquireLocation(context.Background())
	if !errors.Is(err, device.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if p.Draft().Latitude != nil || p.Draft().Longitude != nil {
		t.Fatal("denied request must not set a coordinate")
	}
	if len(loc.requests) != 0 {
		t.Fatal("provider consulted despite denial")
	}
}

func TestAcquireLocationOverwritesPreviousCoordinate(t *testing.T) {
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	loc := &stubLocation{coord: model.GeoCoordinate{Latitude: -15.79, Longitude: -47.89}}
	p := New(nil, loc, gate, store, zerolog.Nop())

	p.setCoordinate(model.GeoCoordinate{Latitude: 10, Longitude: 10})
	if err := p.AcquireLocation(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *p.Draft().Latitude != -15.79 || *p.Draft().Longitude != -47.89 {
		t.Fatalf("coordinate not overwritten: %v,%v", *p.Draft().Latitude, *p.Draft().Longitude)
	}
}

func TestSubmitRefreshFailureUsesLastKnownCoordinate(t *testing.T) {
	rec, client := captureServer(t, http.StatusCreated)
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	loc := &stubLocation{
		coord:   model.GeoCoordinate{Latitude: -15.79, Longitude: -47.89},
		highErr: errors.New("gps timeout"),
	}
	p := New(client, loc, gate, store, zerolog.Nop())

	p.Draft().Nome = "Rex"
	if err := p.AcquireLocation(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	res, err := p.Submit(context.Background(), 7)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Animal.ID != 42 {
		t.Fatalf("created id = %d", res.Animal.ID)
	}
	sent := rec.animal(t)
	if sent.Latitude != -15.79 || sent.Longitude != -47.89 {
		t.Fatalf("sent coordinate %v,%v, want last-known", sent.Latitude, sent.Longitude)
	}
}

func TestSubmitRefreshOverwritesCoordinate(t *testing.T) {
	rec, client := captureServer(t, http.StatusCreated)
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	loc := &stubLocation{coord: model.GeoCoordinate{Latitude: 1, Longitude: 2}}
	p := New(client, loc, gate, store, zerolog.Nop())

	p.Draft().Nome = "Rex"
	p.setCoordinate(model.GeoCoordinate{Latitude: 50, Longitude: 60})

	if _, err := p.Submit(context.Background(), 7); err != nil {
		t.Fatalf("submit: %v", err)
	}
	sent := rec.animal(t)
	if sent.Latitude != 1 || sent.Longitude != 2 {
		t.Fatalf("sent coordinate %v,%v, want refreshed read", sent.Latitude, sent.Longitude)
	}
	last := loc.requests[len(loc.requests)-1]
	if last != device.AccuracyHigh {
		t.Fatalf("refresh accuracy = %v, want high", last)
	}
}

func TestSubmitDropsOversizedImageButSucceeds(t *testing.T) {
	rec, client := captureServer(t, http.StatusCreated)
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	p := New(client, &stubLocation{coord: model.GeoCoordinate{Latitude: 1, Longitude: 2}}, gate, store, zerolog.Nop())

	p.Draft().Nome = "Rex"
	p.setCoordinate(model.GeoCoordinate{Latitude: 1, Longitude: 2})
	// Over the submit ceiling but under the acquisition ceiling.
	p.Draft().Imagem = &model.ImageAsset{Base64: strings.Repeat("A", maxSubmitImageLen+1)}

	res, err := p.Submit(context.Background(), 7)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.NoPhoto {
		t.Fatal("NoPhoto not flagged")
	}
	if sent := rec.animal(t); sent.ImagemBase64 != nil {
		t.Fatal("oversized image still sent")
	}
}

func TestSubmitIncludesImageUnderCeiling(t *testing.T) {
	rec, client := captureServer(t, http.StatusCreated)
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	p := New(client, &stubLocation{coord: model.GeoCoordinate{Latitude: 1, Longitude: 2}}, gate, store, zerolog.Nop())

	p.Draft().Nome = "Rex"
	p.setCoordinate(model.GeoCoordinate{Latitude: 1, Longitude: 2})
	p.Draft().Imagem = &model.ImageAsset{Base64: "Zm90bw=="}

	res, err := p.Submit(context.Background(), 7)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.NoPhoto {
		t.Fatal("NoPhoto flagged for small image")
	}
	sent := rec.animal(t)
	if sent.ImagemBase64 == nil || *sent.ImagemBase64 != "Zm90bw==" {
		t.Fatalf("image not sent: %v", sent.ImagemBase64)
	}
}

func TestSubmitNormalizesFields(t *testing.T) {
	rec, client := captureServer(t, http.StatusCreated)
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	p := New(client, &stubLocation{coord: model.GeoCoordinate{Latitude: 1, Longitude: 2}}, gate, store, zerolog.Nop())

	d := p.Draft()
	d.Nome = "  Rex  "
	d.Especie = ""
	d.Raca = "   "
	d.Descricao = "  manso, coleira azul  "
	p.setCoordinate(model.GeoCoordinate{Latitude: 1, Longitude: 2})

	if _, err := p.Submit(context.Background(), 7); err != nil {
		t.Fatalf("submit: %v", err)
	}
	sent := rec.animal(t)
	if sent.Nome != "Rex" {
		t.Fatalf("nome = %q", sent.Nome)
	}
	if sent.Especie != DefaultSpecies {
		t.Fatalf("especie = %q, want default", sent.Especie)
	}
	if sent.Raca != nil {
		t.Fatalf("blank raca sent as %q", *sent.Raca)
	}
	if sent.Descricao == nil || *sent.Descricao != "manso, coleira azul" {
		t.Fatalf("descricao = %v", sent.Descricao)
	}
	if !sent.Perdido {
		t.Fatal("perdido must be true")
	}
	if sent.UsuarioID != 7 {
		t.Fatalf("usuario_id = %d", sent.UsuarioID)
	}
}

func TestSubmitSuccessResetsDraft(t *testing.T) {
	_, client := captureServer(t, http.StatusCreated)
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	p := New(client, &stubLocation{coord: model.GeoCoordinate{Latitude: 1, Longitude: 2}}, gate, store, zerolog.Nop())

	p.Draft().Nome = "Rex"
	p.setCoordinate(model.GeoCoordinate{Latitude: 1, Longitude: 2})
	if err := p.Persist(); err != nil {
		t.Fatalf("persist: %v", err)
	}

	if _, err := p.Submit(context.Background(), 7); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if p.Draft().Nome != "" || p.Draft().Latitude != nil {
		t.Fatal("in-memory draft not reset")
	}
	if _, err := store.LoadDraft(); !errors.Is(err, localstore.ErrNotFound) {
		t.Fatalf("persisted draft still present: %v", err)
	}
}

func TestSubmitTransportFailurePreservesDraft(t *testing.T) {
	_, client := captureServer(t, http.StatusInternalServerError)
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	p := New(client, &stubLocation{coord: model.GeoCoordinate{Latitude: 1, Longitude: 2}}, gate, store, zerolog.Nop())

	p.Draft().Nome = "Rex"
	p.Draft().Cor = "Caramelo"
	p.setCoordinate(model.GeoCoordinate{Latitude: 1, Longitude: 2})

	_, err := p.Submit(context.Background(), 7)
	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}

	// A fresh pipeline over the same store restores the draft for retry.
	restored := New(client, &stubLocation{}, gate, store, zerolog.Nop())
	if restored.Draft().Nome != "Rex" || restored.Draft().Cor != "Caramelo" {
		t.Fatalf("draft not restored: %+v", restored.Draft())
	}
	if restored.Draft().Latitude == nil || *restored.Draft().Latitude != 1 {
		t.Fatal("coordinate not restored")
	}
}

func TestAttachImageFailureKeepsPreviousImage(t *testing.T) {
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	p := New(nil, &stubLocation{}, gate, store, zerolog.Nop())

	p.Draft().Imagem = &model.ImageAsset{Base64: "anterior"}

	src := stubImageSource{capability: device.CapMediaLibrary, err: device.ErrOversizedAsset}
	if err := p.AttachImage(context.Background(), src); !errors.Is(err, device.ErrOversizedAsset) {
		t.Fatalf("err = %v, want ErrOversizedAsset", err)
	}
	if p.Draft().Imagem == nil || p.Draft().Imagem.Base64 != "anterior" {
		t.Fatal("previous image clobbered by failed acquisition")
	}
}

func TestAttachImageDenied(t *testing.T) {
	store := openStore(t)
	deny := func(device.Capability, string) bool { return false }
	gate := device.NewGate(store, deny)
	p := New(nil, &stubLocation{}, gate, store, zerolog.Nop())

	src := stubImageSource{capability: device.CapCamera, asset: &model.ImageAsset{Base64: "x"}}
	if err := p.AttachImage(context.Background(), src); !errors.Is(err, device.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if p.Draft().Imagem != nil {
		t.Fatal("image attached despite denial")
	}
}

func TestAttachImageReplacesImage(t *testing.T) {
	store := openStore(t)
	gate := device.NewGate(store, grantAll)
	p := New(nil, &stubLocation{}, gate, store, zerolog.Nop())

	src := stubImageSource{capability: device.CapMediaLibrary, asset: &model.ImageAsset{URI: "/tmp/a.jpg", Base64: "bm92bw=="}}
	if err := p.AttachImage(context.Background(), src); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if p.Draft().Imagem == nil || p.Draft().Imagem.Base64 != "bm92bw==" {
		t.Fatal("image not attached")
	}
}

func TestBreedsFollowSpecies(t *testing.T) {
	dog := Breeds("Cachorro")
	cat := Breeds("Gato")
	if len(dog) == 0 || len(cat) == 0 {
		t.Fatal("empty breed catalog")
	}
	if dog[1] == cat[1] {
		t.Fatal("breed catalogs not species-specific")
	}
	if !ValidSpecies("Gato") || ValidSpecies("Dinossauro") {
		t.Fatal("species validation broken")
	}
}
