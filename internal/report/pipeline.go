// Package report implements the lost-animal submission pipeline: it turns
// user-entered fields plus device capabilities into a validated record and
// hands it to the transport layer.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"fujao/internal/api"
	"fujao/internal/device"
	"fujao/internal/localstore"
	"fujao/internal/model"
)

// maxSubmitImageLen is the submit-time ceiling on the attached image's base64
// payload. It is stricter than the acquisition-time ceiling to leave margin
// for encoding overhead; an image between the two limits is dropped from the
// payload with a warning rather than blocking the report.
const maxSubmitImageLen = 800_000

// Validation and submission failures surfaced to the user.
var (
	ErrMissingName         = errors.New("preencha o nome do animal")
	ErrMissingLocation     = errors.New("permita o acesso à localização")
	ErrLocationUnavailable = errors.New("não foi possível obter sua localização atual; permita o acesso à localização e tente novamente")
)

// Draft is the in-progress report. Latitude/Longitude double as the
// last-known coordinate: a new successful read always overwrites them, and no
// history is kept.
type Draft struct {
	Nome      string            `json:"nome"`
	Especie   string            `json:"especie"`
	Raca      string            `json:"raca"`
	Tamanho   string            `json:"tamanho"`
	Cor       string            `json:"cor"`
	Descricao string            `json:"descricao"`
	Latitude  *float64          `json:"latitude"`
	Longitude *float64          `json:"longitude"`
	Imagem    *model.ImageAsset `json:"imagem"`
}

// Result is a successful submission.
type Result struct {
	Animal *model.Animal
	// NoPhoto is set when the attached image exceeded the submit-time ceiling
	// and the report was saved without it.
	NoPhoto bool
}

// Pipeline orchestrates one report from field entry through submission. Draft
// state survives transport failures (persisted in the local store) so a retry
// does not re-enter data, and is fully reset on success.
type Pipeline struct {
	api      *api.Client
	location device.LocationProvider
	gate     *device.Gate
	store    *localstore.Store
	log      zerolog.Logger
	draft    Draft
}

// New creates a Pipeline and restores a persisted draft when one exists.
func New(client *api.Client, location device.LocationProvider, gate *device.Gate, store *localstore.Store, log zerolog.Logger) *Pipeline {
	p := &Pipeline{
		api:      client,
		location: location,
		gate:     gate,
		store:    store,
		log:      log,
	}
	if store != nil {
		if data, err := store.LoadDraft(); err == nil {
			if err := json.Unmarshal(data, &p.draft); err != nil {
				log.Warn().Err(err).Msg("discarding unreadable draft")
				p.draft = Draft{}
			}
		}
	}
	return p
}

// Draft exposes the current draft for editing and display.
func (p *Pipeline) Draft() *Draft {
	return &p.draft
}

// Persist writes the draft to the local store.
func (p *Pipeline) Persist() error {
	if p.store == nil {
		return nil
	}
	data, err := json.Marshal(&p.draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return p.store.SaveDraft(data)
}

// AcquireLocation requests the location permission and, if granted, reads the
// current position and overwrites the last-known coordinate unconditionally.
// On denial the coordinate state is left untouched.
func (p *Pipeline) AcquireLocation(ctx context.Context) error {
	status, err := p.gate.Request(device.CapLocation, "Precisamos da sua localização para cadastrar o animal perdido.")
	if err != nil {
		return err
	}
	if status != device.Granted {
		return device.ErrPermissionDenied
	}
	coord, err := p.location.Current(ctx, device.AccuracyBalanced)
	if err != nil {
		return fmt.Errorf("obter localização: %w", err)
	}
	p.setCoordinate(coord)
	return p.Persist()
}

// AttachImage requests the source's capability, acquires and prepares the
// photo and attaches it to the draft. A rejected asset (denied, cancelled or
// oversized) leaves any previously attached image untouched.
func (p *Pipeline) AttachImage(ctx context.Context, src device.ImageSource) error {
	rationale := "Precisamos de permissão para acessar suas fotos para adicionar imagens dos animais."
	if src.Capability() == device.CapCamera {
		rationale = "Precisamos de permissão para acessar a câmera para tirar fotos dos animais."
	}
	status, err := p.gate.Request(src.Capability(), rationale)
	if err != nil {
		return err
	}
	if status != device.Granted {
		return device.ErrPermissionDenied
	}
	asset, err := src.Acquire(ctx)
	if err != nil {
		return err
	}
	p.draft.Imagem = asset
	return p.Persist()
}

// Validate checks the required fields: a non-empty name and a coordinate.
// Coordinates are checked for presence, not truthiness, so 0.0 is accepted.
func (p *Pipeline) Validate() error {
	if strings.TrimSpace(p.draft.Nome) == "" {
		return ErrMissingName
	}
	if p.draft.Latitude == nil || p.draft.Longitude == nil {
		return ErrMissingLocation
	}
	return nil
}

// Submit validates, refreshes the coordinate best-effort, enforces the image
// ceiling, assembles the record and sends it. On success the draft is fully
// reset; on transport failure it is preserved for retry.
func (p *Pipeline) Submit(ctx context.Context, userID int64) (*Result, error) {
	if strings.TrimSpace(p.draft.Nome) == "" {
		return nil, ErrMissingName
	}

	// One more read at high accuracy so the pin is as fresh as possible.
	// Failure here is never fatal; the last-known coordinate stands in, and
	// only a draft that never had a coordinate at all is rejected.
	p.refreshLocation(ctx)

	if p.draft.Latitude == nil || p.draft.Longitude == nil {
		return nil, ErrLocationUnavailable
	}

	var imageB64 *string
	noPhoto := false
	if p.draft.Imagem != nil {
		if len(p.draft.Imagem.Base64) > maxSubmitImageLen {
			p.log.Warn().Int("base64_len", len(p.draft.Imagem.Base64)).
				Msg("image over submit ceiling, sending report without photo")
			noPhoto = true
		} else {
			b64 := p.draft.Imagem.Base64
			imageB64 = &b64
		}
	}

	animal := &model.Animal{
		Nome:         strings.TrimSpace(p.draft.Nome),
		Especie:      defaultIfEmpty(p.draft.Especie, DefaultSpecies),
		Raca:         optional(p.draft.Raca),
		Tamanho:      optional(p.draft.Tamanho),
		Cor:          optional(p.draft.Cor),
		Descricao:    optional(p.draft.Descricao),
		Latitude:     *p.draft.Latitude,
		Longitude:    *p.draft.Longitude,
		Perdido:      true,
		UsuarioID:    userID,
		ImagemBase64: imageB64,
	}

	created, err := p.api.CreateAnimal(ctx, animal)
	if err != nil {
		// Keep the draft so the user can retry without re-entering data.
		if perr := p.Persist(); perr != nil {
			p.log.Warn().Err(perr).Msg("could not persist draft after failed submit")
		}
		return nil, err
	}

	if err := p.Reset(); err != nil {
		p.log.Warn().Err(err).Msg("could not clear draft after submit")
	}
	return &Result{Animal: created, NoPhoto: noPhoto}, nil
}

// Reset discards the draft, in memory and on disk.
func (p *Pipeline) Reset() error {
	p.draft = Draft{}
	if p.store == nil {
		return nil
	}
	return p.store.ClearDraft()
}

// refreshLocation re-requests permission and re-reads the position right
// before submission. Any failure is swallowed: permission revoked mid-flow or
// a device error simply leaves the previous coordinate in place.
func (p *Pipeline) refreshLocation(ctx context.Context) {
	status, err := p.gate.Request(device.CapLocation, "")
	if err != nil || status != device.Granted {
		p.log.Debug().Err(err).Msg("location refresh skipped")
		return
	}
	coord, err := p.location.Current(ctx, device.AccuracyHigh)
	if err != nil {
		p.log.Debug().Err(err).Msg("location refresh failed, using last-known coordinate")
		return
	}
	p.setCoordinate(coord)
}

func (p *Pipeline) setCoordinate(coord model.GeoCoordinate) {
	lat, lon := coord.Latitude, coord.Longitude
	p.draft.Latitude = &lat
	p.draft.Longitude = &lon
}

func optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func defaultIfEmpty(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}
