package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"fujao/internal/model"
	"fujao/internal/repository"
)

// animalRequest uses pointers for the coordinates so a missing field is
// distinguishable from a legitimate 0.0.
type animalRequest struct {
	Nome         string   `json:"nome"`
	Especie      string   `json:"especie"`
	Raca         *string  `json:"raca"`
	Tamanho      *string  `json:"tamanho"`
	Cor          *string  `json:"cor"`
	Descricao    *string  `json:"descricao"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Perdido      *bool    `json:"perdido"`
	UsuarioID    int64    `json:"usuario_id"`
	ImagemBase64 *string  `json:"imagem_base64"`
}

func (req *animalRequest) validate() string {
	if strings.TrimSpace(req.Nome) == "" {
		return "preencha o nome do animal"
	}
	if req.Latitude == nil || req.Longitude == nil {
		return "latitude e longitude são obrigatórias"
	}
	if req.UsuarioID == 0 {
		return "usuario_id é obrigatório"
	}
	return ""
}

func (req *animalRequest) toModel() *model.Animal {
	perdido := true
	if req.Perdido != nil {
		perdido = *req.Perdido
	}
	return &model.Animal{
		Nome:         strings.TrimSpace(req.Nome),
		Especie:      req.Especie,
		Raca:         req.Raca,
		Tamanho:      req.Tamanho,
		Cor:          req.Cor,
		Descricao:    req.Descricao,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		Perdido:      perdido,
		UsuarioID:    req.UsuarioID,
		ImagemBase64: req.ImagemBase64,
	}
}

func (s *Server) handleListAnimals(w http.ResponseWriter, r *http.Request) {
	animals, err := s.animals.ListAnimals(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list animals")
		s.respondError(w, http.StatusInternalServerError, "erro interno")
		return
	}
	s.respondJSON(w, http.StatusOK, animals)
}

func (s *Server) handleCreateAnimal(w http.ResponseWriter, r *http.Request) {
	var req animalRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	animal := req.toModel()
	if err := s.animals.CreateAnimal(r.Context(), animal); err != nil {
		s.log.Error().Err(err).Msg("create animal")
		s.respondError(w, http.StatusInternalServerError, "não foi possível cadastrar o animal")
		return
	}
	if s.archiver != nil && animal.ImagemBase64 != nil && *animal.ImagemBase64 != "" {
		s.archiver.Submit(animal.ID)
	}
	s.respondJSON(w, http.StatusCreated, animal)
}

func (s *Server) handleUpdateAnimal(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var req animalRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	animal := req.toModel()
	animal.ID = id
	if err := s.animals.UpdateAnimal(r.Context(), animal); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Animal não encontrado")
			return
		}
		s.log.Error().Err(err).Msg("update animal")
		s.respondError(w, http.StatusInternalServerError, "não foi possível atualizar o animal")
		return
	}
	s.respondJSON(w, http.StatusOK, animal)
}

// photoURLExpiry bounds how long a served photo link stays valid.
const photoURLExpiry = time.Hour

// handleAnimalPhoto serves a signed URL for a report's archived photo. Until
// the worker has archived the inline image there is nothing to sign.
func (s *Server) handleAnimalPhoto(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	animal, err := s.animals.AnimalByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Animal não encontrado")
			return
		}
		s.log.Error().Err(err).Msg("load animal for photo")
		s.respondError(w, http.StatusInternalServerError, "erro interno")
		return
	}
	if s.photos == nil || animal.ImagemObjeto == nil {
		s.respondError(w, http.StatusNotFound, "Foto não encontrada")
		return
	}

	url, err := s.photos.PresignPhotoURL(r.Context(), *animal.ImagemObjeto, photoURLExpiry)
	if err != nil {
		s.log.Error().Err(err).Str("object_key", *animal.ImagemObjeto).Msg("presign photo")
		s.respondError(w, http.StatusInternalServerError, "não foi possível gerar o link da foto")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

type foundAnimalRequest struct {
	Especie      string   `json:"especie"`
	Raca         *string  `json:"raca"`
	Cor          *string  `json:"cor"`
	Descricao    *string  `json:"descricao"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	UsuarioID    int64    `json:"usuario_id"`
	ImagemBase64 *string  `json:"imagem_base64"`
}

func (s *Server) handleListFound(w http.ResponseWriter, r *http.Request) {
	found, err := s.found.ListFoundAnimals(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list found animals")
		s.respondError(w, http.StatusInternalServerError, "erro interno")
		return
	}
	s.respondJSON(w, http.StatusOK, found)
}

func (s *Server) handleCreateFound(w http.ResponseWriter, r *http.Request) {
	var req foundAnimalRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		s.respondError(w, http.StatusBadRequest, "latitude e longitude são obrigatórias")
		return
	}
	if req.UsuarioID == 0 {
		s.respondError(w, http.StatusBadRequest, "usuario_id é obrigatório")
		return
	}

	found := &model.FoundAnimal{
		Especie:      req.Especie,
		Raca:         req.Raca,
		Cor:          req.Cor,
		Descricao:    req.Descricao,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		UsuarioID:    req.UsuarioID,
		ImagemBase64: req.ImagemBase64,
	}
	if err := s.found.CreateFoundAnimal(r.Context(), found); err != nil {
		s.log.Error().Err(err).Msg("create found animal")
		s.respondError(w, http.StatusInternalServerError, "não foi possível cadastrar o animal encontrado")
		return
	}
	s.respondJSON(w, http.StatusCreated, found)
}
