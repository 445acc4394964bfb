// Package server implements the backend HTTP contract the mobile client
// consumes: usuarios, animais and animais_encontrados, JSON over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"fujao/internal/model"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	UserByID(ctx context.Context, id int64) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

// AnimalStore persists lost-animal reports.
type AnimalStore interface {
	CreateAnimal(ctx context.Context, animal *model.Animal) error
	ListAnimals(ctx context.Context) ([]model.Animal, error)
	AnimalByID(ctx context.Context, id int64) (*model.Animal, error)
	UpdateAnimal(ctx context.Context, animal *model.Animal) error
}

// FoundStore persists found-animal sightings.
type FoundStore interface {
	CreateFoundAnimal(ctx context.Context, found *model.FoundAnimal) error
	ListFoundAnimals(ctx context.Context) ([]model.FoundAnimal, error)
}

// Archiver accepts reports whose photo should be copied to object storage.
type Archiver interface {
	Submit(animalID int64)
}

// PhotoSigner issues time-limited URLs for archived photos.
type PhotoSigner interface {
	PresignPhotoURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// Server exposes the HTTP API.
type Server struct {
	addr     string
	users    UserStore
	animals  AnimalStore
	found    FoundStore
	archiver Archiver
	photos   PhotoSigner
	log      zerolog.Logger
	http     *http.Server
}

// New constructs a Server. archiver and photos may be nil when photo archival
// is disabled.
func New(addr string, users UserStore, animals AnimalStore, found FoundStore, archiver Archiver, photos PhotoSigner, log zerolog.Logger) *Server {
	return &Server{
		addr:     addr,
		users:    users,
		animals:  animals,
		found:    found,
		archiver: archiver,
		photos:   photos,
		log:      log,
	}
}

// Router builds the mux. Exposed so tests can drive handlers through
// httptest without binding a port.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/api/usuarios", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/usuarios/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/usuarios/email/{email}", s.handleUserByEmail).Methods(http.MethodGet)
	r.HandleFunc("/api/usuarios/{id:[0-9]+}", s.handleUserByID).Methods(http.MethodGet)
	r.HandleFunc("/api/usuarios/{id:[0-9]+}", s.handleUpdateUser).Methods(http.MethodPut)

	r.HandleFunc("/api/animais", s.handleListAnimals).Methods(http.MethodGet)
	r.HandleFunc("/api/animais", s.handleCreateAnimal).Methods(http.MethodPost)
	r.HandleFunc("/api/animais/{id:[0-9]+}", s.handleUpdateAnimal).Methods(http.MethodPut)
	r.HandleFunc("/api/animais/{id:[0-9]+}/foto", s.handleAnimalPhoto).Methods(http.MethodGet)

	r.HandleFunc("/api/animais_encontrados", s.handleListFound).Methods(http.MethodGet)
	r.HandleFunc("/api/animais_encontrados", s.handleCreateFound).Methods(http.MethodPost)

	return s.requestLogger(r)
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.http.Shutdown(shutdownCtx)
	}()
	s.log.Info().Str("addr", s.addr).Msg("api listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

// respondError uses the {"message": ...} shape the client's normalization
// expects.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"message": message})
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		s.respondError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return false
	}
	return true
}
