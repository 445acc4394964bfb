package server

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"fujao/internal/model"
	"fujao/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLen = 6

type registerRequest struct {
	Nome      string `json:"nome"`
	Telefone  string `json:"telefone"`
	CPF       string `json:"cpf"`
	Email     string `json:"email"`
	HashSenha string `json:"hash_senha"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	req.Nome = strings.TrimSpace(req.Nome)
	req.Telefone = digitsOnly(req.Telefone)
	req.CPF = digitsOnly(req.CPF)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	switch {
	case req.Nome == "":
		s.respondError(w, http.StatusBadRequest, "preencha o nome")
		return
	case req.Telefone == "":
		s.respondError(w, http.StatusBadRequest, "preencha o telefone")
		return
	case len(req.CPF) != 11:
		s.respondError(w, http.StatusBadRequest, "CPF inválido")
		return
	case !emailPattern.MatchString(req.Email):
		s.respondError(w, http.StatusBadRequest, "e-mail inválido")
		return
	case len(req.HashSenha) < minPasswordLen:
		s.respondError(w, http.StatusBadRequest, "a senha deve ter pelo menos 6 caracteres")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.HashSenha), bcrypt.DefaultCost)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "não foi possível criar o usuário")
		return
	}

	user := &model.User{
		Nome:      req.Nome,
		Telefone:  req.Telefone,
		CPF:       req.CPF,
		Email:     req.Email,
		HashSenha: string(hashed),
	}
	if err := s.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.respondError(w, http.StatusConflict, "Email já cadastrado")
			return
		}
		s.log.Error().Err(err).Msg("create user")
		s.respondError(w, http.StatusInternalServerError, "não foi possível criar o usuário")
		return
	}
	s.respondJSON(w, http.StatusCreated, sanitizeUser(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if !s.decodeJSON(w, r, &creds) {
		return
	}
	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))

	user, err := s.users.UserByEmail(r.Context(), creds.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		s.log.Error().Err(err).Msg("login lookup")
		s.respondError(w, http.StatusInternalServerError, "não foi possível fazer login")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashSenha), []byte(creds.HashSenha)) != nil {
		s.respondError(w, http.StatusUnauthorized, "Senha incorreta")
		return
	}
	s.respondJSON(w, http.StatusOK, sanitizeUser(user))
}

func (s *Server) handleUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(mux.Vars(r)["email"])
	user, err := s.users.UserByEmail(r.Context(), email)
	if err != nil {
		s.respondUserError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sanitizeUser(user))
}

func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	user, err := s.users.UserByID(r.Context(), id)
	if err != nil {
		s.respondUserError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sanitizeUser(user))
}

type updateUserRequest struct {
	Nome      string `json:"nome"`
	Telefone  string `json:"telefone"`
	Email     string `json:"email"`
	HashSenha string `json:"hash_senha"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var req updateUserRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	user, err := s.users.UserByID(r.Context(), id)
	if err != nil {
		s.respondUserError(w, err)
		return
	}

	req.Nome = strings.TrimSpace(req.Nome)
	req.Telefone = digitsOnly(req.Telefone)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Nome != "" {
		user.Nome = req.Nome
	}
	if req.Telefone != "" {
		user.Telefone = req.Telefone
	}
	if req.Email != "" {
		if !emailPattern.MatchString(req.Email) {
			s.respondError(w, http.StatusBadRequest, "e-mail inválido")
			return
		}
		user.Email = req.Email
	}
	if req.HashSenha != "" {
		if len(req.HashSenha) < minPasswordLen {
			s.respondError(w, http.StatusBadRequest, "a senha deve ter pelo menos 6 caracteres")
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.HashSenha), bcrypt.DefaultCost)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, "não foi possível atualizar o usuário")
			return
		}
		user.HashSenha = string(hashed)
	}

	if err := s.users.UpdateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.respondError(w, http.StatusConflict, "Email já cadastrado")
			return
		}
		s.respondUserError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sanitizeUser(user))
}

func (s *Server) respondUserError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "Usuário não encontrado")
		return
	}
	s.log.Error().Err(err).Msg("user store")
	s.respondError(w, http.StatusInternalServerError, "erro interno")
}

func sanitizeUser(user *model.User) *model.User {
	u := *user
	u.HashSenha = ""
	return &u
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
