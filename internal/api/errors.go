package api

import (
	"fmt"
	"net/http"
)

// User-facing fallback messages, kept in the product language.
const (
	msgConnection    = "Erro de conexão. Verifique se o servidor está rodando e se você está conectado à internet."
	msgWrongPassword = "Senha incorreta"
	msgUserNotFound  = "Usuário não encontrado"
)

// StatusError is a non-2xx response with a resolved, user-presentable message.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// ConnectionError means the request never completed at the HTTP level: the
// server was unreachable, the connection dropped, or the context was
// cancelled. It carries no status code so callers can show a connectivity
// message instead of a server-side one.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return msgConnection
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// statusFallback resolves a message when the error body could not be read or
// parsed at all. Only this path maps 401/404 onto the auth sentinels; a body
// that parsed fine but carried no usable field gets the generic message.
func statusFallback(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return msgWrongPassword
	case http.StatusNotFound:
		return msgUserNotFound
	}
	return genericStatus(status)
}

// genericStatus is the "Erro 404: Not Found" shape.
func genericStatus(status int) string {
	return fmt.Sprintf("Erro %d: %s", status, http.StatusText(status))
}
