// Package model contains the wire-level types shared by the client, the
// development backend and the worker. Field tags follow the backend contract,
// which uses Portuguese names.
package model

import "strings"

// Animal is a lost-animal record as it travels over /api/animais. The server
// assigns ID; records are immutable client-side once sent.
type Animal struct {
	ID           int64   `json:"id,omitempty"`
	Nome         string  `json:"nome"`
	Especie      string  `json:"especie"`
	Raca         *string `json:"raca"`
	Tamanho      *string `json:"tamanho"`
	Cor          *string `json:"cor"`
	Descricao    *string `json:"descricao"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Perdido      bool    `json:"perdido"`
	UsuarioID    int64   `json:"usuario_id"`
	ImagemBase64 *string `json:"imagem_base64"`

	// ImagemObjeto is the archived photo's object key, set by the worker
	// after the inline image has been copied to object storage. The mobile
	// contract never carries it.
	ImagemObjeto *string `json:"imagem_objeto,omitempty"`
}

// FoundAnimal is a sighting of an animal that somebody found, posted to
// /api/animais_encontrados.
type FoundAnimal struct {
	ID           int64   `json:"id,omitempty"`
	Especie      string  `json:"especie"`
	Raca         *string `json:"raca"`
	Cor          *string `json:"cor"`
	Descricao    *string `json:"descricao"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	UsuarioID    int64   `json:"usuario_id"`
	ImagemBase64 *string `json:"imagem_base64"`
}

// FilterAnimals returns the animals whose name, breed, species or description
// contains the query, case-insensitively. An empty query matches everything.
func FilterAnimals(animals []Animal, query string) []Animal {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return animals
	}
	matched := make([]Animal, 0, len(animals))
	for _, a := range animals {
		if containsFold(a.Nome, q) || containsFold(deref(a.Raca), q) ||
			containsFold(a.Especie, q) || containsFold(deref(a.Descricao), q) {
			matched = append(matched, a)
		}
	}
	return matched
}

func containsFold(s, lowered string) bool {
	return strings.Contains(strings.ToLower(s), lowered)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GeoCoordinate is the latest-known device position. Only the most recent
// successful reading is kept; a newer read always overwrites an older one.
type GeoCoordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ImageAsset is a transient photo attachment: the local path it was read from
// plus the base64 JPEG that goes on the wire. It exists only while a report
// draft is being composed.
type ImageAsset struct {
	URI    string `json:"uri"`
	Base64 string `json:"base64"`
}
