package api

import (
	"context"
	"fmt"
	"net/http"

	"fujao/internal/model"
)

// ListAnimals returns every animal record the backend knows about.
func (c *Client) ListAnimals(ctx context.Context) ([]model.Animal, error) {
	var animals []model.Animal
	if err := c.get(ctx, "/api/animais", &animals); err != nil {
		return nil, err
	}
	return animals, nil
}

// LostAnimals returns the animals still marked lost. The backend has no
// filtered endpoint, so membership in the lost subset is decided here, on the
// full list.
func (c *Client) LostAnimals(ctx context.Context) ([]model.Animal, error) {
	animals, err := c.ListAnimals(ctx)
	if err != nil {
		return nil, err
	}
	lost := make([]model.Animal, 0, len(animals))
	for _, a := range animals {
		if a.Perdido {
			lost = append(lost, a)
		}
	}
	return lost, nil
}

// CreateAnimal submits a new lost-animal report.
func (c *Client) CreateAnimal(ctx context.Context, animal *model.Animal) (*model.Animal, error) {
	var created model.Animal
	if err := c.send(ctx, http.MethodPost, "/api/animais", animal, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateAnimal replaces an animal record, e.g. when an owner claims it back.
func (c *Client) UpdateAnimal(ctx context.Context, id int64, animal *model.Animal) (*model.Animal, error) {
	var updated model.Animal
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("/api/animais/%d", id), animal, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// AnimalPhotoURL fetches a signed link for a report's archived photo.
func (c *Client) AnimalPhotoURL(ctx context.Context, id int64) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.get(ctx, fmt.Sprintf("/api/animais/%d/foto", id), &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// ListFoundAnimals returns reported sightings of found animals.
func (c *Client) ListFoundAnimals(ctx context.Context) ([]model.FoundAnimal, error) {
	var found []model.FoundAnimal
	if err := c.get(ctx, "/api/animais_encontrados", &found); err != nil {
		return nil, err
	}
	return found, nil
}

// CreateFoundAnimal reports a found animal.
func (c *Client) CreateFoundAnimal(ctx context.Context, found *model.FoundAnimal) (*model.FoundAnimal, error) {
	var created model.FoundAnimal
	if err := c.send(ctx, http.MethodPost, "/api/animais_encontrados", found, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
