// Package storage provides an in-memory implementation of the backend stores,
// used by tests and by the dev server when no database is configured.
package storage

import (
	"context"
	"sync"

	"fujao/internal/model"
	"fujao/internal/repository"
)

// MemoryStore keeps users, animals and found-animal sightings in maps guarded
// by a single RWMutex. It satisfies the same store interfaces as the Postgres
// repositories.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[int64]*model.User
	animals    map[int64]*model.Animal
	found      map[int64]*model.FoundAnimal
	nextUser   int64
	nextAnimal int64
	nextFound  int64
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int64]*model.User),
		animals:    make(map[int64]*model.Animal),
		found:      make(map[int64]*model.FoundAnimal),
		nextUser:   1,
		nextAnimal: 1,
		nextFound:  1,
	}
}

// CreateUser inserts a user, enforcing email uniqueness.
func (m *MemoryStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = m.nextUser
	m.nextUser++
	u := *user
	m.users[u.ID] = &u
	return nil
}

// UserByID returns a copy of the user.
func (m *MemoryStore) UserByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := *user
	return &u, nil
}

// UserByEmail returns a copy of the user with that email.
func (m *MemoryStore) UserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

// UpdateUser rewrites a stored user.
func (m *MemoryStore) UpdateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range m.users {
		if id != user.ID && other.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u := *user
	u.CPF = existing.CPF
	m.users[u.ID] = &u
	return nil
}

// CreateAnimal inserts a report and assigns its id.
func (m *MemoryStore) CreateAnimal(_ context.Context, animal *model.Animal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	animal.ID = m.nextAnimal
	m.nextAnimal++
	a := *animal
	m.animals[a.ID] = &a
	return nil
}

// ListAnimals returns copies of every animal, newest first.
func (m *MemoryStore) ListAnimals(_ context.Context) ([]model.Animal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	animals := make([]model.Animal, 0, len(m.animals))
	for id := m.nextAnimal - 1; id >= 1; id-- {
		if animal, ok := m.animals[id]; ok {
			animals = append(animals, *animal)
		}
	}
	return animals, nil
}

// AnimalByID returns a copy of one animal.
func (m *MemoryStore) AnimalByID(_ context.Context, id int64) (*model.Animal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	animal, ok := m.animals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a := *animal
	return &a, nil
}

// UpdateAnimal rewrites a stored animal.
func (m *MemoryStore) UpdateAnimal(_ context.Context, animal *model.Animal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.animals[animal.ID]
	if !ok {
		return repository.ErrNotFound
	}
	a := *animal
	a.ImagemObjeto = existing.ImagemObjeto
	m.animals[a.ID] = &a
	return nil
}

// SetImageObject records the archived photo's object key.
func (m *MemoryStore) SetImageObject(_ context.Context, id int64, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	animal, ok := m.animals[id]
	if !ok {
		return repository.ErrNotFound
	}
	animal.ImagemObjeto = &objectKey
	return nil
}

// CreateFoundAnimal inserts a sighting and assigns its id.
func (m *MemoryStore) CreateFoundAnimal(_ context.Context, found *model.FoundAnimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found.ID = m.nextFound
	m.nextFound++
	f := *found
	m.found[f.ID] = &f
	return nil
}

// ListFoundAnimals returns copies of every sighting, newest first.
func (m *MemoryStore) ListFoundAnimals(_ context.Context) ([]model.FoundAnimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	found := make([]model.FoundAnimal, 0, len(m.found))
	for id := m.nextFound - 1; id >= 1; id-- {
		if f, ok := m.found[id]; ok {
			found = append(found, *f)
		}
	}
	return found, nil
}
