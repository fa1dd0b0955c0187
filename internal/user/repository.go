package user

import (
	"errors"
	"sync"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrIDExists           = errors.New("id already exists")
)

type Repository interface {
	GetByID(id string) (User, error)
	Create(user User) (User, error)
	UpdateHandle(id, handle string) (User, error)
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{users: make(map[string]User, len(seed))}
	for _, user := range seed {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *InMemoryRepository) GetByID(id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *InMemoryRepository) Create(user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return User{}, ErrIDExists
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *InMemoryRepository) UpdateHandle(id, handle string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	user.Handle = handle
	r.users[id] = user
	return user, nil
}
