package user

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(id string) (User, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Register(user User) (User, error) {
	if _, err := s.repo.GetByID(user.ID); err == nil {
		return User{}, ErrIDExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user.Password = string(hashed)
	if user.CreatedAt == "" {
		user.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return s.repo.Create(user)
}

func (s *Service) Authenticate(id, password string) (User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

func (s *Service) UpdateHandle(id, handle string) (User, error) {
	return s.repo.UpdateHandle(id, handle)
}

// DevSeed returns the development account a/a with its password hashed.
func DevSeed() ([]User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("a"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	return []User{{ID: "a", Password: string(hashed), Handle: "a"}}, nil
}
