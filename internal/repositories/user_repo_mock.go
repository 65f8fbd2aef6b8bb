package repositories

import (
	"fmt"
	"sync"

	"stlprime/internal/models"
)

// MockUserRepository is an in-memory implementation of UserRepository.
// Like the real store, it treats email uniqueness as an insert-time
// constraint rather than a separate existence check.
type MockUserRepository struct {
	users  map[uint]models.User
	byMail map[string]uint
	nextID uint
	mu     sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[uint]models.User),
		byMail: make(map[string]uint),
		nextID: 1,
	}
}

// Create adds a new user, failing with ErrDuplicateEmail on a taken email.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byMail[user.Email]; taken {
		return fmt.Errorf("user with email %s: %w", user.Email, ErrDuplicateEmail)
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = *user
	r.byMail[user.Email] = user.ID
	return nil
}

// GetByEmail returns a user by their email.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byMail[email]
	if !ok {
		return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
	}
	user := r.users[id]
	return &user, nil
}

// GetByID returns a user by their ID.
func (r *MockUserRepository) GetByID(id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %d: %w", id, ErrNotFound)
	}
	return &user, nil
}
