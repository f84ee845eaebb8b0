// Package session holds per-session mutable state shared between tools and
// the agent loop.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pocketforge/forge/model"
)

// TodoStore is a mutex-guarded per-project todo list. Any status transition
// is allowed; only unknown IDs and invalid statuses are rejected.
type TodoStore struct {
	mu    sync.RWMutex
	todos map[string][]model.TodoItem // projectID -> items in creation order
}

// NewTodoStore creates an empty store.
func NewTodoStore() *TodoStore {
	return &TodoStore{
		todos: make(map[string][]model.TodoItem),
	}
}

// Create adds a new pending todo and returns it.
func (s *TodoStore) Create(projectID, title, description string) model.TodoItem {
	item := model.TodoItem{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Status:      model.TodoPending,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos[projectID] = append(s.todos[projectID], item)
	return item
}

// Update sets the status of a todo by ID.
func (s *TodoStore) Update(projectID, id string, status model.TodoStatus) (model.TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.todos[projectID]
	for i := range items {
		if items[i].ID == id {
			items[i].Status = status
			return items[i], nil
		}
	}
	return model.TodoItem{}, fmt.Errorf("todo not found: %s", id)
}

// List returns the project's todos in creation order.
func (s *TodoStore) List(projectID string) []model.TodoItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.todos[projectID]
	result := make([]model.TodoItem, len(items))
	copy(result, items)
	return result
}

// ClearProject drops all todos for a project.
func (s *TodoStore) ClearProject(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.todos, projectID)
}
