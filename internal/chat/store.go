// Package chat provides case discussion rooms with an AI assistant responder
// backed by the medical-knowledge lookup client.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medreport-assistant-server/internal/domain"
)

// AssistantName is the participant name of the built-in responder.
const AssistantName = "Dr. AI Assistant"

// ErrRoomNotFound is returned when a room ID does not exist.
var ErrRoomNotFound = fmt.Errorf("chat room not found")

// chatDocument is the on-disk shape of the chat store.
type chatDocument struct {
	Rooms map[string]*domain.ChatRoom `json:"rooms"`
}

// Store persists chat rooms as a single JSON document, with the same
// tolerant-load and whole-document-persist semantics as the report store.
type Store struct {
	path string
	mu   sync.Mutex
	doc  chatDocument
}

// NewStore opens (or initializes) the chat room store.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	s := &Store{path: path, doc: chatDocument{Rooms: map[string]*domain.ChatRoom{}}}

	b, err := os.ReadFile(path)
	if err == nil {
		var doc chatDocument
		if json.Unmarshal(b, &doc) == nil && doc.Rooms != nil {
			s.doc = doc
		}
	}
	return s, nil
}

// persist rewrites the backing file. Caller must hold the mutex.
func (s *Store) persist() error {
	b, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chat store: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0644); err != nil {
		return fmt.Errorf("failed to write chat store: %w", err)
	}
	return nil
}

// CreateRoom creates a case discussion room with a fresh ID, seeded with the
// assistant's welcome message.
func (s *Store) CreateRoom(ctx context.Context, creator, description string) (*domain.ChatRoom, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if creator == "" {
		creator = "Unknown"
	}
	if description == "" {
		description = "General Case"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	room := &domain.ChatRoom{
		ID:           uuid.NewString(),
		Creator:      creator,
		Description:  description,
		CreatedAt:    now,
		Participants: []string{creator, AssistantName},
		Messages: []domain.ChatMessage{
			{
				ID:        uuid.NewString(),
				User:      AssistantName,
				Content:   fmt.Sprintf("Welcome to '%s'. I am your medical assistant.", description),
				Timestamp: now,
			},
		},
	}

	s.doc.Rooms[room.ID] = room
	if err := s.persist(); err != nil {
		delete(s.doc.Rooms, room.ID)
		return nil, err
	}
	return copyRoom(room), nil
}

// AddMessage appends a message to a room.
func (s *Store) AddMessage(ctx context.Context, roomID, user, content string) (*domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.doc.Rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	msg := domain.ChatMessage{
		ID:        uuid.NewString(),
		User:      user,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	room.Messages = append(room.Messages, msg)

	if err := s.persist(); err != nil {
		room.Messages = room.Messages[:len(room.Messages)-1]
		return nil, err
	}
	return &msg, nil
}

// Messages returns the message history of a room.
func (s *Store) Messages(ctx context.Context, roomID string) ([]domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.doc.Rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	out := make([]domain.ChatMessage, len(room.Messages))
	copy(out, room.Messages)
	return out, nil
}

// Rooms returns all rooms ordered by creation time.
func (s *Store) Rooms(ctx context.Context) ([]*domain.ChatRoom, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.ChatRoom, 0, len(s.doc.Rooms))
	for _, room := range s.doc.Rooms {
		out = append(out, copyRoom(room))
	}
	sortRoomsByCreation(out)
	return out, nil
}

func copyRoom(room *domain.ChatRoom) *domain.ChatRoom {
	cp := *room
	cp.Participants = append([]string(nil), room.Participants...)
	cp.Messages = append([]domain.ChatMessage(nil), room.Messages...)
	return &cp
}

func sortRoomsByCreation(rooms []*domain.ChatRoom) {
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
}
