package chatbot

import (
	"container/list"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrConversationNotFound is returned when a conversation id is unknown or invalid
var ErrConversationNotFound = errors.New("conversation not found")

// Conversation is a session transcript
type Conversation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// History returns the last n messages of the conversation with their role and content only
func (c *Conversation) History(n int) []Message {
	msgs := c.Messages
	if n >= 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}

	history := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, Message{Role: m.Role, Content: m.Content})
	}
	return history
}

func (c *Conversation) copy() *Conversation {
	cp := *c
	cp.Messages = append([]Message(nil), c.Messages...)
	return &cp
}

// ConversationInfo describes a stored conversation without its messages
type ConversationInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Timestamp    time.Time `json:"timestamp"`
	MessageCount int       `json:"message_count"`
}

func (c *Conversation) info() *ConversationInfo {
	return &ConversationInfo{ID: c.ID, Name: c.Name, Timestamp: c.UpdatedAt, MessageCount: len(c.Messages)}
}

// ConversationStore defines the interface for conversation storage.
// Get returns a copy that the caller may modify.
type ConversationStore interface {
	Get(id string) (*Conversation, error)
	Create(name string) (*Conversation, error)
	AddMessages(id string, msgs []Message) error
	List() ([]*ConversationInfo, error)
	Rename(id, name string) error
}

// DefaultName returns the name given to a conversation created at t without one
func DefaultName(t time.Time) string {
	return "Session " + t.Format("2006-01-02 15:04")
}

// ValidID reports whether id is a well formed conversation id
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

func newConversation(name string) *Conversation {
	now := time.Now()
	if strings.TrimSpace(name) == "" {
		name = DefaultName(now)
	}
	return &Conversation{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sortInfos(infos []*ConversationInfo) {
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].Timestamp.After(infos[j].Timestamp)
	})
}

// LRUStore implements ConversationStore with an LRU cache capped at maxBytes
type LRUStore struct {
	mu       sync.Mutex
	maxBytes int
	curBytes int
	cache    map[string]*list.Element
	lru      *list.List
}

type cacheEntry struct {
	id    string
	conv  *Conversation
	bytes int
}

// NewLRUStore creates a new LRU conversation store
func NewLRUStore(maxBytes int) *LRUStore {
	return &LRUStore{
		maxBytes: maxBytes,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func (s *LRUStore) estimateBytes(conv *Conversation) int {
	data, _ := json.Marshal(conv)
	return len(data)
}

// Get retrieves a conversation by ID
func (s *LRUStore) Get(id string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.cache[id]; ok {
		s.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry).conv.copy(), nil
	}
	return nil, ErrConversationNotFound
}

// Create creates a new conversation
func (s *LRUStore) Create(name string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := newConversation(name)

	bytes := s.estimateBytes(conv)
	entry := &cacheEntry{id: conv.ID, conv: conv, bytes: bytes}
	elem := s.lru.PushFront(entry)
	s.cache[conv.ID] = elem
	s.curBytes += bytes
	s.evictIfNeeded()

	return conv.copy(), nil
}

// AddMessages adds messages to a conversation
func (s *LRUStore) AddMessages(id string, msgs []Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.cache[id]
	if !ok {
		return ErrConversationNotFound
	}

	entry := elem.Value.(*cacheEntry)
	oldBytes := entry.bytes

	entry.conv.Messages = append(entry.conv.Messages, msgs...)
	entry.conv.UpdatedAt = time.Now()

	newBytes := s.estimateBytes(entry.conv)
	entry.bytes = newBytes
	s.curBytes += (newBytes - oldBytes)

	s.lru.MoveToFront(elem)
	s.evictIfNeeded()

	return nil
}

// List returns all cached conversations, newest first
func (s *LRUStore) List() ([]*ConversationInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]*ConversationInfo, 0, len(s.cache))
	for e := s.lru.Front(); e != nil; e = e.Next() {
		infos = append(infos, e.Value.(*cacheEntry).conv.info())
	}
	sortInfos(infos)

	return infos, nil
}

// Rename sets the name of a conversation
func (s *LRUStore) Rename(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.cache[id]
	if !ok {
		return ErrConversationNotFound
	}

	entry := elem.Value.(*cacheEntry)
	entry.conv.Name = strings.TrimSpace(name)
	entry.conv.UpdatedAt = time.Now()

	newBytes := s.estimateBytes(entry.conv)
	s.curBytes += newBytes - entry.bytes
	entry.bytes = newBytes

	return nil
}

func (s *LRUStore) evictIfNeeded() {
	// the most recently used conversation is never evicted
	for s.curBytes > s.maxBytes && s.lru.Len() > 1 {
		oldest := s.lru.Back()
		entry := oldest.Value.(*cacheEntry)
		s.lru.Remove(oldest)
		delete(s.cache, entry.id)
		s.curBytes -= entry.bytes
	}
}
