package chatbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// transcript is the on-disk form of a Conversation
type transcript struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Messages  []Message `json:"messages"`
}

// FileStore implements ConversationStore with one JSON file per conversation
type FileStore struct {
	mu  sync.Mutex
	dir string
	log *slog.Logger
}

// NewFileStore creates a FileStore in dir, creating dir if needed
func NewFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("could not create transcript directory: %w", err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) read(id string) (*Conversation, error) {
	if !ValidID(id) {
		return nil, ErrConversationNotFound
	}

	buf, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not read transcript %s: %w", id, err)
	}

	t := new(transcript)
	if err = json.Unmarshal(buf, t); err != nil {
		return nil, fmt.Errorf("could not decode transcript %s: %w", id, err)
	}

	if t.Messages == nil {
		t.Messages = []Message{}
	}

	return &Conversation{ID: id, Name: t.Name, Messages: t.Messages, CreatedAt: t.Timestamp, UpdatedAt: t.Timestamp}, nil
}

// write saves conv to a temporary file and renames it over the transcript
func (s *FileStore) write(conv *Conversation) error {
	buf, err := json.MarshalIndent(&transcript{Name: conv.Name, Timestamp: conv.UpdatedAt, Messages: conv.Messages}, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode transcript %s: %w", conv.ID, err)
	}

	f, err := os.CreateTemp(s.dir, conv.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary transcript: %w", err)
	}
	tmp := f.Name()

	if _, err = f.Write(buf); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("could not write transcript %s: %w", conv.ID, err)
	}
	if err = f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not write transcript %s: %w", conv.ID, err)
	}

	if err = os.Rename(tmp, s.path(conv.ID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not replace transcript %s: %w", conv.ID, err)
	}

	return nil
}

// Get reads a conversation by ID
func (s *FileStore) Get(id string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

// Create creates and saves a new conversation
func (s *FileStore) Create(name string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := newConversation(name)
	if err := s.write(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// AddMessages appends messages to a conversation and saves it
func (s *FileStore) AddMessages(id string, msgs []Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.read(id)
	if err != nil {
		return err
	}

	conv.Messages = append(conv.Messages, msgs...)
	conv.UpdatedAt = time.Now()

	return s.write(conv)
}

// List returns all readable conversations, newest first
func (s *FileStore) List() ([]*ConversationInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("could not list transcripts: %w", err)
	}

	infos := make([]*ConversationInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		conv, err := s.read(id)
		if err != nil {
			s.log.Warn("skipping unreadable transcript", "file", e.Name(), "err", err)
			continue
		}
		infos = append(infos, conv.info())
	}
	sortInfos(infos)

	return infos, nil
}

// Rename sets the name of a conversation and saves it
func (s *FileStore) Rename(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.read(id)
	if err != nil {
		return err
	}

	conv.Name = strings.TrimSpace(name)
	conv.UpdatedAt = time.Now()

	return s.write(conv)
}
