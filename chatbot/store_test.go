package chatbot_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/korylprince/library-desk-server/chatbot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStores(t *testing.T) map[string]chatbot.ConversationStore {
	t.Helper()
	fs, err := chatbot.NewFileStore(t.TempDir(), discard)
	require.NoError(t, err)
	return map[string]chatbot.ConversationStore{
		"file": fs,
		"lru":  chatbot.NewLRUStore(1 << 20),
	}
}

func TestConversationStore(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			conv, err := store.Create("")
			require.NoError(t, err)
			assert.True(t, chatbot.ValidID(conv.ID), conv.ID)
			assert.Regexp(t, `^Session \d{4}-\d{2}-\d{2} \d{2}:\d{2}$`, conv.Name)
			assert.Empty(t, conv.Messages)

			msgs := []chatbot.Message{
				{Role: chatbot.RoleUser, Content: "Find Clean Code"},
				{Role: chatbot.RoleAssistant, Content: "Found 1 book(s)"},
			}
			require.NoError(t, store.AddMessages(conv.ID, msgs))

			got, err := store.Get(conv.ID)
			require.NoError(t, err)
			assert.Equal(t, msgs, got.Messages)

			// Get returns a copy
			got.Messages[0].Content = "changed"
			again, err := store.Get(conv.ID)
			require.NoError(t, err)
			assert.Equal(t, "Find Clean Code", again.Messages[0].Content)

			require.NoError(t, store.Rename(conv.ID, "  Restock run  "))
			got, err = store.Get(conv.ID)
			require.NoError(t, err)
			assert.Equal(t, "Restock run", got.Name)

			_, err = store.Get("not-a-session")
			assert.ErrorIs(t, err, chatbot.ErrConversationNotFound)
			assert.ErrorIs(t, store.AddMessages("1f0e4a4e-0000-4000-8000-000000000000", msgs), chatbot.ErrConversationNotFound)
			assert.ErrorIs(t, store.Rename("../../etc/passwd", "x"), chatbot.ErrConversationNotFound)
		})
	}
}

func TestConversationStoreList(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			first, err := store.Create("first")
			require.NoError(t, err)
			time.Sleep(5 * time.Millisecond)
			second, err := store.Create("second")
			require.NoError(t, err)
			time.Sleep(5 * time.Millisecond)
			require.NoError(t, store.AddMessages(first.ID, []chatbot.Message{{Role: chatbot.RoleUser, Content: "hi"}}))

			infos, err := store.List()
			require.NoError(t, err)
			require.Len(t, infos, 2)
			assert.Equal(t, first.ID, infos[0].ID)
			assert.Equal(t, 1, infos[0].MessageCount)
			assert.Equal(t, second.ID, infos[1].ID)
			assert.Equal(t, "second", infos[1].Name)
		})
	}
}

func TestFileStorePersists(t *testing.T) {
	dir := t.TempDir()
	store, err := chatbot.NewFileStore(dir, discard)
	require.NoError(t, err)

	conv, err := store.Create("desk")
	require.NoError(t, err)
	require.NoError(t, store.AddMessages(conv.ID, []chatbot.Message{{Role: chatbot.RoleUser, Content: "hello"}}))

	buf, err := os.ReadFile(filepath.Join(dir, conv.ID+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(buf), `"name": "desk"`)
	assert.Contains(t, string(buf), `"timestamp": `)
	assert.Contains(t, string(buf), `"content": "hello"`)

	// garbage and temporary files are skipped
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0d8a3b0c-1111-4222-8333-444455556666.json"), []byte("{not json"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	reopened, err := chatbot.NewFileStore(dir, discard)
	require.NoError(t, err)

	infos, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, conv.ID, infos[0].ID)

	got, err := reopened.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Messages[0].Content)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestLRUStoreEviction(t *testing.T) {
	store := chatbot.NewLRUStore(600)

	first, err := store.Create("first")
	require.NoError(t, err)
	second, err := store.Create("second")
	require.NoError(t, err)

	big := make([]chatbot.Message, 0, 10)
	for i := 0; i < 10; i++ {
		big = append(big, chatbot.Message{Role: chatbot.RoleUser, Content: "a fairly long message about restocking books"})
	}
	require.NoError(t, store.AddMessages(second.ID, big))

	_, err = store.Get(first.ID)
	assert.ErrorIs(t, err, chatbot.ErrConversationNotFound)

	// the most recently used conversation is kept even when it is over the cap
	got, err := store.Get(second.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 10)
}

func TestConversationHistory(t *testing.T) {
	conv := &chatbot.Conversation{Messages: []chatbot.Message{
		{Role: chatbot.RoleUser, Content: "1"},
		{Role: chatbot.RoleAssistant, Content: "2", ToolCalls: []chatbot.ToolCall{toolCall(chatbot.ToolFindBooks, `{}`)}},
		{Role: chatbot.RoleUser, Content: "3"},
	}}

	assert.Len(t, conv.History(10), 3)
	h := conv.History(2)
	require.Len(t, h, 2)
	assert.Equal(t, chatbot.Message{Role: chatbot.RoleAssistant, Content: "2"}, h[0])
	assert.Empty(t, conv.History(0))
}
