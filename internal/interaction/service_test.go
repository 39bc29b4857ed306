package interaction

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternlog/backend/internal/storage/models"
	"github.com/patternlog/backend/internal/storage/sqlite"
)

func newService(t *testing.T) *Service {
	t.Helper()
	client, err := sqlite.NewClient(filepath.Join(t.TempDir(), "interactions.db"), time.Second)
	require.NoError(t, err)
	require.NoError(t, client.InitSchema(context.Background()))
	t.Cleanup(func() { client.Close() })
	return NewService(client)
}

func TestAppendThenListAll(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	empty, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	var lastID int64
	pairs := [][2]string{
		{"what is rust", "a language"},
		{"what is go", "a language"},
		{"what is a cat", "an animal"},
	}
	for _, p := range pairs {
		in, err := svc.Append(ctx, p[0], p[1])
		require.NoError(t, err)
		assert.Greater(t, in.ID, lastID)
		assert.False(t, in.Timestamp.IsZero())
		lastID = in.ID
	}

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, p := range pairs {
		assert.Equal(t, p[0], all[i].Question)
		assert.Equal(t, p[1], all[i].Answer)
	}
}

func TestAppendRejectsBlankFields(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Append(ctx, "seed", "row")
	require.NoError(t, err)

	tests := []struct {
		name     string
		question string
		answer   string
	}{
		{name: "empty question", question: "", answer: "a language"},
		{name: "blank question", question: "  \t\n", answer: "a language"},
		{name: "empty answer", question: "what is go", answer: ""},
		{name: "blank answer", question: "what is go", answer: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := svc.ListAll(ctx)
			require.NoError(t, err)

			in, err := svc.Append(ctx, tt.question, tt.answer)
			assert.Nil(t, in)
			assert.ErrorIs(t, err, ErrValidation)

			after, err := svc.ListAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

type failingRepo struct{ err error }

func (r failingRepo) InsertInteraction(context.Context, *models.Interaction) error { return r.err }
func (r failingRepo) ListInteractions(context.Context) ([]models.Interaction, error) {
	return nil, r.err
}

func TestStorageErrorsPropagate(t *testing.T) {
	boom := fmt.Errorf("%w: disk full", sqlite.ErrStorage)
	svc := NewService(failingRepo{err: boom})

	_, err := svc.Append(context.Background(), "q", "a")
	assert.ErrorIs(t, err, sqlite.ErrStorage)
	assert.NotErrorIs(t, err, ErrValidation)

	_, err = svc.ListAll(context.Background())
	assert.ErrorIs(t, err, sqlite.ErrStorage)
}
