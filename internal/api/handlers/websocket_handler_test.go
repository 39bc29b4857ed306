package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternlog/backend/internal/analysis"
	"github.com/patternlog/backend/internal/corpus"
	"github.com/patternlog/backend/internal/query"
	"github.com/patternlog/backend/internal/session"
)

func TestWebSocketRespondAskStreamsChunks(t *testing.T) {
	h := NewWebSocketHandler(&stubAsker{answer: "a compiled\nlanguage"}, &memoryStore{}, &stubAnalyzer{}, 10)
	history := session.NewHistory(10)

	msgs := h.respond(context.Background(), history, inbound{Type: "ask", Content: "what is go"})
	require.Len(t, msgs, 6)
	assert.Equal(t, "status", msgs[0]["type"])
	assert.Equal(t, "a ", msgs[1]["content"])
	assert.Equal(t, "compiled", msgs[2]["content"])
	assert.Equal(t, "\n", msgs[3]["content"])
	assert.Equal(t, "language", msgs[4]["content"])
	assert.Equal(t, "complete", msgs[5]["type"])
	assert.Equal(t, 1, history.Len())
}

func TestWebSocketRespondSessionCommands(t *testing.T) {
	h := NewWebSocketHandler(&stubAsker{answer: "a language"}, &memoryStore{}, &stubAnalyzer{}, 10)
	history := session.NewHistory(10)
	ctx := context.Background()

	msgs := h.respond(ctx, history, inbound{Type: "repeat"})
	assert.Equal(t, "error", msgs[0]["type"])

	h.respond(ctx, history, inbound{Type: "ask", Content: "what is go"})

	msgs = h.respond(ctx, history, inbound{Type: "HISTORY"})
	require.Len(t, msgs, 1)
	assert.Len(t, msgs[0]["entries"], 1)

	msgs = h.respond(ctx, history, inbound{Type: "clear"})
	assert.Equal(t, "cleared", msgs[0]["type"])
	assert.Zero(t, history.Len())

	msgs = h.respond(ctx, history, inbound{Type: "repeat"})
	assert.Equal(t, "repeat", msgs[0]["type"])
	assert.Equal(t, "what is go", msgs[0]["question"])

	msgs = h.respond(ctx, history, inbound{Type: "dance"})
	assert.Equal(t, "error", msgs[0]["type"])
}

func TestWebSocketRespondAskFailures(t *testing.T) {
	h := NewWebSocketHandler(&stubAsker{err: query.ErrNoAnswer}, &memoryStore{}, &stubAnalyzer{}, 10)
	history := session.NewHistory(10)

	msgs := h.respond(context.Background(), history, inbound{Type: "ask", Content: "  "})
	require.Len(t, msgs, 1)
	assert.Equal(t, "error", msgs[0]["type"])

	msgs = h.respond(context.Background(), history, inbound{Type: "ask", Content: "q"})
	require.Len(t, msgs, 2)
	assert.Equal(t, "no answer was produced", msgs[1]["error"])
	assert.Zero(t, history.Len())
}

func TestWebSocketRespondAnalyzeAndView(t *testing.T) {
	store := &memoryStore{}
	_, err := store.Append(context.Background(), "q", "a")
	require.NoError(t, err)

	h := NewWebSocketHandler(&stubAsker{}, store, &stubAnalyzer{report: &analysis.Report{Documents: 2}}, 10)
	msgs := h.respond(context.Background(), session.NewHistory(10), inbound{Type: "analyze"})
	assert.Equal(t, "patterns", msgs[0]["type"])

	msgs = h.respond(context.Background(), session.NewHistory(10), inbound{Type: "view"})
	assert.Equal(t, 1, msgs[0]["count"])

	h = NewWebSocketHandler(&stubAsker{}, store, &stubAnalyzer{err: corpus.ErrEmptyCorpus}, 10)
	msgs = h.respond(context.Background(), session.NewHistory(10), inbound{Type: "analyze"})
	assert.Equal(t, "not enough interactions for analysis yet", msgs[0]["error"])
}

func TestSplitIntoWords(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "\n", "c"}, splitIntoWords("a  b\nc"))
	assert.Empty(t, splitIntoWords("   "))
}
