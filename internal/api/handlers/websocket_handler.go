package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/patternlog/backend/internal/analysis"
	"github.com/patternlog/backend/internal/query"
	"github.com/patternlog/backend/internal/session"
	"github.com/patternlog/backend/internal/storage/models"
	"github.com/patternlog/backend/pkg/logger"
)

type Lister interface {
	ListAll(ctx context.Context) ([]models.Interaction, error)
}

type WebSocketHandler struct {
	asker        Asker
	log          Lister
	analyzer     Analyzer
	historyLimit int
}

type inbound struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type outbound map[string]interface{}

func NewWebSocketHandler(asker Asker, log Lister, analyzer Analyzer, historyLimit int) *WebSocketHandler {
	return &WebSocketHandler{
		asker:        asker,
		log:          log,
		analyzer:     analyzer,
		historyLimit: historyLimit,
	}
}

// Upgrade only lets websocket handshakes through to the chat route.
func (h *WebSocketHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleConnection runs one chat session. Each connection owns its history.
func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	history := session.NewHistory(h.historyLimit)

	logger.Info("WebSocket session started", zap.String("session_id", history.ID()))

	defer func() {
		cancel()
		c.Close()
		logger.Info("WebSocket session closed", zap.String("session_id", history.ID()))
	}()

	for {
		var msg inbound
		if err := c.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("Failed to read WebSocket message", zap.Error(err))
			}
			return
		}

		for _, out := range h.respond(ctx, history, msg) {
			if err := c.WriteJSON(out); err != nil {
				logger.Debug("Failed to write WebSocket message", zap.Error(err))
				return
			}
		}
	}
}

func (h *WebSocketHandler) respond(ctx context.Context, history *session.History, msg inbound) []outbound {
	switch strings.ToLower(msg.Type) {
	case "ask", "query":
		return h.ask(ctx, history, msg.Content)
	case "history":
		return []outbound{{"type": "history", "entries": history.Entries()}}
	case "clear":
		history.Clear()
		return []outbound{{"type": "cleared"}}
	case "repeat":
		last, ok := history.Last()
		if !ok {
			return []outbound{errorMessage("no last question and answer available")}
		}
		return []outbound{{"type": "repeat", "question": last.Question, "answer": last.Answer}}
	case "view":
		interactions, err := h.log.ListAll(ctx)
		if err != nil {
			logger.Error("Failed to list interactions", zap.Error(err))
			return []outbound{errorMessage("failed to list interactions")}
		}
		return []outbound{{"type": "interactions", "interactions": interactions, "count": len(interactions)}}
	case "analyze":
		rep, err := h.analyzer.Analyze(ctx, analysis.Request{Trigger: "websocket"})
		if err != nil {
			if analysis.IsNotEnoughData(err) {
				return []outbound{errorMessage("not enough interactions for analysis yet")}
			}
			logger.Error("Pattern discovery failed", zap.Error(err))
			return []outbound{errorMessage("pattern discovery failed")}
		}
		return []outbound{{"type": "patterns", "report": rep}}
	default:
		return []outbound{errorMessage("unknown message type " + msg.Type)}
	}
}

func (h *WebSocketHandler) ask(ctx context.Context, history *session.History, question string) []outbound {
	if strings.TrimSpace(question) == "" {
		return []outbound{errorMessage("please enter a question")}
	}

	msgs := []outbound{{"type": "status", "content": "Generating answer..."}}

	ex, err := h.asker.Ask(ctx, question)
	if err != nil {
		if errors.Is(err, query.ErrNoAnswer) {
			return append(msgs, errorMessage("no answer was produced"))
		}
		logger.Error("Failed to answer question", zap.Error(err))
		return append(msgs, errorMessage("failed to answer question"))
	}

	answer := ex.Interaction.Answer
	history.Add(question, answer)

	words := splitIntoWords(answer)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 && word != "\n" && words[i+1] != "\n" {
			chunk += " "
		}
		msgs = append(msgs, outbound{"type": "chunk", "content": chunk})
	}

	return append(msgs, outbound{
		"type":           "complete",
		"interaction_id": ex.Interaction.ID,
		"cached":         ex.Cached,
		"latency_ms":     ex.LatencyMS,
	})
}

func errorMessage(text string) outbound {
	return outbound{"type": "error", "error": text}
}

// splitIntoWords splits on spaces and keeps newlines as their own tokens.
func splitIntoWords(text string) []string {
	words := []string{}
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		switch r {
		case ' ':
			flush()
		case '\n':
			flush()
			words = append(words, "\n")
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return words
}
