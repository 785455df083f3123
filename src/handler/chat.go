package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"tradinganalysis/src/model"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

// chatHistoryLimit is how many past messages are returned and used as
// conversation context.
const chatHistoryLimit = 20

type symbolFinder interface {
	FindByName(ctx context.Context, name string) (*model.Symbol, error)
}

type chatMessageStore interface {
	Create(ctx context.Context, message *model.ChatMessage) error
	FindRecentBySymbol(ctx context.Context, symbolID uint, limit int) ([]model.ChatMessage, error)
}

// ChatReplier produces the AI side of the conversation.
type ChatReplier interface {
	ChatReply(ctx context.Context, symbolName string, history []model.ChatMessage, userMessage string) string
}

type userMessageRequest struct {
	Message string `json:"message"`
}

// ChatHistoryHandler returns a handler that serves the last messages of a
// symbol's conversation, oldest first.
func ChatHistoryHandler(symbols symbolFinder, messages chatMessageStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbolName := chi.URLParam(r, "symbolName")

		symbol, err := symbols.FindByName(r.Context(), symbolName)
		if err != nil {
			logger.WithError(err).WithField("symbol", symbolName).Error("failed to resolve symbol for chat history")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if symbol == nil {
			writeError(w, http.StatusNotFound, "Symbol not found.")
			return
		}

		history, err := messages.FindRecentBySymbol(r.Context(), symbol.ID, chatHistoryLimit)
		if err != nil {
			logger.WithError(err).WithField("symbol", symbolName).Error("failed to fetch chat history")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		views := make([]model.ChatMessageView, 0, len(history))
		for _, message := range history {
			views = append(views, message.ConvertToView())
		}

		writeJSON(w, http.StatusOK, views)
	}
}

// ChatMessageHandler returns a handler that stores an incoming user
// message, asks the AI for a reply using the conversation history, stores
// the reply and returns it.
func ChatMessageHandler(symbols symbolFinder, messages chatMessageStore, ai ChatReplier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbolName := chi.URLParam(r, "symbolName")

		var request userMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		request.Message = strings.TrimSpace(request.Message)
		if request.Message == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}

		symbol, err := symbols.FindByName(r.Context(), symbolName)
		if err != nil {
			logger.WithError(err).WithField("symbol", symbolName).Error("failed to resolve symbol for chat")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if symbol == nil {
			writeError(w, http.StatusNotFound, "Symbol not found.")
			return
		}

		userMessage := &model.ChatMessage{
			SymbolID:    symbol.ID,
			Owner:       model.ChatOwnerUser,
			MessageText: request.Message,
		}
		if err := messages.Create(r.Context(), userMessage); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		history, err := messages.FindRecentBySymbol(r.Context(), symbol.ID, chatHistoryLimit)
		if err != nil {
			logger.WithError(err).WithField("symbol", symbolName).Error("failed to fetch chat context")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		reply := ai.ChatReply(r.Context(), symbol.Name, history, request.Message)

		aiMessage := &model.ChatMessage{
			SymbolID:    symbol.ID,
			Owner:       model.ChatOwnerAI,
			MessageText: reply,
		}
		if err := messages.Create(r.Context(), aiMessage); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, aiMessage.ConvertToView())
	}
}
