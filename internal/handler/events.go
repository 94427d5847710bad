package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"lastochka/messenger/internal/pkg/httputils"
	"lastochka/messenger/internal/repository"
	"lastochka/messenger/internal/service"
	"lastochka/messenger/internal/sse"
)

// EventsHandler открывает event-stream'ы. Аутентификация и членство
// проверяются до старта стрима: ошибки уходят обычными HTTP-кодами,
// после первого байта стрима их уже не вернуть.
type EventsHandler struct {
	chats     service.ChatService
	summarize service.SummarizeService
	emitter   *sse.Emitter
}

func NewEventsHandler(chats service.ChatService, summarize service.SummarizeService, emitter *sse.Emitter) *EventsHandler {
	return &EventsHandler{chats: chats, summarize: summarize, emitter: emitter}
}

func (h *EventsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chats/{chat_id}/events", h.stream).Methods("GET")
	router.HandleFunc("/chats/{chat_id}/summarize", h.startSummarize).Methods("POST", "OPTIONS")
	router.HandleFunc("/chats/{chat_id}/summarize/events", h.summarizeStream).Methods("GET")
}

// @Summary Chat event stream
// @Description Server-sent events for one chat; pass the token via ?token=
// @ID chat-events
// @Produce text/event-stream
// @Param chat_id path string true "Chat ID"
// @Param token query string true "Auth Token"
// @Success 200
// @Failure 401 {object} httputils.ErrorResponse
// @Failure 403 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/events [get]
func (h *EventsHandler) stream(w http.ResponseWriter, r *http.Request) {
	principal := Principal(r)
	chatID := mux.Vars(r)["chat_id"]

	if _, err := h.chats.Get(r.Context(), principal.ID, chatID); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	key := repository.QueueKey(chatID, principal.ID)
	if err := h.emitter.Stream(r.Context(), w, key); err != nil {
		httputils.ResponseError(w, err)
	}
}

// @Summary Start chat summarization
// @ID start-summarize
// @Param Bearer header string true "Auth Token"
// @Param chat_id path string true "Chat ID"
// @Success 202
// @Failure 503 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/summarize [post]
func (h *EventsHandler) startSummarize(w http.ResponseWriter, r *http.Request) {
	err := h.summarize.Start(r.Context(), Principal(r).ID, mux.Vars(r)["chat_id"])
	if err != nil {
		httputils.ResponseError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusAccepted, nil)
}

// @Summary Summarization event stream
// @ID summarize-events
// @Produce text/event-stream
// @Param chat_id path string true "Chat ID"
// @Param token query string true "Auth Token"
// @Success 200
// @Failure 403 {object} httputils.ErrorResponse
// @Router /chats/{chat_id}/summarize/events [get]
func (h *EventsHandler) summarizeStream(w http.ResponseWriter, r *http.Request) {
	principal := Principal(r)
	chatID := mux.Vars(r)["chat_id"]

	if _, err := h.chats.Get(r.Context(), principal.ID, chatID); err != nil {
		httputils.ResponseError(w, err)
		return
	}

	key := repository.SummarizeQueueKey(chatID, principal.ID)
	if err := h.emitter.Stream(r.Context(), w, key); err != nil {
		httputils.ResponseError(w, err)
	}
}
