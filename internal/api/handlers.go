package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/mux"

	"github.com/calvinwijaya/blackjack/internal/game"
	"github.com/calvinwijaya/blackjack/internal/player"
	"github.com/calvinwijaya/blackjack/internal/service"
	"github.com/calvinwijaya/blackjack/internal/store"
)

// Handlers contains all the API handlers
type Handlers struct {
	games   *service.GameService
	players *service.PlayerService
	hub     *Hub
	logger  log.Logger
}

// NewHandlers creates a new instance of Handlers. hub may be nil.
func NewHandlers(games *service.GameService, players *service.PlayerService, hub *Hub, logger log.Logger) *Handlers {
	return &Handlers{
		games:   games,
		players: players,
		hub:     hub,
		logger:  logger.With("module", "api"),
	}
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Game endpoints
	r.HandleFunc("/api/game/new", h.NewGame).Methods(http.MethodPost)
	r.HandleFunc("/api/game", h.ListGames).Methods(http.MethodGet)
	r.HandleFunc("/api/game/player/{playerId}", h.GamesByPlayer).Methods(http.MethodGet)
	r.HandleFunc("/api/game/{id}", h.GetGame).Methods(http.MethodGet)
	r.HandleFunc("/api/game/{id}", h.DeleteGame).Methods(http.MethodDelete)
	r.HandleFunc("/api/game/{id}/play", h.Play).Methods(http.MethodPost)

	// Player endpoints
	r.HandleFunc("/api/player/{id}", h.GetPlayer).Methods(http.MethodGet)
	r.HandleFunc("/api/player/{id}", h.RenamePlayer).Methods(http.MethodPut)
	r.HandleFunc("/api/player/{id}", h.DeletePlayer).Methods(http.MethodDelete)
	r.HandleFunc("/api/ranking", h.Ranking).Methods(http.MethodGet)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// WebSocket endpoint
	if h.hub != nil {
		r.HandleFunc("/ws", h.hub.WebSocketHandler)
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// error response helper function
func errorResponse(w http.ResponseWriter, status int, message string) {
	response(w, status, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
	})
}

// StatusFor maps an error from the service layer to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrGameNotFound), errors.Is(err, store.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidConfiguration),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidAction),
		errors.Is(err, player.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrGameAlreadyFinished):
		return http.StatusConflict
	case errors.Is(err, game.ErrShoeExhausted), errors.Is(err, game.ErrInvalidState):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "uri", r.RequestURI, "err", err)
		message = "An unexpected error occurred"
	}
	errorResponse(w, status, message)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", service.ErrInvalidRequest)
	}
	return nil
}

// pageParams reads page and size, both optional.
func pageParams(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	var out [2]int
	for i, key := range []string{"page", "size"} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %s must be an integer", service.ErrInvalidRequest, key)
		}
		out[i] = n
	}
	return out[0], out[1], nil
}

func (h *Handlers) broadcast(view service.GameView) {
	if h.hub != nil {
		h.hub.BroadcastGameUpdate(view)
	}
}

// NewGame starts a game for a player, registering the name on first use
func (h *Handlers) NewGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerName    string `json:"playerName"`
		NumberOfDecks int    `json:"numberOfDecks"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.games.CreateGame(r.Context(), req.PlayerName, req.NumberOfDecks)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.broadcast(view)
	response(w, http.StatusCreated, view)
}

// GetGame returns a game by ID
func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	view, err := h.games.GetGame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response(w, http.StatusOK, view)
}

// Play applies a HIT or STAND to a game
func (h *Handlers) Play(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.games.Play(r.Context(), mux.Vars(r)["id"], req.Action)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.broadcast(view)
	response(w, http.StatusOK, view)
}

func (h *Handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.games.DeleteGame(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListGames returns a page of all games, newest first
func (h *Handlers) ListGames(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.games.ListGames(r.Context(), page, size)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response(w, http.StatusOK, result)
}

func (h *Handlers) GamesByPlayer(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.games.GamesByPlayer(r.Context(), mux.Vars(r)["playerId"], page, size)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response(w, http.StatusOK, result)
}

func (h *Handlers) GetPlayer(w http.ResponseWriter, r *http.Request) {
	view, err := h.players.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response(w, http.StatusOK, view)
}

// RenamePlayer changes a player's name
func (h *Handlers) RenamePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerName string `json:"playerName"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.players.Rename(r.Context(), mux.Vars(r)["id"], req.PlayerName)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response(w, http.StatusOK, view)
}

// DeletePlayer removes a player and their games
func (h *Handlers) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := h.players.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Ranking returns players ordered by win rate
func (h *Handlers) Ranking(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.players.Ranking(r.Context(), page, size)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response(w, http.StatusOK, result)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response(w, http.StatusOK, map[string]string{"status": "UP"})
}
