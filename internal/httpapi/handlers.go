package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/park285/cheese-arena/internal/adapter/arenapresenter"
	"github.com/park285/cheese-arena/internal/arena"
	"github.com/park285/cheese-arena/internal/domain"
	"github.com/park285/cheese-arena/internal/gamemode"
	"github.com/park285/cheese-arena/pkg/arenadto"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	maxBodyBytes        = 4 << 10
)

type handlers struct {
	arena  *arena.Arena
	logger *zap.Logger
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) modes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, arenapresenter.ToDTOModes(h.arena.Modes()))
}

func (h *handlers) opponents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, arenapresenter.ToDTOOpponents(h.arena.Opponents()))
}

func (h *handlers) profile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.arena.Formatter().ToDTOProfile(h.arena.Profile()))
}

func (h *handlers) resetProfile(w http.ResponseWriter, r *http.Request) {
	rec := h.arena.ResetProfile(r.Context())
	writeJSON(w, http.StatusOK, h.arena.Formatter().ToDTOProfile(rec))
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, arenadto.CodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	list, err := h.arena.History(r.Context(), limit)
	if err != nil {
		h.logger.Warn("history_load_failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, arenadto.CodeUnavailable, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, arenapresenter.ToDTOHistory(list))
}

func (h *handlers) searchState(w http.ResponseWriter, _ *http.Request) {
	st := arenadto.SearchState{Searching: h.arena.Searching()}
	if f, ok := h.arena.LastFound(); ok {
		opp := arenapresenter.ToDTOOpponent(f.Opponent)
		st.LastFound = &opp
		st.Mode = f.Mode.Name
		st.Difficulty = string(f.Difficulty)
		st.Fallback = f.Fallback
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) startSearch(w http.ResponseWriter, r *http.Request) {
	var req arenadto.SearchRequest
	if !decode(w, r, &req) {
		return
	}
	ok, err := h.arena.StartSearch(req.Mode, req.Difficulty)
	switch {
	case errors.Is(err, arena.ErrMatchInProgress):
		writeError(w, http.StatusConflict, arenadto.CodeRejected, err.Error())
		return
	case errors.Is(err, gamemode.ErrUnknownMode):
		writeError(w, http.StatusNotFound, arenadto.CodeNotFound, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, arenadto.CodeBadRequest, err.Error())
		return
	}
	status := http.StatusAccepted
	if !ok {
		status = http.StatusOK
	}
	writeJSON(w, status, arenadto.ActionResponse{Accepted: ok})
}

func (h *handlers) cancelSearch(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, arenadto.ActionResponse{Accepted: h.arena.CancelSearch()})
}

func (h *handlers) matchState(w http.ResponseWriter, _ *http.Request) {
	c := h.arena.Current()
	if c == nil {
		writeError(w, http.StatusNotFound, arenadto.CodeNoMatch, arena.ErrNoMatch.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.arena.Formatter().ToDTOMatch(c))
}

func (h *handlers) selectSquare(w http.ResponseWriter, r *http.Request) {
	var req arenadto.SquareRequest
	if !decode(w, r, &req) {
		return
	}
	sq, err := domain.ParseSquare(req.Square)
	if err != nil {
		writeError(w, http.StatusBadRequest, arenadto.CodeBadRequest, err.Error())
		return
	}
	h.act(w, func() (bool, error) { return h.arena.SelectSquare(sq) })
}

func (h *handlers) move(w http.ResponseWriter, r *http.Request) {
	var req arenadto.MoveRequest
	if !decode(w, r, &req) {
		return
	}
	from, to, err := parseMove(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, arenadto.CodeBadRequest, err.Error())
		return
	}
	h.act(w, func() (bool, error) { return h.arena.TryMove(from, to) })
}

func (h *handlers) resign(w http.ResponseWriter, _ *http.Request) {
	h.act(w, h.arena.Resign)
}

func (h *handlers) offerDraw(w http.ResponseWriter, _ *http.Request) {
	h.act(w, h.arena.OfferDraw)
}

func (h *handlers) acceptDraw(w http.ResponseWriter, _ *http.Request) {
	h.act(w, h.arena.AcceptDraw)
}

func (h *handlers) declineDraw(w http.ResponseWriter, _ *http.Request) {
	h.act(w, h.arena.DeclineDraw)
}

// act runs a match command. A rejected command is not an HTTP error; the
// response reports Accepted=false with the unchanged match state.
func (h *handlers) act(w http.ResponseWriter, fn func() (bool, error)) {
	ok, err := fn()
	if errors.Is(err, arena.ErrNoMatch) {
		writeError(w, http.StatusNotFound, arenadto.CodeNoMatch, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("match_command_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, arenadto.CodeInternalError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, arenadto.ActionResponse{
		Accepted: ok,
		Match:    h.arena.Formatter().ToDTOMatch(h.arena.Current()),
	})
}

func parseMove(req arenadto.MoveRequest) (domain.Square, domain.Square, error) {
	from, to := strings.TrimSpace(req.From), strings.TrimSpace(req.To)
	if m := strings.TrimSpace(req.Move); m != "" {
		if len(m) != 4 {
			return domain.Square{}, domain.Square{}, errors.New("move must look like e2e4")
		}
		from, to = m[:2], m[2:]
	}
	f, err := domain.ParseSquare(from)
	if err != nil {
		return domain.Square{}, domain.Square{}, err
	}
	t, err := domain.ParseSquare(to)
	if err != nil {
		return domain.Square{}, domain.Square{}, err
	}
	return f, t, nil
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, arenadto.CodeBadRequest, "invalid json body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, arenadto.DomainError{Code: code, Message: msg, Retryable: status >= 500})
}
