package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lox/syncbingo/internal/card"
	"github.com/lox/syncbingo/internal/round"
	"github.com/lox/syncbingo/internal/selection"
)

// Handler returns the HTTP routes served by the spectator server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         60 * 15,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/round", s.handleRound)
	r.Get("/cards/{id}", s.handleCard)
	r.Route("/rounds/{id}", func(r chi.Router) {
		r.Get("/draws", s.handleDraws)
		r.Get("/participants", s.handleParticipants)
	})
	r.Get("/ws", s.handleWebSocket)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

// handleRound resolves the round at ?at= (default now). Cards given in ?cards=
// join whichever round that time resolves to, and are dropped from the view
// when they end that round before the requested time.
func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	now := s.clock.Now().Unix()
	if at := r.URL.Query().Get("at"); at != "" {
		t, err := strconv.ParseInt(at, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid time %q", at))
			return
		}
		if err := s.resolver.Params().ValidateAt(t); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		now = t
	}

	cards, err := s.parseCards(r.URL.Query().Get("cards"), selection.MaxCards)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, cards := s.resolveCards(now, cards)
	who := Viewer{Name: s.cfg.Player.Name, ID: s.cfg.Player.ID, Cards: cards}
	writeJSON(w, http.StatusOK, s.newRoundViewData(v, who))
}

type cardResponse struct {
	ID      int              `json:"id"`
	Numbers [card.Size]int   `json:"numbers"`
	Columns map[string][]int `json:"columns"`
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "card id must be an integer")
		return
	}
	if err := s.resolver.Params().ValidateCard(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := card.Generate(id)
	resp := cardResponse{ID: id, Numbers: c.Numbers, Columns: make(map[string][]int, card.Columns)}
	for col, letter := range card.Letters() {
		resp.Columns[letter] = c.Numbers[col*card.Rows : (col+1)*card.Rows]
	}
	writeJSON(w, http.StatusOK, resp)
}

type drawsResponse struct {
	RoundID int64    `json:"roundId"`
	Draws   []int    `json:"draws"`
	Calls   []string `json:"calls"`
}

func (s *Server) handleDraws(w http.ResponseWriter, r *http.Request) {
	id, ok := s.roundIDParam(w, r)
	if !ok {
		return
	}

	seq := round.BuildDrawSequence(id, s.resolver.Params().RoundSeedMultiplier)
	resp := drawsResponse{RoundID: id, Draws: seq.Slice(), Calls: make([]string, 0, len(seq))}
	for _, n := range seq {
		resp.Calls = append(resp.Calls, card.Call(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

type participantsResponse struct {
	RoundID      int64 `json:"roundId"`
	Local        []int `json:"local"`
	Participants []int `json:"participants"`
}

func (s *Server) handleParticipants(w http.ResponseWriter, r *http.Request) {
	id, ok := s.roundIDParam(w, r)
	if !ok {
		return
	}
	cards, err := s.parseCards(r.URL.Query().Get("cards"), selection.MaxCards)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	set := round.BuildParticipants(s.resolver.Params(), id, cards)
	writeJSON(w, http.StatusOK, participantsResponse{
		RoundID:      id,
		Local:        append([]int{}, cards...),
		Participants: set.IDs(),
	})
}

func (s *Server) roundIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "round id must be an integer")
		return 0, false
	}
	if err := s.resolver.Params().ValidateRoundID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

// parseCards reads a comma separated list of distinct card ids.
func (s *Server) parseCards(raw string, limit int) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) > limit {
		return nil, fmt.Errorf("at most %d cards may be selected", limit)
	}

	p := s.resolver.Params()
	cards := make([]int, 0, len(parts))
	seen := make(map[int]bool, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid card id %q", part)
		}
		if err := p.ValidateCard(id); err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, fmt.Errorf("card %d selected twice", id)
		}
		seen[id] = true
		cards = append(cards, id)
	}
	return cards, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
