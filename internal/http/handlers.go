package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"despesas/internal/catalog"
	"despesas/internal/core"
	"despesas/internal/ledger"
)

const (
	maxQuestionBytes    = 4096
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type askRequest struct {
	Pergunta string `json:"pergunta"`
}

type askResponse struct {
	Resumo        string `json:"resumo"`
	Total         string `json:"total"`
	TotalCentavos int64  `json:"total_centavos"`
	Quantidade    int    `json:"quantidade"`
	PeriodoDe     string `json:"periodo_de"`
	PeriodoAte    string `json:"periodo_ate"`
	Categoria     string `json:"categoria,omitempty"`
	TextoLivre    string `json:"texto_livre,omitempty"`
}

type categoryResponse struct {
	ID   string `json:"id,omitempty"`
	Nome string `json:"nome"`
}

type historyResponse struct {
	ID         int64  `json:"id"`
	Pergunta   string `json:"pergunta"`
	PeriodoDe  string `json:"periodo_de"`
	PeriodoAte string `json:"periodo_ate"`
	Categoria  string `json:"categoria,omitempty"`
	TextoLivre string `json:"texto_livre,omitempty"`
	Total      string `json:"total"`
	Quantidade int    `json:"quantidade"`
	CriadoEm   string `json:"criado_em"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuestionBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo JSON inválido")
		return
	}

	answer, err := s.asker.Ask(r.Context(), req.Pergunta)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	resp := askResponse{
		Resumo:        answer.Summary,
		Total:         answer.Total.FormatBRL(),
		TotalCentavos: answer.Total.Cents,
		Quantidade:    answer.Count,
		PeriodoDe:     answer.Analysis.Period.From.String(),
		PeriodoAte:    answer.Analysis.Period.To.String(),
		TextoLivre:    answer.Analysis.Residual,
	}
	if answer.Analysis.Category != nil {
		resp.Categoria = answer.Analysis.Category.Name
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.asker.Categories(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	resp := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		resp = append(resp, categoryResponse{ID: c.ID, Nome: c.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit inválido")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	recs, err := s.asker.History(r.Context(), limit)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	resp := make([]historyResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, historyResponse{
			ID:         rec.ID,
			Pergunta:   rec.Question,
			PeriodoDe:  rec.PeriodFrom.String(),
			PeriodoAte: rec.PeriodTo.String(),
			Categoria:  rec.CategoryName,
			TextoLivre: rec.Residual,
			Total:      core.Money{Cents: rec.TotalCents}.FormatBRL(),
			Quantidade: rec.ItemCount,
			CriadoEm:   rec.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleReady verifies the catalog can be loaded before reporting ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if _, err := s.asker.Categories(ctx); err != nil {
		checks["catalog"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["catalog"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// writeServiceError maps service failures onto HTTP statuses.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var apiErr *ledger.APIError
	switch {
	case errors.Is(err, core.ErrEmptyQuestion):
		writeError(w, http.StatusBadRequest, "a pergunta não pode ficar vazia")
	case errors.Is(err, catalog.ErrUnavailable):
		slog.ErrorContext(ctx, "Catalog unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "catálogo de categorias indisponível")
	case errors.As(err, &apiErr):
		slog.ErrorContext(ctx, "Ledger API error",
			"endpoint", apiErr.Endpoint,
			"status", apiErr.Status)
		writeError(w, http.StatusBadGateway, "erro ao consultar o sistema financeiro")
	default:
		slog.ErrorContext(ctx, "Unexpected error handling request", "error", err)
		writeError(w, http.StatusInternalServerError, "erro interno")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"erro": message})
}
