package server

import (
	"context"
	"errors"
	"net/http"

	"datamodeler/internal/database"
	"datamodeler/internal/digest"
)

type generateRequest struct {
	database.ConnectionInput
	Tables digest.Selection `json:"tables"`
}

type generateResponse struct {
	Model string `json:"model"`
}

// handleGenerateDataModel builds a digest of the selected columns, composes
// the prompt and returns the raw completion.
func (s *Server) handleGenerateDataModel(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLog(r)

	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		renderError(w, logger, ValidationFailure, err)
		return
	}
	if req.Tables == nil {
		renderError(w, logger, ValidationFailure, errors.New("tables is required"))
		return
	}

	conn := database.Resolve(req.ConnectionInput, s.cfg.DefaultConnection)
	logger.Debug("resolved connection", "conn", conn.String(), "tables", len(req.Tables))

	dbCtx, cancel := context.WithTimeout(r.Context(), s.cfg.DBTimeout)
	d, err := digest.Build(dbCtx, s.catalog, conn, req.Tables)
	cancel()
	if err != nil {
		renderError(w, logger, ModelGenerationFailure, err)
		return
	}

	prompt, err := s.composer.Compose(d)
	if err != nil {
		renderError(w, logger, ModelGenerationFailure, err)
		return
	}
	logger.Debug("composed prompt", "blocks", len(d), "promptLen", len(prompt))

	genCtx, cancel := context.WithTimeout(r.Context(), s.cfg.LLMTimeout)
	defer cancel()

	model, err := s.generator.Generate(genCtx, prompt)
	if err != nil {
		renderError(w, logger, ModelGenerationFailure, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Model: model})
}
