package server

import (
	"context"
	"net/http"

	"datamodeler/internal/database"
)

type connectResponse struct {
	Status string   `json:"status"`
	Tables []string `json:"tables"`
}

// handleConnectDB resolves the caller's connection, connects and lists the
// tables of the configured schema.
func (s *Server) handleConnectDB(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLog(r)

	var in database.ConnectionInput
	if err := decodeJSON(w, r, &in); err != nil {
		renderError(w, logger, ValidationFailure, err)
		return
	}

	conn := database.Resolve(in, s.cfg.DefaultConnection)
	logger.Debug("resolved connection", "conn", conn.String())

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.DBTimeout)
	defer cancel()

	tables, err := s.catalog.ListTables(ctx, conn)
	if err != nil {
		renderError(w, logger, ConnectionFailure, err)
		return
	}

	writeJSON(w, http.StatusOK, connectResponse{Status: "success", Tables: tables})
}
