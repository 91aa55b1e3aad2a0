package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"datamodeler/internal/database"
)

type previewRequest struct {
	database.ConnectionInput
	TableName string `json:"table_name"`
}

type previewResponse struct {
	Columns []database.Column `json:"columns"`
}

func (s *Server) handlePreviewTable(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLog(r)

	var req previewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		renderError(w, logger, ValidationFailure, err)
		return
	}
	if strings.TrimSpace(req.TableName) == "" {
		renderError(w, logger, ValidationFailure, errors.New("table_name is required"))
		return
	}

	conn := database.Resolve(req.ConnectionInput, s.cfg.DefaultConnection)
	logger.Debug("resolved connection", "conn", conn.String(), "table", req.TableName)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.DBTimeout)
	defer cancel()

	columns, err := s.catalog.DescribeTable(ctx, conn, req.TableName)
	if err != nil {
		renderError(w, logger, PreviewFailure, err)
		return
	}

	writeJSON(w, http.StatusOK, previewResponse{Columns: columns})
}
