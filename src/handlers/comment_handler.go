package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/herry-chi/dashboard-operation-lifex/src/logger"
	"github.com/herry-chi/dashboard-operation-lifex/src/services"
	"github.com/herry-chi/dashboard-operation-lifex/src/utils"
)

type CommentHandler struct {
	commentService services.ChartCommentService
}

func NewCommentHandler(service services.ChartCommentService) *CommentHandler {
	return &CommentHandler{
		commentService: service,
	}
}

func chartIDFromRequest(r *http.Request) (string, bool) {
	chartID := strings.TrimSpace(r.PathValue("chartID"))
	return chartID, chartID != ""
}

func (h *CommentHandler) HandleGetComment(w http.ResponseWriter, r *http.Request) {
	chartID, ok := chartIDFromRequest(r)
	if !ok {
		utils.SendJSONError(w, "chart ID is required", http.StatusBadRequest)
		return
	}

	comment, err := h.commentService.Get(chartID)
	if err != nil {
		if errors.Is(err, services.ErrCommentNotFound) {
			utils.SendJSONError(w, "No comment for this chart", http.StatusNotFound)
			return
		}
		logger.L.Error("Error reading chart comment", "chartID", chartID, "error", err)
		utils.SendJSONError(w, "Failed to read comment", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, comment, http.StatusOK)
}

func (h *CommentHandler) HandleUpsertComment(w http.ResponseWriter, r *http.Request) {
	chartID, ok := chartIDFromRequest(r)
	if !ok {
		utils.SendJSONError(w, "chart ID is required", http.StatusBadRequest)
		return
	}

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	comment, err := h.commentService.Upsert(chartID, payload.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCommentEmpty):
			utils.SendJSONError(w, "Comment content is empty after sanitization", http.StatusBadRequest)
		case errors.Is(err, services.ErrCommentTooLong):
			utils.SendJSONError(w, "Comment content too long", http.StatusBadRequest)
		default:
			logger.L.Error("Error saving chart comment", "chartID", chartID, "error", err)
			utils.SendJSONError(w, "Failed to save comment", http.StatusInternalServerError)
		}
		return
	}
	utils.SendJSON(w, comment, http.StatusOK)
}

func (h *CommentHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	chartID, ok := chartIDFromRequest(r)
	if !ok {
		utils.SendJSONError(w, "chart ID is required", http.StatusBadRequest)
		return
	}

	if err := h.commentService.Delete(chartID); err != nil {
		if errors.Is(err, services.ErrCommentNotFound) {
			utils.SendJSONError(w, "No comment for this chart", http.StatusNotFound)
			return
		}
		logger.L.Error("Error deleting chart comment", "chartID", chartID, "error", err)
		utils.SendJSONError(w, "Failed to delete comment", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "comment deleted"}, http.StatusOK)
}
