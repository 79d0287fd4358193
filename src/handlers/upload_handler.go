package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/herry-chi/dashboard-operation-lifex/src/config"
	"github.com/herry-chi/dashboard-operation-lifex/src/logger"
	"github.com/herry-chi/dashboard-operation-lifex/src/parsers"
	"github.com/herry-chi/dashboard-operation-lifex/src/security/validation"
	"github.com/herry-chi/dashboard-operation-lifex/src/services"
	"github.com/herry-chi/dashboard-operation-lifex/src/utils"
)

type UploadHandler struct {
	dashboardService services.DashboardService
}

func NewUploadHandler(service services.DashboardService) *UploadHandler {
	return &UploadHandler{
		dashboardService: service,
	}
}

func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateUpload(file, fileHeader); err != nil {
		logger.L.Warn("Upload file validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.L.Info("Processing upload request", "filename", fileHeader.Filename, "size", fileHeader.Size)
	result, err := h.dashboardService.ProcessUpload(fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, parsers.ErrUnsupportedFormat):
			utils.SendJSONError(w, fmt.Sprintf("Unsupported file format: %v", err), http.StatusBadRequest)
		case errors.Is(err, parsers.ErrInvalidStructure):
			utils.SendJSONError(w, fmt.Sprintf("Invalid file structure: %v", err), http.StatusBadRequest)
		case errors.Is(err, parsers.ErrParsingFailed):
			utils.SendJSONError(w, fmt.Sprintf("Error parsing file: %v", err), http.StatusBadRequest)
		default:
			logger.L.Error("Internal error processing upload", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSON(w, result, http.StatusOK)
}

func (h *UploadHandler) HandleClearDataset(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboardService.ClearDataset(); err != nil {
		logger.L.Error("Error clearing dataset", "error", err)
		utils.SendJSONError(w, "Failed to clear dataset", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "dataset cleared"}, http.StatusOK)
}

func (h *UploadHandler) HandleDatasetMeta(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.dashboardService.Meta(), http.StatusOK)
}
