package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/skohli21/utility-bill-analyzer/dto"
	"github.com/skohli21/utility-bill-analyzer/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type BillHandler struct {
	billService   *service.BillService
	reportService *service.ReportService
	logger        *logrus.Logger
}

func NewBillHandler(billService *service.BillService, reportService *service.ReportService, logger *logrus.Logger) *BillHandler {
	return &BillHandler{
		billService:   billService,
		reportService: reportService,
		logger:        logger,
	}
}

// AnalyzeDocuments handles POST /bills/analyze
func (h *BillHandler) AnalyzeDocuments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}

	files := form.File["files[]"]
	if len(files) == 0 {
		h.sendError(c, http.StatusBadRequest, "No files provided", nil)
		return
	}

	request := &dto.AnalyzeRequest{
		Files:     files,
		SessionID: c.PostForm("session_id"),
	}

	h.logger.Infof("Analyzing %d uploaded documents", len(files))

	response, err := h.billService.AnalyzeDocuments(request)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to analyze documents", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// AnalyzePasted handles POST /bills/paste
func (h *BillHandler) AnalyzePasted(c *gin.Context) {
	var request dto.PasteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	response, err := h.billService.AnalyzePasted(&request)
	if err != nil {
		switch {
		case errors.Is(err, dto.ErrNoUsableRows), errors.Is(err, dto.ErrTextTooLarge):
			h.sendError(c, http.StatusBadRequest, "Failed to parse pasted data", err)
		default:
			h.sendError(c, http.StatusInternalServerError, "Failed to parse pasted data", err)
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetCollection handles GET /sessions/:id
func (h *BillHandler) GetCollection(c *gin.Context) {
	response, err := h.billService.GetCollection(c.Param("id"))
	if err != nil {
		h.sendError(c, http.StatusNotFound, "Session not found", err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// ExportWorkbook handles GET /sessions/:id/export
func (h *BillHandler) ExportWorkbook(c *gin.Context) {
	snapshot, err := h.billService.GetCollection(c.Param("id"))
	if err != nil {
		h.sendError(c, http.StatusNotFound, "Session not found", err)
		return
	}

	workbook, err := h.reportService.BuildWorkbook(snapshot.Records, snapshot.Summary)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to build report", err)
		return
	}

	filename := fmt.Sprintf("bill_report_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, workbook)
}

// EmailReport handles POST /sessions/:id/email
func (h *BillHandler) EmailReport(c *gin.Context) {
	var request dto.EmailRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	snapshot, err := h.billService.GetCollection(c.Param("id"))
	if err != nil {
		h.sendError(c, http.StatusNotFound, "Session not found", err)
		return
	}

	if err := h.reportService.EmailSummary(request.To, snapshot.Records, snapshot.Summary); err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to send report", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent", "to": request.To})
}

// EndSession handles DELETE /sessions/:id
func (h *BillHandler) EndSession(c *gin.Context) {
	if !h.billService.EndSession(c.Param("id")) {
		h.sendError(c, http.StatusNotFound, "Session not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// sendError sends a structured error response
func (h *BillHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		h.logger.Errorf("%s: %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "ANALYSIS_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
