package handlers

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"

	"campaignkit/internal/campaign"
	"campaignkit/internal/draw"
	"campaignkit/internal/models"
	"campaignkit/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

// HTTPHandler holds the dependencies for the HTTP handlers.
type HTTPHandler struct {
	service *services.CampaignService
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(service *services.CampaignService) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/campaigns", h.CreateCampaign)
	router.GET("/campaigns/:id", h.GetCampaign)
	router.PATCH("/campaigns/:id", h.PatchCampaign)
	router.POST("/campaigns/:id/publish", h.PublishCampaign)
	router.DELETE("/campaigns/:id", h.DeleteCampaign)

	router.POST("/campaigns/:id/questions", h.AddQuestion)
	router.PUT("/campaigns/:id/questions/:index", h.UpdateQuestion)
	router.POST("/campaigns/:id/questions/:index/duplicate", h.DuplicateQuestion)
	router.DELETE("/campaigns/:id/questions/:index", h.DeleteQuestion)
	router.POST("/campaigns/:id/questions/:index/move", h.ReorderQuestion)

	router.POST("/campaigns/:id/questions/:index/answers", h.AddAnswer)
	router.DELETE("/campaigns/:id/questions/:index/answers/:answerIndex", h.DeleteAnswer)
	router.POST("/campaigns/:id/questions/:index/answers/:answerIndex/move", h.ReorderAnswer)

	router.POST("/campaigns/:id/segments", h.AddSegment)
	router.POST("/campaigns/:id/segments/:index/duplicate", h.DuplicateSegment)
	router.DELETE("/campaigns/:id/segments/:index", h.DeleteSegment)
	router.POST("/campaigns/:id/segments/:index/move", h.ReorderSegment)
	router.PUT("/campaigns/:id/prizes", h.UpsertPrize)

	router.POST("/campaigns/:id/spin", h.Spin)
	router.GET("/campaigns/:id/participations", h.ListParticipations)
	router.GET("/campaigns/:id/participations/export", h.ExportParticipationsCSV)
}

// respondError maps service and store errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCampaignNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, campaign.ErrIndexOutOfRange),
		errors.Is(err, campaign.ErrMinimumCount):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, campaign.ErrInvalidConfiguration),
		errors.Is(err, draw.ErrNoSegments),
		errors.Is(err, services.ErrNoWheel):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Errorf("Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// indexParam parses a numeric path parameter.
func indexParam(c *gin.Context, name string) (int, bool) {
	i, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return i, true
}

type createCampaignRequest struct {
	Name     string      `json:"name" binding:"required"`
	Mode     models.Mode `json:"mode" binding:"required"`
	Template string      `json:"template"`
}

// CreateCampaign starts a new draft, optionally seeded from a template.
func (h *HTTPHandler) CreateCampaign(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.service.Create(req.Name, req.Mode, req.Template)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetCampaign returns the current configuration tree.
func (h *HTTPHandler) GetCampaign(c *gin.Context) {
	result, err := h.service.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PatchCampaign applies a sparse top-level update to the tree.
func (h *HTTPHandler) PatchCampaign(c *gin.Context) {
	var patch models.CampaignPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.ApplyPatch(c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PublishCampaign validates the tree and flips it to published.
func (h *HTTPHandler) PublishCampaign(c *gin.Context) {
	result, err := h.service.Publish(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteCampaign drops the editing session.
func (h *HTTPHandler) DeleteCampaign(c *gin.Context) {
	h.service.ClearSession(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// AddQuestion appends a question to the campaign.
func (h *HTTPHandler) AddQuestion(c *gin.Context) {
	var q models.Question
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.AddQuestion(c.Param("id"), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateQuestion replaces the content of the question at a position,
// keeping its id and number.
func (h *HTTPHandler) UpdateQuestion(c *gin.Context) {
	index, ok := indexParam(c, "index")
	if !ok {
		return
	}
	var q models.Question
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.UpdateQuestion(c.Param("id"), index, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DuplicateQuestion copies the question at a position.
func (h *HTTPHandler) DuplicateQuestion(c *gin.Context) {
	index, ok := indexParam(c, "index")
	if !ok {
		return
	}
	result, err := h.service.DuplicateQuestion(c.Param("id"), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteQuestion removes the question at a position.
func (h *HTTPHandler) DeleteQuestion(c *gin.Context) {
	index, ok := indexParam(c, "index")
	if !ok {
		return
	}
	result, err := h.service.DeleteQuestion(c.Param("id"), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type moveRequest struct {
	To int `json:"to"`
}

// ReorderQuestion moves the question at a position to a new one.
func (h *HTTPHandler) ReorderQuestion(c *gin.Context) {
	from, ok := indexParam(c, "index")
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.ReorderQuestion(c.Param("id"), from, req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AddAnswer appends an answer to one question. Answer operations address
// the question by its position; the service resolves the index under its
// own lock.
func (h *HTTPHandler) AddAnswer(c *gin.Context) {
	questionIndex, ok := indexParam(c, "index")
	if !ok {
		return
	}
	var a models.Answer
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.AddAnswer(c.Param("id"), questionIndex, a)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteAnswer removes an answer from one question.
func (h *HTTPHandler) DeleteAnswer(c *gin.Context) {
	questionIndex, ok := indexParam(c, "index")
	if !ok {
		return
	}
	answerIndex, ok := indexParam(c, "answerIndex")
	if !ok {
		return
	}
	result, err := h.service.DeleteAnswer(c.Param("id"), questionIndex, answerIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReorderAnswer moves the answer at a position to a new one.
func (h *HTTPHandler) ReorderAnswer(c *gin.Context) {
	questionIndex, ok := indexParam(c, "index")
	if !ok {
		return
	}
	from, ok := indexParam(c, "answerIndex")
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.ReorderAnswer(c.Param("id"), questionIndex, from, req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AddSegment appends a wheel segment.
func (h *HTTPHandler) AddSegment(c *gin.Context) {
	var seg models.Segment
	if err := c.ShouldBindJSON(&seg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.AddSegment(c.Param("id"), seg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DuplicateSegment copies the segment at a position.
func (h *HTTPHandler) DuplicateSegment(c *gin.Context) {
	index, ok := indexParam(c, "index")
	if !ok {
		return
	}
	result, err := h.service.DuplicateSegment(c.Param("id"), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteSegment removes the segment at a position.
func (h *HTTPHandler) DeleteSegment(c *gin.Context) {
	index, ok := indexParam(c, "index")
	if !ok {
		return
	}
	result, err := h.service.DeleteSegment(c.Param("id"), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReorderSegment moves the segment at a position to a new one.
func (h *HTTPHandler) ReorderSegment(c *gin.Context) {
	from, ok := indexParam(c, "index")
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.ReorderSegment(c.Param("id"), from, req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpsertPrize adds or replaces a wheel prize.
func (h *HTTPHandler) UpsertPrize(c *gin.Context) {
	var p models.Prize
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.UpsertPrize(c.Param("id"), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Spin runs one draw and returns the result the animation must land on.
func (h *HTTPHandler) Spin(c *gin.Context) {
	result, err := h.service.Spin(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListParticipations returns the recorded plays for a campaign.
func (h *HTTPHandler) ListParticipations(c *gin.Context) {
	parts, err := h.service.Participations(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, parts)
}

// ExportParticipationsCSV downloads the participation log as a CSV file.
func (h *HTTPHandler) ExportParticipationsCSV(c *gin.Context) {
	parts, err := h.service.Participations(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=participations.csv")

	// Add BOM to ensure UTF-8 compatibility in Excel
	c.Writer.Write([]byte("\xef\xbb\xbf"))

	w := csv.NewWriter(c.Writer)

	if err := w.Write([]string{"id", "campaignId", "won", "prizeId", "segmentId", "playedAt"}); err != nil {
		logger.Infof("Error writing CSV header: %v", err)
		c.String(http.StatusInternalServerError, "Error writing CSV")
		return
	}

	for _, p := range parts {
		row := []string{
			p.ID,
			p.CampaignID,
			strconv.FormatBool(p.Won),
			p.PrizeID,
			p.SegmentID,
			p.PlayedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(row); err != nil {
			logger.Infof("Error writing CSV row: %v", err)
			c.String(http.StatusInternalServerError, "Error writing CSV")
			return
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		logger.Infof("Error flushing CSV writer: %v", err)
		c.String(http.StatusInternalServerError, "Error writing CSV")
	}
}
