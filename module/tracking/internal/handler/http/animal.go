package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/service"
)

type queryService interface {
	Latest(ctx context.Context, animalID string) (*domain.LocationReport, error)
	History(ctx context.Context, query *domain.HistoryQuery) ([]domain.LocationReport, error)
	Animals(ctx context.Context) ([]string, error)
	AnalyzeMovement(ctx context.Context, query *domain.HistoryQuery) (*domain.MovementAnalysis, error)
}

type ingestService interface {
	Ingest(ctx context.Context, report *domain.LocationReport) (*service.IngestResult, error)
}

type batchService interface {
	IngestBatch(ctx context.Context, reports []domain.LocationReport) *service.BatchResult
}

type AnimalHandler struct {
	query  queryService
	ingest ingestService
	batch  batchService
}

func NewAnimalHandler(query queryService, ingest ingestService, batch batchService) *AnimalHandler {
	return &AnimalHandler{query: query, ingest: ingest, batch: batch}
}

func (h *AnimalHandler) Register(r *gin.RouterGroup) {
	r.GET("/animals", h.GetAnimals)
	r.GET("/animals/:animal_id/location", h.GetLatestLocation)
	r.GET("/animals/:animal_id/history", h.GetHistory)
	r.GET("/animals/:animal_id/movement", h.GetMovementAnalysis)
	r.POST("/reports", h.PostReport)
	r.POST("/reports/batch", h.PostReportBatch)
}

func (h *AnimalHandler) GetAnimals(c *gin.Context) {
	animals, err := h.query.Animals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch animals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"animals": animals})
}

func (h *AnimalHandler) GetLatestLocation(c *gin.Context) {
	animalID := c.Param("animal_id")

	report, err := h.query.Latest(c.Request.Context(), animalID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "animal not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AnimalHandler) GetHistory(c *gin.Context) {
	query, ok := h.rangeQuery(c)
	if !ok {
		return
	}
	reports, err := h.query.History(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *AnimalHandler) GetMovementAnalysis(c *gin.Context) {
	query, ok := h.rangeQuery(c)
	if !ok {
		return
	}
	analysis, err := h.query.AnalyzeMovement(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze movement"})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (h *AnimalHandler) PostReport(c *gin.Context) {
	var report domain.LocationReport
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report payload"})
		return
	}

	result, err := h.ingest.Ingest(c.Request.Context(), &report)
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinate),
		errors.Is(err, domain.ErrFutureTimestamp),
		errors.Is(err, domain.ErrStaleReport):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAnimalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingest failed"})
	default:
		c.JSON(http.StatusOK, result)
	}
}

func (h *AnimalHandler) PostReportBatch(c *gin.Context) {
	var reports []domain.LocationReport
	if err := c.ShouldBindJSON(&reports); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch payload"})
		return
	}

	result := h.batch.IngestBatch(c.Request.Context(), reports)
	c.JSON(http.StatusOK, result)
}

func (h *AnimalHandler) rangeQuery(c *gin.Context) (*domain.HistoryQuery, bool) {
	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return nil, false
	}
	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return nil, false
	}
	return &domain.HistoryQuery{
		AnimalID: c.Param("animal_id"),
		Start:    time.Unix(start, 0),
		End:      time.Unix(end, 0),
	}, true
}
