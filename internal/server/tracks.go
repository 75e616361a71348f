package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/repositories"
)

// TrackStore is the catalog table behind the REST routes.
// [repositories.TrackRepository] implements it.
type TrackStore interface {
	List(ctx context.Context) ([]models.TrackRow, error)
	Create(ctx context.Context, req models.CreateTrackRequest) (*models.TrackRow, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Seed(ctx context.Context) (*repositories.SeedResult, error)
	Ping(ctx context.Context) (*repositories.Health, error)
}

// TrackHandler serves the /api catalog routes.
type TrackHandler struct {
	store  TrackStore
	guard  []gin.HandlerFunc
	logger *log.Logger
}

// NewTrackHandler wires store to the catalog routes. Guard middleware runs
// before every mutating route.
func NewTrackHandler(store TrackStore, logger *log.Logger, guard ...gin.HandlerFunc) *TrackHandler {
	return &TrackHandler{store: store, guard: guard, logger: logger}
}

// Register implements [Handler].
func (h *TrackHandler) Register(api *gin.RouterGroup) {
	api.GET("/tracks", h.List)
	api.GET("/health", h.Health)

	writes := api.Group("", h.guard...)
	writes.POST("/tracks", h.Create)
	writes.DELETE("/tracks/:id", h.Delete)
	writes.POST("/seed", h.Seed)
}

// List returns every track, newest first.
func (h *TrackHandler) List(c *gin.Context) {
	rows, err := h.store.List(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Create inserts a track. Title and artist are required; other fields
// default to empty and genre to "Unknown".
func (h *TrackHandler) Create(c *gin.Context) {
	var req models.CreateTrackRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: "Request body too large"})
		case errors.Is(err, io.EOF):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Request body is empty or not parsed"})
		default:
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Request body is empty or not parsed", Details: err.Error()})
		}
		return
	}

	if req.Validate() != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.MsgMissingFields,
			Received: map[string]bool{
				"title":  present(req.Title),
				"artist": present(req.Artist),
				"album":  present(req.Album),
			},
		})
		return
	}

	row, err := h.store.Create(c.Request.Context(), req)
	if err != nil {
		h.serverError(c, err)
		return
	}

	h.logger.Info("track created", "id", row.ID, "title", row.Title, "artist", row.Artist)
	c.JSON(http.StatusCreated, row)
}

// Delete removes a track by id. An absent id still succeeds.
func (h *TrackHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Track ID is required"})
		return
	}

	removed, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		h.serverError(c, err)
		return
	}

	h.logger.Info("track deleted", "id", id, "removed", removed)
	c.JSON(http.StatusOK, models.MessageResponse{Message: models.MsgTrackDeleted})
}

// Seed loads the starter catalog into an empty table.
func (h *TrackHandler) Seed(c *gin.Context) {
	res, err := h.store.Seed(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Seeding failed", Details: err.Error()})
		return
	}

	if !res.Seeded {
		c.JSON(http.StatusOK, models.MessageResponse{Message: models.MsgAlreadySeeded, Count: res.Count})
		return
	}

	h.logger.Info("catalog seeded", "count", res.Count)
	c.JSON(http.StatusOK, models.MessageResponse{Message: models.MsgSeeded})
}

// Health reports whether the database answers.
func (h *TrackHandler) Health(c *gin.Context) {
	health, err := h.store.Ping(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, models.HealthResponse{
			Status:      models.HealthStatusError,
			Message:     models.MsgUnhealthy,
			ErrorDetail: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:        models.HealthStatusOK,
		Message:       models.MsgHealthy,
		ServerTime:    health.ServerTime.UTC().Format(time.RFC3339),
		SQLiteVersion: health.SQLiteVersion,
	})
}

func (h *TrackHandler) serverError(c *gin.Context, err error) {
	c.Error(err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: models.MsgServerError, Details: err.Error()})
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}
