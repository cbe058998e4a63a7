package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"complaint-engine/internal/http/middleware"
	"complaint-engine/internal/model"
	"complaint-engine/internal/service"
	"complaint-engine/internal/view"
)

type Handler struct {
	complaintService  *service.ComplaintService
	resolutionService *service.ResolutionService
	refresher         *service.Refresher
	log               zerolog.Logger
}

func NewHandler(
	complaintService *service.ComplaintService,
	resolutionService *service.ResolutionService,
	refresher *service.Refresher,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		complaintService:  complaintService,
		resolutionService: resolutionService,
		refresher:         refresher,
		log:               log,
	}
}

func (h *Handler) listComplaints(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	q := parseViewQuery(c)

	views, err := h.complaintService.List(c.Request.Context(), principal, q)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": views}))
}

func (h *Handler) getComplaint(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid complaint id"))
		return
	}

	complaint, err := h.complaintService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(complaint))
}

func (h *Handler) createComplaint(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		Content       string   `json:"content" binding:"required"`
		Address       string   `json:"address"`
		Pincode       string   `json:"pincode"`
		Latitude      *float64 `json:"latitude"`
		Longitude     *float64 `json:"longitude"`
		ManualAddress string   `json:"manual_address"`
		Department    string   `json:"department" binding:"required"`
		Images        []string `json:"images"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.CreateComplaintInput{
		Content: req.Content,
		Address: req.Address,
		Pincode: req.Pincode,
		Location: model.Location{
			Latitude:      req.Latitude,
			Longitude:     req.Longitude,
			ManualAddress: strings.TrimSpace(req.ManualAddress),
		},
		Department: req.Department,
		Images:     req.Images,
	}

	complaint, err := h.complaintService.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(complaint))
}

func (h *Handler) toggleUpvote(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid complaint id"))
		return
	}

	// The client reports the vote state it is rendering; the toggle is
	// computed against that snapshot and reconciled with the remote result.
	var req struct {
		UpvoteCount int  `json:"upvote_count"`
		HasUpvoted  bool `json:"has_upvoted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	state, err := h.complaintService.ToggleUpvote(c.Request.Context(), principal, id, service.VoteState{
		UpvoteCount: req.UpvoteCount,
		HasUpvoted:  req.HasUpvoted,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(state))
}

func (h *Handler) reportFake(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid complaint id"))
		return
	}

	complaint, err := h.complaintService.ReportFake(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(complaint))
}

func (h *Handler) deleteComplaint(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid complaint id"))
		return
	}

	if err := h.complaintService.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "deleted"}))
}

func (h *Handler) assignComplaint(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid complaint id"))
		return
	}

	var req struct {
		FieldWorkerID           string `json:"fieldworker_id" binding:"required"`
		ExpectedResolutionTime  string `json:"expected_resolution_time"`
		PredictedResolutionDays *int   `json:"predicted_resolution_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	workerID, err := uuid.Parse(strings.TrimSpace(req.FieldWorkerID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid fieldworker_id"))
		return
	}

	input := service.AssignInput{
		FieldWorkerID:           workerID,
		PredictedResolutionDays: req.PredictedResolutionDays,
	}
	if strings.TrimSpace(req.ExpectedResolutionTime) != "" {
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ExpectedResolutionTime))
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid expected_resolution_time"))
			return
		}
		input.ExpectedResolutionTime = &ts
	}

	complaint, err := h.resolutionService.Assign(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(complaint))
}

func (h *Handler) submitResolution(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid complaint id"))
		return
	}

	var req struct {
		Description string   `json:"description"`
		Images      []string `json:"images"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	resolution, err := h.resolutionService.SubmitResolution(c.Request.Context(), principal, id, service.SubmitResolutionInput{
		Description: req.Description,
		Images:      req.Images,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(resolution))
}

func (h *Handler) listResolutions(c *gin.Context) {
	if _, ok := middleware.MustPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid complaint id"))
		return
	}

	resolutions, err := h.resolutionService.Resolutions(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"resolutions": resolutions}))
}

func (h *Handler) respondResolution(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid complaint id"))
		return
	}

	var req struct {
		Approved *bool  `json:"approved" binding:"required"`
		Feedback string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	outcome, err := h.resolutionService.Respond(c.Request.Context(), principal, id, *req.Approved, req.Feedback)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"outcome": outcome}))
}

// feed serves the periodically refreshed snapshot so home views can poll
// without fanning every request out to the remote service.
func (h *Handler) feed(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	complaints, refreshedAt := h.refresher.Snapshot()
	views, err := h.complaintService.Feed(c.Request.Context(), principal, complaints, parseViewQuery(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{
		"items":        views,
		"refreshed_at": refreshedAt,
	}))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNoPendingResolution):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrAlreadyReported):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrActionInFlight):
		c.JSON(http.StatusTooManyRequests, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrRemoteFailure):
		c.JSON(http.StatusBadGateway, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func parseViewQuery(c *gin.Context) view.Query {
	return view.Query{
		Department: strings.TrimSpace(c.Query("department")),
		Pincode:    strings.TrimSpace(c.Query("pincode")),
		Sort:       model.SortKey(strings.TrimSpace(c.Query("sort_by"))),
		Order:      model.SortOrder(strings.TrimSpace(c.Query("order"))),
		Search:     strings.TrimSpace(c.Query("q")),
	}
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}
