package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iacastillo90/petcare-booking/internal/clock"
	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/dto"
	"github.com/iacastillo90/petcare-booking/internal/httperr"
	"github.com/iacastillo90/petcare-booking/internal/httpresp"
	"github.com/iacastillo90/petcare-booking/internal/middleware"
	usecase "github.com/iacastillo90/petcare-booking/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	lc    *usecase.Lifecycle
	clock clock.Clock
}

func NewBookingHandler(lc *usecase.Lifecycle, clk clock.Clock) *BookingHandler {
	if clk == nil {
		clk = clock.System{}
	}
	return &BookingHandler{lc: lc, clock: clk}
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	b, err := h.lc.Create.Execute(c.Request.Context(), middleware.ActorFrom(c), usecase.CreateBookingInput{
		PetID:             uuid.MustParse(req.PetID),
		SitterID:          uuid.MustParse(req.SitterID),
		ServiceOfferingID: uuid.MustParse(req.ServiceOfferingID),
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Notes:             req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, dto.NewBookingDTO(b, nil))
}

// ======================================================
// GET
// ======================================================

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	view, err := h.lc.Get.Execute(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, dto.NewBookingDTO(view.Booking, view.Fee))
}

// ======================================================
// TRANSITION
// ======================================================

func (h *BookingHandler) Transition(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	b, err := h.lc.Transition.Execute(c.Request.Context(), middleware.ActorFrom(c), usecase.TransitionBookingInput{
		BookingID: id,
		Target:    target,
		Reason:    req.CancellationReason,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, dto.NewBookingDTO(b, nil))
}

// ======================================================
// LISTS
// ======================================================

func (h *BookingHandler) ListMine(c *gin.Context) {
	status, ok := statusQuery(c)
	if !ok {
		return
	}

	actor := middleware.ActorFrom(c)
	list, err := h.lc.List.ForCreator(c.Request.Context(), actor, actor.ID, status)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, dto.NewBookingList(list))
}

func (h *BookingHandler) ListForSitter(c *gin.Context) {
	sitterID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	status, ok := statusQuery(c)
	if !ok {
		return
	}

	list, err := h.lc.List.ForSitter(c.Request.Context(), middleware.ActorFrom(c), sitterID, status)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, dto.NewBookingList(list))
}

// Schedule defaults to the current UTC day.
func (h *BookingHandler) Schedule(c *gin.Context) {
	sitterID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	from := startOfDay(h.clock.Now())
	if raw := c.Query("from"); raw != "" {
		t, err := parseInstant(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_from", "from must be a date or RFC 3339 timestamp")
			return
		}
		from = t
	}

	to := from.Add(24 * time.Hour)
	if raw := c.Query("to"); raw != "" {
		t, err := parseInstant(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_to", "to must be a date or RFC 3339 timestamp")
			return
		}
		to = t
	}

	intervals, err := h.lc.Schedule.Execute(c.Request.Context(), sitterID, from, to)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, dto.NewIntervalList(intervals))
}

// ======================================================
// HELPERS
// ======================================================

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.BadRequest(c, "invalid_"+name, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func statusQuery(c *gin.Context) (*domain.Status, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	st, err := domain.ParseStatus(raw)
	if err != nil {
		httperr.Respond(c, err)
		return nil, false
	}
	return &st, true
}
