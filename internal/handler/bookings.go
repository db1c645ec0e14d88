package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-agency/internal/middleware"
	"github.com/iliyamo/travel-agency/internal/model"
	"github.com/iliyamo/travel-agency/internal/service"
)

// SharedPathPrefix is where share-token previews are served.
const SharedPathPrefix = "/v1/bookings/shared/"

// SharedPath is the preview URL path for a share token.
func SharedPath(token string) string { return SharedPathPrefix + token }

// Evicter drops a cached response by URL path.
type Evicter interface {
	Evict(ctx context.Context, path string)
}

// BookingsHandler serves group bookings and the share-token join flow.
type BookingsHandler struct {
	Bookings *service.Bookings
	Cache    Evicter // optional
}

func NewBookingsHandler(b *service.Bookings, cache Evicter) *BookingsHandler {
	return &BookingsHandler{Bookings: b, Cache: cache}
}

type createBookingReq struct {
	ItemType   string             `json:"itemType"`
	ItemID     string             `json:"itemId"`
	ItemData   model.ItemSnapshot `json:"itemData"`
	TravelDate string             `json:"travelDate"`
	Guests     int                `json:"guests"`
}

type joinReq struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
}

func (h *BookingsHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.Bookings.Create(ctx, uid, service.CreateBookingInput{
		ItemType:   req.ItemType,
		ItemID:     req.ItemID,
		ItemData:   req.ItemData,
		TravelDate: req.TravelDate,
		Guests:     req.Guests,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"booking": b})
}

func (h *BookingsHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Bookings.ListMine(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	if list == nil {
		list = []model.Booking{}
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

func (h *BookingsHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.Bookings.Get(ctx, c.Param("id"), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// Cancel cancels an owned booking and drops its cached share preview.
func (h *BookingsHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.Bookings.Cancel(ctx, c.Param("id"), uid)
	if err != nil {
		return respondError(c, err)
	}
	if h.Cache != nil && b.ShareToken != "" {
		h.Cache.Evict(ctx, SharedPath(b.ShareToken))
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

func (h *BookingsHandler) Share(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	token, err := h.Bookings.ShareToken(ctx, c.Param("id"), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"shareToken": token, "sharePath": SharedPath(token)})
}

// Shared previews the booking behind a share token.  No login needed.
func (h *BookingsHandler) Shared(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.Bookings.ValidateShareToken(ctx, c.Param("token"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b.Preview()})
}

// Join adds the caller to the booking behind a share token.  Without a
// bearer token the caller joins as a guest identified by email.  The
// cached preview is dropped so its participant count stays current.
func (h *BookingsHandler) Join(c echo.Context) error {
	var req joinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Bookings.JoinByToken(ctx, c.Param("token"), service.JoinInput{
		UserID: middleware.CurrentUserID(c),
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
	})
	if err != nil {
		return respondError(c, err)
	}
	if h.Cache != nil {
		h.Cache.Evict(ctx, SharedPath(c.Param("token")))
	}
	return c.JSON(http.StatusCreated, echo.Map{"participant": p})
}
