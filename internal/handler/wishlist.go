package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-agency/internal/model"
	"github.com/iliyamo/travel-agency/internal/service"
)

type WishlistHandler struct {
	Wishlists *service.Wishlists
}

func NewWishlistHandler(w *service.Wishlists) *WishlistHandler {
	return &WishlistHandler{Wishlists: w}
}

type wishlistReq struct {
	ItemType string             `json:"itemType"`
	ItemID   string             `json:"itemId"`
	ItemData model.ItemSnapshot `json:"itemData"`
}

func (h *WishlistHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := h.Wishlists.List(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	if items == nil {
		items = []model.WishlistItem{}
	}
	return c.JSON(http.StatusOK, echo.Map{"wishlist": items})
}

func (h *WishlistHandler) Add(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req wishlistReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := h.Wishlists.Add(ctx, uid, req.ItemType, req.ItemID, req.ItemData)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": item})
}

func (h *WishlistHandler) Remove(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Wishlists.Remove(ctx, uid, c.Param("itemType"), c.Param("itemId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "item removed"})
}
