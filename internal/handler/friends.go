package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-agency/internal/model"
	"github.com/iliyamo/travel-agency/internal/service"
)

// FriendsHandler serves friend codes, the request lifecycle and the
// friend-only wishlist view.
type FriendsHandler struct {
	Codes       *service.FriendCodes
	Friendships *service.Friendships
	Wishlists   *service.Wishlists
}

func NewFriendsHandler(codes *service.FriendCodes, friendships *service.Friendships, wishlists *service.Wishlists) *FriendsHandler {
	return &FriendsHandler{Codes: codes, Friendships: friendships, Wishlists: wishlists}
}

type friendRequestReq struct {
	FriendCode string `json:"friendCode"`
}

// GenerateCode issues the caller's friend code.  A caller who already has
// one gets 400 with the existing code.
func (h *FriendsHandler) GenerateCode(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	code, err := h.Codes.Generate(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"friendCode": code})
}

// GetCode returns the caller's code, or null before one was generated.
func (h *FriendsHandler) GetCode(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	code, ok, err := h.Codes.Lookup(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"friendCode": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"friendCode": code})
}

func (h *FriendsHandler) SendRequest(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req friendRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.FriendCode) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "friendCode required"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	f, err := h.Friendships.SendRequest(ctx, uid, req.FriendCode)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"friendship": f})
}

func (h *FriendsHandler) ListRequests(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	reqs, err := h.Friendships.ListPendingIncoming(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	if reqs == nil {
		reqs = []model.FriendView{}
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": reqs})
}

func (h *FriendsHandler) Accept(c echo.Context) error {
	return h.decide(c, h.Friendships.Accept)
}

func (h *FriendsHandler) Reject(c echo.Context) error {
	return h.decide(c, h.Friendships.Reject)
}

type decision func(ctx context.Context, friendshipID, actorID string) (model.Friendship, error)

func (h *FriendsHandler) decide(c echo.Context, fn decision) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	f, err := fn(ctx, c.Param("friendshipId"), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"friendship": f})
}

func (h *FriendsHandler) Remove(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Friendships.Remove(ctx, c.Param("friendshipId"), uid); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "friendship removed"})
}

func (h *FriendsHandler) ListFriends(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	friends, err := h.Friendships.ListFriends(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	if friends == nil {
		friends = []model.FriendView{}
	}
	return c.JSON(http.StatusOK, echo.Map{"friends": friends})
}

// SharedWishlist shows a friend's wishlist.  Anyone who is not an
// accepted friend gets 403.
func (h *FriendsHandler) SharedWishlist(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := h.Wishlists.ViewFriendWishlist(ctx, uid, c.Param("friendId"))
	if err != nil {
		return respondError(c, err)
	}
	if items == nil {
		items = []model.WishlistItem{}
	}
	return c.JSON(http.StatusOK, echo.Map{"wishlist": items})
}
