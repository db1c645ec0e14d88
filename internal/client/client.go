// Package client is a typed HTTP client for the travel-agency API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/iliyamo/travel-agency/internal/model"
)

// APIError is a non-2xx reply.  FriendCode is only set when generating a
// code that already exists.
type APIError struct {
	Status     int    `json:"-"`
	Message    string `json:"error"`
	FriendCode string `json:"friendCode,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Client calls the API as one user.  The zero token calls anonymously.
type Client struct {
	r     *resty.Client
	token string
}

// New returns a client for the server at baseURL.
func New(baseURL string) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json")
	return &Client{r: r}
}

// WithToken returns a copy that authenticates with an access token.
func (c *Client) WithToken(token string) *Client {
	return &Client{r: c.r, token: token}
}

// Token is the access token in use.
func (c *Client) Token() string { return c.token }

func (c *Client) request(ctx context.Context, body any) *resty.Request {
	req := c.r.R().SetContext(ctx).SetError(&APIError{})
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	return req
}

func asError(resp *resty.Response) error {
	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{Message: resp.String()}
	}
	apiErr.Status = resp.StatusCode()
	return apiErr
}

// send performs the call and decodes the whole body into out.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	req := c.request(ctx, body)
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return asError(resp)
	}
	return nil
}

// field performs the call and decodes one top-level field of the reply.
func field[T any](ctx context.Context, c *Client, method, path string, body any, name string) (T, error) {
	var (
		out      T
		envelope map[string]json.RawMessage
	)
	if err := c.send(ctx, method, path, body, &envelope); err != nil {
		return out, err
	}
	raw, ok := envelope[name]
	if !ok {
		return out, fmt.Errorf("%s %s: reply has no %q", method, path, name)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%s %s: decode %s: %w", method, path, name, err)
	}
	return out, nil
}

// ----- auth -----

type Session struct {
	User struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		Role        string `json:"role"`
	} `json:"user"`
	Access struct {
		Token   string    `json:"token"`
		Expires time.Time `json:"expires"`
	} `json:"access"`
	Refresh struct {
		Token   string    `json:"token"`
		Expires time.Time `json:"expires"`
	} `json:"refresh"`
}

func (c *Client) Register(ctx context.Context, email, password, displayName string) (Session, error) {
	var s Session
	err := c.send(ctx, http.MethodPost, "/v1/auth/register", map[string]string{
		"email": email, "password": password, "displayName": displayName,
	}, &s)
	return s, err
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := c.send(ctx, http.MethodPost, "/v1/auth/login", map[string]string{
		"email": email, "password": password,
	}, &s)
	return s, err
}

// Logout revokes every session of the current token's user.
func (c *Client) Logout(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/v1/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (model.PublicProfile, error) {
	return field[model.PublicProfile](ctx, c, http.MethodGet, "/v1/me", nil, "profile")
}

// ----- friends -----

func (c *Client) GenerateFriendCode(ctx context.Context) (string, error) {
	return field[string](ctx, c, http.MethodPost, "/v1/friends/code/generate", nil, "friendCode")
}

// FriendCode returns "" when the user has not generated a code yet.
func (c *Client) FriendCode(ctx context.Context) (string, error) {
	code, err := field[*string](ctx, c, http.MethodGet, "/v1/friends/code", nil, "friendCode")
	if err != nil || code == nil {
		return "", err
	}
	return *code, nil
}

func (c *Client) SendFriendRequest(ctx context.Context, friendCode string) (model.Friendship, error) {
	return field[model.Friendship](ctx, c, http.MethodPost, "/v1/friends/request",
		map[string]string{"friendCode": friendCode}, "friendship")
}

func (c *Client) PendingRequests(ctx context.Context) ([]model.FriendView, error) {
	return field[[]model.FriendView](ctx, c, http.MethodGet, "/v1/friends/requests", nil, "requests")
}

func (c *Client) AcceptRequest(ctx context.Context, friendshipID string) (model.Friendship, error) {
	return field[model.Friendship](ctx, c, http.MethodPost, "/v1/friends/accept/"+url.PathEscape(friendshipID), nil, "friendship")
}

func (c *Client) RejectRequest(ctx context.Context, friendshipID string) (model.Friendship, error) {
	return field[model.Friendship](ctx, c, http.MethodPost, "/v1/friends/reject/"+url.PathEscape(friendshipID), nil, "friendship")
}

func (c *Client) RemoveFriend(ctx context.Context, friendshipID string) error {
	return c.send(ctx, http.MethodDelete, "/v1/friends/"+url.PathEscape(friendshipID), nil, nil)
}

func (c *Client) Friends(ctx context.Context) ([]model.FriendView, error) {
	return field[[]model.FriendView](ctx, c, http.MethodGet, "/v1/friends", nil, "friends")
}

func (c *Client) FriendWishlist(ctx context.Context, friendID string) ([]model.WishlistItem, error) {
	return field[[]model.WishlistItem](ctx, c, http.MethodGet, "/v1/friends/shared/wishlist/"+url.PathEscape(friendID), nil, "wishlist")
}

func (c *Client) Notifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	path := "/v1/friends/notifications"
	if unreadOnly {
		path += "?unread=true"
	}
	return field[[]model.Notification](ctx, c, http.MethodGet, path, nil, "notifications")
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) (model.Notification, error) {
	return field[model.Notification](ctx, c, http.MethodPatch, "/v1/friends/notifications/"+url.PathEscape(id)+"/read", nil, "notification")
}

// ----- wishlist -----

func (c *Client) AddToWishlist(ctx context.Context, itemType, itemID string, data model.ItemSnapshot) (model.WishlistItem, error) {
	return field[model.WishlistItem](ctx, c, http.MethodPost, "/v1/wishlist", map[string]any{
		"itemType": itemType, "itemId": itemID, "itemData": data,
	}, "item")
}

func (c *Client) Wishlist(ctx context.Context) ([]model.WishlistItem, error) {
	return field[[]model.WishlistItem](ctx, c, http.MethodGet, "/v1/wishlist", nil, "wishlist")
}

func (c *Client) RemoveFromWishlist(ctx context.Context, itemType, itemID string) error {
	return c.send(ctx, http.MethodDelete, "/v1/wishlist/"+url.PathEscape(itemType)+"/"+url.PathEscape(itemID), nil, nil)
}

// ----- bookings -----

type NewBooking struct {
	ItemType   string             `json:"itemType"`
	ItemID     string             `json:"itemId"`
	ItemData   model.ItemSnapshot `json:"itemData"`
	TravelDate string             `json:"travelDate,omitempty"`
	Guests     int                `json:"guests,omitempty"`
}

func (c *Client) CreateBooking(ctx context.Context, b NewBooking) (model.Booking, error) {
	return field[model.Booking](ctx, c, http.MethodPost, "/v1/bookings", b, "booking")
}

func (c *Client) Bookings(ctx context.Context) ([]model.Booking, error) {
	return field[[]model.Booking](ctx, c, http.MethodGet, "/v1/bookings", nil, "bookings")
}

func (c *Client) Booking(ctx context.Context, id string) (model.Booking, error) {
	return field[model.Booking](ctx, c, http.MethodGet, "/v1/bookings/"+url.PathEscape(id), nil, "booking")
}

func (c *Client) CancelBooking(ctx context.Context, id string) (model.Booking, error) {
	return field[model.Booking](ctx, c, http.MethodPost, "/v1/bookings/"+url.PathEscape(id)+"/cancel", nil, "booking")
}

func (c *Client) ShareToken(ctx context.Context, bookingID string) (string, error) {
	return field[string](ctx, c, http.MethodGet, "/v1/bookings/"+url.PathEscape(bookingID)+"/share", nil, "shareToken")
}

func (c *Client) SharedBooking(ctx context.Context, token string) (model.SharedPreview, error) {
	return field[model.SharedPreview](ctx, c, http.MethodGet, "/v1/bookings/shared/"+url.PathEscape(token), nil, "booking")
}

// Join joins the booking behind token.  Anonymous clients join as guests.
func (c *Client) Join(ctx context.Context, token, name, email string, phone *string) (model.Participant, error) {
	body := map[string]any{"name": name, "email": email}
	if phone != nil {
		body["phone"] = *phone
	}
	return field[model.Participant](ctx, c, http.MethodPost, "/v1/bookings/shared/"+url.PathEscape(token)+"/join", body, "participant")
}
