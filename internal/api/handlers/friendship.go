package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"friendship-service/internal/models"
	"friendship-service/pkg/response"
)

// FriendshipAPI is the domain surface the friendship handlers forward to.
type FriendshipAPI interface {
	AddFriendshipRequest(ctx context.Context, req *models.FriendshipRequest) error
	AcceptFriendshipRequest(ctx context.Context, to, from string) error
	RejectFriendshipRequest(ctx context.Context, to, from string) error
	DeleteFriendship(ctx context.Context, a, b string) error
	GetFriendship(ctx context.Context, a, b string) (*models.Friendship, error)
	GetAllFriendsByEmail(ctx context.Context, email string) ([]models.User, error)
	GetAllFriendshipRequestsByEmail(ctx context.Context, email string) ([]models.FriendshipRequest, error)
}

type FriendshipHandler struct {
	friendships FriendshipAPI
}

func NewFriendshipHandler(friendships FriendshipAPI) *FriendshipHandler {
	return &FriendshipHandler{friendships: friendships}
}

// SendRequest godoc
// @Summary Send a friendship request
// @Tags friendships
// @Accept json
// @Produce json
// @Param request body handlers.pairTarget true "Recipient"
// @Success 201
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /friendships/requests [post]
func (h *FriendshipHandler) SendRequest(c *gin.Context) {
	caller := c.GetString("email")
	var input pairTarget
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	req := &models.FriendshipRequest{ToEmail: input.Email, FromEmail: caller}
	if err := h.friendships.AddFriendshipRequest(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// AcceptRequest godoc
// @Summary Accept a pending friendship request addressed to the caller
// @Tags friendships
// @Accept json
// @Produce json
// @Param request body handlers.pairTarget true "Requester"
// @Success 200
// @Failure 404 {object} map[string]interface{}
// @Router /friendships/requests/accept [post]
func (h *FriendshipHandler) AcceptRequest(c *gin.Context) {
	caller := c.GetString("email")
	var input pairTarget
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	if err := h.friendships.AcceptFriendshipRequest(c.Request.Context(), caller, input.Email); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friendship request accepted"})
}

// RejectRequest godoc
// @Summary Reject a pending friendship request addressed to the caller
// @Tags friendships
// @Accept json
// @Produce json
// @Param request body handlers.pairTarget true "Requester"
// @Success 200
// @Failure 404 {object} map[string]interface{}
// @Router /friendships/requests/reject [post]
func (h *FriendshipHandler) RejectRequest(c *gin.Context) {
	caller := c.GetString("email")
	var input pairTarget
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	if err := h.friendships.RejectFriendshipRequest(c.Request.Context(), caller, input.Email); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friendship request rejected"})
}

// GetRequests godoc
// @Summary List pending requests involving the caller
// @Tags friendships
// @Produce json
// @Success 200 {array} models.FriendshipRequest
// @Router /friendships/requests [get]
func (h *FriendshipHandler) GetRequests(c *gin.Context) {
	caller := c.GetString("email")
	requests, err := h.friendships.GetAllFriendshipRequestsByEmail(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// GetFriends godoc
// @Summary List the caller's friends
// @Tags friendships
// @Produce json
// @Success 200 {array} models.User
// @Router /friendships [get]
func (h *FriendshipHandler) GetFriends(c *gin.Context) {
	caller := c.GetString("email")
	friends, err := h.friendships.GetAllFriendsByEmail(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// GetFriendship godoc
// @Summary Look up the friendship between the caller and another user
// @Tags friendships
// @Produce json
// @Param with query string true "Counterpart email"
// @Success 200 {object} models.Friendship
// @Failure 404 {object} map[string]interface{}
// @Router /friendships/status [get]
func (h *FriendshipHandler) GetFriendship(c *gin.Context) {
	caller := c.GetString("email")
	with := c.Query("with")
	if with == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "with parameter is required"})
		return
	}

	friendship, err := h.friendships.GetFriendship(c.Request.Context(), caller, with)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, friendship)
}

// Unfriend godoc
// @Summary Remove the friendship between the caller and another user
// @Tags friendships
// @Accept json
// @Produce json
// @Param request body handlers.pairTarget true "Counterpart"
// @Success 200
// @Failure 404 {object} map[string]interface{}
// @Router /friendships [delete]
func (h *FriendshipHandler) Unfriend(c *gin.Context) {
	caller := c.GetString("email")
	var input pairTarget
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	if err := h.friendships.DeleteFriendship(c.Request.Context(), caller, input.Email); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friendship removed"})
}

// pairTarget names the other user of a pairwise operation.
type pairTarget struct {
	Email string `json:"email" binding:"required"`
}
