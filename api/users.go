package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkravets/flightdesk/internal/domain"
	"github.com/mkravets/flightdesk/internal/service/auth"
	"github.com/mkravets/flightdesk/internal/session"
)

// SessionStore is the slice of the session store the handlers need.
type SessionStore interface {
	Create(ctx context.Context, username string) (*session.Session, error)
	Get(ctx context.Context, token string) (*session.Session, error)
	SaveItineraries(ctx context.Context, sess *session.Session, itineraries []domain.Itinerary) error
}

type UserHandler struct {
	service  auth.AuthUseCase
	sessions SessionStore
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Balance  int    `json:"balance"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func NewUserHandler(service auth.AuthUseCase, sessions SessionStore) *UserHandler {
	return &UserHandler{service: service, sessions: sessions}
}

func (h *UserHandler) Register(router *gin.RouterGroup) {
	router.POST("/users", h.create)
	router.POST("/login", h.login)
}

func (h *UserHandler) create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.CreateCustomer(c.Request.Context(), req.Username, req.Password, req.Balance)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"username": user.Username, "balance": user.Balance})
}

// login opens a new session. A request already carrying a live token is
// rejected: a client holds at most one session at a time.
func (h *UserHandler) login(c *gin.Context) {
	if tok := token(c); tok != "" {
		if _, err := h.sessions.Get(c.Request.Context(), tok); err == nil {
			writeError(c, domain.ErrAlreadyLoggedIn)
			return
		} else if !errors.Is(err, domain.ErrNotLoggedIn) {
			writeError(c, err)
			return
		}
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), user.Username)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: sess.Token, Username: sess.Username})
}
