package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"casino-service/internal/middleware"
	"casino-service/internal/service"
	"casino-service/internal/service/game"
	appErr "casino-service/pkg/errors"
	"casino-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container) {
	handler := &Handler{services: services}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})

	v1 := r.Group("/casino/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", handler.Register)
			authGroup.POST("/login", handler.Login)
		}

		authed := v1.Group("/")
		authed.Use(middleware.AuthRequired())
		{
			authed.GET("/account", handler.GetAccount)
			authed.POST("/account/deposit", handler.Deposit)
			authed.POST("/account/withdraw", handler.Withdraw)
			authed.GET("/transactions", handler.ListTransactions)

			games := authed.Group("/games")
			{
				games.POST("/slot/spin", handler.SpinSlot)
				games.POST("/roulette/spin", handler.SpinRoulette)

				games.POST("/blackjack/start", handler.StartBlackjack)
				games.POST("/blackjack/:gameId/hit", handler.HitBlackjack)
				games.POST("/blackjack/:gameId/stand", handler.StandBlackjack)
				games.POST("/blackjack/:gameId/double", handler.DoubleDownBlackjack)

				games.POST("/poker/start", handler.StartPoker)
				games.POST("/poker/:gameId/draw", handler.DrawPoker)
				games.GET("/poker/:gameId", handler.GetPokerState)
			}
		}
	}
}

type registerBody struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type amountBody struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type betBody struct {
	BetAmount decimal.Decimal `json:"betAmount" binding:"required"`
}

type rouletteSpinBody struct {
	Bets []game.RouletteBet `json:"bets" binding:"required"`
}

type pokerDrawBody struct {
	CardsToHold []int `json:"cardsToHold"`
}

func (h *Handler) Register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Auth.Register(c.Request.Context(), body.Username, body.Email, body.Password)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, appErr.ErrUsernameTaken), errors.Is(err, appErr.ErrEmailTaken):
			status = http.StatusConflict
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, result)
}

func (h *Handler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Auth.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, appErr.ErrInvalidCredentials):
			status = http.StatusUnauthorized
		case errors.Is(err, appErr.ErrUserDisabled):
			status = http.StatusForbidden
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, result)
}

func (h *Handler) GetAccount(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.services.Account.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user})
}

func (h *Handler) Deposit(c *gin.Context) {
	h.handleMoneyMove(c, true)
}

func (h *Handler) Withdraw(c *gin.Context) {
	h.handleMoneyMove(c, false)
}

func (h *Handler) handleMoneyMove(c *gin.Context, deposit bool) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body amountBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	var err error
	var tx interface{}
	if deposit {
		tx, err = h.services.Account.Deposit(c.Request.Context(), userID, body.Amount)
	} else {
		tx, err = h.services.Account.Withdraw(c.Request.Context(), userID, body.Amount)
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"transaction": tx})
}

func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "pageSize", 20)

	result, err := h.services.Ledger.History(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"items":    result.Items,
		"total":    result.Total,
		"page":     page,
		"pageSize": pageSize,
	})
}

func (h *Handler) SpinSlot(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body betBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Game.SpinSlot(c.Request.Context(), userID, body.BetAmount)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *Handler) SpinRoulette(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body rouletteSpinBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Game.SpinRoulette(c.Request.Context(), userID, body.Bets)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *Handler) StartBlackjack(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body betBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Game.StartBlackjack(c.Request.Context(), userID, body.BetAmount)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *Handler) HitBlackjack(c *gin.Context) {
	h.blackjackAction(c, h.services.Game.Hit)
}

func (h *Handler) StandBlackjack(c *gin.Context) {
	h.blackjackAction(c, h.services.Game.Stand)
}

func (h *Handler) DoubleDownBlackjack(c *gin.Context) {
	h.blackjackAction(c, h.services.Game.DoubleDown)
}

func (h *Handler) blackjackAction(c *gin.Context, action func(ctx context.Context, userID int64, gameID string) (*game.BlackjackState, error)) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := action(c.Request.Context(), userID, c.Param("gameId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *Handler) StartPoker(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body betBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Game.StartPoker(c.Request.Context(), userID, body.BetAmount)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *Handler) DrawPoker(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body pokerDrawBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Game.DrawPoker(c.Request.Context(), userID, c.Param("gameId"), body.CardsToHold)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *Handler) GetPokerState(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := h.services.Game.GetPokerState(c.Request.Context(), userID, c.Param("gameId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *Handler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appErr.ErrUserNotFound), errors.Is(err, appErr.ErrGameNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErr.ErrNotYourGame):
		response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, appErr.ErrInsufficientBalance),
		errors.Is(err, appErr.ErrInvalidBet),
		errors.Is(err, appErr.ErrInvalidAmount):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErr.ErrInvalidGameState), errors.Is(err, appErr.ErrAlreadyDrawn):
		response.Error(c, http.StatusConflict, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}

func getUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func parseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return defaultVal
	}
	return parsed
}
