package handler

import (
	"errors"
	"net/http"

	"userhub/internal/middleware"
	"userhub/internal/service"
	"userhub/pkg/pagination"
	"userhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreditHandler struct {
	creditService service.CreditService
}

// NewCreditHandler sets up the routing dependencies for credit endpoints
func NewCreditHandler(creditService service.CreditService) *CreditHandler {
	return &CreditHandler{creditService: creditService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *CreditHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Self-service: balance, history, and pack purchases for the caller
	credits := router.Group("/credits", middleware.RequireAuth())
	{
		credits.GET("/balance", h.GetOwnBalance)
		credits.GET("/transactions", h.ListOwnTransactions)
		credits.GET("/packs", h.ListPacks)
		credits.POST("/packs", middleware.RequireGlobalPermission("credits.write"), h.CreatePack)
		credits.POST("/purchase", h.PurchasePack)
	}

	// Admin: adjust and inspect any user's credits
	admin := router.Group("/users/:id/credits")
	{
		admin.POST("", middleware.RequireGlobalPermission("credits.write"), h.Adjust)
		admin.GET("", middleware.RequireGlobalPermission("credits.read"), h.GetBalance)
		admin.GET("/transactions", middleware.RequireGlobalPermission("credits.read"), h.ListTransactions)
	}
}

func contextUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}

func (h *CreditHandler) writeCreditError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInsufficientCredits):
		// Distinct condition: the caller shows "insufficient credits",
		// not a generic server failure.
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, "Insufficient credits"))
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidTransactionType):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}

// Adjust handles POST /users/:id/credits for admin balance adjustments
// @Summary      Adjust user credits
// @Description  Adds or removes credits. Amount is signed; negative amounts run through the same conditional balance check as spends
// @Tags         credits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "User ID"
// @Param        payload  body      service.AdjustCreditsRequest  true  "Adjustment Payload"
// @Success      201      {object}  response.Response{data=service.CreditTransactionResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /users/{id}/credits [post]
func (h *CreditHandler) Adjust(c *gin.Context) {
	var req service.AdjustCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.creditService.Adjust(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeCreditError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}

// GetBalance handles GET /users/:id/credits
// @Summary      Get user credit balance
// @Tags         credits
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.BalanceResponse}
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/credits [get]
func (h *CreditHandler) GetBalance(c *gin.Context) {
	balance, err := h.creditService.GetBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, balance))
}

// ListTransactions handles GET /users/:id/credits/transactions
// @Summary      List user credit transactions
// @Description  Ledger rows newest first
// @Tags         credits
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "User ID"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Page size"
// @Success      200    {object}  response.Response{data=[]service.CreditTransactionResponse}
// @Failure      500    {object}  response.Response
// @Router       /users/{id}/credits/transactions [get]
func (h *CreditHandler) ListTransactions(c *gin.Context) {
	params := pagination.Parse(c)

	entries, total, err := h.creditService.ListTransactions(c.Request.Context(), c.Param("id"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, entries, params.Meta(total)))
}

// GetOwnBalance handles GET /credits/balance for the authenticated user
// @Summary      Get own credit balance
// @Tags         credits
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.BalanceResponse}
// @Failure      401  {object}  response.Response
// @Router       /credits/balance [get]
func (h *CreditHandler) GetOwnBalance(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	balance, err := h.creditService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, balance))
}

// ListOwnTransactions handles GET /credits/transactions for the authenticated user
// @Summary      List own credit transactions
// @Tags         credits
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=[]service.CreditTransactionResponse}
// @Failure      401    {object}  response.Response
// @Router       /credits/transactions [get]
func (h *CreditHandler) ListOwnTransactions(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	params := pagination.Parse(c)
	entries, total, err := h.creditService.ListTransactions(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, entries, params.Meta(total)))
}

// ListPacks handles GET /credits/packs
// @Summary      List purchasable credit packs
// @Tags         credits
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.CreditPackResponse}
// @Failure      500  {object}  response.Response
// @Router       /credits/packs [get]
func (h *CreditHandler) ListPacks(c *gin.Context) {
	packs, err := h.creditService.ListPacks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, packs))
}

// CreatePack handles POST /credits/packs
// @Summary      Create a credit pack
// @Tags         credits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePackRequest  true  "Pack Payload"
// @Success      201      {object}  response.Response{data=service.CreditPackResponse}
// @Failure      400      {object}  response.Response
// @Router       /credits/packs [post]
func (h *CreditHandler) CreatePack(c *gin.Context) {
	var req service.CreatePackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	pack, err := h.creditService.CreatePack(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, pack))
}

// PurchasePack handles POST /credits/purchase
// @Summary      Purchase a credit pack
// @Description  Credits the pack's amount to the caller's balance with a purchase ledger entry
// @Tags         credits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.PurchasePackRequest  true  "Purchase Payload"
// @Success      201      {object}  response.Response{data=service.CreditTransactionResponse}
// @Failure      400      {object}  response.Response
// @Router       /credits/purchase [post]
func (h *CreditHandler) PurchasePack(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return
	}

	var req service.PurchasePackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.creditService.PurchasePack(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}
