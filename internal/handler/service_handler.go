package handler

import (
	"net/http"

	"userhub/internal/middleware"
	"userhub/internal/service"
	"userhub/pkg/pagination"
	"userhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type ServiceHandler struct {
	catalogService service.CatalogService
}

// NewServiceHandler sets up the routing dependencies for service-catalog endpoints
func NewServiceHandler(catalogService service.CatalogService) *ServiceHandler {
	return &ServiceHandler{catalogService: catalogService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ServiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	services := router.Group("/services")
	{
		// Machine-to-machine token exchange, no user session required
		services.POST("/token", h.AuthenticateService)

		services.GET("", middleware.RequireGlobalPermission("services.read"), h.ListServices)
		services.GET("/:id", middleware.RequireGlobalPermission("services.read"), h.GetService)
		services.POST("", middleware.RequireGlobalPermission("services.write"), h.CreateService)
		services.PUT("/:id", middleware.RequireGlobalPermission("services.write"), h.UpdateService)
		services.DELETE("/:id", middleware.RequireGlobalPermission("services.write"), h.DeleteService)

		// Service-local view: authorized by the caller's grants inside the
		// service itself, not by the global admin permissions.
		services.GET("/:id/users", middleware.RequireServicePermission("id", "users.read"), h.ListMembers)

		// Provisioning and service-scoped grants
		services.POST("/:id/users", middleware.RequireGlobalPermission("services.write"), h.AssignUser)
		services.DELETE("/:id/users/:userId", middleware.RequireGlobalPermission("services.write"), h.RemoveUser)
		services.POST("/:id/users/:userId/roles/:roleId", middleware.RequireGlobalPermission("services.write"), h.AssignRole)
		services.DELETE("/:id/users/:userId/roles/:roleId", middleware.RequireGlobalPermission("services.write"), h.RevokeRole)
		services.POST("/:id/users/:userId/permissions/:permissionId", middleware.RequireGlobalPermission("services.write"), h.AssignPermission)
		services.DELETE("/:id/users/:userId/permissions/:permissionId", middleware.RequireGlobalPermission("services.write"), h.RevokePermission)
	}
}

// AuthenticateService handles POST /services/token
// @Summary      Exchange client credentials for a service token
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ServiceAuthRequest  true  "Client Credentials"
// @Success      200      {object}  response.Response{data=service.ServiceTokenResponse}
// @Failure      401      {object}  response.Response
// @Router       /services/token [post]
func (h *ServiceHandler) AuthenticateService(c *gin.Context) {
	var req service.ServiceAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	token, err := h.catalogService.AuthenticateService(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

// ListServices handles GET /services
// @Summary      List services
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=[]service.ServiceResponse}
// @Failure      500    {object}  response.Response
// @Router       /services [get]
func (h *ServiceHandler) ListServices(c *gin.Context) {
	params := pagination.Parse(c)

	services, total, err := h.catalogService.ListServices(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, services, params.Meta(total)))
}

// GetService handles GET /services/:id
// @Summary      Get service
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Service ID"
// @Success      200  {object}  response.Response{data=service.ServiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /services/{id} [get]
func (h *ServiceHandler) GetService(c *gin.Context) {
	svc, err := h.catalogService.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, svc))
}

// CreateService handles POST /services
// @Summary      Register a service
// @Description  Creates a service with generated client credentials; the client_secret is only returned once
// @Tags         services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateServiceRequest  true  "Create Service Payload"
// @Success      201      {object}  response.Response{data=service.ServiceCredentialsResponse}
// @Failure      400      {object}  response.Response
// @Router       /services [post]
func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req service.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	svc, err := h.catalogService.CreateService(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, svc))
}

// UpdateService handles PUT /services/:id
// @Summary      Update service
// @Tags         services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Service ID"
// @Param        payload  body      service.UpdateServiceRequest  true  "Update Service Payload"
// @Success      200      {object}  response.Response{data=service.ServiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /services/{id} [put]
func (h *ServiceHandler) UpdateService(c *gin.Context) {
	var req service.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	svc, err := h.catalogService.UpdateService(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, svc))
}

// DeleteService handles DELETE /services/:id
// @Summary      Delete service
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Service ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /services/{id} [delete]
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	if err := h.catalogService.DeleteService(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Service deleted"}))
}

// ListMembers handles GET /services/:id/users
// @Summary      List users assigned to a service
// @Description  Requires the users.read permission inside the service named by the path
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Service ID"
// @Success      200  {object}  response.Response{data=[]service.UserResponse}
// @Failure      403  {object}  response.Response
// @Router       /services/{id}/users [get]
func (h *ServiceHandler) ListMembers(c *gin.Context) {
	members, err := h.catalogService.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, members))
}

// AssignUser handles POST /services/:id/users
// @Summary      Provision a user for a service
// @Tags         services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Service ID"
// @Param        payload  body      service.ServiceGrantRequest  true  "Assignment Payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /services/{id}/users [post]
func (h *ServiceHandler) AssignUser(c *gin.Context) {
	var req service.ServiceGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	createdBy := ""
	if id, ok := contextUserID(c); ok {
		createdBy = id
	}

	if err := h.catalogService.AssignUser(c.Request.Context(), c.Param("id"), req, createdBy); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"message": "User assigned to service"}))
}

// RemoveUser handles DELETE /services/:id/users/:userId
// @Summary      Remove a user from a service
// @Description  Also removes the user's service-scoped role and permission grants
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Service ID"
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Router       /services/{id}/users/{userId} [delete]
func (h *ServiceHandler) RemoveUser(c *gin.Context) {
	if err := h.catalogService.RemoveUser(c.Request.Context(), c.Param("id"), c.Param("userId")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "User removed from service"}))
}

// AssignRole handles POST /services/:id/users/:userId/roles/:roleId
// @Summary      Grant a service role to a user
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Service ID"
// @Param        userId  path      string  true  "User ID"
// @Param        roleId  path      string  true  "Role ID"
// @Success      201     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Router       /services/{id}/users/{userId}/roles/{roleId} [post]
func (h *ServiceHandler) AssignRole(c *gin.Context) {
	if err := h.catalogService.AssignRole(c.Request.Context(), c.Param("id"), c.Param("userId"), c.Param("roleId")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"message": "Service role granted"}))
}

// RevokeRole handles DELETE /services/:id/users/:userId/roles/:roleId
// @Summary      Revoke a service role from a user
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Service ID"
// @Param        userId  path      string  true  "User ID"
// @Param        roleId  path      string  true  "Role ID"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Router       /services/{id}/users/{userId}/roles/{roleId} [delete]
func (h *ServiceHandler) RevokeRole(c *gin.Context) {
	if err := h.catalogService.RevokeRole(c.Request.Context(), c.Param("id"), c.Param("userId"), c.Param("roleId")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Service role revoked"}))
}

// AssignPermission handles POST /services/:id/users/:userId/permissions/:permissionId
// @Summary      Grant a service permission directly to a user
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      string  true  "Service ID"
// @Param        userId        path      string  true  "User ID"
// @Param        permissionId  path      string  true  "Permission ID"
// @Success      201           {object}  response.Response
// @Failure      400           {object}  response.Response
// @Router       /services/{id}/users/{userId}/permissions/{permissionId} [post]
func (h *ServiceHandler) AssignPermission(c *gin.Context) {
	if err := h.catalogService.AssignPermission(c.Request.Context(), c.Param("id"), c.Param("userId"), c.Param("permissionId")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"message": "Service permission granted"}))
}

// RevokePermission handles DELETE /services/:id/users/:userId/permissions/:permissionId
// @Summary      Revoke a directly granted service permission from a user
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      string  true  "Service ID"
// @Param        userId        path      string  true  "User ID"
// @Param        permissionId  path      string  true  "Permission ID"
// @Success      200           {object}  response.Response
// @Failure      400           {object}  response.Response
// @Router       /services/{id}/users/{userId}/permissions/{permissionId} [delete]
func (h *ServiceHandler) RevokePermission(c *gin.Context) {
	if err := h.catalogService.RevokePermission(c.Request.Context(), c.Param("id"), c.Param("userId"), c.Param("permissionId")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Service permission revoked"}))
}
