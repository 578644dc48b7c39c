package handler

import (
	"net/http"

	"userhub/internal/middleware"
	"userhub/internal/service"
	"userhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService service.RoleService
}

// NewRoleHandler sets up the routing dependencies for RBAC endpoints
func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	roles := router.Group("/roles")
	{
		roles.GET("", middleware.RequireGlobalPermission("rbac.read"), h.ListRoles)
		roles.GET("/:id", middleware.RequireGlobalPermission("rbac.read"), h.GetRole)
		roles.POST("", middleware.RequireGlobalPermission("rbac.write"), h.CreateRole)
		roles.PUT("/:id", middleware.RequireGlobalPermission("rbac.write"), h.UpdateRole)
		roles.DELETE("/:id", middleware.RequireGlobalPermission("rbac.write"), h.DeleteRole)
		roles.PUT("/:id/permissions", middleware.RequireGlobalPermission("rbac.write"), h.UpdateRolePermissions)

		roles.POST("/:id/users", middleware.RequireGlobalPermission("rbac.write"), h.AssignGlobalRole)
		roles.DELETE("/:id/users/:userId", middleware.RequireGlobalPermission("rbac.write"), h.RevokeGlobalRole)
	}

	permissions := router.Group("/permissions")
	{
		permissions.GET("", middleware.RequireGlobalPermission("rbac.read"), h.ListPermissions)
		permissions.POST("", middleware.RequireGlobalPermission("rbac.write"), h.CreatePermission)
		permissions.DELETE("/:id", middleware.RequireGlobalPermission("rbac.write"), h.DeletePermission)

		permissions.POST("/:id/users", middleware.RequireGlobalPermission("rbac.write"), h.AssignGlobalPermission)
		permissions.DELETE("/:id/users/:userId", middleware.RequireGlobalPermission("rbac.write"), h.RevokeGlobalPermission)
	}
}

// ListRoles handles GET /roles
// @Summary      List roles
// @Description  Lists global roles, or a service's roles when service_id is given
// @Tags         rbac
// @Produce      json
// @Security     BearerAuth
// @Param        service_id  query     string  false  "Service ID"
// @Success      200         {object}  response.Response{data=[]service.RoleResponse}
// @Failure      500         {object}  response.Response
// @Router       /roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.ListRoles(c.Request.Context(), c.Query("service_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}

// GetRole handles GET /roles/:id
// @Summary      Get role
// @Tags         rbac
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  response.Response{data=service.RoleResponse}
// @Failure      404  {object}  response.Response
// @Router       /roles/{id} [get]
func (h *RoleHandler) GetRole(c *gin.Context) {
	role, err := h.roleService.GetRole(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}

// CreateRole handles POST /roles
// @Summary      Create role
// @Tags         rbac
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRoleRequest  true  "Create Role Payload"
// @Success      201      {object}  response.Response{data=service.RoleResponse}
// @Failure      400      {object}  response.Response
// @Router       /roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req service.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	role, err := h.roleService.CreateRole(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, role))
}

// UpdateRole handles PUT /roles/:id
// @Summary      Update role
// @Tags         rbac
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Role ID"
// @Param        payload  body      service.UpdateRoleRequest  true  "Update Role Payload"
// @Success      200      {object}  response.Response{data=service.RoleResponse}
// @Failure      400      {object}  response.Response
// @Router       /roles/{id} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	var req service.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	role, err := h.roleService.UpdateRole(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}

// DeleteRole handles DELETE /roles/:id
// @Summary      Delete role
// @Tags         rbac
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /roles/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	if err := h.roleService.DeleteRole(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Role deleted"}))
}

// UpdateRolePermissions handles PUT /roles/:id/permissions
// @Summary      Replace role permissions
// @Tags         rbac
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                                true  "Role ID"
// @Param        payload  body      service.UpdateRolePermissionsRequest  true  "Permissions Payload"
// @Success      200      {object}  response.Response{data=service.RoleResponse}
// @Failure      400      {object}  response.Response
// @Router       /roles/{id}/permissions [put]
func (h *RoleHandler) UpdateRolePermissions(c *gin.Context) {
	var req service.UpdateRolePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	role, err := h.roleService.UpdateRolePermissions(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}

// AssignGlobalRole handles POST /roles/:id/users
// @Summary      Grant a global role to a user
// @Tags         rbac
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                true  "Role ID"
// @Param        payload  body      service.GrantRequest  true  "Grant Payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /roles/{id}/users [post]
func (h *RoleHandler) AssignGlobalRole(c *gin.Context) {
	var req service.GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.roleService.AssignGlobalRole(c.Request.Context(), c.Param("id"), req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"message": "Role assigned"}))
}

// RevokeGlobalRole handles DELETE /roles/:id/users/:userId
// @Summary      Revoke a global role from a user
// @Tags         rbac
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Role ID"
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Router       /roles/{id}/users/{userId} [delete]
func (h *RoleHandler) RevokeGlobalRole(c *gin.Context) {
	if err := h.roleService.RevokeGlobalRole(c.Request.Context(), c.Param("id"), c.Param("userId")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Role revoked"}))
}

// ListPermissions handles GET /permissions
// @Summary      List permissions
// @Tags         rbac
// @Produce      json
// @Security     BearerAuth
// @Param        scope       query     string  false  "GLOBAL or SERVICE"
// @Param        service_id  query     string  false  "Service ID"
// @Success      200         {object}  response.Response{data=[]service.PermissionResponse}
// @Failure      500         {object}  response.Response
// @Router       /permissions [get]
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	perms, err := h.roleService.ListPermissions(c.Request.Context(), c.Query("scope"), c.Query("service_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, perms))
}

// CreatePermission handles POST /permissions
// @Summary      Create permission
// @Tags         rbac
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePermissionRequest  true  "Create Permission Payload"
// @Success      201      {object}  response.Response{data=service.PermissionResponse}
// @Failure      400      {object}  response.Response
// @Router       /permissions [post]
func (h *RoleHandler) CreatePermission(c *gin.Context) {
	var req service.CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	perm, err := h.roleService.CreatePermission(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, perm))
}

// DeletePermission handles DELETE /permissions/:id
// @Summary      Delete permission
// @Tags         rbac
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Permission ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /permissions/{id} [delete]
func (h *RoleHandler) DeletePermission(c *gin.Context) {
	if err := h.roleService.DeletePermission(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Permission deleted"}))
}

// AssignGlobalPermission handles POST /permissions/:id/users
// @Summary      Grant a global permission directly to a user
// @Tags         rbac
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                true  "Permission ID"
// @Param        payload  body      service.GrantRequest  true  "Grant Payload"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /permissions/{id}/users [post]
func (h *RoleHandler) AssignGlobalPermission(c *gin.Context) {
	var req service.GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.roleService.AssignGlobalPermission(c.Request.Context(), c.Param("id"), req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"message": "Permission granted"}))
}

// RevokeGlobalPermission handles DELETE /permissions/:id/users/:userId
// @Summary      Revoke a directly granted global permission from a user
// @Tags         rbac
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Permission ID"
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Router       /permissions/{id}/users/{userId} [delete]
func (h *RoleHandler) RevokeGlobalPermission(c *gin.Context) {
	if err := h.roleService.RevokeGlobalPermission(c.Request.Context(), c.Param("id"), c.Param("userId")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Permission revoked"}))
}
