package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wheelhub/internal/db"
	"github.com/wheelhub/internal/service"
)

type userRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (r userRequest) toInput() service.UserInput {
	return service.UserInput{
		Username: r.Username,
		FullName: r.FullName,
		Email:    r.Email,
		Role:     r.Role,
		Password: r.Password,
	}
}

func userPayload(u db.User) gin.H {
	return gin.H{
		"id":        u.ID,
		"username":  u.Username,
		"fullName":  u.FullName,
		"email":     u.Email,
		"role":      u.Role,
		"createdAt": u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func respondUserError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "用户不存在")
	case errors.Is(err, service.ErrUserExists):
		respondError(c, http.StatusBadRequest, "用户名已存在")
	case errors.Is(err, service.ErrUserInvalid):
		respondError(c, http.StatusBadRequest, "用户名和密码不能为空")
	case errors.Is(err, service.ErrUserRoleInvalid):
		respondError(c, http.StatusBadRequest, "无效的角色")
	case errors.Is(err, service.ErrUserLastAdmin):
		respondError(c, http.StatusBadRequest, "至少需要保留一个管理员")
	default:
		respondInternal(c, err, fallback)
	}
}

// ListUsers 获取后台账号列表
func (a *API) ListUsers(c *gin.Context) {
	users, err := a.users.List()
	if err != nil {
		respondInternal(c, err, "获取用户列表失败")
		return
	}

	response := make([]gin.H, 0, len(users))
	for _, user := range users {
		response = append(response, userPayload(user))
	}
	c.JSON(http.StatusOK, gin.H{"users": response})
}

// CreateUser 创建后台账号
func (a *API) CreateUser(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req, "用户名不能为空") {
		return
	}

	user, err := a.users.Create(req.toInput())
	if err != nil {
		respondUserError(c, err, "创建用户失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "用户创建成功", "user": userPayload(*user)})
}

// UpdateUser 更新后台账号，密码留空表示不修改
func (a *API) UpdateUser(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	var req userRequest
	if !bindJSON(c, &req, "用户名不能为空") {
		return
	}

	user, err := a.users.Update(id, req.toInput())
	if err != nil {
		respondUserError(c, err, "更新用户失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "用户更新成功", "user": userPayload(*user)})
}

// DeleteUser 删除后台账号
func (a *API) DeleteUser(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	if err := a.users.Delete(id); err != nil {
		respondUserError(c, err, "删除用户失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "用户删除成功"})
}
