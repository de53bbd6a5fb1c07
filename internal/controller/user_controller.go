package controller

import (
	"path/filepath"
	"strconv"
	"strings"

	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/service"
	"manara_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService    *service.UserService
	StorageService *service.StorageService
}

func NewUserController(userService *service.UserService, storageService *service.StorageService) *UserController {
	return &UserController{
		UserService:    userService,
		StorageService: storageService,
	}
}

// UpdateProfile godoc
// @Summary تحديث الملف الشخصي
// @Tags المستخدمون
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ProfileUpdateRequest true "الحقول المراد تحديثها"
// @Success 200 {object} util.Response{data=model.User} "نجاح"
// @Router /api/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ProfileUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(claims.UserID, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, user)
}

// UploadAvatar godoc
// @Summary رفع صورة شخصية
// @Tags المستخدمون
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param avatar formData file true "ملف الصورة"
// @Success 200 {object} util.Response{data=object} "نجاح"
// @Router /api/profile/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, "ملف الصورة مطلوب")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}
	if !allowed[ext] {
		util.BadRequest(ctx, "نوع الملف غير مدعوم")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	filename := "avatars/" + model.GenerateUUID() + ext
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	user, err := c.UserService.UpdateProfile(claims.UserID, service.ProfileUpdateRequest{Avatar: url})
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": user.Avatar})
}

// Leaderboard godoc
// @Summary لوحة المتصدرين
// @Description أفضل المتعلمين مرتبين حسب النقاط
// @Tags المستخدمون
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "عدد النتائج (الافتراضي 10)"
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry} "نجاح"
// @Router /api/leaderboard [get]
func (c *UserController) Leaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	entries, err := c.UserService.Leaderboard(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, entries)
}

// ListUsers godoc
// @Summary قائمة المستخدمين (إدارة)
// @Tags الإدارة
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "رقم الصفحة"
// @Param limit query int false "عدد العناصر"
// @Success 200 {object} util.PageResponse "نجاح"
// @Router /api/admin/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	page, limit := pagination(ctx)

	users, total, err := c.UserService.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.SuccessPage(ctx, users, total, page, limit)
}

// GetUser godoc
// @Summary بيانات مستخدم (إدارة)
// @Tags الإدارة
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف المستخدم"
// @Success 200 {object} util.Response{data=model.User} "نجاح"
// @Router /api/admin/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	user, err := c.UserService.Get(id)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, user)
}

// UpdateUser godoc
// @Summary تحديث مستخدم (إدارة)
// @Tags الإدارة
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف المستخدم"
// @Param body body service.AdminUserUpdateRequest true "الحقول المراد تحديثها"
// @Success 200 {object} util.Response{data=model.User} "نجاح"
// @Router /api/admin/users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.AdminUserUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.AdminUpdate(id, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, user)
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// ResetPassword godoc
// @Summary إعادة تعيين كلمة مرور مستخدم (إدارة)
// @Tags الإدارة
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف المستخدم"
// @Param body body ResetPasswordRequest true "كلمة المرور الجديدة"
// @Success 200 {object} util.Response "نجاح"
// @Router /api/admin/users/{id}/reset-password [post]
func (c *UserController) ResetPassword(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.ResetPassword(id, req.Password); err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

type SetDisabledRequest struct {
	Disabled *bool `json:"disabled" binding:"required"`
}

// SetDisabled godoc
// @Summary تفعيل أو تعطيل حساب (إدارة)
// @Tags الإدارة
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف المستخدم"
// @Param body body SetDisabledRequest true "حالة الحساب"
// @Success 200 {object} util.Response "نجاح"
// @Router /api/admin/users/{id}/disabled [put]
func (c *UserController) SetDisabled(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req SetDisabledRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.SetDisabled(id, *req.Disabled); err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
