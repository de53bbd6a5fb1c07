package controller

import (
	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/service"
	"manara_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

func NewAuthController(authService *service.AuthService, userService *service.UserService) *AuthController {
	return &AuthController{
		AuthService: authService,
		UserService: userService,
	}
}

// swagger:model RegisterRequest
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Language string `json:"language" binding:"omitempty,oneof=ar en"`
}

// Register godoc
// @Summary تسجيل مستخدم جديد
// @Description إنشاء حساب متعلم جديد بالبريد الإلكتروني وكلمة المرور
// @Tags المصادقة
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "بيانات التسجيل"
// @Success 201 {object} util.Response{data=object} "تم إنشاء الحساب"
// @Failure 400 {object} util.Response "خطأ في البيانات المرسلة"
// @Failure 409 {object} util.Response "البريد الإلكتروني مسجل مسبقاً"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Language: req.Language,
	}

	if err := c.AuthService.Register(user); err != nil {
		serviceError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"id": user.ID})
}

// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary تسجيل الدخول
// @Description التحقق من بيانات المستخدم وإرجاع رمز JWT
// @Tags المصادقة
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "بيانات الدخول"
// @Success 200 {object} util.Response{data=object} "نجاح"
// @Failure 401 {object} util.Response "بيانات الدخول غير صحيحة"
// @Failure 403 {object} util.Response "الحساب معطل"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"token": token})
}

// GetProfile godoc
// @Summary الملف الشخصي للمستخدم الحالي
// @Description بيانات المستخدم الحالي مع ملخص التقدم (النقاط والمستوى)
// @Tags المصادقة
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.Profile} "نجاح"
// @Failure 401 {object} util.Response "غير مصرح"
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.UserService.GetProfile(claims.UserID)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, profile)
}
