package controller

import (
	"manara_edu_backend/internal/service"
	"manara_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
	CourseService     *service.CourseService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService, courseService *service.CourseService) *EnrollmentController {
	return &EnrollmentController{
		EnrollmentService: enrollmentService,
		CourseService:     courseService,
	}
}

// Enroll godoc
// @Summary طلب الالتحاق بدورة
// @Description ينشئ طلب التحاق بانتظار اعتماد الإدارة
// @Tags الالتحاق
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الدورة"
// @Param body body service.EnrollRequest true "بيانات الدفع والتواصل"
// @Success 201 {object} util.Response{data=model.Enrollment} "تم التسجيل"
// @Failure 409 {object} util.Response "طلب مسجل مسبقاً"
// @Router /api/courses/{id}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	enrollment, err := c.EnrollmentService.Enroll(claims.UserID, id, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Created(ctx, enrollment)
}

// MyEnrollments godoc
// @Summary طلبات الالتحاق الخاصة بي
// @Tags الالتحاق
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment} "نجاح"
// @Router /api/enrollments [get]
func (c *EnrollmentController) MyEnrollments(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollments, err := c.EnrollmentService.ListByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, enrollments)
}

// PendingEnrollments godoc
// @Summary طلبات الالتحاق بانتظار المراجعة (إدارة)
// @Tags الالتحاق
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "رقم الصفحة"
// @Param limit query int false "عدد العناصر"
// @Success 200 {object} util.PageResponse "نجاح"
// @Router /api/admin/enrollments/pending [get]
func (c *EnrollmentController) PendingEnrollments(ctx *gin.Context) {
	page, limit := pagination(ctx)

	enrollments, total, err := c.EnrollmentService.ListPending(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.SuccessPage(ctx, enrollments, total, page, limit)
}

// CourseEnrollments godoc
// @Summary طلبات الالتحاق بدورة (مدرّس)
// @Tags الالتحاق
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الدورة"
// @Param page query int false "رقم الصفحة"
// @Param limit query int false "عدد العناصر"
// @Success 200 {object} util.PageResponse "نجاح"
// @Router /api/instructor/courses/{id}/enrollments [get]
func (c *EnrollmentController) CourseEnrollments(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !requireCourseOwner(ctx, c.CourseService, id) {
		return
	}
	page, limit := pagination(ctx)

	enrollments, total, err := c.EnrollmentService.ListByCourse(id, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.SuccessPage(ctx, enrollments, total, page, limit)
}

// ApproveEnrollment godoc
// @Summary اعتماد طلب التحاق (إدارة)
// @Tags الالتحاق
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الطلب"
// @Param body body ReviewRequest false "ملاحظات المراجع"
// @Success 200 {object} util.Response{data=model.Enrollment} "نجاح"
// @Router /api/admin/enrollments/{id}/approve [post]
func (c *EnrollmentController) ApproveEnrollment(ctx *gin.Context) {
	c.review(ctx, util.EnrollmentApproved)
}

// RejectEnrollment godoc
// @Summary رفض طلب التحاق (إدارة)
// @Tags الالتحاق
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الطلب"
// @Param body body ReviewRequest false "ملاحظات المراجع"
// @Success 200 {object} util.Response{data=model.Enrollment} "نجاح"
// @Router /api/admin/enrollments/{id}/reject [post]
func (c *EnrollmentController) RejectEnrollment(ctx *gin.Context) {
	c.review(ctx, util.EnrollmentRejected)
}

func (c *EnrollmentController) review(ctx *gin.Context, status string) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		util.BadRequest(ctx, err.Error())
		return
	}

	enrollment, err := c.EnrollmentService.Review(id, claims.UserID, status, req.Notes)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, enrollment)
}
