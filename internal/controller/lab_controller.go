package controller

import (
	"path/filepath"
	"strings"

	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/service"
	"manara_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LabController struct {
	LabService     *service.LabService
	StorageService *service.StorageService
	CourseService  *service.CourseService
}

func NewLabController(labService *service.LabService, storageService *service.StorageService,
	courseService *service.CourseService) *LabController {
	return &LabController{
		LabService:     labService,
		StorageService: storageService,
		CourseService:  courseService,
	}
}

// canManage resolves the lab to its course and applies the owner check.
func (c *LabController) canManage(ctx *gin.Context, labID uint) bool {
	courseID, err := c.LabService.CourseID(labID)
	if err != nil {
		serviceError(ctx, err)
		return false
	}
	return requireCourseOwner(ctx, c.CourseService, courseID)
}

// canManageSection is canManage keyed on a section id.
func (c *LabController) canManageSection(ctx *gin.Context, sectionID uint) bool {
	courseID, err := c.LabService.CourseIDForSection(sectionID)
	if err != nil {
		serviceError(ctx, err)
		return false
	}
	return requireCourseOwner(ctx, c.CourseService, courseID)
}

// canManageSubmission is canManage keyed on a submission id.
func (c *LabController) canManageSubmission(ctx *gin.Context, submissionID uint) bool {
	courseID, err := c.LabService.CourseIDForSubmission(submissionID)
	if err != nil {
		serviceError(ctx, err)
		return false
	}
	return requireCourseOwner(ctx, c.CourseService, courseID)
}

// GetLab godoc
// @Summary تفاصيل تمرين عملي
// @Description أقسام التمرين مع حالة تسليمات المتعلم الحالية
// @Tags التمارين العملية
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف التمرين"
// @Success 200 {object} util.Response{data=service.LabDetail} "نجاح"
// @Failure 403 {object} util.Response "الالتحاق غير معتمد"
// @Router /api/labs/{id} [get]
func (c *LabController) GetLab(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.LabService.Detail(claims.UserID, id)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}

// StartLab godoc
// @Summary بدء تمرين عملي
// @Tags التمارين العملية
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف التمرين"
// @Success 200 {object} util.Response{data=model.LabProgress} "نجاح"
// @Router /api/labs/{id}/start [post]
func (c *LabController) StartLab(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	progress, err := c.LabService.StartLab(claims.UserID, id)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// SubmitLab godoc
// @Summary تسليم تمرين كامل
// @Description ينشئ تسليماً جديداً بانتظار المراجعة ويمنح الإكمال حسب الإعدادات
// @Tags التمارين العملية
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف التمرين"
// @Param body body service.SubmissionRequest true "بيانات التسليم"
// @Success 201 {object} util.Response{data=model.LabSubmission} "تم التسليم"
// @Router /api/labs/{id}/submit [post]
func (c *LabController) SubmitLab(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.SubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.LabService.SubmitLab(claims.UserID, id, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Created(ctx, sub)
}

// SubmitSection godoc
// @Summary تسليم قسم من تمرين
// @Description كل تسليم صف جديد، وإعادة التسليم بعد الرفض تسليم جديد
// @Tags التمارين العملية
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف التمرين"
// @Param sectionId path int true "معرّف القسم"
// @Param body body service.SubmissionRequest true "بيانات التسليم"
// @Success 201 {object} util.Response{data=model.LabSubmission} "تم التسليم"
// @Router /api/labs/{id}/sections/{sectionId}/submit [post]
func (c *LabController) SubmitSection(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	sectionID, ok := parseIDParam(ctx, "sectionId")
	if !ok {
		return
	}

	var req service.SubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.LabService.SubmitSection(claims.UserID, id, sectionID, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Created(ctx, sub)
}

// UploadScreenshot godoc
// @Summary رفع لقطة شاشة للتسليم
// @Tags التمارين العملية
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف التمرين"
// @Param screenshot formData file true "ملف الصورة"
// @Success 200 {object} util.Response{data=object} "نجاح"
// @Router /api/labs/{id}/screenshot [post]
func (c *LabController) UploadScreenshot(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("screenshot")
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

	filename := "screenshots/" + model.GenerateUUID() + ext
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}

// PendingSubmissions godoc
// @Summary التسليمات بانتظار المراجعة (إدارة)
// @Tags مراجعة التسليمات
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "رقم الصفحة"
// @Param limit query int false "عدد العناصر"
// @Success 200 {object} util.PageResponse "نجاح"
// @Router /api/admin/lab-submissions/pending [get]
func (c *LabController) PendingSubmissions(ctx *gin.Context) {
	page, limit := pagination(ctx)

	subs, total, err := c.LabService.ListPendingSubmissions(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.SuccessPage(ctx, subs, total, page, limit)
}

// GetSubmission godoc
// @Summary تفاصيل تسليم (إدارة)
// @Tags مراجعة التسليمات
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف التسليم"
// @Success 200 {object} util.Response{data=model.LabSubmission} "نجاح"
// @Router /api/admin/lab-submissions/{id} [get]
func (c *LabController) GetSubmission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManageSubmission(ctx, id) {
		return
	}

	sub, err := c.LabService.GetSubmission(id)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, sub)
}

type ReviewRequest struct {
	Notes string `json:"notes"`
}

// ApproveSubmission godoc
// @Summary اعتماد تسليم (إدارة)
// @Tags مراجعة التسليمات
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف التسليم"
// @Param body body ReviewRequest false "ملاحظات المراجع"
// @Success 200 {object} util.Response{data=model.LabSubmission} "نجاح"
// @Router /api/admin/lab-submissions/{id}/approve [post]
func (c *LabController) ApproveSubmission(ctx *gin.Context) {
	c.review(ctx, util.SubmissionApproved)
}

// RejectSubmission godoc
// @Summary رفض تسليم (إدارة)
// @Tags مراجعة التسليمات
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف التسليم"
// @Param body body ReviewRequest false "ملاحظات المراجع"
// @Success 200 {object} util.Response{data=model.LabSubmission} "نجاح"
// @Router /api/admin/lab-submissions/{id}/reject [post]
func (c *LabController) RejectSubmission(ctx *gin.Context) {
	c.review(ctx, util.SubmissionRejected)
}

func (c *LabController) review(ctx *gin.Context, status string) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManageSubmission(ctx, id) {
		return
	}

	var req ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.LabService.ReviewSubmission(id, claims.UserID, status, req.Notes)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, sub)
}

// LabSubmissions godoc
// @Summary تسليمات تمرين (مدرّس)
// @Tags مراجعة التسليمات
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف التمرين"
// @Param page query int false "رقم الصفحة"
// @Param limit query int false "عدد العناصر"
// @Success 200 {object} util.PageResponse "نجاح"
// @Router /api/instructor/labs/{id}/submissions [get]
func (c *LabController) LabSubmissions(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}
	page, limit := pagination(ctx)

	subs, total, err := c.LabService.ListSubmissionsByLab(id, page, limit)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.SuccessPage(ctx, subs, total, page, limit)
}

// CreateLab godoc
// @Summary إنشاء تمرين عملي (مدرّس)
// @Tags إدارة التمارين
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.LabRequest true "بيانات التمرين"
// @Success 201 {object} util.Response{data=model.Lab} "تم الإنشاء"
// @Router /api/instructor/labs [post]
func (c *LabController) CreateLab(ctx *gin.Context) {
	var req service.LabRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !requireCourseOwner(ctx, c.CourseService, req.CourseID) {
		return
	}

	lab, err := c.LabService.Create(req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Created(ctx, lab)
}

// UpdateLab godoc
// @Summary تحديث تمرين (مدرّس)
// @Tags إدارة التمارين
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف التمرين"
// @Param body body service.LabRequest true "بيانات التمرين"
// @Success 200 {object} util.Response{data=model.Lab} "نجاح"
// @Router /api/instructor/labs/{id} [put]
func (c *LabController) UpdateLab(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}

	var req service.LabRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lab, err := c.LabService.Update(id, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, lab)
}

// DeleteLab godoc
// @Summary حذف تمرين (مدرّس)
// @Tags إدارة التمارين
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف التمرين"
// @Success 200 {object} util.Response "نجاح"
// @Router /api/instructor/labs/{id} [delete]
func (c *LabController) DeleteLab(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}

	if err := c.LabService.Delete(id); err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// AddSection godoc
// @Summary إضافة قسم لتمرين (مدرّس)
// @Tags إدارة التمارين
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف التمرين"
// @Param body body service.SectionRequest true "بيانات القسم"
// @Success 201 {object} util.Response{data=model.LabSection} "تم الإنشاء"
// @Router /api/instructor/labs/{id}/sections [post]
func (c *LabController) AddSection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}

	var req service.SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.LabService.AddSection(id, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Created(ctx, section)
}

// UpdateSection godoc
// @Summary تحديث قسم (مدرّس)
// @Tags إدارة التمارين
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف القسم"
// @Param body body service.SectionRequest true "بيانات القسم"
// @Success 200 {object} util.Response{data=model.LabSection} "نجاح"
// @Router /api/instructor/sections/{id} [put]
func (c *LabController) UpdateSection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManageSection(ctx, id) {
		return
	}

	var req service.SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.LabService.UpdateSection(id, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, section)
}

// DeleteSection godoc
// @Summary حذف قسم (مدرّس)
// @Tags إدارة التمارين
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف القسم"
// @Success 200 {object} util.Response "نجاح"
// @Router /api/instructor/sections/{id} [delete]
func (c *LabController) DeleteSection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManageSection(ctx, id) {
		return
	}

	if err := c.LabService.DeleteSection(id); err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
