package controller

import (
	"path/filepath"
	"strings"

	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/service"
	"manara_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService  *service.CourseService
	StorageService *service.StorageService
}

func NewCourseController(courseService *service.CourseService, storageService *service.StorageService) *CourseController {
	return &CourseController{
		CourseService:  courseService,
		StorageService: storageService,
	}
}

// Catalog godoc
// @Summary فهرس الدورات
// @Description قائمة الدورات المنشورة، متاحة بدون تسجيل دخول
// @Tags الدورات
// @Produce json
// @Param category query string false "تصفية حسب التصنيف"
// @Param page query int false "رقم الصفحة"
// @Param limit query int false "عدد العناصر"
// @Success 200 {object} util.Response{data=service.CatalogPage} "نجاح"
// @Router /api/courses [get]
func (c *CourseController) Catalog(ctx *gin.Context) {
	page, limit := pagination(ctx)
	category := ctx.Query("category")

	result, err := c.CourseService.Catalog(category, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// GetCourse godoc
// @Summary تفاصيل دورة منشورة
// @Tags الدورات
// @Produce json
// @Param id path int true "معرّف الدورة"
// @Success 200 {object} util.Response{data=model.Course} "نجاح"
// @Failure 404 {object} util.Response "الدورة غير موجودة"
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	course, err := c.CourseService.GetPublished(id)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// GetContent godoc
// @Summary محتوى دورة
// @Description الدروس والتمارين العملية، يتطلب التحاقاً معتمداً
// @Tags الدورات
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الدورة"
// @Success 200 {object} util.Response{data=service.CourseContent} "نجاح"
// @Failure 403 {object} util.Response "الالتحاق غير معتمد"
// @Router /api/courses/{id}/content [get]
func (c *CourseController) GetContent(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	content, err := c.CourseService.Content(claims.UserID, claims.Role, id)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, content)
}

// CreateCourse godoc
// @Summary إنشاء دورة (مدرّس)
// @Tags إدارة الدورات
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CourseRequest true "بيانات الدورة"
// @Success 201 {object} util.Response{data=model.Course} "تم الإنشاء"
// @Router /api/instructor/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Create(claims.UserID, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary تحديث دورة (مدرّس)
// @Tags إدارة الدورات
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الدورة"
// @Param body body service.CourseRequest true "بيانات الدورة"
// @Success 200 {object} util.Response{data=model.Course} "نجاح"
// @Router /api/instructor/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Update(id, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary حذف دورة (مدرّس)
// @Tags إدارة الدورات
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الدورة"
// @Success 200 {object} util.Response "نجاح"
// @Router /api/instructor/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}

	if err := c.CourseService.Delete(id); err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// MyCourses godoc
// @Summary دورات المدرّس الحالي
// @Tags إدارة الدورات
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Course} "نجاح"
// @Router /api/instructor/courses [get]
func (c *CourseController) MyCourses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.CourseService.ListByInstructor(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, courses)
}

// UploadThumbnail godoc
// @Summary رفع صورة غلاف الدورة (مدرّس)
// @Tags إدارة الدورات
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الدورة"
// @Param thumbnail formData file true "ملف الصورة"
// @Success 200 {object} util.Response{data=object} "نجاح"
// @Router /api/instructor/courses/{id}/thumbnail [post]
func (c *CourseController) UploadThumbnail(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}

	file, err := ctx.FormFile("thumbnail")
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

	filename := "thumbnails/" + model.GenerateUUID() + ext
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	course, err := c.CourseService.SetThumbnail(id, url)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": course.Thumbnail})
}

func (c *CourseController) canManage(ctx *gin.Context, courseID uint) bool {
	return requireCourseOwner(ctx, c.CourseService, courseID)
}
