package controller

import (
	"os"
	"path/filepath"
	"strings"

	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/service"
	"manara_edu_backend/internal/util"
	"manara_edu_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LessonController struct {
	LessonService  *service.LessonService
	StorageService *service.StorageService
	CourseService  *service.CourseService
}

func NewLessonController(lessonService *service.LessonService, storageService *service.StorageService,
	courseService *service.CourseService) *LessonController {
	return &LessonController{
		LessonService:  lessonService,
		StorageService: storageService,
		CourseService:  courseService,
	}
}

// canManage resolves the lesson to its course and applies the owner check.
func (c *LessonController) canManage(ctx *gin.Context, lessonID uint) bool {
	courseID, err := c.LessonService.CourseID(lessonID)
	if err != nil {
		serviceError(ctx, err)
		return false
	}
	return requireCourseOwner(ctx, c.CourseService, courseID)
}

// Complete godoc
// @Summary إكمال درس
// @Description يسجل إكمال الدرس ويمنح نقاط الخبرة عند أول إكمال
// @Tags الدروس
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الدرس"
// @Success 200 {object} util.Response{data=service.CompletionResult} "نجاح"
// @Failure 403 {object} util.Response "الالتحاق غير معتمد"
// @Failure 404 {object} util.Response "الدرس غير موجود"
// @Router /api/lessons/{id}/complete [post]
func (c *LessonController) Complete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	result, err := c.LessonService.CompleteLesson(claims.UserID, id)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// CreateLesson godoc
// @Summary إنشاء درس (مدرّس)
// @Tags إدارة الدروس
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.LessonRequest true "بيانات الدرس"
// @Success 201 {object} util.Response{data=model.Lesson} "تم الإنشاء"
// @Router /api/instructor/lessons [post]
func (c *LessonController) CreateLesson(ctx *gin.Context) {
	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !requireCourseOwner(ctx, c.CourseService, req.CourseID) {
		return
	}

	lesson, err := c.LessonService.Create(req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Created(ctx, lesson)
}

// UpdateLesson godoc
// @Summary تحديث درس (مدرّس)
// @Tags إدارة الدروس
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الدرس"
// @Param body body service.LessonRequest true "بيانات الدرس"
// @Success 200 {object} util.Response{data=model.Lesson} "نجاح"
// @Router /api/instructor/lessons/{id} [put]
func (c *LessonController) UpdateLesson(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}

	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.LessonService.Update(id, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, lesson)
}

// DeleteLesson godoc
// @Summary حذف درس (مدرّس)
// @Tags إدارة الدروس
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الدرس"
// @Success 200 {object} util.Response "نجاح"
// @Router /api/instructor/lessons/{id} [delete]
func (c *LessonController) DeleteLesson(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}

	if err := c.LessonService.Delete(id); err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// UploadVideo godoc
// @Summary رفع فيديو درس (مدرّس)
// @Description يرفع ملف الفيديو ويستخرج المدة تلقائياً
// @Tags إدارة الدروس
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الدرس"
// @Param video formData file true "ملف الفيديو"
// @Success 200 {object} util.Response{data=object} "نجاح"
// @Router /api/instructor/lessons/{id}/video [post]
func (c *LessonController) UploadVideo(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}

	file, err := ctx.FormFile("video")
	if err != nil {
		util.BadRequest(ctx, "ملف الفيديو مطلوب")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := map[string]bool{".mp4": true, ".webm": true, ".mov": true, ".mkv": true}
	if !allowed[ext] {
		util.BadRequest(ctx, "نوع الملف غير مدعوم")
		return
	}

	// staged to disk so ffprobe can read it before the upload
	tmpPath := filepath.Join(os.TempDir(), model.GenerateUUID()+ext)
	if err := ctx.SaveUploadedFile(file, tmpPath); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer os.Remove(tmpPath)

	duration := 0.0
	if info, err := util.ProbeVideo(tmpPath); err == nil {
		duration = info.Duration
	} else {
		logger.Log.Warn("Video probe failed", zap.String("file", file.Filename), zap.Error(err))
	}

	filename := "videos/" + model.GenerateUUID() + ext
	url, err := c.StorageService.UploadFile(ctx.Request.Context(), filename, tmpPath, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	// best effort: a frame at 1s serves as the lesson thumbnail
	thumbnailURL := ""
	thumbPath := filepath.Join(os.TempDir(), model.GenerateUUID()+".jpg")
	if err := util.GenerateThumbnail(tmpPath, thumbPath, "00:00:01"); err == nil {
		defer os.Remove(thumbPath)
		thumbName := "thumbnails/" + model.GenerateUUID() + ".jpg"
		if u, err := c.StorageService.UploadFile(ctx.Request.Context(), thumbName, thumbPath, "image/jpeg"); err == nil {
			thumbnailURL = u
		} else {
			logger.Log.Warn("Thumbnail upload failed", zap.String("file", file.Filename), zap.Error(err))
		}
	} else {
		logger.Log.Warn("Thumbnail generation failed", zap.String("file", file.Filename), zap.Error(err))
	}

	lesson, err := c.LessonService.SetVideo(id, url, duration)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"url":       lesson.VideoURL,
		"duration":  lesson.VideoDuration,
		"thumbnail": thumbnailURL,
	})
}
