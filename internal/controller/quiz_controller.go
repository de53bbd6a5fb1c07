package controller

import (
	"manara_edu_backend/internal/service"
	"manara_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService   *service.QuizService
	CourseService *service.CourseService
}

func NewQuizController(quizService *service.QuizService, courseService *service.CourseService) *QuizController {
	return &QuizController{
		QuizService:   quizService,
		CourseService: courseService,
	}
}

// canManage resolves the quiz to its course and applies the owner check.
func (c *QuizController) canManage(ctx *gin.Context, quizID uint) bool {
	courseID, err := c.QuizService.CourseID(quizID)
	if err != nil {
		serviceError(ctx, err)
		return false
	}
	return requireCourseOwner(ctx, c.CourseService, courseID)
}

// canManageQuestion is canManage keyed on a question id.
func (c *QuizController) canManageQuestion(ctx *gin.Context, questionID uint) bool {
	courseID, err := c.QuizService.CourseIDForQuestion(questionID)
	if err != nil {
		serviceError(ctx, err)
		return false
	}
	return requireCourseOwner(ctx, c.CourseService, courseID)
}

// GetQuiz godoc
// @Summary عرض اختبار للمتعلم
// @Description أسئلة الاختبار بدون الإجابات الصحيحة
// @Tags الاختبارات
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الاختبار"
// @Success 200 {object} util.Response{data=service.QuizView} "نجاح"
// @Failure 403 {object} util.Response "الالتحاق غير معتمد"
// @Failure 404 {object} util.Response "الاختبار غير موجود"
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	view, err := c.QuizService.GetForLearner(claims.UserID, id)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// swagger:model SubmitAttemptRequest
type SubmitAttemptRequest struct {
	Answers []int `json:"answers" binding:"required"`
}

// SubmitAttempt godoc
// @Summary تسليم محاولة اختبار
// @Description يصحح الإجابات ويسجل المحاولة ويمنح نقاط الخبرة عند النجاح
// @Tags الاختبارات
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الاختبار"
// @Param body body SubmitAttemptRequest true "فهارس الإجابات المختارة"
// @Success 201 {object} util.Response{data=model.QuizAttempt} "تم التسجيل"
// @Failure 400 {object} util.Response "الاختبار غير متاح"
// @Failure 403 {object} util.Response "الالتحاق غير معتمد"
// @Router /api/quizzes/{id}/submit [post]
func (c *QuizController) SubmitAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.QuizService.SubmitAttempt(claims.UserID, id, req.Answers)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Created(ctx, attempt)
}

// ListAttempts godoc
// @Summary محاولات المتعلم في اختبار
// @Tags الاختبارات
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الاختبار"
// @Success 200 {object} util.Response{data=[]model.QuizAttempt} "نجاح"
// @Router /api/quizzes/{id}/attempts [get]
func (c *QuizController) ListAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	attempts, err := c.QuizService.ListAttempts(claims.UserID, id)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, attempts)
}

// BestAttempt godoc
// @Summary أفضل محاولة للمتعلم
// @Tags الاختبارات
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الاختبار"
// @Success 200 {object} util.Response{data=model.QuizAttempt} "نجاح"
// @Failure 404 {object} util.Response "لا توجد محاولات"
// @Router /api/quizzes/{id}/attempts/best [get]
func (c *QuizController) BestAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	attempt, err := c.QuizService.BestAttempt(claims.UserID, id)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, attempt)
}

// CreateQuiz godoc
// @Summary إنشاء اختبار (مدرّس)
// @Tags إدارة الاختبارات
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuizRequest true "بيانات الاختبار"
// @Success 201 {object} util.Response{data=model.Quiz} "تم الإنشاء"
// @Router /api/instructor/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	courseID, err := c.QuizService.CourseIDForLesson(req.LessonID)
	if err != nil {
		serviceError(ctx, err)
		return
	}
	if !requireCourseOwner(ctx, c.CourseService, courseID) {
		return
	}

	quiz, err := c.QuizService.Create(req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Created(ctx, quiz)
}

// GetQuizFull godoc
// @Summary عرض اختبار كاملاً مع الإجابات (مدرّس)
// @Tags إدارة الاختبارات
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الاختبار"
// @Success 200 {object} util.Response{data=model.Quiz} "نجاح"
// @Router /api/instructor/quizzes/{id} [get]
func (c *QuizController) GetQuizFull(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}

	quiz, err := c.QuizService.GetForInstructor(id)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, quiz)
}

// UpdateQuiz godoc
// @Summary تحديث اختبار (مدرّس)
// @Tags إدارة الاختبارات
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الاختبار"
// @Param body body service.QuizRequest true "بيانات الاختبار"
// @Success 200 {object} util.Response{data=model.Quiz} "نجاح"
// @Router /api/instructor/quizzes/{id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}

	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.Update(id, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary حذف اختبار (مدرّس)
// @Tags إدارة الاختبارات
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الاختبار"
// @Success 200 {object} util.Response "نجاح"
// @Router /api/instructor/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}

	if err := c.QuizService.Delete(id); err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// AddQuestion godoc
// @Summary إضافة سؤال لاختبار (مدرّس)
// @Tags إدارة الاختبارات
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الاختبار"
// @Param body body service.QuestionRequest true "بيانات السؤال"
// @Success 201 {object} util.Response{data=model.Question} "تم الإنشاء"
// @Router /api/instructor/quizzes/{id}/questions [post]
func (c *QuizController) AddQuestion(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuizService.AddQuestion(id, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Created(ctx, question)
}

// UpdateQuestion godoc
// @Summary تحديث سؤال (مدرّس)
// @Tags إدارة الاختبارات
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف السؤال"
// @Param body body service.QuestionRequest true "بيانات السؤال"
// @Success 200 {object} util.Response{data=model.Question} "نجاح"
// @Router /api/instructor/questions/{id} [put]
func (c *QuizController) UpdateQuestion(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManageQuestion(ctx, id) {
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuizService.UpdateQuestion(id, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, question)
}

// DeleteQuestion godoc
// @Summary حذف سؤال (مدرّس)
// @Tags إدارة الاختبارات
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف السؤال"
// @Success 200 {object} util.Response "نجاح"
// @Router /api/instructor/questions/{id} [delete]
func (c *QuizController) DeleteQuestion(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManageQuestion(ctx, id) {
		return
	}

	if err := c.QuizService.DeleteQuestion(id); err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// QuizAttempts godoc
// @Summary محاولات جميع المتعلمين في اختبار (مدرّس)
// @Tags إدارة الاختبارات
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "معرّف الاختبار"
// @Param page query int false "رقم الصفحة"
// @Param limit query int false "عدد العناصر"
// @Success 200 {object} util.PageResponse "نجاح"
// @Router /api/instructor/quizzes/{id}/attempts [get]
func (c *QuizController) QuizAttempts(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !c.canManage(ctx, id) {
		return
	}
	page, limit := pagination(ctx)

	attempts, total, err := c.QuizService.ListAttemptsByQuiz(id, page, limit)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.SuccessPage(ctx, attempts, total, page, limit)
}
