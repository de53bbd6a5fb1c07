package controller

import (
	"errors"
	"strconv"

	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/service"
	"manara_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads a numeric path parameter. Writes a 400 response and
// returns false when the value is not a positive integer.
func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "معرّف غير صالح: "+raw)
		return 0, false
	}
	return uint(id), true
}

func pagination(ctx *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// requireCourseOwner writes the error response itself when the caller is not
// an admin and does not own the course. Every instructor-scoped handler
// resolves its aggregate to the owning course and calls this before touching
// anything.
func requireCourseOwner(ctx *gin.Context, courses *service.CourseService, courseID uint) bool {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return false
	}
	if claims.Role == model.Admin {
		return true
	}

	course, err := courses.Get(courseID)
	if err != nil {
		serviceError(ctx, err)
		return false
	}
	if course.InstructorID != claims.UserID {
		util.Forbidden(ctx)
		return false
	}
	return true
}

// serviceError maps the service layer's sentinel errors onto HTTP responses.
// Anything unrecognized is logged and surfaced as a 500.
func serviceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrLessonNotFound),
		errors.Is(err, util.ErrQuizNotFound),
		errors.Is(err, util.ErrLabNotFound),
		errors.Is(err, util.ErrSectionNotFound),
		errors.Is(err, util.ErrSubmissionNotFound),
		errors.Is(err, util.ErrEnrollmentNotFound):
		util.Error(ctx, 404, err.Error())
	case errors.Is(err, util.ErrEmailRegistered),
		errors.Is(err, util.ErrAlreadyEnrolled):
		util.Error(ctx, 409, err.Error())
	case errors.Is(err, util.ErrEnrollmentRequired),
		errors.Is(err, util.ErrAccountDisabled):
		util.Error(ctx, 403, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Error(ctx, 401, err.Error())
	case errors.Is(err, util.ErrQuizNotAvailable),
		errors.Is(err, util.ErrInvalidReviewStatus),
		errors.Is(err, util.ErrInvalidAnswerIndex):
		util.Error(ctx, 400, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
