package controller

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"manara_edu_backend/internal/config"
	"manara_edu_backend/internal/middleware"
	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/repository"
	"manara_edu_backend/internal/service"
	"manara_edu_backend/internal/util"
	"manara_edu_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testJWTSecret = "ownership-test-secret-0123456789abcdef"

// authzEnv mounts the instructor route group on a real router so the
// ownership checks are exercised exactly as deployed.
type authzEnv struct {
	router *gin.Engine

	userRepo *repository.UserRepository
	quizRepo *repository.QuizRepository
	labRepo  *repository.LabRepository

	courseRepo     *repository.CourseRepository
	lessonRepo     *repository.LessonRepository
	enrollmentRepo *repository.EnrollmentRepository
}

func newAuthzEnv(t *testing.T) *authzEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{}
	cfg.JWT.Secret = testJWTSecret
	cfg.Progression.LabCompletionGate = util.LabGateApproval

	env := &authzEnv{
		userRepo:       repository.NewUserRepository(db),
		courseRepo:     repository.NewCourseRepository(db),
		lessonRepo:     repository.NewLessonRepository(db),
		quizRepo:       repository.NewQuizRepository(db),
		labRepo:        repository.NewLabRepository(db),
		enrollmentRepo: repository.NewEnrollmentRepository(db),
	}

	progression := service.NewProgressionService(env.userRepo)
	enrollment := service.NewEnrollmentService(env.enrollmentRepo, env.courseRepo)
	course := service.NewCourseService(env.courseRepo, env.quizRepo, enrollment, nil)
	lesson := service.NewLessonService(env.lessonRepo, enrollment, progression)
	quiz := service.NewQuizService(env.quizRepo, env.lessonRepo, enrollment, progression, cfg)
	lab := service.NewLabService(env.labRepo, enrollment, progression, cfg)

	courseCtrl := NewCourseController(course, nil)
	lessonCtrl := NewLessonController(lesson, nil, course)
	quizCtrl := NewQuizController(quiz, course)
	labCtrl := NewLabController(lab, nil, course)
	enrollmentCtrl := NewEnrollmentController(enrollment, course)

	router := gin.New()
	api := router.Group("/api", middleware.AuthMiddleware(cfg))
	instructor := api.Group("/instructor", middleware.RoleMiddleware(model.Instructor))
	{
		instructor.PUT("/courses/:id", courseCtrl.UpdateCourse)
		instructor.GET("/courses/:id/enrollments", enrollmentCtrl.CourseEnrollments)

		instructor.POST("/lessons", lessonCtrl.CreateLesson)
		instructor.PUT("/lessons/:id", lessonCtrl.UpdateLesson)
		instructor.DELETE("/lessons/:id", lessonCtrl.DeleteLesson)

		instructor.GET("/quizzes/:id", quizCtrl.GetQuizFull)
		instructor.DELETE("/quizzes/:id", quizCtrl.DeleteQuiz)
		instructor.PUT("/questions/:id", quizCtrl.UpdateQuestion)

		instructor.PUT("/labs/:id", labCtrl.UpdateLab)
		instructor.GET("/labs/:id/submissions", labCtrl.LabSubmissions)
		instructor.POST("/lab-submissions/:id/approve", labCtrl.ApproveSubmission)
	}
	env.router = router

	return env
}

func (e *authzEnv) seedUser(t *testing.T, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Name:     "Test User",
		Email:    fmt.Sprintf("user%d@example.com", time.Now().UnixNano()),
		Password: "hashed",
		Role:     role,
		Level:    1,
		Language: "ar",
	}
	require.NoError(t, e.userRepo.Create(user))
	return user
}

func (e *authzEnv) seedCourse(t *testing.T, instructorID uint) *model.Course {
	t.Helper()
	course := &model.Course{
		InstructorID: instructorID,
		TitleAr:      "دورة",
		Category:     "linux",
		Currency:     "SAR",
		IsPublished:  true,
	}
	require.NoError(t, e.courseRepo.Create(course))
	return course
}

func (e *authzEnv) do(t *testing.T, user *model.User, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := util.GenerateJWT(user, testJWTSecret, time.Hour)
	require.NoError(t, err)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestCourseEnrollmentsOwnershipGate(t *testing.T) {
	env := newAuthzEnv(t)
	owner := env.seedUser(t, model.Instructor)
	other := env.seedUser(t, model.Instructor)
	admin := env.seedUser(t, model.Admin)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, owner.ID)

	require.NoError(t, env.enrollmentRepo.Create(&model.Enrollment{
		UserID:       learner.ID,
		CourseID:     course.ID,
		Status:       util.EnrollmentPending,
		ContactName:  "متعلم",
		ContactPhone: "0500000000",
	}))

	path := fmt.Sprintf("/api/instructor/courses/%d/enrollments", course.ID)

	w := env.do(t, other, http.MethodGet, path, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "0500000000")

	w = env.do(t, owner, http.MethodGet, path, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "0500000000")

	w = env.do(t, admin, http.MethodGet, path, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLessonMutationOwnershipGate(t *testing.T) {
	env := newAuthzEnv(t)
	owner := env.seedUser(t, model.Instructor)
	other := env.seedUser(t, model.Instructor)
	course := env.seedCourse(t, owner.ID)

	lesson := &model.Lesson{CourseID: course.ID, TitleAr: "درس", IsPublished: true}
	require.NoError(t, env.lessonRepo.Create(lesson))

	body := fmt.Sprintf(`{"courseId":%d,"titleAr":"عنوان جديد"}`, course.ID)
	path := fmt.Sprintf("/api/instructor/lessons/%d", lesson.ID)

	w := env.do(t, other, http.MethodPut, path, body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	unchanged, err := env.lessonRepo.FindByID(lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, "درس", unchanged.TitleAr)

	w = env.do(t, other, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// creating a lesson on someone else's course is blocked too
	w = env.do(t, other, http.MethodPost, "/api/instructor/lessons", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, owner, http.MethodPut, path, body)
	assert.Equal(t, http.StatusOK, w.Code)
	updated, err := env.lessonRepo.FindByID(lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, "عنوان جديد", updated.TitleAr)
}

func TestQuizOwnershipGateAndAnswerKey(t *testing.T) {
	env := newAuthzEnv(t)
	owner := env.seedUser(t, model.Instructor)
	other := env.seedUser(t, model.Instructor)
	course := env.seedCourse(t, owner.ID)

	lesson := &model.Lesson{CourseID: course.ID, TitleAr: "درس", IsPublished: true}
	require.NoError(t, env.lessonRepo.Create(lesson))
	quiz := &model.Quiz{LessonID: lesson.ID, TitleAr: "اختبار", PassingScore: 60, IsPublished: true}
	require.NoError(t, env.quizRepo.Create(quiz))
	question := &model.Question{
		QuizID:        quiz.ID,
		TextAr:        "سؤال",
		Options:       `["أ","ب"]`,
		CorrectAnswer: 0,
	}
	require.NoError(t, env.quizRepo.CreateQuestion(question))

	path := fmt.Sprintf("/api/instructor/quizzes/%d", quiz.ID)

	w := env.do(t, other, http.MethodGet, path, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, other, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	questionPath := fmt.Sprintf("/api/instructor/questions/%d", question.ID)
	w = env.do(t, other, http.MethodPut, questionPath, `{"textAr":"x","options":["أ","ب"],"correctAnswer":1}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the owner's read includes the answer key even when the index is zero
	w = env.do(t, owner, http.MethodGet, path, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"correctAnswer":0`)
}

func TestSubmissionReviewOwnershipGate(t *testing.T) {
	env := newAuthzEnv(t)
	owner := env.seedUser(t, model.Instructor)
	other := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, owner.ID)

	lab := &model.Lab{CourseID: course.ID, TitleAr: "تمرين", XPReward: 80, IsPublished: true}
	require.NoError(t, env.labRepo.Create(lab))
	sub := &model.LabSubmission{
		UserID:      learner.ID,
		LabID:       lab.ID,
		Status:      util.SubmissionPending,
		SubmittedAt: time.Now(),
	}
	require.NoError(t, env.labRepo.CreateSubmission(sub))

	w := env.do(t, other, http.MethodPost,
		fmt.Sprintf("/api/instructor/lab-submissions/%d/approve", sub.ID), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// neither the verdict nor the approval-gated XP went through
	reloaded, err := env.labRepo.FindSubmissionByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, util.SubmissionPending, reloaded.Status)
	student, err := env.userRepo.FindByID(learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, student.XP)

	w = env.do(t, other, http.MethodGet,
		fmt.Sprintf("/api/instructor/labs/%d/submissions", lab.ID), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, owner, http.MethodPost,
		fmt.Sprintf("/api/instructor/lab-submissions/%d/approve", sub.ID), "")
	assert.Equal(t, http.StatusOK, w.Code)
	reloaded, err = env.labRepo.FindSubmissionByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, util.SubmissionApproved, reloaded.Status)
}
