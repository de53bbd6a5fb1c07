package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"manara_edu_backend/internal/config"
	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/repository"
	"manara_edu_backend/internal/util"
	"manara_edu_backend/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testEnv wires the whole service layer onto an in-memory SQLite database.
type testEnv struct {
	db *gorm.DB

	userRepo       *repository.UserRepository
	courseRepo     *repository.CourseRepository
	lessonRepo     *repository.LessonRepository
	quizRepo       *repository.QuizRepository
	labRepo        *repository.LabRepository
	enrollmentRepo *repository.EnrollmentRepository

	progression *ProgressionService
	enrollment  *EnrollmentService
	course      *CourseService
	lesson      *LessonService
	quiz        *QuizService
	lab         *LabService
	user        *UserService
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Progression.RepeatQuizXP = true
	cfg.Progression.LabCompletionGate = util.LabGateSubmission
	return cfg
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	// a per-test shared-cache name keeps the schema visible across pooled
	// connections without leaking between tests
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

	env := &testEnv{
		db:             db,
		userRepo:       repository.NewUserRepository(db),
		courseRepo:     repository.NewCourseRepository(db),
		lessonRepo:     repository.NewLessonRepository(db),
		quizRepo:       repository.NewQuizRepository(db),
		labRepo:        repository.NewLabRepository(db),
		enrollmentRepo: repository.NewEnrollmentRepository(db),
	}

	env.progression = NewProgressionService(env.userRepo)
	env.enrollment = NewEnrollmentService(env.enrollmentRepo, env.courseRepo)
	// nil Redis client: caching layers fall through to the database
	env.course = NewCourseService(env.courseRepo, env.quizRepo, env.enrollment, nil)
	env.user = NewUserService(env.userRepo, env.progression, nil)
	env.lesson = NewLessonService(env.lessonRepo, env.enrollment, env.progression)
	env.quiz = NewQuizService(env.quizRepo, env.lessonRepo, env.enrollment, env.progression, cfg)
	env.lab = NewLabService(env.labRepo, env.enrollment, env.progression, cfg)

	return env
}

func (e *testEnv) seedUser(t *testing.T, role model.UserRole) *model.User {
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

func (e *testEnv) seedCourse(t *testing.T, instructorID uint) *model.Course {
	t.Helper()
	course := &model.Course{
		InstructorID: instructorID,
		TitleAr:      "دورة لينكس",
		TitleEn:      "Linux Course",
		Category:     "linux",
		Currency:     "SAR",
		IsPublished:  true,
	}
	require.NoError(t, e.courseRepo.Create(course))
	return course
}

func (e *testEnv) seedLesson(t *testing.T, courseID uint, xp int) *model.Lesson {
	t.Helper()
	lesson := &model.Lesson{
		CourseID:    courseID,
		TitleAr:     "درس",
		XPReward:    xp,
		IsPublished: true,
	}
	require.NoError(t, e.lessonRepo.Create(lesson))
	return lesson
}

// seedQuiz creates a published quiz where every question's correct answer is
// index 0 out of 4 options.
func (e *testEnv) seedQuiz(t *testing.T, lessonID uint, questions, passingScore, xp int) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		LessonID:     lessonID,
		TitleAr:      "اختبار",
		PassingScore: passingScore,
		XPReward:     xp,
		IsPublished:  true,
	}
	require.NoError(t, e.quizRepo.Create(quiz))
	for i := 0; i < questions; i++ {
		q := &model.Question{
			QuizID:        quiz.ID,
			TextAr:        fmt.Sprintf("سؤال %d", i+1),
			Options:       `["أ","ب","ج","د"]`,
			CorrectAnswer: 0,
			SortOrder:     i,
		}
		require.NoError(t, e.quizRepo.CreateQuestion(q))
	}
	loaded, err := e.quizRepo.FindByID(quiz.ID)
	require.NoError(t, err)
	return loaded
}

func (e *testEnv) seedLab(t *testing.T, courseID uint, sections, xp int) *model.Lab {
	t.Helper()
	lab := &model.Lab{
		CourseID:    courseID,
		TitleAr:     "تمرين عملي",
		XPReward:    xp,
		IsPublished: true,
	}
	require.NoError(t, e.labRepo.Create(lab))
	for i := 0; i < sections; i++ {
		section := &model.LabSection{
			LabID:     lab.ID,
			TitleAr:   fmt.Sprintf("قسم %d", i+1),
			SortOrder: i,
		}
		require.NoError(t, e.labRepo.CreateSection(section))
	}
	loaded, err := e.labRepo.FindByID(lab.ID)
	require.NoError(t, err)
	return loaded
}

// approveEnrollment puts the learner straight into the approved state.
func (e *testEnv) approveEnrollment(t *testing.T, userID, courseID uint) {
	t.Helper()
	enrollment := &model.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   util.EnrollmentApproved,
	}
	require.NoError(t, e.enrollmentRepo.Create(enrollment))
}

func (e *testEnv) reloadUser(t *testing.T, id uint) *model.User {
	t.Helper()
	user, err := e.userRepo.FindByID(id)
	require.NoError(t, err)
	return user
}
