package app

import (
	"manara_edu_backend/docs"
	"manara_edu_backend/internal/config"
	"manara_edu_backend/internal/middleware"
	"manara_edu_backend/internal/model"
	"manara_edu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerLearnerRoutes(authGroup, c)
		a.registerInstructorRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// the published catalog is open to visitors
		public.GET("/courses", c.course.Catalog)
		public.GET("/courses/:id", c.course.GetCourse)
	}
}

func (a *App) registerLearnerRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/profile", c.auth.GetProfile)
	group.PUT("/profile", c.user.UpdateProfile)
	group.POST("/profile/avatar", c.user.UploadAvatar)
	group.GET("/leaderboard", c.user.Leaderboard)

	group.POST("/courses/:id/enroll", c.enrollment.Enroll)
	group.GET("/enrollments", c.enrollment.MyEnrollments)
	group.GET("/courses/:id/content", c.course.GetContent)

	group.POST("/lessons/:id/complete", c.lesson.Complete)

	group.GET("/quizzes/:id", c.quiz.GetQuiz)
	group.POST("/quizzes/:id/submit", c.quiz.SubmitAttempt)
	// legacy alias kept for older clients
	group.POST("/quizzes/:id/attempt", c.quiz.SubmitAttempt)
	group.GET("/quizzes/:id/attempts", c.quiz.ListAttempts)
	group.GET("/quizzes/:id/attempts/best", c.quiz.BestAttempt)

	group.GET("/labs/:id", c.lab.GetLab)
	group.POST("/labs/:id/start", c.lab.StartLab)
	group.POST("/labs/:id/submit", c.lab.SubmitLab)
	group.POST("/labs/:id/sections/:sectionId/submit", c.lab.SubmitSection)
	group.POST("/labs/:id/screenshot", c.lab.UploadScreenshot)
}

func (a *App) registerInstructorRoutes(group *gin.RouterGroup, c *controllers) {
	instructor := group.Group("/instructor")
	instructor.Use(middleware.RoleMiddleware(model.Instructor))
	{
		instructor.GET("/courses", c.course.MyCourses)
		instructor.POST("/courses", c.course.CreateCourse)
		instructor.PUT("/courses/:id", c.course.UpdateCourse)
		instructor.DELETE("/courses/:id", c.course.DeleteCourse)
		instructor.POST("/courses/:id/thumbnail", c.course.UploadThumbnail)
		instructor.GET("/courses/:id/enrollments", c.enrollment.CourseEnrollments)

		instructor.POST("/lessons", c.lesson.CreateLesson)
		instructor.PUT("/lessons/:id", c.lesson.UpdateLesson)
		instructor.DELETE("/lessons/:id", c.lesson.DeleteLesson)
		instructor.POST("/lessons/:id/video", c.lesson.UploadVideo)

		instructor.POST("/quizzes", c.quiz.CreateQuiz)
		instructor.GET("/quizzes/:id", c.quiz.GetQuizFull)
		instructor.PUT("/quizzes/:id", c.quiz.UpdateQuiz)
		instructor.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)
		instructor.POST("/quizzes/:id/questions", c.quiz.AddQuestion)
		instructor.GET("/quizzes/:id/attempts", c.quiz.QuizAttempts)
		instructor.PUT("/questions/:id", c.quiz.UpdateQuestion)
		instructor.DELETE("/questions/:id", c.quiz.DeleteQuestion)

		instructor.POST("/labs", c.lab.CreateLab)
		instructor.PUT("/labs/:id", c.lab.UpdateLab)
		instructor.DELETE("/labs/:id", c.lab.DeleteLab)
		instructor.GET("/labs/:id/submissions", c.lab.LabSubmissions)
		instructor.GET("/lab-submissions/:id", c.lab.GetSubmission)
		instructor.POST("/lab-submissions/:id/approve", c.lab.ApproveSubmission)
		instructor.POST("/lab-submissions/:id/reject", c.lab.RejectSubmission)
		instructor.POST("/labs/:id/sections", c.lab.AddSection)
		instructor.PUT("/sections/:id", c.lab.UpdateSection)
		instructor.DELETE("/sections/:id", c.lab.DeleteSection)
	}
}

func (a *App) registerAdminRoutes(group *gin.RouterGroup, c *controllers) {
	admin := group.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.ListUsers)
		admin.GET("/users/:id", c.user.GetUser)
		admin.PUT("/users/:id", c.user.UpdateUser)
		admin.POST("/users/:id/reset-password", c.user.ResetPassword)
		admin.PUT("/users/:id/disabled", c.user.SetDisabled)

		admin.GET("/enrollments/pending", c.enrollment.PendingEnrollments)
		admin.POST("/enrollments/:id/approve", c.enrollment.ApproveEnrollment)
		admin.POST("/enrollments/:id/reject", c.enrollment.RejectEnrollment)

		admin.GET("/lab-submissions/pending", c.lab.PendingSubmissions)
		admin.GET("/lab-submissions/:id", c.lab.GetSubmission)
		admin.POST("/lab-submissions/:id/approve", c.lab.ApproveSubmission)
		admin.POST("/lab-submissions/:id/reject", c.lab.RejectSubmission)
	}
}
