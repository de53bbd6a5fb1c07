package service

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"manara_edu_backend/internal/config"
	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/repository"
	"manara_edu_backend/internal/util"
	"manara_edu_backend/pkg/monitoring"

	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo    *repository.QuizRepository
	LessonRepo  *repository.LessonRepository
	Enrollment  *EnrollmentService
	Progression *ProgressionService

	mu           sync.RWMutex
	repeatQuizXP bool
}

func NewQuizService(quizRepo *repository.QuizRepository, lessonRepo *repository.LessonRepository,
	enrollment *EnrollmentService, progression *ProgressionService, cfg *config.Config) *QuizService {
	return &QuizService{
		QuizRepo:     quizRepo,
		LessonRepo:   lessonRepo,
		Enrollment:   enrollment,
		Progression:  progression,
		repeatQuizXP: cfg.Progression.RepeatQuizXP,
	}
}

// ApplyConfig picks up hot-reloaded progression toggles.
func (s *QuizService) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	s.repeatQuizXP = cfg.Progression.RepeatQuizXP
	s.mu.Unlock()
}

func (s *QuizService) repeatXPEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repeatQuizXP
}

// QuestionView is the learner-facing question shape: no correct answer.
type QuestionView struct {
	ID        uint     `json:"id"`
	TextAr    string   `json:"textAr"`
	TextEn    string   `json:"textEn,omitempty"`
	Options   []string `json:"options"`
	SortOrder int      `json:"sortOrder"`
}

type QuizView struct {
	ID           uint           `json:"id"`
	LessonID     uint           `json:"lessonId"`
	TitleAr      string         `json:"titleAr"`
	TitleEn      string         `json:"titleEn,omitempty"`
	PassingScore int            `json:"passingScore"`
	XPReward     int            `json:"xpReward"`
	Questions    []QuestionView `json:"questions"`
	HasPassed    bool           `json:"hasPassed"`
}

func decodeOptions(raw string) []string {
	var options []string
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return []string{}
	}
	return options
}

// courseOf resolves the course a quiz belongs to via its lesson.
func (s *QuizService) courseOf(quiz *model.Quiz) (uint, error) {
	lesson, err := s.LessonRepo.FindByID(quiz.LessonID)
	if err != nil {
		return 0, err
	}
	return lesson.CourseID, nil
}

// CourseID resolves a quiz to its owning course, for ownership checks.
func (s *QuizService) CourseID(quizID uint) (uint, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return 0, util.ErrQuizNotFound
	}
	return s.courseOf(quiz)
}

// CourseIDForLesson resolves a lesson to its owning course.
func (s *QuizService) CourseIDForLesson(lessonID uint) (uint, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return 0, util.ErrLessonNotFound
	}
	return lesson.CourseID, nil
}

// CourseIDForQuestion resolves a question to its owning course via the quiz.
func (s *QuizService) CourseIDForQuestion(questionID uint) (uint, error) {
	question, err := s.QuizRepo.FindQuestionByID(questionID)
	if err != nil {
		return 0, util.ErrQuizNotFound
	}
	return s.CourseID(question.QuizID)
}

func (s *QuizService) gate(userID uint, quiz *model.Quiz) error {
	courseID, err := s.courseOf(quiz)
	if err != nil {
		return err
	}
	approved, err := s.Enrollment.IsApproved(userID, courseID)
	if err != nil {
		return err
	}
	if !approved {
		return util.ErrEnrollmentRequired
	}
	return nil
}

// GetForLearner returns the sanitized quiz. Unpublished quizzes and quizzes
// with zero questions are never presented to learners.
func (s *QuizService) GetForLearner(userID, quizID uint) (*QuizView, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if !quiz.IsPublished || len(quiz.Questions) == 0 {
		return nil, util.ErrQuizNotAvailable
	}
	if err := s.gate(userID, quiz); err != nil {
		return nil, err
	}

	hasPassed, err := s.QuizRepo.HasPassed(userID, quizID)
	if err != nil {
		return nil, err
	}

	view := &QuizView{
		ID:           quiz.ID,
		LessonID:     quiz.LessonID,
		TitleAr:      quiz.TitleAr,
		TitleEn:      quiz.TitleEn,
		PassingScore: quiz.PassingScore,
		XPReward:     quiz.XPReward,
		Questions:    make([]QuestionView, 0, len(quiz.Questions)),
		HasPassed:    hasPassed,
	}
	for _, q := range quiz.Questions {
		view.Questions = append(view.Questions, QuestionView{
			ID:        q.ID,
			TextAr:    q.TextAr,
			TextEn:    q.TextEn,
			Options:   decodeOptions(q.Options),
			SortOrder: q.SortOrder,
		})
	}
	return view, nil
}

// GetForInstructor returns the quiz with answer keys included.
func (s *QuizService) GetForInstructor(quizID uint) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	return quiz, nil
}

// Score grades an answer vector against the quiz's questions. Missing or
// surplus answers simply count as wrong; a quiz with no questions scores 0.
// Rounding is standard half-up.
func Score(questions []model.Question, answers []int) (score, correct int) {
	n := len(questions)
	if n == 0 {
		return 0, 0
	}
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	score = int(math.Round(float64(correct) / float64(n) * 100))
	return score, correct
}

// SubmitAttempt grades a submission, records it unconditionally, and awards
// XP on a pass. Whether a repeat pass re-earns XP is a config toggle; the
// first-pass check reads history from before this attempt is inserted.
func (s *QuizService) SubmitAttempt(userID, quizID uint, answers []int) (*model.QuizAttempt, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if !quiz.IsPublished || len(quiz.Questions) == 0 {
		return nil, util.ErrQuizNotAvailable
	}
	if err := s.gate(userID, quiz); err != nil {
		return nil, err
	}

	passedBefore, err := s.QuizRepo.HasPassed(userID, quizID)
	if err != nil {
		return nil, err
	}

	score, _ := Score(quiz.Questions, answers)
	passed := score >= quiz.PassingScore

	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}

	attempt := &model.QuizAttempt{
		UserID:      userID,
		QuizID:      quizID,
		Score:       score,
		Answers:     string(raw),
		Passed:      passed,
		CompletedAt: time.Now(),
	}
	if err := s.QuizRepo.CreateAttempt(attempt); err != nil {
		return nil, err
	}

	if passed && quiz.XPReward > 0 {
		if s.repeatXPEnabled() || !passedBefore {
			if err := s.Progression.AwardXP(userID, quiz.XPReward); err != nil {
				return nil, err
			}
			monitoring.XPAwardCounter.WithLabelValues("quiz").Inc()
		}
	}

	return attempt, nil
}

func (s *QuizService) ListAttempts(userID, quizID uint) ([]model.QuizAttempt, error) {
	return s.QuizRepo.ListAttempts(userID, quizID)
}

func (s *QuizService) BestAttempt(userID, quizID uint) (*model.QuizAttempt, error) {
	attempt, err := s.QuizRepo.BestAttempt(userID, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return attempt, nil
}

type QuizRequest struct {
	LessonID     uint   `json:"lessonId" binding:"required"`
	TitleAr      string `json:"titleAr" binding:"required"`
	TitleEn      string `json:"titleEn"`
	PassingScore *int   `json:"passingScore"`
	XPReward     int    `json:"xpReward"`
	IsPublished  bool   `json:"isPublished"`
}

func (s *QuizService) ListAttemptsByQuiz(quizID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		return nil, 0, util.ErrQuizNotFound
	}
	return s.QuizRepo.ListAttemptsByQuiz(quizID, page, limit)
}

func (s *QuizService) Create(req QuizRequest) (*model.Quiz, error) {
	if _, err := s.LessonRepo.FindByID(req.LessonID); err != nil {
		return nil, util.ErrLessonNotFound
	}

	quiz := &model.Quiz{
		LessonID:     req.LessonID,
		TitleAr:      req.TitleAr,
		TitleEn:      req.TitleEn,
		PassingScore: 70,
		XPReward:     req.XPReward,
		IsPublished:  req.IsPublished,
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) Update(quizID uint, req QuizRequest) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}

	quiz.TitleAr = req.TitleAr
	quiz.TitleEn = req.TitleEn
	quiz.XPReward = req.XPReward
	quiz.IsPublished = req.IsPublished
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}

	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) Delete(quizID uint) error {
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		return util.ErrQuizNotFound
	}
	return s.QuizRepo.Delete(quizID)
}

type QuestionRequest struct {
	TextAr        string   `json:"textAr" binding:"required"`
	TextEn        string   `json:"textEn"`
	Options       []string `json:"options" binding:"required,min=2"`
	CorrectAnswer int      `json:"correctAnswer"`
	SortOrder     int      `json:"sortOrder"`
}

func (s *QuizService) AddQuestion(quizID uint, req QuestionRequest) (*model.Question, error) {
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		return nil, util.ErrQuizNotFound
	}
	if req.CorrectAnswer < 0 || req.CorrectAnswer >= len(req.Options) {
		return nil, util.ErrInvalidAnswerIndex
	}

	raw, err := json.Marshal(req.Options)
	if err != nil {
		return nil, err
	}

	question := &model.Question{
		QuizID:        quizID,
		TextAr:        req.TextAr,
		TextEn:        req.TextEn,
		Options:       string(raw),
		CorrectAnswer: req.CorrectAnswer,
		SortOrder:     req.SortOrder,
	}
	if err := s.QuizRepo.CreateQuestion(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *QuizService) UpdateQuestion(questionID uint, req QuestionRequest) (*model.Question, error) {
	question, err := s.QuizRepo.FindQuestionByID(questionID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if req.CorrectAnswer < 0 || req.CorrectAnswer >= len(req.Options) {
		return nil, util.ErrInvalidAnswerIndex
	}

	raw, err := json.Marshal(req.Options)
	if err != nil {
		return nil, err
	}

	question.TextAr = req.TextAr
	question.TextEn = req.TextEn
	question.Options = string(raw)
	question.CorrectAnswer = req.CorrectAnswer
	question.SortOrder = req.SortOrder

	if err := s.QuizRepo.UpdateQuestion(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *QuizService) DeleteQuestion(questionID uint) error {
	if _, err := s.QuizRepo.FindQuestionByID(questionID); err != nil {
		return util.ErrQuizNotFound
	}
	return s.QuizRepo.DeleteQuestion(questionID)
}
