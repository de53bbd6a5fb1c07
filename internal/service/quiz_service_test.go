package service

import (
	"testing"

	"manara_edu_backend/internal/config"
	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionsWithAnswers(correct ...int) []model.Question {
	questions := make([]model.Question, len(correct))
	for i, c := range correct {
		questions[i] = model.Question{
			Options:       `["أ","ب","ج","د"]`,
			CorrectAnswer: c,
		}
	}
	return questions
}

func TestScore(t *testing.T) {
	cases := []struct {
		name        string
		correct     []int
		answers     []int
		wantScore   int
		wantCorrect int
	}{
		{"all correct", []int{0, 1, 2, 3}, []int{0, 1, 2, 3}, 100, 4},
		{"three of four", []int{0, 1, 2, 3}, []int{0, 1, 2, 0}, 75, 3},
		{"one of four", []int{0, 1, 2, 3}, []int{1, 1, 1, 1}, 25, 1},
		{"none correct", []int{0, 1}, []int{1, 0}, 0, 0},
		{"rounds half up", []int{0, 0, 0, 0, 0, 0, 0, 0}, []int{0, 1, 1, 1, 1, 1, 1, 1}, 13, 1},
		{"rounds down below half", []int{0, 0, 0}, []int{0, 1, 1}, 33, 1},
		{"rounds up above half", []int{0, 0, 0}, []int{0, 0, 1}, 67, 2},
		{"missing answers count wrong", []int{0, 0, 0, 0}, []int{0, 0}, 50, 2},
		{"surplus answers ignored", []int{0, 0}, []int{0, 0, 3, 3}, 100, 2},
		{"empty answers", []int{0, 0}, []int{}, 0, 0},
		{"no questions", nil, []int{0}, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, correct := Score(questionsWithAnswers(tc.correct...), tc.answers)
			assert.Equal(t, tc.wantScore, score)
			assert.Equal(t, tc.wantCorrect, correct)
		})
	}
}

func TestSubmitAttemptRequiresApprovedEnrollment(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	lesson := env.seedLesson(t, course.ID, 0)
	quiz := env.seedQuiz(t, lesson.ID, 2, 70, 50)

	_, err := env.quiz.SubmitAttempt(learner.ID, quiz.ID, []int{0, 0})
	require.ErrorIs(t, err, util.ErrEnrollmentRequired)

	// pending is not enough
	pending := &model.Enrollment{UserID: learner.ID, CourseID: course.ID, Status: util.EnrollmentPending}
	require.NoError(t, env.enrollmentRepo.Create(pending))
	_, err = env.quiz.SubmitAttempt(learner.ID, quiz.ID, []int{0, 0})
	require.ErrorIs(t, err, util.ErrEnrollmentRequired)

	pending.Status = util.EnrollmentApproved
	require.NoError(t, env.enrollmentRepo.Update(pending))
	attempt, err := env.quiz.SubmitAttempt(learner.ID, quiz.ID, []int{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 100, attempt.Score)
	assert.True(t, attempt.Passed)
}

func TestSubmitAttemptUnavailableQuiz(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	env.approveEnrollment(t, learner.ID, course.ID)

	lesson := env.seedLesson(t, course.ID, 0)
	quiz := env.seedQuiz(t, lesson.ID, 2, 70, 0)

	quiz.IsPublished = false
	require.NoError(t, env.quizRepo.Update(quiz))
	_, err := env.quiz.SubmitAttempt(learner.ID, quiz.ID, []int{0, 0})
	require.ErrorIs(t, err, util.ErrQuizNotAvailable)

	// published but empty
	other := env.seedLesson(t, course.ID, 0)
	empty := env.seedQuiz(t, other.ID, 0, 70, 0)
	_, err = env.quiz.SubmitAttempt(learner.ID, empty.ID, []int{})
	require.ErrorIs(t, err, util.ErrQuizNotAvailable)

	_, err = env.quiz.SubmitAttempt(learner.ID, 99999, []int{})
	require.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestSubmitAttemptPassBoundaryAndXP(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	env.approveEnrollment(t, learner.ID, course.ID)
	lesson := env.seedLesson(t, course.ID, 0)
	quiz := env.seedQuiz(t, lesson.ID, 4, 75, 40)

	// 3/4 = 75, exactly the threshold: a pass
	attempt, err := env.quiz.SubmitAttempt(learner.ID, quiz.ID, []int{0, 0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, 75, attempt.Score)
	assert.True(t, attempt.Passed)
	assert.Equal(t, 40, env.reloadUser(t, learner.ID).XP)

	// 2/4 = 50: a fail, no XP
	attempt, err = env.quiz.SubmitAttempt(learner.ID, quiz.ID, []int{0, 0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 50, attempt.Score)
	assert.False(t, attempt.Passed)
	assert.Equal(t, 40, env.reloadUser(t, learner.ID).XP)
}

func TestSubmitAttemptKeepsHistory(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	env.approveEnrollment(t, learner.ID, course.ID)
	lesson := env.seedLesson(t, course.ID, 0)
	quiz := env.seedQuiz(t, lesson.ID, 2, 70, 0)

	first, err := env.quiz.SubmitAttempt(learner.ID, quiz.ID, []int{1, 1})
	require.NoError(t, err)
	second, err := env.quiz.SubmitAttempt(learner.ID, quiz.ID, []int{0, 0})
	require.NoError(t, err)
	third, err := env.quiz.SubmitAttempt(learner.ID, quiz.ID, []int{0, 1})
	require.NoError(t, err)

	attempts, err := env.quiz.ListAttempts(learner.ID, quiz.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 3)

	// earlier rows are untouched by later attempts
	stored := map[uint]int{first.ID: 0, second.ID: 100, third.ID: 50}
	for _, a := range attempts {
		assert.Equal(t, stored[a.ID], a.Score)
	}

	best, err := env.quiz.BestAttempt(learner.ID, quiz.ID)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, second.ID, best.ID)
	assert.Equal(t, 100, best.Score)
}

func TestBestAttemptNoAttempts(t *testing.T) {
	env := newTestEnv(t, testConfig())
	learner := env.seedUser(t, model.Student)

	best, err := env.quiz.BestAttempt(learner.ID, 1)
	require.NoError(t, err)
	assert.Nil(t, best)
}

func TestRepeatQuizXPToggle(t *testing.T) {
	cfg := testConfig()
	cfg.Progression.RepeatQuizXP = false

	env := newTestEnv(t, cfg)
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	env.approveEnrollment(t, learner.ID, course.ID)
	lesson := env.seedLesson(t, course.ID, 0)
	quiz := env.seedQuiz(t, lesson.ID, 2, 70, 30)

	_, err := env.quiz.SubmitAttempt(learner.ID, quiz.ID, []int{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 30, env.reloadUser(t, learner.ID).XP)

	// second pass earns nothing while the toggle is off
	_, err = env.quiz.SubmitAttempt(learner.ID, quiz.ID, []int{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 30, env.reloadUser(t, learner.ID).XP)

	// flip at runtime, repeat passes earn again
	reloaded := &config.Config{}
	reloaded.Progression.RepeatQuizXP = true
	reloaded.Progression.LabCompletionGate = util.LabGateSubmission
	env.quiz.ApplyConfig(reloaded)

	_, err = env.quiz.SubmitAttempt(learner.ID, quiz.ID, []int{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 60, env.reloadUser(t, learner.ID).XP)
}

func TestGetForLearnerHidesAnswers(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	env.approveEnrollment(t, learner.ID, course.ID)
	lesson := env.seedLesson(t, course.ID, 0)
	quiz := env.seedQuiz(t, lesson.ID, 3, 70, 0)

	view, err := env.quiz.GetForLearner(learner.ID, quiz.ID)
	require.NoError(t, err)
	assert.False(t, view.HasPassed)
	require.Len(t, view.Questions, 3)
	for _, q := range view.Questions {
		assert.Equal(t, []string{"أ", "ب", "ج", "د"}, q.Options)
	}

	_, err = env.quiz.SubmitAttempt(learner.ID, quiz.ID, []int{0, 0, 0})
	require.NoError(t, err)

	view, err = env.quiz.GetForLearner(learner.ID, quiz.ID)
	require.NoError(t, err)
	assert.True(t, view.HasPassed)
}

func TestQuestionValidation(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	course := env.seedCourse(t, instructor.ID)
	lesson := env.seedLesson(t, course.ID, 0)
	quiz := env.seedQuiz(t, lesson.ID, 0, 70, 0)

	_, err := env.quiz.AddQuestion(quiz.ID, QuestionRequest{
		TextAr:        "سؤال",
		Options:       []string{"أ", "ب"},
		CorrectAnswer: 2,
	})
	require.ErrorIs(t, err, util.ErrInvalidAnswerIndex)

	q, err := env.quiz.AddQuestion(quiz.ID, QuestionRequest{
		TextAr:        "سؤال",
		Options:       []string{"أ", "ب"},
		CorrectAnswer: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, `["أ","ب"]`, q.Options)
}
