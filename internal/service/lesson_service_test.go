package service

import (
	"testing"

	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteLessonAwardsXPOnce(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	env.approveEnrollment(t, learner.ID, course.ID)
	lesson := env.seedLesson(t, course.ID, 25)

	result, err := env.lesson.CompleteLesson(learner.ID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, result.FirstCompleted)
	assert.Equal(t, 25, result.XPAwarded)
	assert.Equal(t, 25, env.reloadUser(t, learner.ID).XP)

	// repeat completion is a no-op for XP
	result, err = env.lesson.CompleteLesson(learner.ID, lesson.ID)
	require.NoError(t, err)
	assert.False(t, result.FirstCompleted)
	assert.Equal(t, 0, result.XPAwarded)
	assert.Equal(t, 25, env.reloadUser(t, learner.ID).XP)
}

func TestCompleteLessonRequiresApprovedEnrollment(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	lesson := env.seedLesson(t, course.ID, 10)

	_, err := env.lesson.CompleteLesson(learner.ID, lesson.ID)
	require.ErrorIs(t, err, util.ErrEnrollmentRequired)
}

func TestCompleteLessonUnpublished(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	env.approveEnrollment(t, learner.ID, course.ID)

	draft := &model.Lesson{CourseID: course.ID, TitleAr: "مسودة درس"}
	require.NoError(t, env.lessonRepo.Create(draft))

	_, err := env.lesson.CompleteLesson(learner.ID, draft.ID)
	require.ErrorIs(t, err, util.ErrLessonNotFound)

	_, err = env.lesson.CompleteLesson(learner.ID, 99999)
	require.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestCompleteLessonUpdatesCourseProgress(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	env.approveEnrollment(t, learner.ID, course.ID)
	first := env.seedLesson(t, course.ID, 0)
	env.seedLesson(t, course.ID, 0)

	_, err := env.lesson.CompleteLesson(learner.ID, first.ID)
	require.NoError(t, err)

	enrollment, err := env.enrollmentRepo.FindByUserAndCourse(learner.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, enrollment.Progress)
}
