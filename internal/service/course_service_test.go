package service

import (
	"testing"

	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogListsPublishedOnly(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	published := env.seedCourse(t, instructor.ID)

	draft := &model.Course{InstructorID: instructor.ID, TitleAr: "مسودة", Category: "linux", Currency: "SAR"}
	require.NoError(t, env.courseRepo.Create(draft))

	page, err := env.course.Catalog("", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.List, 1)
	assert.Equal(t, published.ID, page.List[0].ID)

	_, err = env.course.GetPublished(draft.ID)
	require.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestContentRequiresApprovedEnrollment(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	env.seedLesson(t, course.ID, 0)

	_, err := env.course.Content(learner.ID, model.Student, course.ID)
	require.ErrorIs(t, err, util.ErrEnrollmentRequired)

	env.approveEnrollment(t, learner.ID, course.ID)

	content, err := env.course.Content(learner.ID, model.Student, course.ID)
	require.NoError(t, err)
	assert.Len(t, content.Lessons, 1)
}

func TestContentFiltersUnpublishedForLearners(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	env.approveEnrollment(t, learner.ID, course.ID)

	visible := env.seedLesson(t, course.ID, 0)
	hidden := &model.Lesson{CourseID: course.ID, TitleAr: "درس مخفي"}
	require.NoError(t, env.lessonRepo.Create(hidden))

	// a published quiz with questions shows up as a reference on its lesson
	env.seedQuiz(t, visible.ID, 1, 60, 0)

	content, err := env.course.Content(learner.ID, model.Student, course.ID)
	require.NoError(t, err)
	require.Len(t, content.Lessons, 1)
	assert.Equal(t, visible.ID, content.Lessons[0].ID)
	require.NotNil(t, content.Lessons[0].QuizID)

	// the course's own instructor sees drafts too
	content, err = env.course.Content(instructor.ID, model.Instructor, course.ID)
	require.NoError(t, err)
	assert.Len(t, content.Lessons, 2)

	// another instructor is just a learner here
	other := env.seedUser(t, model.Instructor)
	_, err = env.course.Content(other.ID, model.Instructor, course.ID)
	require.ErrorIs(t, err, util.ErrEnrollmentRequired)
}

func TestLeaderboardRanksByPoints(t *testing.T) {
	env := newTestEnv(t, testConfig())

	low := env.seedUser(t, model.Student)
	mid := env.seedUser(t, model.Student)
	top := env.seedUser(t, model.Student)
	require.NoError(t, env.progression.AwardXP(low.ID, 100))
	require.NoError(t, env.progression.AwardXP(mid.ID, 600))
	require.NoError(t, env.progression.AwardXP(top.ID, 1200))

	entries, err := env.user.Leaderboard(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, top.ID, entries[0].UserID)
	assert.Equal(t, 1200, entries[0].Points)
	assert.Equal(t, 3, entries[0].Level)
	assert.Equal(t, mid.ID, entries[1].UserID)
}
