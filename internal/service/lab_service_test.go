package service

import (
	"testing"
	"time"

	"manara_edu_backend/internal/model"
	"manara_edu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartLabIdempotent(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	lab := env.seedLab(t, course.ID, 0, 0)

	first, err := env.lab.StartLab(learner.ID, lab.ID)
	require.NoError(t, err)
	second, err := env.lab.StartLab(learner.ID, lab.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestSubmitLabSubmissionGate(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	lab := env.seedLab(t, course.ID, 0, 100)

	sub, err := env.lab.SubmitLab(learner.ID, lab.ID, SubmissionRequest{Details: "تم"})
	require.NoError(t, err)
	assert.Equal(t, util.SubmissionPending, sub.Status)
	assert.Nil(t, sub.SectionID)

	// completion and XP land at submit time, before any review
	progress, err := env.labRepo.FindProgress(learner.ID, lab.ID)
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)
	assert.Equal(t, 100, progress.Progress)
	assert.Equal(t, 100, env.reloadUser(t, learner.ID).XP)

	// a rejection afterwards does not claw anything back
	_, err = env.lab.ReviewSubmission(sub.ID, instructor.ID, util.SubmissionRejected, "ناقص")
	require.NoError(t, err)
	progress, err = env.labRepo.FindProgress(learner.ID, lab.ID)
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)
	assert.Equal(t, 100, env.reloadUser(t, learner.ID).XP)

	// under this gate every submit call pays the reward again
	_, err = env.lab.SubmitLab(learner.ID, lab.ID, SubmissionRequest{Details: "مرة أخرى"})
	require.NoError(t, err)
	assert.Equal(t, 200, env.reloadUser(t, learner.ID).XP)
}

func TestSubmitLabApprovalGate(t *testing.T) {
	cfg := testConfig()
	cfg.Progression.LabCompletionGate = util.LabGateApproval

	env := newTestEnv(t, cfg)
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	lab := env.seedLab(t, course.ID, 0, 80)

	sub, err := env.lab.SubmitLab(learner.ID, lab.ID, SubmissionRequest{})
	require.NoError(t, err)

	// nothing granted until the reviewer approves
	_, err = env.labRepo.FindProgress(learner.ID, lab.ID)
	require.Error(t, err)
	assert.Equal(t, 0, env.reloadUser(t, learner.ID).XP)

	reviewed, err := env.lab.ReviewSubmission(sub.ID, instructor.ID, util.SubmissionApproved, "")
	require.NoError(t, err)
	assert.Equal(t, util.SubmissionApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, instructor.ID, *reviewed.ReviewedBy)

	progress, err := env.labRepo.FindProgress(learner.ID, lab.ID)
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)
	assert.Equal(t, 80, env.reloadUser(t, learner.ID).XP)

	// approving a second submission must not pay twice
	again, err := env.lab.SubmitLab(learner.ID, lab.ID, SubmissionRequest{})
	require.NoError(t, err)
	_, err = env.lab.ReviewSubmission(again.ID, instructor.ID, util.SubmissionApproved, "")
	require.NoError(t, err)
	assert.Equal(t, 80, env.reloadUser(t, learner.ID).XP)
}

func TestSectionApprovalCompletesLab(t *testing.T) {
	cfg := testConfig()
	cfg.Progression.LabCompletionGate = util.LabGateApproval

	env := newTestEnv(t, cfg)
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	lab := env.seedLab(t, course.ID, 2, 60)

	subA, err := env.lab.SubmitSection(learner.ID, lab.ID, lab.Sections[0].ID, SubmissionRequest{})
	require.NoError(t, err)
	subB, err := env.lab.SubmitSection(learner.ID, lab.ID, lab.Sections[1].ID, SubmissionRequest{})
	require.NoError(t, err)

	// one approval out of two sections: not complete yet
	_, err = env.lab.ReviewSubmission(subA.ID, instructor.ID, util.SubmissionApproved, "")
	require.NoError(t, err)
	assert.Equal(t, 0, env.reloadUser(t, learner.ID).XP)

	_, err = env.lab.ReviewSubmission(subB.ID, instructor.ID, util.SubmissionApproved, "")
	require.NoError(t, err)
	assert.Equal(t, 60, env.reloadUser(t, learner.ID).XP)

	progress, err := env.labRepo.FindProgress(learner.ID, lab.ID)
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)
}

func TestResubmissionAfterRejection(t *testing.T) {
	cfg := testConfig()
	cfg.Progression.LabCompletionGate = util.LabGateApproval

	env := newTestEnv(t, cfg)
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	env.approveEnrollment(t, learner.ID, course.ID)
	lab := env.seedLab(t, course.ID, 1, 50)
	section := lab.Sections[0]

	first, err := env.lab.SubmitSection(learner.ID, lab.ID, section.ID, SubmissionRequest{Details: "أولى"})
	require.NoError(t, err)
	_, err = env.lab.ReviewSubmission(first.ID, instructor.ID, util.SubmissionRejected, "أعد المحاولة")
	require.NoError(t, err)

	// the resubmission is a fresh pending row; the rejected one stays on file
	second, err := env.lab.SubmitSection(learner.ID, lab.ID, section.ID, SubmissionRequest{Details: "ثانية"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, util.SubmissionPending, second.Status)

	subs, err := env.labRepo.ListSubmissions(learner.ID, lab.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	// the newest row is the one that counts
	detail, err := env.lab.Detail(learner.ID, lab.ID)
	require.NoError(t, err)
	require.Len(t, detail.Sections, 1)
	require.NotNil(t, detail.Sections[0].Submission)
	assert.Equal(t, second.ID, detail.Sections[0].Submission.ID)

	// approving the resubmission completes the lab
	_, err = env.lab.ReviewSubmission(second.ID, instructor.ID, util.SubmissionApproved, "")
	require.NoError(t, err)
	assert.Equal(t, 50, env.reloadUser(t, learner.ID).XP)
}

func TestReviewValidationAndOverwrite(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	lab := env.seedLab(t, course.ID, 0, 0)

	sub, err := env.lab.SubmitLab(learner.ID, lab.ID, SubmissionRequest{})
	require.NoError(t, err)

	_, err = env.lab.ReviewSubmission(sub.ID, instructor.ID, "maybe", "")
	require.ErrorIs(t, err, util.ErrInvalidReviewStatus)

	_, err = env.lab.ReviewSubmission(99999, instructor.ID, util.SubmissionApproved, "")
	require.ErrorIs(t, err, util.ErrSubmissionNotFound)

	// a verdict can be flipped either way, any number of times
	reviewed, err := env.lab.ReviewSubmission(sub.ID, instructor.ID, util.SubmissionApproved, "")
	require.NoError(t, err)
	assert.Equal(t, util.SubmissionApproved, reviewed.Status)

	reviewed, err = env.lab.ReviewSubmission(sub.ID, instructor.ID, util.SubmissionRejected, "تراجع")
	require.NoError(t, err)
	assert.Equal(t, util.SubmissionRejected, reviewed.Status)
	assert.Equal(t, "تراجع", reviewed.ReviewNotes)
}

func TestLabDetailGateAndSectionStatus(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	lab := env.seedLab(t, course.ID, 2, 0)

	_, err := env.lab.Detail(learner.ID, lab.ID)
	require.ErrorIs(t, err, util.ErrEnrollmentRequired)

	env.approveEnrollment(t, learner.ID, course.ID)

	detail, err := env.lab.Detail(learner.ID, lab.ID)
	require.NoError(t, err)
	assert.False(t, detail.AllSectionsSubmitted)
	require.Len(t, detail.Sections, 2)
	assert.Nil(t, detail.Sections[0].Submission)

	_, err = env.lab.SubmitSection(learner.ID, lab.ID, lab.Sections[0].ID, SubmissionRequest{})
	require.NoError(t, err)

	detail, err = env.lab.Detail(learner.ID, lab.ID)
	require.NoError(t, err)
	assert.False(t, detail.AllSectionsSubmitted, "one section still missing a submission")

	_, err = env.lab.SubmitSection(learner.ID, lab.ID, lab.Sections[1].ID, SubmissionRequest{})
	require.NoError(t, err)

	detail, err = env.lab.Detail(learner.ID, lab.ID)
	require.NoError(t, err)
	assert.True(t, detail.AllSectionsSubmitted, "pending submissions count, approval not required")
}

func TestSubmitSectionWrongLab(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	labA := env.seedLab(t, course.ID, 1, 0)
	labB := env.seedLab(t, course.ID, 1, 0)

	_, err := env.lab.SubmitSection(learner.ID, labA.ID, labB.Sections[0].ID, SubmissionRequest{})
	require.ErrorIs(t, err, util.ErrSectionNotFound)

	_, err = env.lab.SubmitSection(learner.ID, 99999, labA.Sections[0].ID, SubmissionRequest{})
	require.ErrorIs(t, err, util.ErrLabNotFound)
}

func TestSubmissionTimestampsOrderHistory(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)
	lab := env.seedLab(t, course.ID, 1, 0)
	section := lab.Sections[0]

	old := &model.LabSubmission{
		UserID:      learner.ID,
		LabID:       lab.ID,
		SectionID:   &section.ID,
		Status:      util.SubmissionApproved,
		SubmittedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, env.labRepo.CreateSubmission(old))

	recent, err := env.lab.SubmitSection(learner.ID, lab.ID, section.ID, SubmissionRequest{})
	require.NoError(t, err)

	subs, err := env.labRepo.ListSubmissions(learner.ID, lab.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, recent.ID, subs[0].ID, "newest submission first")
}

func TestSubmitLabUnpublished(t *testing.T) {
	env := newTestEnv(t, testConfig())
	instructor := env.seedUser(t, model.Instructor)
	learner := env.seedUser(t, model.Student)
	course := env.seedCourse(t, instructor.ID)

	draft := &model.Lab{CourseID: course.ID, TitleAr: "مسودة", XPReward: 100}
	require.NoError(t, env.labRepo.Create(draft))

	_, err := env.lab.SubmitLab(learner.ID, draft.ID, SubmissionRequest{Details: "تم"})
	assert.ErrorIs(t, err, util.ErrLabNotFound)

	// no submission row, no XP
	subs, err := env.labRepo.ListSubmissions(learner.ID, draft.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	user, err := env.userRepo.FindByID(learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, user.XP)
}
