package util

// XPPerLevel is fixed platform-wide: level = xp/XPPerLevel + 1.
const XPPerLevel = 500

// LevelForXP derives the learner tier from accumulated XP.
func LevelForXP(xp int) int {
	return xp/XPPerLevel + 1
}

// Standard Arabic messages used by the response helpers.
const (
	MsgUnauthorized  = "يجب تسجيل الدخول أولاً"
	MsgForbidden     = "غير مصرح لك بالوصول"
	MsgNotFound      = "المورد المطلوب غير موجود"
	MsgInternalError = "حدث خطأ غير متوقع، حاول مرة أخرى لاحقاً"
)

// Lab completion gate modes, see config.Progression.
const (
	LabGateSubmission = "submission"
	LabGateApproval   = "approval"
)

// Lab submission review states.
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// Enrollment states.
const (
	EnrollmentPending  = "pending"
	EnrollmentApproved = "approved"
	EnrollmentRejected = "rejected"
)
