package util

import "errors"

// User-facing messages are Arabic; the platform is Arabic-first.
var (
	ErrUserNotFound        = errors.New("المستخدم غير موجود")
	ErrEmailRegistered     = errors.New("هذا البريد الإلكتروني مسجل مسبقاً")
	ErrInvalidCredentials  = errors.New("بيانات الدخول غير صحيحة")
	ErrAccountDisabled     = errors.New("تم تعطيل هذا الحساب")
	ErrCourseNotFound      = errors.New("الدورة غير موجودة")
	ErrLessonNotFound      = errors.New("الدرس غير موجود")
	ErrQuizNotFound        = errors.New("الاختبار غير موجود")
	ErrQuizNotAvailable    = errors.New("الاختبار غير متاح حالياً")
	ErrLabNotFound         = errors.New("التمرين العملي غير موجود")
	ErrSectionNotFound     = errors.New("قسم التمرين غير موجود")
	ErrSubmissionNotFound  = errors.New("التسليم غير موجود")
	ErrEnrollmentNotFound  = errors.New("طلب الالتحاق غير موجود")
	ErrAlreadyEnrolled     = errors.New("لديك طلب التحاق مسجل مسبقاً لهذه الدورة")
	ErrEnrollmentRequired  = errors.New("يجب أن يكون التحاقك بالدورة معتمداً للوصول إلى المحتوى")
	ErrInvalidReviewStatus = errors.New("حالة المراجعة غير صالحة")
	ErrInvalidAnswerIndex  = errors.New("رقم الإجابة الصحيحة خارج نطاق الخيارات")
)
