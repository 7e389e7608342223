package preferences

// Namespaces are independent flat key spaces
const (
	NamespaceSession    = "session"
	NamespaceFeedback   = "feedback"
	NamespaceOnboarding = "onboarding"
)

// Well-known keys
const (
	KeyUserUID          = "user_uid"
	KeyLastFeedbackDate = "last_feedback_date"
	KeyOnboardingSeen   = "onboarding_seen"
)
