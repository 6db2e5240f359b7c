package assessment

// Storage keys shared with earlier releases. Values stored under them are
// JSON and stay readable across backends.
const (
	KeyAnswers         = "clario_assessment_answers"
	KeyComplete        = "clario_assessment_complete"
	KeyRecommendations = "clario_recommendations"
	KeyUserName        = "clario_user_name"
	KeyStream          = "clario_user_stream"
	KeySessionID       = "clario_session_id"
	KeyCurrentQuestion = "clario_current_question"
	KeyCompletedAt     = "clario_completed_at"
)
