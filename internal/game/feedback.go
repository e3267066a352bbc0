package game

// FeedbackKind is a cosmetic signal (haptics, sounds) raised by round events.
type FeedbackKind string

const (
	FeedbackSuccess      FeedbackKind = "success"
	FeedbackError        FeedbackKind = "error"
	FeedbackLightImpact  FeedbackKind = "lightImpact"
	FeedbackMediumImpact FeedbackKind = "mediumImpact"
)

// Feedback receives fire-and-forget signals. A nil Feedback is allowed.
type Feedback interface {
	Notify(kind FeedbackKind)
}

// FeedbackFunc adapts a function to Feedback.
type FeedbackFunc func(FeedbackKind)

func (f FeedbackFunc) Notify(k FeedbackKind) { f(k) }
