package models

// LaunchSession is a completed SMART launch: the tokens obtained for it and,
// through them, the launch context.
type LaunchSession struct {
	SessionID string
	Token     *TokenDetails
}
