package dashboard

// Session is the viewer identity the dashboard renders for. It decides
// which messages are the viewer's own.
type Session struct {
	UserID   string
	Username string
	Token    string
}

func (s Session) IsOwn(senderID string) bool {
	return senderID != "" && senderID == s.UserID
}
