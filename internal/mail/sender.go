package mail

type Message struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string
	IsHTML      bool
	Attachments []string
}

type MailSender interface {
	Send(message *Message) error
}

// NullMailSender discards every message. It stands in when no mail backend is
// configured so callers never need a nil check.
type NullMailSender struct{}

func (s *NullMailSender) Send(message *Message) error {
	return nil
}

func NewNullMailSender() *NullMailSender {
	return &NullMailSender{}
}
