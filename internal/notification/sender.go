package notification

import "context"

// Message is one outbound email.
type Message struct {
	Recipient string
	Subject   string
	HTMLBody  string
}

// Sender delivers messages. Implementations are treated as a black box; the
// caller wraps every send with its own retry budget regardless of whatever
// retry the transport offers.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
