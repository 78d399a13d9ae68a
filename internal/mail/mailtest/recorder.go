// Package mailtest provides a Notifier that records messages instead of
// sending them.
package mailtest

import (
	"context"
	"net/url"
	"sync"
)

type Message struct {
	Kind     string
	To       string
	Username string
	// Link is the reset URL for password resets and the destination name for
	// review removals.
	Link string
}

type Recorder struct {
	mu       sync.Mutex
	messages []Message
	// Err, when set, is returned from every send after recording.
	Err error
}

func (r *Recorder) record(m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
	return r.Err
}

func (r *Recorder) SendPasswordReset(ctx context.Context, to, username, resetURL string) error {
	return r.record(Message{Kind: "password_reset", To: to, Username: username, Link: resetURL})
}

func (r *Recorder) SendReviewRemoved(ctx context.Context, to, username, destination string) error {
	return r.record(Message{Kind: "review_removed", To: to, Username: username, Link: destination})
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// LastToken returns the token query parameter of the most recent password
// reset link, or "" if none was sent.
func (r *Recorder) LastToken() string {
	msgs := r.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Kind != "password_reset" {
			continue
		}
		u, err := url.Parse(msgs[i].Link)
		if err != nil {
			return ""
		}
		return u.Query().Get("token")
	}
	return ""
}
