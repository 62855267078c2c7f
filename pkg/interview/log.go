package interview

import (
	"time"

	"github.com/mockmate/mockmate/pkg/core"
)

// Log is an append-only, strictly ordered view over a session's messages.
// Kind alternates starting with a question: position 0 is a question and
// position n is an answer iff n is odd. The session engine is the sole
// writer; the alternation check is defensive.
type Log struct {
	msgs []Message
}

// NewLog builds a log over the given ordered messages.
func NewLog(msgs []Message) *Log {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return &Log{msgs: out}
}

// Append assigns the next sequence position and appends a message of the
// given kind. It fails with an invariant error if alternation would break.
func (l *Log) Append(kind Kind, content string, now time.Time) (Message, error) {
	if kind != l.nextKind() {
		return Message{}, core.NewInvariantError("message kind would break question/answer alternation")
	}
	msg := Message{
		ID:        NewMessageID(),
		Kind:      kind,
		Content:   content,
		Position:  len(l.msgs),
		CreatedAt: now,
	}
	l.msgs = append(l.msgs, msg)
	return msg, nil
}

// Messages returns a fresh copy of the ordered log.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	return len(l.msgs)
}

// Questions returns the contents of all question messages in order.
func (l *Log) Questions() []string {
	return QuestionContents(l.msgs)
}

func (l *Log) nextKind() Kind {
	if len(l.msgs)%2 == 0 {
		return KindQuestion
	}
	return KindAnswer
}

// QuestionContents extracts the contents of question messages in order.
func QuestionContents(msgs []Message) []string {
	var out []string
	for _, m := range msgs {
		if m.Kind == KindQuestion {
			out = append(out, m.Content)
		}
	}
	return out
}
