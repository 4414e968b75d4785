package domain

// Message is a single chat turn. Messages are immutable once stored;
// ordering within a session is insertion order.
type Message struct {
	Role      Role       `json:"role" firestore:"role"`
	Content   string     `json:"content" firestore:"content"`
	Timestamp *Timestamp `json:"timestamp,omitempty" firestore:"timestamp,omitempty"`
}

// ChatSession is a stored conversation. The ID is assigned by the store
// on creation; CreatedAt/UpdatedAt are server-assigned. A session is
// mutated by replacing the whole message list, never by deltas.
type ChatSession struct {
	ID        SessionID
	Messages  []Message
	CreatedAt Timestamp
	UpdatedAt Timestamp
	UserID    UserID
}
