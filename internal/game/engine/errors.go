package engine

import "fmt"

// ErrorKind 错误分类，所有种类都可恢复且不修改状态
type ErrorKind int

const (
	KindPhase ErrorKind = iota + 1
	KindTurn
	KindAuthorization
	KindRule
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindPhase:
		return "wrong phase"
	case KindTurn:
		return "not your turn"
	case KindAuthorization:
		return "not allowed"
	case KindRule:
		return "illegal move"
	case KindNotFound:
		return "not found"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned by every engine operation that rejects its input.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Msg
}

// Is matches any *Error of the same kind when target carries no message,
// so errors.Is(err, ErrNotYourTurn) works for every turn violation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

var (
	ErrWrongPhase  = &Error{Kind: KindPhase}
	ErrNotYourTurn = &Error{Kind: KindTurn}
	ErrNotCaller   = &Error{Kind: KindAuthorization}
	ErrIllegal     = &Error{Kind: KindRule}
	ErrNotFound    = &Error{Kind: KindNotFound}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
