// Package apperr — типы ошибок внутренних границ. На HTTP-коды они
// отображаются только на краю, в httputils.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindBadRequest
	KindUnprocessable
	KindUnavailable
	KindInternal
)

// Машинные коды причин. Клиенты разбирают их, не текст.
const (
	ReasonNotMember          = "not-member"
	ReasonDeleted            = "deleted"
	ReasonBanned             = "banned"
	ReasonBlockedRecipient   = "blocked-recipient"
	ReasonBlockedByRecipient = "blocked-by-recipient"
	ReasonNotOwner           = "not-owner-of-message"

	ReasonChat       = "chat"
	ReasonMessage    = "message"
	ReasonReadStatus = "read-status"
	ReasonDraft      = "draft"
	ReasonReaction   = "reaction"
	ReasonUser       = "user"

	ReasonChatExists = "chat-exists"

	ReasonMissingContent     = "missing-content"
	ReasonMissingFile        = "missing-file"
	ReasonEditFile           = "edit-file"
	ReasonSelfBlock          = "self-block"
	ReasonAlreadyBlocked     = "already-blocked"
	ReasonNotDeletedRecovery = "not-deleted-recovery"
)

type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, reason, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

func Unauthenticated(message string) *Error {
	return newError(KindUnauthenticated, "", message)
}

func Forbidden(reason, message string) *Error {
	return newError(KindForbidden, reason, message)
}

func NotFound(reason, message string) *Error {
	return newError(KindNotFound, reason, message)
}

func Conflict(reason, message string) *Error {
	return newError(KindConflict, reason, message)
}

func BadRequest(reason, message string) *Error {
	return newError(KindBadRequest, reason, message)
}

// PasswordPolicy строит BadRequest с причиной вида password-policy/<why>.
func PasswordPolicy(why string) *Error {
	return newError(KindBadRequest, "password-policy/"+why, "password does not meet policy: "+why)
}

func Unprocessable(message string) *Error {
	return newError(KindUnprocessable, "", message)
}

func Unavailable(message string) *Error {
	return newError(KindUnavailable, "", message)
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

func Internalf(format string, args ...any) *Error {
	return Internal(fmt.Errorf(format, args...))
}

// KindOf возвращает вид ошибки; не-apperr ошибки считаются внутренними.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
