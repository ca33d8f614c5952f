package core

import "errors"

// Code 是领域错误的分类码。
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeNotSupported Code = "NOT_SUPPORTED"
	CodeUnavailable  Code = "UNAVAILABLE"
	CodeInvalidInput Code = "INVALID_INPUT"
)

const (
	ModuleStore  = "store"
	ModuleEngine = "engine"
)

// DomainError 是领域层的统一错误类型。
//
// errors.Is 按 Module + Code 匹配，因此包装过底层原因的错误仍能与哨兵错误比较：
//
//	err := WrapError(ModuleStore, CodeUnavailable, "store: breaker open", cause)
//	errors.Is(err, ErrStoreUnavailable) // true
type DomainError struct {
	Module  string
	Code    Code
	Message string
	Err     error // 底层原因，可为 nil
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

func NewDomainError(module string, code Code, message string) *DomainError {
	return &DomainError{Module: module, Code: code, Message: message}
}

// WrapError 包装底层错误。
func WrapError(module string, code Code, message string, err error) *DomainError {
	return &DomainError{Module: module, Code: code, Message: message, Err: err}
}

func NewInputError(module, message string) *DomainError {
	return NewDomainError(module, CodeInvalidInput, message)
}

// ErrEmptyUserID 表示请求或事件缺少用户 ID。
var ErrEmptyUserID = NewInputError(ModuleEngine, "engine: user id is empty")

// CodeOf 返回错误链上第一个 DomainError 的分类码；不是领域错误时返回空串。
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func IsNotFound(err error) bool    { return CodeOf(err) == CodeNotFound }
func IsUnavailable(err error) bool { return CodeOf(err) == CodeUnavailable }
func IsInputError(err error) bool  { return CodeOf(err) == CodeInvalidInput }
