// Package validation 封装 go-playground/validator：全局单例与统一的错误格式。
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.:@-]{1,64}$`)
)

// GetValidator 返回全局 validator，注册了自定义规则：
//   - user_id：1-64 位字母、数字或 _ . : @ -
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("user_id", func(fl validator.FieldLevel) bool {
			return userIDPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// FieldError 是单个字段的校验失败。
type FieldError struct {
	Field string
	Tag   string
	Param string
}

func (e FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s failed %s=%s", e.Field, e.Tag, e.Param)
	}
	return fmt.Sprintf("%s failed %s", e.Field, e.Tag)
}

// Error 汇总一次校验的全部字段错误。
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	return "validation: " + strings.Join(msgs, "; ")
}

// ValidateStruct 校验结构体；通过时返回 nil，否则返回 *Error。
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Namespace(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// ValidateVar 校验单个值，例如 ValidateVar(id, "required,user_id")。
func ValidateVar(v any, tag string) error {
	return GetValidator().Var(v, tag)
}
