package engine

import (
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/validation"
)

// Request 是一次推荐请求。K 为 0 时使用默认值；Alpha 为 nil 时使用默认值。
type Request struct {
	UserID string   `json:"user_id" validate:"required,user_id"`
	K      int      `json:"k" validate:"min=0,max=50"`
	Alpha  *float64 `json:"alpha,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Validate 校验请求，失败时返回 INVALID_INPUT 的 DomainError。
func (r Request) Validate() error {
	if r.UserID == "" {
		return core.ErrEmptyUserID
	}
	if err := validation.ValidateStruct(r); err != nil {
		return core.WrapError(core.ModuleEngine, core.CodeInvalidInput, "engine: invalid request", err)
	}
	return nil
}

func (r Request) resolve(defaultK int, defaultAlpha float64) (int, float64) {
	k, alpha := r.K, defaultAlpha
	if k == 0 {
		k = defaultK
	}
	if r.Alpha != nil {
		alpha = *r.Alpha
	}
	return k, alpha
}

func validateUserID(userID string) error {
	if userID == "" {
		return core.ErrEmptyUserID
	}
	if err := validation.ValidateVar(userID, "user_id"); err != nil {
		return core.WrapError(core.ModuleEngine, core.CodeInvalidInput, "engine: malformed user id", err)
	}
	return nil
}
