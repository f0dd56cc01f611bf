package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// 400 入力不足
	ErrValidation = errors.New("validation error")
	// 401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	// 400 トークンの形式が壊れている
	ErrBadRequest = errors.New("bad request")
	// 404
	ErrNotFound = errors.New("not found")
	// 403 権限
	ErrForbidden = errors.New("forbidden")
	// 500
	ErrInternal = errors.New("internal error")
)

// FieldErrorsはフィールド毎の検証エラー。
// email重複とusername重複のような独立した違反を両方まとめて返すために使う
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}
	return strings.Join(parts, "; ")
}

// errors.Is(err, ErrValidation)で分岐できるようにする
func (e FieldErrors) Is(target error) bool {
	return target == ErrValidation
}
