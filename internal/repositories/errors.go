package repositories

import "errors"

// Repository 层哨兵错误。Service 层通过 errors.Is 识别后映射为业务错误。
var (
	ErrVideoNotFound   = errors.New("video not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrMemberNotFound  = errors.New("project member not found")
	ErrCommentNotFound = errors.New("comment not found")

	// ErrStaleTransition 表示状态守卫拦截了本次更新（记录已处于终态或已被并发推进）。
	ErrStaleTransition = errors.New("stale state transition")
)
