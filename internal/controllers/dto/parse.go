// Package dto 定义 HTTP 层的请求载荷与字段解析辅助函数，
// 隔离传输层字符串与服务层强类型输入。
package dto

import (
	"fmt"

	"github.com/google/uuid"
)

// ParseVideoID 解析 video_id 字段。
func ParseVideoID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid video_id: %w", err)
	}
	return id, nil
}

// ParseProjectID 解析 project_id 字段。
func ParseProjectID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid project_id: %w", err)
	}
	return id, nil
}

// ParseUserID 解析 user_id 字段。
func ParseUserID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user_id: %w", err)
	}
	return id, nil
}

// ParseCommentID 解析 comment_id 字段。
func ParseCommentID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid comment_id: %w", err)
	}
	return id, nil
}

// ParseOptionalUUID 解析可选 UUID 字段，空指针与空串返回 nil。
func ParseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return &id, nil
}

// ParseUUIDList 解析 UUID 列表字段。
func ParseUUIDList(raw []string, field string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]uuid.UUID, 0, len(raw))
	for _, item := range raw {
		id, err := uuid.Parse(item)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", field, item, err)
		}
		out = append(out, id)
	}
	return out, nil
}
