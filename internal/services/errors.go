// Package services 实现业务用例层，编排 Repository 与外部服务商客户端。
// 错误分两类：RPC 路径抛出 kratos 分类错误，Webhook 路径返回 {success, message} 结果。
package services

import (
	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// 错误原因常量，经 HTTP 错误编码器透传给客户端。
const (
	ReasonUnauthenticated       = "UNAUTHENTICATED"
	ReasonPermissionDenied      = "PERMISSION_DENIED"
	ReasonInvalidArgument       = "INVALID_ARGUMENT"
	ReasonVideoNotFound         = "VIDEO_NOT_FOUND"
	ReasonProjectNotFound       = "PROJECT_NOT_FOUND"
	ReasonCommentNotFound       = "COMMENT_NOT_FOUND"
	ReasonProjectNotEmpty       = "PROJECT_NOT_EMPTY"
	ReasonProviderNotConfigured = "PROVIDER_NOT_CONFIGURED"
	ReasonProviderCallFailed    = "PROVIDER_CALL_FAILED"
	ReasonStorageFailure        = "STORAGE_FAILURE"
	ReasonQueryTimeout          = "QUERY_TIMEOUT"
)

// 预定义业务错误，Service 层在哨兵错误之上统一映射。
var (
	ErrVideoNotFound    = kerrors.NotFound(ReasonVideoNotFound, "video not found")
	ErrProjectNotFound  = kerrors.NotFound(ReasonProjectNotFound, "project not found")
	ErrCommentNotFound  = kerrors.NotFound(ReasonCommentNotFound, "comment not found")
	ErrPermissionDenied = kerrors.Forbidden(ReasonPermissionDenied, "permission denied")
	ErrUnauthenticated  = kerrors.Unauthorized(ReasonUnauthenticated, "user metadata is required")
)
