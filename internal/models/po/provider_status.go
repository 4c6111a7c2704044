package po

// ProviderStatus 是外部视频服务商 Webhook 携带的状态码。
// 取值为服务商固定契约，必须逐一保留，不可重排。
type ProviderStatus int32

// 服务商状态码常量定义。
const (
	ProviderStatusQueued                ProviderStatus = 0  // 已入队
	ProviderStatusPreviewProcessing     ProviderStatus = 1  // 预览图生成中
	ProviderStatusEncoding              ProviderStatus = 2  // 转码中
	ProviderStatusFinished              ProviderStatus = 3  // 转码完成
	ProviderStatusResolutionFinished    ProviderStatus = 4  // 分辨率全部完成
	ProviderStatusFailed                ProviderStatus = 5  // 转码失败
	ProviderStatusPresignedStarted      ProviderStatus = 6  // 预签名上传开始
	ProviderStatusPresignedFinished     ProviderStatus = 7  // 预签名上传完成
	ProviderStatusPresignedFailed       ProviderStatus = 8  // 预签名上传失败
	ProviderStatusCaptionsGenerated     ProviderStatus = 9  // 字幕已生成
	ProviderStatusTitleDescGenerated    ProviderStatus = 10 // 标题/描述已生成
)

// MapProviderStatus 将服务商的 11 个状态码收敛到本地四态。
// 未识别的状态码按 processing 处理：未知但良性的事件不应卡住流水线。
func MapProviderStatus(code ProviderStatus) VideoStatus {
	switch code {
	case ProviderStatusQueued, ProviderStatusPreviewProcessing, ProviderStatusEncoding,
		ProviderStatusCaptionsGenerated, ProviderStatusTitleDescGenerated:
		return VideoStatusProcessing
	case ProviderStatusFinished, ProviderStatusResolutionFinished:
		return VideoStatusReady
	case ProviderStatusFailed, ProviderStatusPresignedFailed:
		return VideoStatusFailed
	case ProviderStatusPresignedStarted, ProviderStatusPresignedFinished:
		return VideoStatusUploading
	default:
		return VideoStatusProcessing
	}
}

// IsInProgress 判断状态码是否属于处理中事件（queued / preview / encoding）。
func (c ProviderStatus) IsInProgress() bool {
	switch c {
	case ProviderStatusQueued, ProviderStatusPreviewProcessing, ProviderStatusEncoding:
		return true
	default:
		return false
	}
}

// IsCompletion 判断状态码是否表示转码完成。
func (c ProviderStatus) IsCompletion() bool {
	return c == ProviderStatusFinished || c == ProviderStatusResolutionFinished
}

// IsFailure 判断状态码是否表示失败。
func (c ProviderStatus) IsFailure() bool {
	return c == ProviderStatusFailed || c == ProviderStatusPresignedFailed
}
