package vo

import (
	"time"

	"github.com/google/uuid"
)

// UploadAuthorization 表示客户端直传所需的全部凭据。
// 客户端凭 signature 直接对服务商发起 TUS/预签名上传，不经过本服务中转。
type UploadAuthorization struct {
	VideoID       uuid.UUID `json:"video_id"`       // 本地视频记录 ID
	ProviderGUID  string    `json:"provider_guid"`  // 服务商对象 ID
	LibraryID     int64     `json:"library_id"`     // 服务商视频库 ID
	Signature     string    `json:"signature"`      // hex(SHA-256) 上传签名
	SignatureExp  int64     `json:"signature_exp"`  // 签名过期时间（Unix 秒）
	UploadURL     string    `json:"upload_url"`     // 服务商上传端点
	CreatedAt     time.Time `json:"created_at"`     // 本地记录创建时间
}
