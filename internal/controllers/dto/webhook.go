package dto

import (
	"github.com/bionicotaku/lingo-services-review/internal/models/po"
	"github.com/bionicotaku/lingo-services-review/internal/services"
)

// ProviderWebhookRequest 是服务商状态 Webhook 的原始载荷。
// 字段名与服务商推送的 JSON 保持一致（PascalCase）。
type ProviderWebhookRequest struct {
	VideoLibraryID int64  `json:"VideoLibraryId"`
	VideoGUID      string `json:"VideoGuid"`
	Status         int32  `json:"Status"`
}

// ToStatusEvent 将 Webhook 载荷转换为服务层状态事件。
func (r ProviderWebhookRequest) ToStatusEvent() services.StatusEvent {
	return services.StatusEvent{
		LibraryID:  r.VideoLibraryID,
		VideoGUID:  r.VideoGUID,
		StatusCode: po.ProviderStatus(r.Status),
	}
}
