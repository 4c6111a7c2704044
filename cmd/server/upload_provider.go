package main

import (
	"time"

	"github.com/bionicotaku/lingo-services-review/internal/infrastructure/conf"
)

// defaultUploadTTL 在配置缺省时作为上传签名有效期。
const defaultUploadTTL = time.Hour

// ProvideUploadTTL 从服务商配置推导上传签名有效期。
func ProvideUploadTTL(cfg *conf.Provider) time.Duration {
	if cfg != nil {
		if ttl := cfg.UploadTTL(); ttl > 0 {
			return ttl
		}
	}
	return defaultUploadTTL
}
