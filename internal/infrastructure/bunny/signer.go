package bunny

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// signUpload 计算上传授权签名：hex(SHA-256(library_id + api_key + expiry_unix + guid))。
// 客户端将签名与 library ID、过期时间一并放入上传请求头。
func signUpload(libraryID int64, apiKey, guid string, expiresAt time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d%s%d%s", libraryID, apiKey, expiresAt.Unix(), guid)))
	return hex.EncodeToString(sum[:])
}
