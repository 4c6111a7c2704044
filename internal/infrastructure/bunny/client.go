// Package bunny 封装 Bunny Stream 风格的视频托管 HTTP API。
// 客户端同时承担上传授权签名与 CDN URL 拼装，是服务层所有
// 服务商接口（创建、查询、删除、集合管理）的唯一实现。
package bunny

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-services-review/internal/models/po"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	defaultAPIBaseURL     = "https://video.bunnycdn.com"
	defaultUploadEndpoint = "https://video.bunnycdn.com/tusupload"
	defaultTimeout        = 10 * time.Second
	defaultThumbnailFile  = "thumbnail.jpg"

	headerAccessKey = "AccessKey"
)

// Config 描述客户端的连接与凭证参数。
type Config struct {
	LibraryID      int64
	APIKey         string
	APIBaseURL     string
	CDNHostname    string
	UploadEndpoint string
	Timeout        time.Duration
}

// Client 是服务商 API 的 HTTP 客户端。
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *log.Helper
}

// Option 自定义 Client 构造行为。
type Option func(*Client)

// WithHTTPClient 注入自定义 HTTP 客户端（测试用）。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient 构造服务商客户端，填充缺省 API 地址与超时。
func NewClient(cfg Config, logger log.Logger, opts ...Option) *Client {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.UploadEndpoint == "" {
		cfg.UploadEndpoint = defaultUploadEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.NewHelper(logger),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured 报告凭证是否完整，未配置时上传与删除路径拒绝服务。
func (c *Client) Configured() bool {
	return c.cfg.APIKey != "" && c.cfg.LibraryID > 0
}

// LibraryID 返回所属媒体库 ID，Webhook 以此校验租户归属。
func (c *Client) LibraryID() int64 {
	return c.cfg.LibraryID
}

// UploadEndpoint 返回断点续传上传入口地址。
func (c *Client) UploadEndpoint() string {
	return c.cfg.UploadEndpoint
}

// SignUpload 为指定视频对象生成上传授权签名。
func (c *Client) SignUpload(guid string, expiresAt time.Time) string {
	return signUpload(c.cfg.LibraryID, c.cfg.APIKey, guid, expiresAt)
}

// ThumbnailURL 拼装 CDN 缩略图地址；未配置 CDN 域名时返回空串。
func (c *Client) ThumbnailURL(guid, fileName string) string {
	if c.cfg.CDNHostname == "" || guid == "" {
		return ""
	}
	if fileName == "" {
		fileName = defaultThumbnailFile
	}
	return fmt.Sprintf("https://%s/%s/%s", c.cfg.CDNHostname, guid, fileName)
}

// PlaybackURL 拼装 HLS 播放清单地址；未配置 CDN 域名时返回空串。
func (c *Client) PlaybackURL(guid string) string {
	if c.cfg.CDNHostname == "" || guid == "" {
		return ""
	}
	return fmt.Sprintf("https://%s/%s/playlist.m3u8", c.cfg.CDNHostname, guid)
}

// CreateVideo 在服务商侧创建视频对象，返回对象 GUID。
func (c *Client) CreateVideo(ctx context.Context, title string) (string, error) {
	var out videoObject
	path := fmt.Sprintf("/library/%d/videos", c.cfg.LibraryID)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"title": title}, &out); err != nil {
		return "", fmt.Errorf("create provider video: %w", err)
	}
	if out.GUID == "" {
		return "", fmt.Errorf("create provider video: empty guid in response")
	}
	return out.GUID, nil
}

// DeleteVideo 删除服务商侧视频对象。
func (c *Client) DeleteVideo(ctx context.Context, guid string) error {
	if !c.Configured() {
		return fmt.Errorf("provider is not configured")
	}
	path := fmt.Sprintf("/library/%d/videos/%s", c.cfg.LibraryID, guid)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete provider video %s: %w", guid, err)
	}
	return nil
}

// FetchVideoMetadata 查询视频对象的处理状态与媒体元数据。
func (c *Client) FetchVideoMetadata(ctx context.Context, guid string) (*po.ProviderVideoMetadata, error) {
	var out videoObject
	path := fmt.Sprintf("/library/%d/videos/%s", c.cfg.LibraryID, guid)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch provider video %s: %w", guid, err)
	}

	messages := make([]string, 0, len(out.TranscodingMessages))
	for _, m := range out.TranscodingMessages {
		if strings.TrimSpace(m.Message) != "" {
			messages = append(messages, m.Message)
		}
	}

	return &po.ProviderVideoMetadata{
		GUID:                out.GUID,
		StatusCode:          out.Status,
		LengthSeconds:       out.Length,
		Width:               out.Width,
		Height:              out.Height,
		FrameRate:           out.FrameRate,
		ThumbnailFileName:   out.ThumbnailFileName,
		TranscodingMessages: messages,
	}, nil
}

// CreateCollection 创建服务商侧集合（按项目分组视频）。
func (c *Client) CreateCollection(ctx context.Context, name string) (string, error) {
	var out collectionObject
	path := fmt.Sprintf("/library/%d/collections", c.cfg.LibraryID)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"name": name}, &out); err != nil {
		return "", fmt.Errorf("create provider collection: %w", err)
	}
	if out.GUID == "" {
		return "", fmt.Errorf("create provider collection: empty guid in response")
	}
	return out.GUID, nil
}

// AssignToCollection 将视频对象归入集合。
func (c *Client) AssignToCollection(ctx context.Context, guid, collectionID string) error {
	path := fmt.Sprintf("/library/%d/videos/%s", c.cfg.LibraryID, guid)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"collectionId": collectionID}, nil); err != nil {
		return fmt.Errorf("assign provider video %s to collection: %w", guid, err)
	}
	return nil
}

// videoObject 是服务商视频对象响应的子集。
type videoObject struct {
	GUID                string               `json:"guid"`
	Status              int32                `json:"status"`
	Length              int64                `json:"length"`
	Width               int32                `json:"width"`
	Height              int32                `json:"height"`
	FrameRate           float64              `json:"frameRate"`
	ThumbnailFileName   string               `json:"thumbnailFileName"`
	TranscodingMessages []transcodingMessage `json:"transcodingMessages"`
}

type transcodingMessage struct {
	Message string `json:"message"`
}

type collectionObject struct {
	GUID string `json:"guid"`
}

// doJSON 执行一次 JSON API 调用：序列化请求体、附加凭证头、
// 校验 2xx 状态码并按需解码响应。
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIBaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerAccessKey, c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
