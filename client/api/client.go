// Package api 提供NoteMaster服务端HTTP接口的客户端封装
// 对应浏览器端的api-client，所有方法一次请求一次响应，不做重试
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound 服务端返回404时的错误
var ErrNotFound = errors.New("资源不存在")

// Note 笔记的线上表示
// ID在服务端为自增整数；离线创建的笔记在同步前持有
// 以毫秒时间戳派生的临时ID，并带有pending标记
type Note struct {
	ID        int64     `json:"id"`                // 笔记ID，临时ID为创建时刻的毫秒时间戳
	Title     string    `json:"title"`             // 笔记标题
	Content   string    `json:"content"`           // 笔记内容，富文本标记
	CreatedAt time.Time `json:"created_at"`        // 创建时间
	UpdatedAt time.Time `json:"updated_at"`        // 最后修改时间
	Tags      []Tag     `json:"tags,omitempty"`    // 已解析的标签列表
	Pending   bool      `json:"pending,omitempty"` // 离线写入尚未被服务端确认时为true
}

// Tag 标签的线上表示
type Tag struct {
	ID   uint   `json:"id"`   // 标签ID
	Name string `json:"name"` // 标签名称
}

// Client NoteMaster API客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建API客户端实例
// 参数:
//   baseURL - 服务端地址，如 http://localhost:3000
// 返回:
//   *Client - 客户端实例
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// NewClientWithHTTP 使用自定义http.Client创建API客户端实例
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Health 探测服务端连通性
// 返回:
//   error - 服务端不可达或非健康状态时返回错误
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// ListNotes 获取全部笔记，按更新时间倒序
func (c *Client) ListNotes(ctx context.Context) ([]Note, error) {
	var notes []Note
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// GetNote 获取单个笔记
func (c *Client) GetNote(ctx context.Context, noteID int64) (*Note, error) {
	var note Note
	path := "/api/notes/" + strconv.FormatInt(noteID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// CreateNote 创建笔记
// 参数:
//   title - 笔记标题，服务端要求非空
//   content - 笔记内容，可为空
func (c *Client) CreateNote(ctx context.Context, title, content string) (*Note, error) {
	body := map[string]string{"title": title, "content": content}
	var note Note
	if err := c.do(ctx, http.MethodPost, "/api/notes", body, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateNote 更新笔记，整体替换标题和内容
func (c *Client) UpdateNote(ctx context.Context, noteID int64, title, content string) (*Note, error) {
	body := map[string]string{"title": title, "content": content}
	var note Note
	path := "/api/notes/" + strconv.FormatInt(noteID, 10)
	if err := c.do(ctx, http.MethodPut, path, body, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote 删除笔记
func (c *Client) DeleteNote(ctx context.Context, noteID int64) error {
	path := "/api/notes/" + strconv.FormatInt(noteID, 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// SetNoteTags 整体替换笔记的标签集合
func (c *Client) SetNoteTags(ctx context.Context, noteID int64, tagIDs []uint) error {
	if tagIDs == nil {
		tagIDs = []uint{}
	}
	body := map[string][]uint{"tag_ids": tagIDs}
	path := "/api/notes/" + strconv.FormatInt(noteID, 10) + "/tags"
	return c.do(ctx, http.MethodPut, path, body, nil)
}

// SearchNotes 搜索笔记
// 参数:
//   query - 搜索关键词
//   tagIDs - 可选的标签过滤
func (c *Client) SearchNotes(ctx context.Context, query string, tagIDs []uint) ([]Note, error) {
	path := "/api/notes/search/" + url.PathEscape(query)
	if len(tagIDs) > 0 {
		parts := make([]string, len(tagIDs))
		for i, id := range tagIDs {
			parts[i] = strconv.FormatUint(uint64(id), 10)
		}
		path += "?tags=" + strings.Join(parts, ",")
	}

	var notes []Note
	if err := c.do(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// GetTags 获取全部标签
func (c *Client) GetTags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTag 创建标签
func (c *Client) CreateTag(ctx context.Context, name string) (*Tag, error) {
	body := map[string]string{"name": name}
	var tag Tag
	if err := c.do(ctx, http.MethodPost, "/api/tags", body, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

// DeleteTag 删除标签
func (c *Client) DeleteTag(ctx context.Context, tagID uint) error {
	path := "/api/tags/" + strconv.FormatUint(uint64(tagID), 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// errorBody 服务端错误响应体
type errorBody struct {
	Error string `json:"error"`
}

// do 执行一次HTTP请求并解码JSON响应
// 参数:
//   body - 请求体对象，nil表示无请求体
//   out - 响应解码目标，nil表示丢弃响应体
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("编码请求体失败: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求 %s %s 失败: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		var eb errorBody
		if decodeErr := json.NewDecoder(resp.Body).Decode(&eb); decodeErr == nil && eb.Error != "" {
			return fmt.Errorf("服务端返回 %d: %s", resp.StatusCode, eb.Error)
		}
		return fmt.Errorf("服务端返回 %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("解码响应失败: %w", err)
		}
	}
	return nil
}
