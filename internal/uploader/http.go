package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"nft_minter/internal/common"
	"nft_minter/internal/model"
)

const uploadPath = "/api/upload-metadata"

// HTTPUploader 通过服务端 /api/upload-metadata 上传元数据
type HTTPUploader struct {
	client  *http.Client
	baseURL string
}

func NewHTTPUploader(baseURL string) *HTTPUploader {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return &HTTPUploader{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

type uploadRequest struct {
	Metadata *model.Metadata `json:"metadata"`
}

type uploadResponse struct {
	MetadataURI string `json:"metadataUri"`
	Error       string `json:"error"`
}

// UploadMetadata 上传元数据并返回网关地址
func (u *HTTPUploader) UploadMetadata(ctx context.Context, metadata *model.Metadata) (string, error) {
	if u.baseURL == "" {
		return "", errors.New("未配置上传服务地址")
	}

	body, err := json.Marshal(uploadRequest{Metadata: metadata})
	if err != nil {
		return "", fmt.Errorf("序列化元数据失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+uploadPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取上传响应失败: %w", err)
	}
	var res uploadResponse
	decodeErr := json.Unmarshal(respBytes, &res)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		common.Log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(respBytes),
		}).Warn("上传元数据失败")
		if decodeErr == nil && res.Error != "" {
			return "", errors.New(res.Error)
		}
		return "", errors.New("Failed to upload metadata")
	}

	if decodeErr != nil {
		return "", fmt.Errorf("解析上传响应失败: %w", decodeErr)
	}
	if res.MetadataURI == "" {
		return "", errors.New("上传响应缺少 metadataUri")
	}

	common.Log.Debugf("元数据已上传: %s", res.MetadataURI)
	return res.MetadataURI, nil
}
