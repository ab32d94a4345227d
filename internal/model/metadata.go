package model

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"nft_minter/internal/common"
)

// Metadata 表示上传到 IPFS 的 NFT 元数据文档
type Metadata struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Image       string             `json:"image"`
	Attributes  []Attribute        `json:"attributes"`
	Properties  MetadataProperties `json:"properties"`
}

// Attribute 元数据属性，目前总是为空列表
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

type MetadataProperties struct {
	Files []MetadataFile `json:"files"`
}

type MetadataFile struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// NewMetadata 根据名称和图片地址构建元数据文档
func NewMetadata(name string, imageURL string) *Metadata {
	return &Metadata{
		Name:        name,
		Description: common.NFT_DESCRIPTION,
		Image:       imageURL,
		Attributes:  []Attribute{},
		Properties: MetadataProperties{
			Files: []MetadataFile{{
				URI:  imageURL,
				Type: common.NFT_IMAGE_TYPE,
			}},
		},
	}
}

// FetchMetadata 从网关读取已发布的元数据
func FetchMetadata(ctx context.Context, uri string) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应内容失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("获取元数据失败: status=%d body=%s", resp.StatusCode, string(body))
	}

	var metadata Metadata
	if err := json.Unmarshal(body, &metadata); err != nil {
		return nil, fmt.Errorf("解析JSON失败: %w", err)
	}
	return &metadata, nil
}
