package filebase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nft_minter/internal/config"
	"nft_minter/internal/model"
)

// Publisher 序列化文档并上传，返回网关地址
type Publisher struct {
	store   ObjectStore
	gateway string
	now     func() time.Time
}

func NewPublisher(store ObjectStore, gateway string) *Publisher {
	return &Publisher{
		store:   store,
		gateway: strings.TrimRight(gateway, "/"),
		now:     time.Now,
	}
}

// Publish 上传任意可序列化的文档
func (p *Publisher) Publish(ctx context.Context, doc any) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("序列化元数据失败: %w", err)
	}

	// 使用时间戳生成唯一文件名
	fileName := fmt.Sprintf("metadata-%d.json", p.now().UnixMilli())

	uploaded, err := p.store.Upload(ctx, fileName, data)
	if err != nil {
		return "", err
	}
	return GatewayURI(p.gateway, uploaded.CID), nil
}

// UploadMetadata 供铸造流程调用
func (p *Publisher) UploadMetadata(ctx context.Context, metadata *model.Metadata) (string, error) {
	return p.Publish(ctx, metadata)
}

// GatewayURI 拼接 IPFS 网关地址
func GatewayURI(gateway string, cid string) string {
	return fmt.Sprintf("https://%s/ipfs/%s", gateway, cid)
}

// EnvPublisher 每次上传时从环境变量读取凭证
type EnvPublisher struct {
	load     func() config.FilebaseConfig
	newStore func(cfg config.FilebaseConfig) (ObjectStore, error)
}

func NewEnvPublisher() *EnvPublisher {
	return &EnvPublisher{
		load: config.LoadFilebase,
		newStore: func(cfg config.FilebaseConfig) (ObjectStore, error) {
			return NewObjectManager(cfg)
		},
	}
}

func (p *EnvPublisher) Publish(ctx context.Context, doc any) (string, error) {
	cfg := p.load()
	store, err := p.newStore(cfg)
	if err != nil {
		return "", err
	}
	return NewPublisher(store, cfg.Gateway).Publish(ctx, doc)
}

func (p *EnvPublisher) UploadMetadata(ctx context.Context, metadata *model.Metadata) (string, error) {
	return p.Publish(ctx, metadata)
}
