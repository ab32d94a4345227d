package filebase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"nft_minter/internal/common"
	"nft_minter/internal/config"
	"nft_minter/internal/model"
)

var (
	ErrMissingCredentials = errors.New("Filebase 凭证未配置")
	ErrNoCID              = errors.New("Filebase 未返回 CID")
)

// ObjectStore 对象存储上传接口
type ObjectStore interface {
	Upload(ctx context.Context, name string, data []byte) (*model.UploadResult, error)
}

// ObjectManager 通过 S3 兼容接口访问 Filebase 存储桶
type ObjectManager struct {
	client *s3.Client
	bucket string
}

var _ ObjectStore = (*ObjectManager)(nil)

// NewObjectManager 使用访问密钥创建 Filebase 客户端
func NewObjectManager(cfg config.FilebaseConfig) (*ObjectManager, error) {
	if cfg.Key == "" || cfg.Secret == "" || cfg.Bucket == "" {
		return nil, ErrMissingCredentials
	}

	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = common.DEFAULT_FILEBASE_ENDPOINT
	}
	region := cfg.Region
	if region == "" {
		region = common.DEFAULT_FILEBASE_REGION
	}

	client := s3.New(s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, ""),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
	})

	return &ObjectManager{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Upload 上传对象，并从对象元数据中读取 IPFS CID
func (m *ObjectManager) Upload(ctx context.Context, name string, data []byte) (*model.UploadResult, error) {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("上传对象 %s 失败: %w", name, err)
	}

	// Filebase 在对象元数据 cid 字段中返回 IPFS 内容标识
	head, err := m.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s 元数据失败: %w", name, err)
	}

	cid := head.Metadata["cid"]
	if cid == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoCID, name)
	}

	common.Log.WithFields(logrus.Fields{
		"bucket": m.bucket,
		"object": name,
		"cid":    cid,
	}).Info("对象已上传到 Filebase")

	return &model.UploadResult{CID: cid}, nil
}
