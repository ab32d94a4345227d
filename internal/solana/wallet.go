package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/gagliardetto/solana-go"

	"nft_minter/internal/common"
	"nft_minter/internal/config"
)

var ErrWalletNotConnected = errors.New("钱包未连接")

// Wallet 铸造时使用的钱包：付款人、mint 权限、更新权限和创作者都是它
type Wallet interface {
	PublicKey() solana.PublicKey
	Connected() bool
	// PrivateKey 满足 solana.Transaction.Sign 的签名回调
	PrivateKey(key solana.PublicKey) *solana.PrivateKey
}

// KeypairWallet 本地密钥钱包，私钥为空时视为未连接
type KeypairWallet struct {
	key *solana.PrivateKey
}

func NewKeypairWallet(key *solana.PrivateKey) *KeypairWallet {
	return &KeypairWallet{key: key}
}

func (w *KeypairWallet) Connected() bool {
	return w != nil && w.key != nil
}

func (w *KeypairWallet) PublicKey() solana.PublicKey {
	if !w.Connected() {
		return solana.PublicKey{}
	}
	return w.key.PublicKey()
}

func (w *KeypairWallet) PrivateKey(key solana.PublicKey) *solana.PrivateKey {
	if !w.Connected() || !w.key.PublicKey().Equals(key) {
		return nil
	}
	return w.key
}

// secretAccessor 便于测试替换 Secret Manager
type secretAccessor func(ctx context.Context, name string) ([]byte, error)

// LoadPrivateKey 依次尝试 base58 私钥、密钥文件、Secret Manager，都未配置时返回 nil
func LoadPrivateKey(ctx context.Context, cfg config.SolanaConfig) (*solana.PrivateKey, error) {
	return loadPrivateKey(ctx, cfg, accessSecret)
}

func loadPrivateKey(ctx context.Context, cfg config.SolanaConfig, access secretAccessor) (*solana.PrivateKey, error) {
	switch {
	case cfg.PrivateKey != "":
		key, err := solana.PrivateKeyFromBase58(strings.TrimSpace(cfg.PrivateKey))
		if err != nil {
			return nil, fmt.Errorf("解析 SOLANA_PRIVATE_KEY 失败: %w", err)
		}
		common.Log.Infof("使用环境变量私钥, 钱包地址: %s", key.PublicKey())
		return &key, nil

	case cfg.KeypairPath != "":
		data, err := os.ReadFile(cfg.KeypairPath)
		if err != nil {
			return nil, fmt.Errorf("读取密钥文件失败: %w", err)
		}
		key, err := DecodeKeypairJSON(data)
		if err != nil {
			return nil, err
		}
		common.Log.Infof("使用密钥文件 %s, 钱包地址: %s", cfg.KeypairPath, key.PublicKey())
		return &key, nil

	case cfg.KeypairSecret != "":
		data, err := access(ctx, cfg.KeypairSecret)
		if err != nil {
			return nil, fmt.Errorf("读取密钥 %s 失败: %w", cfg.KeypairSecret, err)
		}
		key, err := DecodeKeypairJSON(data)
		if err != nil {
			return nil, err
		}
		common.Log.Infof("使用 Secret Manager 密钥, 钱包地址: %s", key.PublicKey())
		return &key, nil
	}

	common.Log.Warn("未配置钱包私钥, 铸造将提示连接钱包")
	return nil, nil
}

// DecodeKeypairJSON 解析 solana-keygen 格式的 [int,int,...] 64 字节密钥
func DecodeKeypairJSON(data []byte) (solana.PrivateKey, error) {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("解析密钥 JSON 失败: %w", err)
	}
	if len(ints) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("密钥长度错误: 实际 %d, 应为 %d", len(ints), ed25519.PrivateKeySize)
	}

	b := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("密钥第 %d 位超出字节范围: %d", i, v)
		}
		b[i] = byte(v)
	}

	// 后32字节必须是前32字节推导出的公钥
	derived := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
	if !ed25519.PublicKey(b[ed25519.SeedSize:]).Equal(derived.Public()) {
		return nil, errors.New("密钥公私钥不匹配")
	}
	return solana.PrivateKey(b), nil
}

func accessSecret(ctx context.Context, name string) ([]byte, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	defer client.Close()

	res, err := client.AccessSecretVersion(ctx, &smpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return nil, err
	}
	return res.Payload.Data, nil
}
