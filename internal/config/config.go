package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"nft_minter/internal/common"
)

// Config 服务整体配置
type Config struct {
	HTTPPort    int
	LogLevel    string
	LogDir      string
	CORSOrigins []string

	Solana   SolanaConfig
	Filebase FilebaseConfig
}

// SolanaConfig 链相关配置
type SolanaConfig struct {
	Cluster              common.Cluster
	RPCURL               string // 为空时使用集群默认地址
	PrivateKey           string // base58
	KeypairPath          string // solana-keygen 生成的 JSON 文件
	KeypairSecret        string // projects/<id>/secrets/<name>/versions/latest
	SellerFeeBasisPoints uint16
	ConfirmPollInterval  time.Duration
}

// FilebaseConfig 对象存储配置，每次上传时重新读取
type FilebaseConfig struct {
	Key      string
	Secret   string
	Bucket   string
	Endpoint string
	Region   string
	Gateway  string
}

// LoadDotEnv 尝试从当前目录和上级目录加载 .env，已存在的环境变量优先
func LoadDotEnv() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			common.Log.Warnf("加载环境变量文件 %s 失败: %v", path, err)
			continue
		}
		common.Log.Infof("成功从 %s 加载环境变量", path)
		return
	}
}

// Load 从环境变量读取配置
func Load() (*Config, error) {
	fee, err := envOrUint16("SELLER_FEE_BASIS_POINTS", common.DEFAULT_SELLER_FEE_BASIS_POINTS)
	if err != nil {
		return nil, err
	}
	if fee > 10000 {
		return nil, fmt.Errorf("SELLER_FEE_BASIS_POINTS 超出范围: %d", fee)
	}

	port, err := envOrInt("HTTP_PORT", 3000)
	if err != nil {
		return nil, err
	}
	pollMs, err := envOrInt("CONFIRM_POLL_INTERVAL_MS", 1000)
	if err != nil {
		return nil, err
	}

	cluster := common.Cluster(envOr("SOLANA_CLUSTER", string(common.DEVNET)))
	switch cluster {
	case common.DEVNET, common.TESTNET, common.MAINNET_BETA, common.LOCALNET:
	default:
		return nil, fmt.Errorf("未知的 SOLANA_CLUSTER: %s", cluster)
	}

	return &Config{
		HTTPPort:    port,
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogDir:      os.Getenv("LOG_DIR"),
		CORSOrigins: splitList(envOr("CORS_ALLOWED_ORIGINS", "*")),
		Solana: SolanaConfig{
			Cluster:              cluster,
			RPCURL:               os.Getenv("SOLANA_RPC_URL"),
			PrivateKey:           os.Getenv("SOLANA_PRIVATE_KEY"),
			KeypairPath:          os.Getenv("SOLANA_KEYPAIR_PATH"),
			KeypairSecret:        os.Getenv("SOLANA_KEYPAIR_SECRET"),
			SellerFeeBasisPoints: fee,
			ConfirmPollInterval:  time.Duration(pollMs) * time.Millisecond,
		},
		Filebase: LoadFilebase(),
	}, nil
}

// LoadFilebase 读取 Filebase 凭证，兼容 NEXT_PUBLIC_ 前缀
func LoadFilebase() FilebaseConfig {
	return FilebaseConfig{
		Key:      envOr("FILEBASE_KEY", os.Getenv("NEXT_PUBLIC_FILEBASE_KEY")),
		Secret:   envOr("FILEBASE_SECRET", os.Getenv("NEXT_PUBLIC_FILEBASE_SECRET")),
		Bucket:   envOr("FILEBASE_BUCKET", os.Getenv("NEXT_PUBLIC_FILEBASE_BUCKET")),
		Endpoint: envOr("FILEBASE_ENDPOINT", common.DEFAULT_FILEBASE_ENDPOINT),
		Region:   envOr("FILEBASE_REGION", common.DEFAULT_FILEBASE_REGION),
		Gateway:  envOr("FILEBASE_GATEWAY", common.DEFAULT_FILEBASE_GATEWAY),
	}
}

func envOr(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func envOrInt(key string, fallback int) (int, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("环境变量 %s 不是有效整数: %w", key, err)
	}
	return parsed, nil
}

func envOrUint16(key string, fallback uint16) (uint16, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseUint(val, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("环境变量 %s 不是有效数值: %w", key, err)
	}
	return uint16(parsed), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
