package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft_minter/internal/common"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "默认配置",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3000, cfg.HTTPPort)
				assert.Equal(t, common.DEVNET, cfg.Solana.Cluster)
				assert.Equal(t, uint16(500), cfg.Solana.SellerFeeBasisPoints)
				assert.Equal(t, time.Second, cfg.Solana.ConfirmPollInterval)
				assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
				assert.Equal(t, common.DEFAULT_FILEBASE_GATEWAY, cfg.Filebase.Gateway)
			},
		},
		{
			name: "覆盖集群和版税",
			env: map[string]string{
				"SOLANA_CLUSTER":          "mainnet-beta",
				"SELLER_FEE_BASIS_POINTS": "250",
				"CORS_ALLOWED_ORIGINS":    "http://localhost:3000, https://mint.example.com",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, common.MAINNET_BETA, cfg.Solana.Cluster)
				assert.Equal(t, uint16(250), cfg.Solana.SellerFeeBasisPoints)
				assert.Equal(t, []string{"http://localhost:3000", "https://mint.example.com"}, cfg.CORSOrigins)
			},
		},
		{
			name:    "未知集群",
			env:     map[string]string{"SOLANA_CLUSTER": "moonnet"},
			wantErr: true,
		},
		{
			name:    "版税超过100%",
			env:     map[string]string{"SELLER_FEE_BASIS_POINTS": "10001"},
			wantErr: true,
		},
		{
			name:    "端口无效",
			env:     map[string]string{"HTTP_PORT": "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"SOLANA_CLUSTER", "SELLER_FEE_BASIS_POINTS", "CORS_ALLOWED_ORIGINS", "HTTP_PORT", "CONFIRM_POLL_INTERVAL_MS", "FILEBASE_GATEWAY"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadFilebaseFallsBackToPublicNames(t *testing.T) {
	t.Setenv("FILEBASE_KEY", "")
	t.Setenv("FILEBASE_SECRET", "secret")
	t.Setenv("FILEBASE_BUCKET", "")
	t.Setenv("NEXT_PUBLIC_FILEBASE_KEY", "public-key")
	t.Setenv("NEXT_PUBLIC_FILEBASE_SECRET", "public-secret")
	t.Setenv("NEXT_PUBLIC_FILEBASE_BUCKET", "nfts")

	fb := LoadFilebase()
	assert.Equal(t, "public-key", fb.Key)
	assert.Equal(t, "secret", fb.Secret)
	assert.Equal(t, "nfts", fb.Bucket)
	assert.Equal(t, common.DEFAULT_FILEBASE_ENDPOINT, fb.Endpoint)
}
