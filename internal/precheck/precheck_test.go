package precheck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nft_minter/internal/model"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		connected  bool
		form       model.MintForm
		wantPassed bool
		wantBy     string
		wantMsg    string
	}{
		{
			name:       "全部通过",
			connected:  true,
			form:       model.MintForm{Name: "Test NFT", ImageURL: "https://example.com/a.png"},
			wantPassed: true,
		},
		{
			name:      "钱包未连接优先于表单",
			connected: false,
			form:      model.MintForm{},
			wantBy:    "walletCheck",
			wantMsg:   "Please connect your wallet first",
		},
		{
			name:      "缺少图片",
			connected: true,
			form:      model.MintForm{Name: "Test NFT"},
			wantBy:    "fieldsCheck",
			wantMsg:   "Please fill in both name and image URL",
		},
		{
			name:      "缺少名称",
			connected: true,
			form:      model.MintForm{ImageURL: "https://example.com/a.png"},
			wantBy:    "fieldsCheck",
			wantMsg:   "Please fill in both name and image URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Run(tt.connected, tt.form, DefaultConfig())
			assert.Equal(t, tt.wantPassed, got.Passed)
			assert.Equal(t, tt.wantBy, got.FailedBy)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}
}

func TestRun_NilConfig(t *testing.T) {
	got := Run(false, model.MintForm{Name: "n", ImageURL: "i"}, nil)
	assert.False(t, got.Passed)
	assert.Equal(t, "walletCheck", got.FailedBy)
}
