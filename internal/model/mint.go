package model

import (
	"fmt"

	"nft_minter/internal/common"
)

// MintState 铸造流程状态
type MintState string

const (
	MintStateIdle       MintState = "idle"
	MintStateValidating MintState = "validating"
	MintStateUploading  MintState = "uploading"
	MintStateMinting    MintState = "minting"
	MintStateSuccess    MintState = "success"
	MintStateFailed     MintState = "failed"
)

// InFlight 上传或铸造进行中
func (s MintState) InFlight() bool {
	return s == MintStateValidating || s == MintStateUploading || s == MintStateMinting
}

// MintForm 用户输入
type MintForm struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// UploadResult 对象存储返回的内容标识
type UploadResult struct {
	CID string `json:"cid"`
}

// MintResult 铸造结果
type MintResult struct {
	MintAddress     string `json:"mintAddress"`
	MetadataAddress string `json:"metadataAddress"`
	MetadataURI     string `json:"metadataUri"`
	Signature       string `json:"signature,omitempty"`
}

// MintView 页面状态
type MintView struct {
	Name           string      `json:"name"`
	ImageURL       string      `json:"imageUrl"`
	PreviewURL     string      `json:"previewUrl,omitempty"`
	Connected      bool        `json:"connected"`
	WalletLabel    string      `json:"walletLabel,omitempty"`
	State          MintState   `json:"state"`
	FailedStage    MintState   `json:"failedStage,omitempty"` // 失败发生在哪个阶段
	Status         string      `json:"status"`
	Loading        bool        `json:"loading"`
	ButtonLabel    string      `json:"buttonLabel"`
	ButtonDisabled bool        `json:"buttonDisabled"`
	Result         *ResultView `json:"result,omitempty"`
}

// ResultView 结果面板
type ResultView struct {
	MintResult
	ExplorerURL string `json:"explorerUrl"`
}

// NewResultView 生成结果面板及浏览器链接
func NewResultView(result MintResult, cluster common.Cluster) *ResultView {
	return &ResultView{
		MintResult:  result,
		ExplorerURL: fmt.Sprintf(common.EXPLORER_ADDRESS_URL, result.MintAddress, cluster),
	}
}

// WalletLabel 截取公钥前 8 位
func WalletLabel(publicKey string) string {
	if len(publicKey) > 8 {
		publicKey = publicKey[:8]
	}
	return fmt.Sprintf("Connected: %s...", publicKey)
}
