package minter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"nft_minter/internal/chainTx"
	"nft_minter/internal/common"
	"nft_minter/internal/model"
	"nft_minter/internal/precheck"
	"nft_minter/internal/queue"
)

var ErrMintInProgress = errors.New("铸造进行中")

// MetadataUploader 发布元数据并返回可访问的 URI
type MetadataUploader interface {
	UploadMetadata(ctx context.Context, metadata *model.Metadata) (string, error)
}

// NFTCreator 在链上创建 NFT
type NFTCreator interface {
	CreateNFT(ctx context.Context, params chainTx.CreateNFTParams) (*chainTx.CreateNFTResult, error)
}

// Wallet 当前连接的钱包
type Wallet interface {
	PublicKey() solana.PublicKey
	Connected() bool
}

type Options struct {
	Cluster              common.Cluster
	SellerFeeBasisPoints uint16
	Queue                *queue.MessageQueue // 可选, 接收每次状态变化
	Checks               *precheck.Config
	NewMintKey           func() (solana.PrivateKey, error)
}

// Minter 铸造流程编排, 同一时间只允许一次铸造
type Minter struct {
	mutex      sync.Mutex
	uploader   MetadataUploader
	creator    NFTCreator
	wallet     Wallet
	cluster    common.Cluster
	sellerFee  uint16
	queue      *queue.MessageQueue
	checks     *precheck.Config
	newMintKey func() (solana.PrivateKey, error)

	form        model.MintForm
	state       model.MintState
	failedStage model.MintState
	status      string
	result      *model.MintResult
}

func New(uploader MetadataUploader, creator NFTCreator, wallet Wallet, opts Options) *Minter {
	if opts.Cluster == "" {
		opts.Cluster = common.DEVNET
	}
	if opts.Checks == nil {
		opts.Checks = precheck.DefaultConfig()
	}
	if opts.NewMintKey == nil {
		opts.NewMintKey = solana.NewRandomPrivateKey
	}
	return &Minter{
		uploader:   uploader,
		creator:    creator,
		wallet:     wallet,
		cluster:    opts.Cluster,
		sellerFee:  opts.SellerFeeBasisPoints,
		queue:      opts.Queue,
		checks:     opts.Checks,
		newMintKey: opts.NewMintKey,
		state:      model.MintStateIdle,
	}
}

// Mint 执行一次完整铸造: 检查 -> 生成 mint -> 上传元数据 -> 链上创建。
// 失败记录在返回的页面状态中, 只有重复触发才返回错误。
func (m *Minter) Mint(ctx context.Context, form model.MintForm) (model.MintView, error) {
	m.mutex.Lock()
	if m.state.InFlight() {
		view := m.viewLocked()
		m.mutex.Unlock()
		return view, ErrMintInProgress
	}
	m.form = form
	m.state = model.MintStateValidating
	m.failedStage = ""
	m.mutex.Unlock()

	connected := m.connected()
	if res := precheck.Run(connected, form, m.checks); !res.Passed {
		m.fail(model.MintStateValidating, res.Message)
		return m.View(), nil
	}

	m.setStatus(model.MintStateValidating, "Starting NFT minting process...")

	mintKey, err := m.newMintKey()
	if err != nil {
		m.fail(model.MintStateValidating, "Error minting NFT: "+err.Error())
		return m.View(), nil
	}
	mintAddress := mintKey.PublicKey()
	m.setStatus(model.MintStateValidating, fmt.Sprintf("Generated mint address: %s", mintAddress))

	metadata := model.NewMetadata(form.Name, form.ImageURL)

	m.setStatus(model.MintStateUploading, "Uploading metadata to Filebase...")
	uri, err := m.uploader.UploadMetadata(ctx, metadata)
	if err != nil {
		m.fail(model.MintStateUploading, "Error minting NFT: Filebase upload failed: "+err.Error())
		return m.View(), nil
	}
	m.setStatus(model.MintStateUploading, fmt.Sprintf("Metadata uploaded to: %s", uri))

	m.setStatus(model.MintStateMinting, "Creating NFT on Solana...")
	zero := uint64(0)
	created, err := m.creator.CreateNFT(ctx, chainTx.CreateNFTParams{
		Name:                 metadata.Name,
		URI:                  uri,
		SellerFeeBasisPoints: m.sellerFee,
		NewMint:              mintKey,
		TokenOwner:           m.wallet.PublicKey(),
		MaxSupply:            &zero,
	})
	if err != nil {
		m.fail(model.MintStateMinting, "Error minting NFT: "+err.Error())
		return m.View(), nil
	}

	result := model.MintResult{
		MintAddress:     created.Mint.String(),
		MetadataAddress: created.Metadata.String(),
		MetadataURI:     uri,
		Signature:       created.Signature.String(),
	}
	m.succeed(result)
	return m.View(), nil
}

// View 当前页面状态
func (m *Minter) View() model.MintView {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.viewLocked()
}

func (m *Minter) viewLocked() model.MintView {
	connected := m.connected()
	loading := m.state.InFlight()

	view := model.MintView{
		Name:           m.form.Name,
		ImageURL:       m.form.ImageURL,
		PreviewURL:     m.form.ImageURL,
		Connected:      connected,
		State:          m.state,
		FailedStage:    m.failedStage,
		Status:         m.status,
		Loading:        loading,
		ButtonLabel:    "Mint NFT",
		ButtonDisabled: !connected || loading,
	}
	if connected {
		view.WalletLabel = model.WalletLabel(m.wallet.PublicKey().String())
	}
	if loading {
		view.ButtonLabel = "Minting..."
	}
	if m.result != nil {
		view.Result = model.NewResultView(*m.result, m.cluster)
	}
	return view
}

func (m *Minter) connected() bool {
	return m.wallet != nil && m.wallet.Connected()
}

func (m *Minter) setStatus(state model.MintState, status string) {
	m.mutex.Lock()
	m.state = state
	m.status = status
	m.mutex.Unlock()

	common.Log.WithFields(logrus.Fields{"state": state}).Info(status)
	m.publish(model.NewStatusMessage(state, status))
}

func (m *Minter) fail(stage model.MintState, status string) {
	m.mutex.Lock()
	m.state = model.MintStateFailed
	m.failedStage = stage
	m.status = status
	m.mutex.Unlock()

	common.Log.WithFields(logrus.Fields{"stage": stage}).Error(status)
	m.publish(model.NewStatusMessage(model.MintStateFailed, status))
}

func (m *Minter) succeed(result model.MintResult) {
	const status = "NFT minted successfully!"

	m.mutex.Lock()
	m.state = model.MintStateSuccess
	m.status = status
	m.result = &result
	m.mutex.Unlock()

	common.Log.WithFields(logrus.Fields{
		"mint":     result.MintAddress,
		"metadata": result.MetadataAddress,
		"uri":      result.MetadataURI,
	}).Info(status)
	m.publish(model.NewSuccessMessage(status, result))
}

func (m *Minter) publish(msg *model.StatusMessage) {
	if m.queue != nil {
		m.queue.SendMessage(msg)
	}
}
