package minter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft_minter/internal/chainTx"
	"nft_minter/internal/common"
	"nft_minter/internal/model"
	"nft_minter/internal/queue"
)

type fakeWallet struct {
	key       solana.PublicKey
	connected bool
}

func (w fakeWallet) PublicKey() solana.PublicKey { return w.key }
func (w fakeWallet) Connected() bool             { return w.connected }

type fakeUploader struct {
	mu      sync.Mutex
	calls   []*model.Metadata
	uri     string
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (u *fakeUploader) UploadMetadata(ctx context.Context, metadata *model.Metadata) (string, error) {
	u.mu.Lock()
	u.calls = append(u.calls, metadata)
	u.mu.Unlock()
	if u.entered != nil {
		close(u.entered)
	}
	if u.block != nil {
		<-u.block
	}
	return u.uri, u.err
}

func (u *fakeUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.calls)
}

type fakeCreator struct {
	params []chainTx.CreateNFTParams
	err    error
}

func (c *fakeCreator) CreateNFT(ctx context.Context, params chainTx.CreateNFTParams) (*chainTx.CreateNFTResult, error) {
	c.params = append(c.params, params)
	if c.err != nil {
		return nil, c.err
	}
	mint := params.NewMint.PublicKey()
	return &chainTx.CreateNFTResult{
		Mint:      mint,
		Metadata:  solana.MustPublicKeyFromBase58("11111111111111111111111111111112"),
		Signature: solana.Signature{1},
	}, nil
}

func newWallet(t *testing.T, connected bool) fakeWallet {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return fakeWallet{key: key.PublicKey(), connected: connected}
}

// collect 收集队列中的全部状态文本
func collect(q *queue.MessageQueue) func() []string {
	var mu sync.Mutex
	var statuses []string
	q.RegisterHandler(queue.HandlerFunc(func(msg *model.StatusMessage) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, msg.Status)
	}))
	q.Start()
	return func() []string {
		q.Stop()
		mu.Lock()
		defer mu.Unlock()
		return statuses
	}
}

var validForm = model.MintForm{Name: "Test NFT", ImageURL: "https://example.com/a.png"}

func TestMint_Success(t *testing.T) {
	wallet := newWallet(t, true)
	uploader := &fakeUploader{uri: "https://ipfs.filebase.io/ipfs/QmX"}
	creator := &fakeCreator{}
	q := queue.NewMessageQueue("test", 20)
	statuses := collect(q)

	m := New(uploader, creator, wallet, Options{
		Cluster:              common.DEVNET,
		SellerFeeBasisPoints: 500,
		Queue:                q,
	})

	view, err := m.Mint(context.Background(), validForm)
	require.NoError(t, err)

	assert.Equal(t, model.MintStateSuccess, view.State)
	assert.Equal(t, "NFT minted successfully!", view.Status)
	assert.False(t, view.Loading)
	assert.Equal(t, "Mint NFT", view.ButtonLabel)
	assert.Equal(t, validForm.ImageURL, view.PreviewURL)
	require.NotNil(t, view.Result)
	assert.Equal(t, "https://ipfs.filebase.io/ipfs/QmX", view.Result.MetadataURI)
	assert.Contains(t, view.Result.ExplorerURL, "?cluster=devnet")

	require.Len(t, uploader.calls, 1)
	doc := uploader.calls[0]
	assert.Equal(t, "Test NFT", doc.Name)
	assert.Equal(t, "A Solana NFT created with Filebase IPFS storage", doc.Description)
	assert.Equal(t, validForm.ImageURL, doc.Properties.Files[0].URI)

	require.Len(t, creator.params, 1)
	p := creator.params[0]
	assert.Equal(t, "Test NFT", p.Name)
	assert.Equal(t, "https://ipfs.filebase.io/ipfs/QmX", p.URI)
	assert.Equal(t, uint16(500), p.SellerFeeBasisPoints)
	assert.Equal(t, wallet.key, p.TokenOwner)
	assert.Equal(t, p.NewMint.PublicKey().String(), view.Result.MintAddress)

	got := statuses()
	require.Len(t, got, 6)
	assert.Equal(t, "Starting NFT minting process...", got[0])
	assert.Equal(t, "Generated mint address: "+view.Result.MintAddress, got[1])
	assert.Equal(t, "Uploading metadata to Filebase...", got[2])
	assert.Equal(t, "Metadata uploaded to: https://ipfs.filebase.io/ipfs/QmX", got[3])
	assert.Equal(t, "Creating NFT on Solana...", got[4])
	assert.Equal(t, "NFT minted successfully!", got[5])
}

func TestMint_Preconditions(t *testing.T) {
	tests := []struct {
		name      string
		connected bool
		form      model.MintForm
		want      string
	}{
		{name: "钱包未连接", connected: false, form: validForm, want: "Please connect your wallet first"},
		{name: "钱包未连接且表单为空", connected: false, form: model.MintForm{}, want: "Please connect your wallet first"},
		{name: "缺少图片", connected: true, form: model.MintForm{Name: "Test NFT"}, want: "Please fill in both name and image URL"},
		{name: "缺少名称", connected: true, form: model.MintForm{ImageURL: "https://example.com/a.png"}, want: "Please fill in both name and image URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := &fakeUploader{uri: "unused"}
			creator := &fakeCreator{}
			m := New(uploader, creator, newWallet(t, tt.connected), Options{})

			view, err := m.Mint(context.Background(), tt.form)
			require.NoError(t, err)
			assert.Equal(t, tt.want, view.Status)
			assert.Equal(t, model.MintStateFailed, view.State)
			assert.Equal(t, model.MintStateValidating, view.FailedStage)
			assert.Zero(t, uploader.count(), "不应发起上传")
			assert.Empty(t, creator.params, "不应调用链上创建")
			assert.Equal(t, !tt.connected, view.ButtonDisabled)
		})
	}
}

func TestMint_UploadFailure(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("Access Denied")}
	creator := &fakeCreator{}
	m := New(uploader, creator, newWallet(t, true), Options{})

	view, err := m.Mint(context.Background(), validForm)
	require.NoError(t, err)
	assert.Equal(t, "Error minting NFT: Filebase upload failed: Access Denied", view.Status)
	assert.Equal(t, model.MintStateFailed, view.State)
	assert.Equal(t, model.MintStateUploading, view.FailedStage)
	assert.Empty(t, creator.params)
	assert.Nil(t, view.Result)
	assert.False(t, view.Loading)
}

func TestMint_CreateFailure(t *testing.T) {
	uploader := &fakeUploader{uri: "https://ipfs.filebase.io/ipfs/QmX"}
	creator := &fakeCreator{err: errors.New("insufficient lamports")}
	m := New(uploader, creator, newWallet(t, true), Options{})

	view, err := m.Mint(context.Background(), validForm)
	require.NoError(t, err)
	assert.Equal(t, "Error minting NFT: insufficient lamports", view.Status)
	assert.Equal(t, model.MintStateMinting, view.FailedStage)
	assert.Nil(t, view.Result)
}

func TestMint_MintKeyFailure(t *testing.T) {
	uploader := &fakeUploader{uri: "u"}
	m := New(uploader, &fakeCreator{}, newWallet(t, true), Options{
		NewMintKey: func() (solana.PrivateKey, error) { return nil, errors.New("entropy exhausted") },
	})

	view, err := m.Mint(context.Background(), validForm)
	require.NoError(t, err)
	assert.Equal(t, "Error minting NFT: entropy exhausted", view.Status)
	assert.Zero(t, uploader.count())
}

func TestMint_SingleInFlight(t *testing.T) {
	uploader := &fakeUploader{
		uri:     "https://ipfs.filebase.io/ipfs/QmX",
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	m := New(uploader, &fakeCreator{}, newWallet(t, true), Options{})

	done := make(chan model.MintView)
	go func() {
		view, _ := m.Mint(context.Background(), validForm)
		done <- view
	}()
	<-uploader.entered

	view := m.View()
	assert.True(t, view.Loading)
	assert.True(t, view.ButtonDisabled)
	assert.Equal(t, "Minting...", view.ButtonLabel)
	assert.Equal(t, model.MintStateUploading, view.State)

	_, err := m.Mint(context.Background(), validForm)
	assert.ErrorIs(t, err, ErrMintInProgress)

	close(uploader.block)
	final := <-done
	assert.Equal(t, model.MintStateSuccess, final.State)
	assert.Equal(t, 1, uploader.count())
}

func TestView_Initial(t *testing.T) {
	wallet := newWallet(t, true)
	m := New(&fakeUploader{}, &fakeCreator{}, wallet, Options{})

	view := m.View()
	assert.Equal(t, model.MintStateIdle, view.State)
	assert.True(t, view.Connected)
	assert.True(t, strings.HasPrefix(view.WalletLabel, "Connected: "+wallet.key.String()[:8]))
	assert.False(t, view.ButtonDisabled)

	disconnected := New(&fakeUploader{}, &fakeCreator{}, nil, Options{}).View()
	assert.False(t, disconnected.Connected)
	assert.True(t, disconnected.ButtonDisabled)
	assert.Empty(t, disconnected.WalletLabel)
}
