package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"nft_minter/internal/chainTx"
	"nft_minter/internal/common"
	"nft_minter/internal/config"
	"nft_minter/internal/filebase"
	"nft_minter/internal/minter"
	"nft_minter/internal/model"
	"nft_minter/internal/queue"
	sol "nft_minter/internal/solana"
	"nft_minter/internal/uploader"
)

// 命令行参数
var (
	name           string
	imageURL       string
	uploadEndpoint string
	rpcURL         string
	verify         bool
)

func init() {
	flag.StringVar(&name, "name", "My Solana NFT", "NFT 名称")
	flag.StringVar(&imageURL, "image", "", "图片地址")
	flag.StringVar(&uploadEndpoint, "upload-endpoint", "", "上传服务地址, 例如 http://localhost:3000, 为空时直接上传到 Filebase")
	flag.StringVar(&rpcURL, "rpc", "", "Solana RPC URL, 为空时使用 SOLANA_RPC_URL 或集群默认地址")
	flag.BoolVar(&verify, "verify", false, "铸造后从网关读取元数据进行校验")
}

func main() {
	// 解析命令行参数
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		common.Log.Fatalf("加载配置失败: %v", err)
	}
	common.SetLogLevel(cfg.LogLevel)

	ctx := context.Background()

	key, err := sol.LoadPrivateKey(ctx, cfg.Solana)
	if err != nil {
		common.Log.Fatalf("加载钱包失败: %v", err)
	}
	if key == nil {
		common.Log.Fatalf("%v: 请设置 SOLANA_PRIVATE_KEY、SOLANA_KEYPAIR_PATH 或 SOLANA_KEYPAIR_SECRET", sol.ErrWalletNotConnected)
	}
	wallet := sol.NewKeypairWallet(key)

	if rpcURL == "" {
		rpcURL = cfg.Solana.RPCURL
	}
	if rpcURL == "" {
		rpcURL = sol.ClusterRPC(cfg.Solana.Cluster)
	}
	client := sol.New(rpcURL)
	defer client.Close()

	if balance, err := client.GetBalance(ctx, wallet.PublicKey()); err == nil {
		common.Log.Infof("钱包 %s 余额: %.6f SOL", wallet.PublicKey(), float64(balance)/1e9)
	}

	var metadataUploader minter.MetadataUploader = filebase.NewEnvPublisher()
	if uploadEndpoint != "" {
		metadataUploader = uploader.NewHTTPUploader(uploadEndpoint)
	}

	// 状态文本逐行输出
	statusQueue := queue.NewMessageQueue("cli_status_queue", 16)
	statusQueue.RegisterHandler(queue.HandlerFunc(func(msg *model.StatusMessage) {
		fmt.Println(msg.Status)
	}))
	statusQueue.Start()

	nftMinter := minter.New(
		metadataUploader,
		chainTx.NewNFTCreator(client, wallet, cfg.Solana.ConfirmPollInterval),
		wallet,
		minter.Options{
			Cluster:              cfg.Solana.Cluster,
			SellerFeeBasisPoints: cfg.Solana.SellerFeeBasisPoints,
			Queue:                statusQueue,
		},
	)

	view, err := nftMinter.Mint(ctx, model.MintForm{Name: name, ImageURL: imageURL})
	statusQueue.Stop()
	if err != nil {
		common.Log.Fatalf("铸造失败: %v", err)
	}
	if view.State != model.MintStateSuccess {
		os.Exit(1)
	}

	out, err := json.MarshalIndent(view.Result, "", "  ")
	if err != nil {
		common.Log.Fatalf("序列化铸造结果失败: %v", err)
	}
	fmt.Println(string(out))

	if verify {
		doc, err := model.FetchMetadata(ctx, view.Result.MetadataURI)
		if err != nil {
			common.Log.Fatalf("读取元数据失败: %v", err)
		}
		if doc.Name != name || doc.Image != imageURL {
			common.Log.Fatalf("元数据不一致: name=%s image=%s", doc.Name, doc.Image)
		}
		common.Log.Info("元数据校验通过")
	}
}
