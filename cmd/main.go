package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nft_minter/internal/chainTx"
	"nft_minter/internal/common"
	"nft_minter/internal/config"
	"nft_minter/internal/filebase"
	"nft_minter/internal/minter"
	"nft_minter/internal/queue"
	"nft_minter/internal/server"
	sol "nft_minter/internal/solana"
	"nft_minter/internal/uploader"
)

func main() {
	// 定义命令行参数
	uploadEndpoint := flag.String("upload-endpoint", "", "通过其他服务的 /api/upload-metadata 上传元数据, 为空时直接上传到 Filebase")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		common.Log.Fatalf("加载配置失败: %v", err)
	}
	if err := common.InitLogger(cfg.LogDir, cfg.LogLevel); err != nil {
		common.Log.Fatalf("初始化日志失败: %v", err)
	}

	ctx := context.Background()

	key, err := sol.LoadPrivateKey(ctx, cfg.Solana)
	if err != nil {
		common.Log.Fatalf("加载钱包失败: %v", err)
	}
	wallet := sol.NewKeypairWallet(key)

	rpcURL := cfg.Solana.RPCURL
	if rpcURL == "" {
		rpcURL = sol.ClusterRPC(cfg.Solana.Cluster)
	}
	client := sol.New(rpcURL)
	defer client.Close()
	common.Log.Infof("Solana 集群: %s, RPC: %s", cfg.Solana.Cluster, client.Endpoint())

	// 初始化消息队列
	queue.InitGlobalQueues()
	statusQueue := queue.GetStatusQueue()

	publisher := filebase.NewEnvPublisher()
	var metadataUploader minter.MetadataUploader = publisher
	if *uploadEndpoint != "" {
		metadataUploader = uploader.NewHTTPUploader(*uploadEndpoint)
	}

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

	srv := server.NewServer(cfg, server.Deps{
		Publisher: publisher,
		Minter:    nftMinter,
		Queue:     statusQueue,
		Wallet:    wallet,
		RPCHealth: client.Ping,
	})

	go func() {
		if err := srv.Start(); err != nil {
			common.Log.Fatalf("HTTP 服务错误: %v", err)
		}
	}()

	common.Log.Info("NFT 铸造服务已启动. 按CTRL+C退出.")

	// 等待终止信号
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	common.Log.Info("正在关闭服务...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.Log.Warnf("关闭 HTTP 服务失败: %v", err)
	}
	statusQueue.Stop()

	common.Log.Info("服务已正常关闭.")
}
