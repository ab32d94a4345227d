package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"

	"nft_minter/internal/common"
	sol "nft_minter/internal/solana"
)

// 开发用: 生成 solana-keygen 格式的钱包文件并在 devnet 领取测试 SOL

var (
	keypairPath string
	airdropSOL  float64
	rpcURL      string
)

func init() {
	flag.StringVar(&keypairPath, "keypair", "id.json", "钱包文件路径, 不存在时自动生成")
	flag.Float64Var(&airdropSOL, "airdrop", 1, "申请的 SOL 数量, 0 表示不申请")
	flag.StringVar(&rpcURL, "rpc", sol.ClusterRPC(common.DEVNET), "Solana RPC URL")
}

func main() {
	flag.Parse()

	key, err := loadOrCreate(keypairPath)
	if err != nil {
		common.Log.Fatalf("准备钱包失败: %v", err)
	}
	fmt.Printf("钱包地址: %s\n", key.PublicKey())
	fmt.Printf("SOLANA_KEYPAIR_PATH=%s\n", keypairPath)

	client := sol.New(rpcURL)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if airdropSOL > 0 {
		sig, err := client.RequestAirdrop(ctx, key.PublicKey(), uint64(airdropSOL*float64(solana.LAMPORTS_PER_SOL)))
		if err != nil {
			common.Log.Fatalf("申请空投失败: %v", err)
		}
		fmt.Printf("空投交易: %s\n", sig)
	}

	balance, err := client.GetBalance(ctx, key.PublicKey())
	if err != nil {
		common.Log.Fatalf("查询余额失败: %v", err)
	}
	fmt.Printf("当前余额: %.6f SOL\n", float64(balance)/float64(solana.LAMPORTS_PER_SOL))
}

func loadOrCreate(path string) (solana.PrivateKey, error) {
	if data, err := os.ReadFile(path); err == nil {
		return sol.DecodeKeypairJSON(data)
	}

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, err
	}
	common.Log.Infof("已生成新钱包文件 %s", path)
	return key, nil
}
