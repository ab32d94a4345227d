package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"nft_minter/internal/common"
)

// Client 包装Solana客户端功能
type Client struct {
	rpcClient *rpc.Client
	endpoint  string
}

// ClusterRPC 返回集群默认 RPC 地址
func ClusterRPC(cluster common.Cluster) string {
	switch cluster {
	case common.MAINNET_BETA:
		return rpc.MainNetBeta_RPC
	case common.TESTNET:
		return rpc.TestNet_RPC
	case common.LOCALNET:
		return rpc.LocalNet_RPC
	default:
		return rpc.DevNet_RPC
	}
}

// New 创建新的Solana客户端
func New(endpoint string) *Client {
	return &Client{
		rpcClient: rpc.New(endpoint),
		endpoint:  endpoint,
	}
}

// Endpoint 当前 RPC 地址
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Close 关闭客户端连接
func (c *Client) Close() error {
	return c.rpcClient.Close()
}

// GetLatestBlockhash 获取最新的区块哈希
func (c *Client) GetLatestBlockhash(ctx context.Context) (*rpc.GetLatestBlockhashResult, error) {
	return c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
}

// GetMinimumBalanceForRentExemption 获取账户免租金所需的最低余额
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	return c.rpcClient.GetMinimumBalanceForRentExemption(ctx, size, rpc.CommitmentFinalized)
}

// SendTransaction 发送交易
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return c.rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentFinalized,
	})
}

// GetSignatureStatus 获取单个交易签名状态，尚未被节点看到时返回 nil
func (c *Client) GetSignatureStatus(ctx context.Context, sig solana.Signature) (*rpc.SignatureStatusesResult, error) {
	res, err := c.rpcClient.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.Value) == 0 {
		return nil, nil
	}
	return res.Value[0], nil
}

// GetBlockHeight 获取当前区块高度
func (c *Client) GetBlockHeight(ctx context.Context) (uint64, error) {
	return c.rpcClient.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
}

// GetBalance 获取账户 SOL 余额 (lamports)
func (c *Client) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	res, err := c.rpcClient.GetBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// Ping 检查节点是否可用
func (c *Client) Ping(ctx context.Context) error {
	health, err := c.rpcClient.GetHealth(ctx)
	if err != nil {
		return err
	}
	if health != rpc.HealthOk {
		return fmt.Errorf("节点状态异常: %s", health)
	}
	return nil
}

// RequestAirdrop 在测试网络上申请 SOL
func (c *Client) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64) (solana.Signature, error) {
	return c.rpcClient.RequestAirdrop(ctx, account, lamports, rpc.CommitmentFinalized)
}
