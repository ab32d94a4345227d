package chainTx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	"nft_minter/internal/common"
	"nft_minter/internal/metaplex"
)

// SPL Token mint 账户大小
const MintAccountSize = 82

const (
	// 连续查询失败次数上限, 超过后认为节点不可用
	MaxConsecutiveRPCErrors = 10
	// 区块哈希有效期约 150 个区块 * 400ms, 加上余量
	DefaultConfirmTimeout = 150*400*time.Millisecond + 30*time.Second
)

var (
	ErrTransactionFailed = errors.New("交易执行失败")
	ErrBlockhashExpired  = errors.New("交易未确认, 区块哈希已过期")
	ErrRPCUnavailable    = errors.New("节点不可用, 无法确认交易")
)

// RPC 发送和确认交易需要的节点接口
type RPC interface {
	GetLatestBlockhash(ctx context.Context) (*rpc.GetLatestBlockhashResult, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	GetSignatureStatus(ctx context.Context, sig solana.Signature) (*rpc.SignatureStatusesResult, error)
	GetBlockHeight(ctx context.Context) (uint64, error)
}

// Signer 付款并签名的钱包
type Signer interface {
	PublicKey() solana.PublicKey
	PrivateKey(key solana.PublicKey) *solana.PrivateKey
}

// CreateNFTParams 铸造参数
type CreateNFTParams struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	NewMint              solana.PrivateKey
	TokenOwner           solana.PublicKey // 为空时发给付款人
	MaxSupply            *uint64          // nil 表示不限制印刷数量
}

// CreateNFTResult 铸造结果
type CreateNFTResult struct {
	Mint          solana.PublicKey
	Metadata      solana.PublicKey
	MasterEdition solana.PublicKey
	TokenAccount  solana.PublicKey
	Signature     solana.Signature
}

// BuildCreateNFTInstructions 组装铸造 NFT 的完整指令序列:
// 创建 mint 账户、初始化 mint、创建元数据、创建 ATA、铸造 1 枚、创建主版本
func BuildCreateNFTInstructions(payer solana.PublicKey, params CreateNFTParams, mintRent uint64) ([]solana.Instruction, *CreateNFTResult, error) {
	if len(params.NewMint) == 0 {
		return nil, nil, errors.New("缺少 mint 密钥")
	}
	mint := params.NewMint.PublicKey()
	owner := params.TokenOwner
	if owner.IsZero() {
		owner = payer
	}

	metadata, err := metaplex.MetadataAddress(mint)
	if err != nil {
		return nil, nil, fmt.Errorf("计算元数据地址失败: %w", err)
	}
	edition, err := metaplex.MasterEditionAddress(mint)
	if err != nil {
		return nil, nil, fmt.Errorf("计算主版本地址失败: %w", err)
	}
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, nil, fmt.Errorf("计算代币账户地址失败: %w", err)
	}

	createMetadata, err := metaplex.NewCreateMetadataAccountV3Instruction(
		metaplex.CreateMetadataAccountV3Accounts{
			Metadata:        metadata,
			Mint:            mint,
			MintAuthority:   payer,
			Payer:           payer,
			UpdateAuthority: payer,
		},
		metaplex.DataV2{
			Name:                 params.Name,
			Symbol:               params.Symbol,
			URI:                  params.URI,
			SellerFeeBasisPoints: params.SellerFeeBasisPoints,
			Creators:             []metaplex.Creator{{Address: payer, Verified: true, Share: 100}},
		},
		true,
	)
	if err != nil {
		return nil, nil, err
	}

	createEdition, err := metaplex.NewCreateMasterEditionV3Instruction(
		metaplex.CreateMasterEditionV3Accounts{
			Edition:         edition,
			Mint:            mint,
			UpdateAuthority: payer,
			MintAuthority:   payer,
			Payer:           payer,
			Metadata:        metadata,
		},
		params.MaxSupply,
	)
	if err != nil {
		return nil, nil, err
	}

	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(mintRent, MintAccountSize, solana.TokenProgramID, payer, mint).Build(),
		token.NewInitializeMintInstruction(0, payer, payer, mint, solana.SysVarRentPubkey).Build(),
		createMetadata,
		associatedtokenaccount.NewCreateInstruction(payer, owner, mint).Build(),
		token.NewMintToInstruction(1, mint, ata, payer, nil).Build(),
		createEdition,
	}

	return instructions, &CreateNFTResult{
		Mint:          mint,
		Metadata:      metadata,
		MasterEdition: edition,
		TokenAccount:  ata,
	}, nil
}

// NFTCreator 在链上创建 NFT
type NFTCreator struct {
	rpc            RPC
	signer         Signer
	pollInterval   time.Duration
	confirmTimeout time.Duration
}

func NewNFTCreator(client RPC, signer Signer, pollInterval time.Duration) *NFTCreator {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &NFTCreator{
		rpc:            client,
		signer:         signer,
		pollInterval:   pollInterval,
		confirmTimeout: DefaultConfirmTimeout,
	}
}

// SetConfirmTimeout 设置等待确认的最长时间, <=0 时使用默认值
func (c *NFTCreator) SetConfirmTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultConfirmTimeout
	}
	c.confirmTimeout = d
}

// CreateNFT 构建、签名并发送铸造交易, 等待确认后返回
func (c *NFTCreator) CreateNFT(ctx context.Context, params CreateNFTParams) (*CreateNFTResult, error) {
	payer := c.signer.PublicKey()

	mintRent, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, MintAccountSize)
	if err != nil {
		return nil, fmt.Errorf("获取免租金额失败: %w", err)
	}

	instructions, result, err := BuildCreateNFTInstructions(payer, params, mintRent)
	if err != nil {
		return nil, err
	}

	recent, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取区块哈希失败: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, recent.Value.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("创建交易失败: %w", err)
	}

	mintKey := params.NewMint
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(result.Mint) {
			return &mintKey
		}
		return c.signer.PrivateKey(key)
	})
	if err != nil {
		return nil, fmt.Errorf("签名交易失败: %w", err)
	}

	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("发送交易失败: %w", err)
	}
	result.Signature = sig

	common.Log.WithFields(logrus.Fields{
		"mint":      result.Mint.String(),
		"signature": sig.String(),
	}).Info("铸造交易已发送, 等待确认")

	if err := c.waitConfirmed(ctx, sig, recent.Value.LastValidBlockHeight); err != nil {
		return nil, err
	}
	return result, nil
}

// waitConfirmed 轮询签名状态, 直到确认、失败、区块高度超过 lastValid,
// 连续查询失败达到上限或等待超过 confirmTimeout
func (c *NFTCreator) waitConfirmed(ctx context.Context, sig solana.Signature, lastValid uint64) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	var lastErr error
	rpcErrors := 0
	for {
		status, err := c.rpc.GetSignatureStatus(waitCtx, sig)
		if err != nil {
			rpcErrors++
			lastErr = err
			common.Log.Warnf("查询交易状态失败 (%d/%d): %v", rpcErrors, MaxConsecutiveRPCErrors, err)
		} else {
			rpcErrors = 0
			if status != nil {
				if status.Err != nil {
					return fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err)
				}
				if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
					status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
					return nil
				}
			}
		}

		height, err := c.rpc.GetBlockHeight(waitCtx)
		if err != nil {
			rpcErrors++
			lastErr = err
			common.Log.Warnf("查询区块高度失败 (%d/%d): %v", rpcErrors, MaxConsecutiveRPCErrors, err)
		} else if height > lastValid {
			return ErrBlockhashExpired
		}

		if rpcErrors >= MaxConsecutiveRPCErrors {
			return fmt.Errorf("%w: %v", ErrRPCUnavailable, lastErr)
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: 等待确认超过 %s", ErrBlockhashExpired, c.confirmTimeout)
		case <-ticker.C:
		}
	}
}
