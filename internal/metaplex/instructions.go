package metaplex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// 指令序号
const (
	instructionCreateMasterEditionV3   uint8 = 17
	instructionCreateMetadataAccountV3 uint8 = 33
)

// 程序对字段长度的限制
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200
	MaxCreatorLimit = 5
)

// Creator 创作者及其分成比例
type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

// DataV2 元数据账户内容，不设置 collection 和 uses
type DataV2 struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
}

// Validate 检查程序会拒绝的输入
func (d DataV2) Validate() error {
	if utf8.RuneCountInString(d.Name) == 0 {
		return fmt.Errorf("名称不能为空")
	}
	if len(d.Name) > MaxNameLength {
		return fmt.Errorf("名称过长: %d > %d 字节", len(d.Name), MaxNameLength)
	}
	if len(d.Symbol) > MaxSymbolLength {
		return fmt.Errorf("符号过长: %d > %d 字节", len(d.Symbol), MaxSymbolLength)
	}
	if len(d.URI) > MaxURILength {
		return fmt.Errorf("URI过长: %d > %d 字节", len(d.URI), MaxURILength)
	}
	if d.SellerFeeBasisPoints > 10000 {
		return fmt.Errorf("版税超出范围: %d", d.SellerFeeBasisPoints)
	}
	if len(d.Creators) > MaxCreatorLimit {
		return fmt.Errorf("创作者数量超过上限: %d", len(d.Creators))
	}
	if len(d.Creators) > 0 {
		total := 0
		for _, c := range d.Creators {
			total += int(c.Share)
		}
		if total != 100 {
			return fmt.Errorf("创作者分成合计必须为100, 当前为 %d", total)
		}
	}
	return nil
}

// CreateMetadataAccountV3Accounts 创建元数据账户所需账户
type CreateMetadataAccountV3Accounts struct {
	Metadata        solana.PublicKey
	Mint            solana.PublicKey
	MintAuthority   solana.PublicKey
	Payer           solana.PublicKey
	UpdateAuthority solana.PublicKey
}

// NewCreateMetadataAccountV3Instruction 构建 CreateMetadataAccountV3 指令
func NewCreateMetadataAccountV3Instruction(accounts CreateMetadataAccountV3Accounts, data DataV2, isMutable bool) (solana.Instruction, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)

	if err := enc.WriteUint8(instructionCreateMetadataAccountV3); err != nil {
		return nil, err
	}
	if err := encodeDataV2(enc, data); err != nil {
		return nil, fmt.Errorf("编码元数据失败: %w", err)
	}
	if err := enc.WriteBool(isMutable); err != nil {
		return nil, err
	}
	// collection_details: None
	if err := enc.WriteBool(false); err != nil {
		return nil, err
	}

	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.Metadata, true, false),
		solana.NewAccountMeta(accounts.Mint, false, false),
		solana.NewAccountMeta(accounts.MintAuthority, false, true),
		solana.NewAccountMeta(accounts.Payer, true, true),
		solana.NewAccountMeta(accounts.UpdateAuthority, false, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}
	return solana.NewInstruction(ProgramID, metas, buf.Bytes()), nil
}

// CreateMasterEditionV3Accounts 创建主版本所需账户
type CreateMasterEditionV3Accounts struct {
	Edition         solana.PublicKey
	Mint            solana.PublicKey
	UpdateAuthority solana.PublicKey
	MintAuthority   solana.PublicKey
	Payer           solana.PublicKey
	Metadata        solana.PublicKey
}

// NewCreateMasterEditionV3Instruction 构建 CreateMasterEditionV3 指令，maxSupply 为 nil 表示不限量
func NewCreateMasterEditionV3Instruction(accounts CreateMasterEditionV3Accounts, maxSupply *uint64) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)

	if err := enc.WriteUint8(instructionCreateMasterEditionV3); err != nil {
		return nil, err
	}
	if err := enc.WriteBool(maxSupply != nil); err != nil {
		return nil, err
	}
	if maxSupply != nil {
		if err := enc.WriteUint64(*maxSupply, binary.LittleEndian); err != nil {
			return nil, err
		}
	}

	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(accounts.Edition, true, false),
		solana.NewAccountMeta(accounts.Mint, true, false),
		solana.NewAccountMeta(accounts.UpdateAuthority, false, true),
		solana.NewAccountMeta(accounts.MintAuthority, false, true),
		solana.NewAccountMeta(accounts.Payer, true, true),
		solana.NewAccountMeta(accounts.Metadata, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}
	return solana.NewInstruction(ProgramID, metas, buf.Bytes()), nil
}

func encodeDataV2(enc *bin.Encoder, data DataV2) error {
	for _, s := range []string{data.Name, data.Symbol, data.URI} {
		if err := writeString(enc, s); err != nil {
			return err
		}
	}
	if err := enc.WriteUint16(data.SellerFeeBasisPoints, binary.LittleEndian); err != nil {
		return err
	}

	// creators: Option<Vec<Creator>>
	if err := enc.WriteBool(len(data.Creators) > 0); err != nil {
		return err
	}
	if len(data.Creators) > 0 {
		if err := enc.WriteUint32(uint32(len(data.Creators)), binary.LittleEndian); err != nil {
			return err
		}
		for _, c := range data.Creators {
			if err := enc.WriteBytes(c.Address.Bytes(), false); err != nil {
				return err
			}
			if err := enc.WriteBool(c.Verified); err != nil {
				return err
			}
			if err := enc.WriteUint8(c.Share); err != nil {
				return err
			}
		}
	}

	// collection: None, uses: None
	if err := enc.WriteBool(false); err != nil {
		return err
	}
	return enc.WriteBool(false)
}

// borsh 字符串: u32 长度 + UTF-8 字节
func writeString(enc *bin.Encoder, s string) error {
	if err := enc.WriteUint32(uint32(len(s)), binary.LittleEndian); err != nil {
		return err
	}
	return enc.WriteBytes([]byte(s), false)
}
