package metaplex

import (
	"github.com/gagliardetto/solana-go"
)

// Token Metadata 程序地址
var ProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// MetadataAddress 计算 mint 对应的元数据账户 PDA
func MetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			ProgramID.Bytes(),
			mint.Bytes(),
		},
		ProgramID,
	)
	return addr, err
}

// MasterEditionAddress 计算 mint 对应的主版本账户 PDA
func MasterEditionAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			ProgramID.Bytes(),
			mint.Bytes(),
			[]byte("edition"),
		},
		ProgramID,
	)
	return addr, err
}
