package checks

import "nft_minter/internal/model"

// Input 一次铸造尝试的检查输入
type Input struct {
	Connected bool
	Form      model.MintForm
}

type Check interface {
	// Check 返回输入是否通过检查
	Check(input *Input) bool
	Name() string
	Type() CheckType
	// Message 未通过时展示给用户的状态文本
	Message() string
}

type CheckType int

const (
	WalletConnected CheckType = 1
	FieldsFilled    CheckType = 2
)
