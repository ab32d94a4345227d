package precheck

import (
	"time"

	"nft_minter/internal/model"
	"nft_minter/internal/precheck/checks"
)

// Result 检查结果，Passed 为 false 时 FailedBy/Message 为第一个未通过的检查
type Result struct {
	Passed    bool
	FailedBy  string
	Message   string
	CheckTime time.Time
}

// Config 检查配置，按顺序执行
type Config struct {
	Checks []checks.Check
}

// DefaultConfig 先检查钱包，再检查表单
func DefaultConfig() *Config {
	return &Config{
		Checks: []checks.Check{
			checks.NewWalletCheck(),
			checks.NewFieldsCheck(),
		},
	}
}

// Run 依次执行检查，遇到第一个未通过的检查即返回
func Run(connected bool, form model.MintForm, config *Config) *Result {
	if config == nil {
		config = DefaultConfig()
	}
	input := &checks.Input{Connected: connected, Form: form}
	result := &Result{Passed: true, CheckTime: time.Now()}

	for _, check := range config.Checks {
		if !check.Check(input) {
			result.Passed = false
			result.FailedBy = check.Name()
			result.Message = check.Message()
			return result
		}
	}
	return result
}
