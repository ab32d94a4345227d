package checks

type WalletCheck struct{}

func NewWalletCheck() *WalletCheck {
	return &WalletCheck{}
}

func (c *WalletCheck) Name() string {
	return "walletCheck"
}

func (c *WalletCheck) Type() CheckType {
	return WalletConnected
}

func (c *WalletCheck) Message() string {
	return "Please connect your wallet first"
}

// Check 钱包必须已连接
func (c *WalletCheck) Check(input *Input) bool {
	return input != nil && input.Connected
}
