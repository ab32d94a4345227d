package model

import "time"

// 队列消息，记录一次状态变化
type StatusMessage struct {
	State     MintState   `json:"state"`
	Status    string      `json:"status"`
	Result    *MintResult `json:"result,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// 创建状态消息
func NewStatusMessage(state MintState, status string) *StatusMessage {
	return &StatusMessage{
		State:     state,
		Status:    status,
		Timestamp: time.Now(),
	}
}

// 创建成功消息
func NewSuccessMessage(status string, result MintResult) *StatusMessage {
	msg := NewStatusMessage(MintStateSuccess, status)
	msg.Result = &result
	return msg
}
