package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"nft_minter/internal/common"
	"nft_minter/internal/model"
	"nft_minter/internal/queue"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	streamBufferSz = 32
)

// streamClient 单个 WebSocket 订阅者, 队列处理器只做非阻塞投递
type streamClient struct {
	send chan *model.StatusMessage
}

func (c *streamClient) HandleMessage(msg *model.StatusMessage) {
	select {
	case c.send <- msg:
	default:
		common.Log.Warnf("状态推送缓冲已满, 丢弃消息: %s", msg.Status)
	}
}

// handleStream GET /api/mint/stream, 先推送当前状态, 然后推送每次状态变化
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.deps.Queue == nil {
		writeError(w, http.StatusServiceUnavailable, "status stream is not configured")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		common.Log.Warnf("WebSocket 升级失败: %v", err)
		return
	}
	defer conn.Close()

	client := &streamClient{send: make(chan *model.StatusMessage, streamBufferSz)}
	id := s.deps.Queue.RegisterHandler(client)
	defer s.deps.Queue.UnregisterHandler(id)

	s.metrics.streamClients.Inc()
	defer s.metrics.streamClients.Dec()
	common.Log.Debugf("状态订阅者已连接: %s", id)

	// 先注册再取快照, 快照之前产生的排队消息已包含在快照中, 推送时丢弃
	snapshotAt := time.Now()
	if s.deps.Minter != nil {
		view := s.deps.Minter.View()
		client.send <- model.NewStatusMessage(view.State, view.Status)
	}

	// 读协程只用于感知断开和处理 pong
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					common.Log.Debugf("状态订阅者异常断开: %v", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case msg := <-client.send:
			if msg.Timestamp.Before(snapshotAt) {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				common.Log.Debugf("推送状态失败: %v", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var _ queue.MessageHandler = (*streamClient)(nil)
