package queue

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"nft_minter/internal/common"
	"nft_minter/internal/model"
)

// 消息队列管理器
type MessageQueue struct {
	name     string                    // 队列名称
	messages chan *model.StatusMessage // 消息通道
	handlers []handlerEntry            // 消息处理器, 按注册顺序
	mutex    sync.RWMutex              // 读写锁
	started  bool
	stopped  bool
	done     chan struct{}
}

type handlerEntry struct {
	id      string
	handler MessageHandler
}

// 消息处理器接口
type MessageHandler interface {
	HandleMessage(msg *model.StatusMessage)
}

// HandlerFunc 函数形式的处理器
type HandlerFunc func(msg *model.StatusMessage)

func (f HandlerFunc) HandleMessage(msg *model.StatusMessage) {
	f(msg)
}

// 创建新消息队列
func NewMessageQueue(name string, bufferSize int) *MessageQueue {
	return &MessageQueue{
		name:     name,
		messages: make(chan *model.StatusMessage, bufferSize),
		handlers: make([]handlerEntry, 0),
		done:     make(chan struct{}),
	}
}

// 注册消息处理器, 返回用于注销的 id
func (q *MessageQueue) RegisterHandler(handler MessageHandler) string {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	id := uuid.NewString()
	q.handlers = append(q.handlers, handlerEntry{id: id, handler: handler})
	return id
}

// 注销消息处理器
func (q *MessageQueue) UnregisterHandler(id string) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	for i, h := range q.handlers {
		if h.id == id {
			q.handlers = append(q.handlers[:i:i], q.handlers[i+1:]...)
			return
		}
	}
}

// 发送消息到队列, 队列已满或已停止时丢弃并返回 false
func (q *MessageQueue) SendMessage(msg *model.StatusMessage) bool {
	q.mutex.RLock()
	defer q.mutex.RUnlock()
	if q.stopped {
		return false
	}

	select {
	case q.messages <- msg:
		common.Log.WithFields(logrus.Fields{
			"queue":  q.name,
			"state":  msg.State,
			"status": msg.Status,
		}).Debug("消息已发送到队列")
		return true
	default:
		common.Log.Warnf("队列 %s 已满，消息被丢弃: %s", q.name, msg.Status)
		return false
	}
}

// 启动消息处理, 处理器在同一个协程中按消息顺序调用
func (q *MessageQueue) Start() {
	q.mutex.Lock()
	if q.started {
		q.mutex.Unlock()
		return
	}
	q.started = true
	q.mutex.Unlock()

	go func() {
		defer close(q.done)
		for msg := range q.messages {
			q.mutex.RLock()
			handlers := make([]handlerEntry, len(q.handlers))
			copy(handlers, q.handlers)
			q.mutex.RUnlock()

			for _, h := range handlers {
				h.handler.HandleMessage(msg)
			}
		}
	}()

	common.Log.Infof("队列 %s 已启动", q.name)
}

// 停止消息处理, 等待已入队的消息分发完毕
func (q *MessageQueue) Stop() {
	q.mutex.Lock()
	if q.stopped {
		q.mutex.Unlock()
		return
	}
	q.stopped = true
	close(q.messages)
	started := q.started
	q.mutex.Unlock()

	if started {
		<-q.done
	}
	common.Log.Infof("队列 %s 已停止", q.name)
}

// 全局队列管理器
var (
	StatusQueue *MessageQueue
	once        sync.Once
)

// 初始化全局队列
func InitGlobalQueues() {
	once.Do(func() {
		StatusQueue = NewMessageQueue("mint_status_queue", 100)
		StatusQueue.Start()
		common.Log.Info("全局消息队列已初始化")
	})
}

// 获取铸造状态队列
func GetStatusQueue() *MessageQueue {
	if StatusQueue == nil {
		InitGlobalQueues()
	}
	return StatusQueue
}
