package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medicare/predictor"
)

// MessageType 消息类型
type MessageType string

const (
	TrainingCompleted MessageType = "training_completed"
	TrainingFailed    MessageType = "training_failed"
	PredictionServed  MessageType = "prediction"
	Heartbeat         MessageType = "heartbeat"
)

// Message 推送给客户端的消息
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
}

// TrainingEvent 训练结果
type TrainingEvent struct {
	Disease    string                      `json:"disease"`
	ModelName  string                      `json:"model_name,omitempty"`
	Accuracy   float64                     `json:"accuracy,omitempty"`
	Candidates []predictor.CandidateResult `json:"candidates,omitempty"`
	Error      string                      `json:"error,omitempty"`
}

// PredictionEvent 单次预测
type PredictionEvent struct {
	Disease    string  `json:"disease"`
	Prediction string  `json:"prediction"`
	Risk       int     `json:"risk"`
	ModelName  string  `json:"model_used"`
	Accuracy   float64 `json:"accuracy"`
	Cached     bool    `json:"cached"`
}

// HeartbeatEvent 心跳
type HeartbeatEvent struct {
	Status  string   `json:"status"`
	Clients int      `json:"clients"`
	Stats   Snapshot `json:"stats"`
}

// Monitor 把领域事件编码为消息并交给 Hub
type Monitor struct {
	hub    *Hub
	stats  *Stats
	logger *zap.Logger
	now    func() time.Time
}

func NewMonitor(hub *Hub, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{hub: hub, stats: NewStats(), logger: logger, now: time.Now}
}

func (m *Monitor) publish(kind MessageType, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	msg, err := json.Marshal(Message{
		Type:      kind,
		Timestamp: m.now().UTC(),
		ID:        uuid.NewString(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	m.hub.Broadcast(msg)
	return nil
}

func (m *Monitor) send(kind MessageType, payload any) {
	if err := m.publish(kind, payload); err != nil {
		m.logger.Warn("publish event failed", zap.String("type", string(kind)), zap.Error(err))
	}
}

// NotifyTraining 训练完成
func (m *Monitor) NotifyTraining(model *predictor.Model) {
	m.stats.RecordTraining(model.Disease.Key, true)
	m.send(TrainingCompleted, TrainingEvent{
		Disease:    model.Disease.Key,
		ModelName:  model.Name,
		Accuracy:   model.Accuracy,
		Candidates: model.Candidates,
	})
}

// NotifyTrainingFailed 训练失败
func (m *Monitor) NotifyTrainingFailed(disease string, err error) {
	m.stats.RecordTraining(disease, false)
	m.send(TrainingFailed, TrainingEvent{Disease: disease, Error: err.Error()})
}

// NotifyPrediction 实现 predictor.Notifier
func (m *Monitor) NotifyPrediction(disease string, p predictor.Prediction) {
	m.stats.RecordPrediction(disease, p.Cached)
	m.send(PredictionServed, PredictionEvent{
		Disease:    disease,
		Prediction: p.Text,
		Risk:       p.Label,
		ModelName:  p.ModelName,
		Accuracy:   p.Accuracy,
		Cached:     p.Cached,
	})
}

func (m *Monitor) Stats() Snapshot {
	return m.stats.Snapshot()
}

// RunHeartbeat 按 interval 发送心跳直到 ctx 结束
func (m *Monitor) RunHeartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.send(Heartbeat, HeartbeatEvent{
				Status:  "alive",
				Clients: m.hub.ClientCount(),
				Stats:   m.stats.Snapshot(),
			})
		}
	}
}
