package transport

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/config"
	"github.com/yourorg/inventory-dashboard/internal/model"
)

// KafkaSource is an optional secondary event source that consumes UHF
// reader events from a Kafka topic and feeds them into the same frame
// handler path as the stream transport. Deployments without RFID
// readers leave it disabled.
type KafkaSource struct {
	reader  *kafka.Reader
	handler FrameHandler
	logger  *zap.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewKafkaSource builds a reader over the configured UHF topic
func NewKafkaSource(cfg config.KafkaConfig, handler FrameHandler, logger *zap.Logger) *KafkaSource {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})
	return &KafkaSource{
		reader:  reader,
		handler: handler,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start consumes messages until Close is called. Each message is
// wrapped into a uhf-low-stock frame; undecodable messages are dropped
// with a warning.
func (s *KafkaSource) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		defer close(s.done)
		for {
			msg, err := s.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Warn("kafka read failed", zap.Error(err))
				continue
			}

			var payload model.UHFLowStockPayload
			if err := json.Unmarshal(msg.Value, &payload); err != nil {
				s.logger.Warn("dropping undecodable reader event",
					zap.String("topic", msg.Topic),
					zap.Error(err))
				continue
			}

			s.handler(model.Frame{Event: model.EventUHFLowStock, Data: msg.Value})
		}
	}()
}

// Close stops consumption and releases the reader
func (s *KafkaSource) Close() error {
	if s.cancel == nil {
		return s.reader.Close()
	}
	s.cancel()
	err := s.reader.Close()
	<-s.done
	return err
}
