package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/chrisdamba/bookrfm/internal/logging"
	"github.com/chrisdamba/bookrfm/internal/models"
)

// KafkaOutput publishes each record synchronously to <topic_prefix><topic>.
type KafkaOutput struct {
	producer    sarama.SyncProducer
	topicPrefix string
	runID       string
}

func newSaramaConfig(cfg models.KafkaConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // required by SyncProducer
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	if cfg.SessionTimeoutMs > 0 {
		saramaConfig.Consumer.Group.Session.Timeout = time.Duration(cfg.SessionTimeoutMs) * time.Millisecond
	}
	return saramaConfig
}

func NewKafkaOutput(cfg models.KafkaConfig, runID string) (*KafkaOutput, error) {
	brokerList := strings.Split(cfg.BrokerList, ",")
	producer, err := sarama.NewSyncProducer(brokerList, newSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}
	logging.Info("kafka producer created", zap.Strings("brokers", brokerList))
	return NewKafkaOutputWithProducer(producer, cfg.TopicPrefix, runID), nil
}

func NewKafkaOutputWithProducer(producer sarama.SyncProducer, topicPrefix, runID string) *KafkaOutput {
	return &KafkaOutput{producer: producer, topicPrefix: topicPrefix, runID: runID}
}

func (k *KafkaOutput) WriteMessage(topic string, msg []byte) error {
	return k.send(&sarama.ProducerMessage{
		Topic: k.topicPrefix + topic,
		Value: sarama.ByteEncoder(msg),
	})
}

func (k *KafkaOutput) WriteKeyedMessage(topic, key string, msg []byte) error {
	return k.send(&sarama.ProducerMessage{
		Topic: k.topicPrefix + topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(msg),
	})
}

func (k *KafkaOutput) send(msg *sarama.ProducerMessage) error {
	if k.producer == nil {
		return fmt.Errorf("kafka producer is closed")
	}
	msg.Headers = []sarama.RecordHeader{{Key: []byte("run_id"), Value: []byte(k.runID)}}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		logging.Warn("failed to send message", zap.String("topic", msg.Topic), zap.Error(err))
		return err
	}
	return nil
}

func (k *KafkaOutput) Close() error {
	if k.producer == nil {
		return nil
	}
	err := k.producer.Close()
	k.producer = nil
	return err
}
