package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

var ErrProducerClosed = errors.New("kafka producer is closed")

// KafkaProducer hands events to a sarama AsyncProducer. Publishing only waits
// for the message to be queued; delivery failures are logged in the
// background.
type KafkaProducer struct {
	producer    sarama.AsyncProducer
	topicPrefix string
	logger      logrus.FieldLogger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewKafkaProducer(brokers []string, topicPrefix string, logger logrus.FieldLogger) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Errors = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewAsyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return NewKafkaProducerFrom(producer, topicPrefix, logger), nil
}

func NewKafkaProducerFrom(producer sarama.AsyncProducer, topicPrefix string, logger logrus.FieldLogger) *KafkaProducer {
	p := &KafkaProducer{
		producer:    producer,
		topicPrefix: topicPrefix,
		logger:      logger,
		done:        make(chan struct{}),
	}
	go p.drainErrors()
	return p
}

func (p *KafkaProducer) drainErrors() {
	defer close(p.done)
	for perr := range p.producer.Errors() {
		entry := p.logger.WithError(perr.Err)
		if perr.Msg != nil {
			entry = entry.WithField("topic", perr.Msg.Topic)
		}
		entry.Error("Failed to send message to Kafka")
	}
}

func (p *KafkaProducer) Topic(eventType string) string {
	if p.topicPrefix == "" {
		return eventType
	}
	return p.topicPrefix + "." + eventType
}

func (p *KafkaProducer) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event.EventTime = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := p.Topic(event.Type)
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(data),
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}

	select {
	case p.producer.Input() <- msg:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.logger.WithFields(logrus.Fields{
		"topic":    topic,
		"order_id": event.OrderID,
	}).Debug("Event queued for Kafka")

	return nil
}

// Close flushes queued messages and waits until their errors are logged.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.producer.AsyncClose()
	<-p.done
	return nil
}
