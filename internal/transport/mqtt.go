package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/oshokin/alarm-clock/internal/logger"
)

const (
	// mqttConnectTimeout bounds the initial broker connection attempt.
	mqttConnectTimeout = 10 * time.Second
	// mqttPublishTimeout bounds a single response publish.
	mqttPublishTimeout = 5 * time.Second
	// mqttBufferCapacity is how many response frames survive a broker
	// outage before the oldest are dropped.
	mqttBufferCapacity = 32
	// mqttQoS is at-least-once for both directions.
	mqttQoS = 1
)

// MQTTLink carries command frames over an MQTT broker: commands arrive on
// one topic, responses go out on another. Responses published while the
// broker is unreachable are buffered and flushed on reconnect.
type MQTTLink struct {
	broker        string
	commandTopic  string
	responseTopic string

	client mqtt.Client
	buffer *frameRing
}

// NewMQTTLink creates a link against the given broker URL.
func NewMQTTLink(broker, commandTopic, responseTopic string) *MQTTLink {
	return &MQTTLink{
		broker:        broker,
		commandTopic:  commandTopic,
		responseTopic: responseTopic,
		buffer:        newFrameRing(mqttBufferCapacity),
	}
}

// Start implements Link.
func (l *MQTTLink) Start(ctx context.Context, handler Handler) error {
	opts := mqtt.NewClientOptions().
		AddBroker(l.broker).
		SetClientID("alarm-clock-" + strings.ReplaceAll(l.commandTopic, "/", "-")).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(true)

	opts.OnConnect = func(client mqtt.Client) {
		logger.InfoKV(ctx, "Connected to MQTT broker", "broker", l.broker)

		token := client.Subscribe(l.commandTopic, mqttQoS, func(_ mqtt.Client, msg mqtt.Message) {
			command := strings.TrimSpace(string(msg.Payload()))
			if command == "" {
				return
			}

			handler(command)
		})
		if !token.WaitTimeout(mqttConnectTimeout) || token.Error() != nil {
			logger.Errorf(ctx, "Failed to subscribe to %s: %v", l.commandTopic, token.Error())

			return
		}

		l.flushBuffered(ctx, client)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warnf(ctx, "MQTT connection lost: %v", err)
	}

	l.client = mqtt.NewClient(opts)

	token := l.client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return fmt.Errorf("connect to broker %s: timed out", l.broker)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to broker %s: %w", l.broker, err)
	}

	return nil
}

// Send implements Link.
func (l *MQTTLink) Send(frame string) error {
	frame = ClampFrame(frame)

	if l.client == nil || !l.client.IsConnectionOpen() {
		l.buffer.push(frame)

		return ErrNotConnected
	}

	token := l.client.Publish(l.responseTopic, mqttQoS, false, frame)
	if !token.WaitTimeout(mqttPublishTimeout) || token.Error() != nil {
		l.buffer.push(frame)

		return fmt.Errorf("publish frame: %w", token.Error())
	}

	return nil
}

// Close implements Link.
func (l *MQTTLink) Close() error {
	if l.client == nil {
		return nil
	}

	l.client.Disconnect(250)

	return nil
}

// flushBuffered replays frames queued during an outage, oldest first.
func (l *MQTTLink) flushBuffered(ctx context.Context, client mqtt.Client) {
	frames := l.buffer.drainAll()
	if len(frames) == 0 {
		return
	}

	logger.InfoKV(ctx, "Flushing buffered frames", "count", len(frames))

	for _, frame := range frames {
		token := client.Publish(l.responseTopic, mqttQoS, false, frame)
		if !token.WaitTimeout(mqttPublishTimeout) || token.Error() != nil {
			l.buffer.push(frame)

			logger.Warnf(ctx, "Failed to flush buffered frame: %v", token.Error())

			return
		}
	}
}
