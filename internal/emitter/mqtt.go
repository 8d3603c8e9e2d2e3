// Package emitter pushes finalized-session alerts out to an MQTT broker so
// caretaker dashboards get them without polling the HTTP API.
package emitter

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/mirador-data/behavior.report/internal/monitoring"
	"github.com/mirador-data/behavior.report/internal/vision"
)

// alertQoS is at-least-once: a dropped alert is worse than a duplicate one.
const alertQoS byte = 1

// MQTTEmitter publishes behavior alerts to behavior/alerts/{person_id}.
// It satisfies the session manager's AlertSink. Publishing is best-effort;
// when the broker is away the alert is counted and dropped, never blocking
// a session finalize.
type MQTTEmitter struct {
	client mqtt.Client
	broker string

	mu        sync.RWMutex
	connected bool
	published uint64
	errors    uint64
}

// NewMQTTEmitter creates an emitter for the broker at host:port.
func NewMQTTEmitter(broker, clientID string) *MQTTEmitter {
	e := &MQTTEmitter{broker: broker}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", broker))
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(mqtt.Client) {
		e.mu.Lock()
		e.connected = true
		e.mu.Unlock()
		monitoring.Logf("[mqtt] connected to %s", broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		e.mu.Lock()
		e.connected = false
		e.mu.Unlock()
		monitoring.Logf("[mqtt] connection lost (%v), auto-reconnecting", err)
	}

	e.client = mqtt.NewClient(opts)
	return e
}

// Connect establishes the broker connection.
func (e *MQTTEmitter) Connect() error {
	token := e.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt connection timeout to %s", e.broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}
	e.mu.Lock()
	e.connected = true
	e.mu.Unlock()
	return nil
}

type alertMessage struct {
	PersonID  string    `json:"person_id"`
	SessionID string    `json:"session_id"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishAlert sends one alert to the person's alert topic.
func (e *MQTTEmitter) PublishAlert(personID, sessionID string, a vision.Alert) error {
	if !e.isConnected() {
		e.countError()
		return fmt.Errorf("mqtt not connected")
	}

	payload, err := json.Marshal(alertMessage{
		PersonID:  personID,
		SessionID: sessionID,
		Type:      string(a.Type),
		Severity:  string(a.Severity),
		Message:   a.Message,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		e.countError()
		return fmt.Errorf("marshal alert: %w", err)
	}

	topic := "behavior/alerts/" + personID
	token := e.client.Publish(topic, alertQoS, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		e.countError()
		return fmt.Errorf("publish timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		e.countError()
		return fmt.Errorf("publish failed: %w", err)
	}

	e.mu.Lock()
	e.published++
	e.mu.Unlock()
	return nil
}

// Disconnect closes the broker connection with a short grace period.
func (e *MQTTEmitter) Disconnect() {
	if e.client.IsConnected() {
		e.client.Disconnect(250)
	}
	e.mu.Lock()
	e.connected = false
	e.mu.Unlock()
}

// Stats reports the emitter counters.
func (e *MQTTEmitter) Stats() (published, errors uint64, connected bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.published, e.errors, e.connected
}

func (e *MQTTEmitter) isConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

func (e *MQTTEmitter) countError() {
	e.mu.Lock()
	e.errors++
	e.mu.Unlock()
}
