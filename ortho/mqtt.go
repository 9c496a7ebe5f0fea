package ortho

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Job is one orthogonalization request received over MQTT. Tuning and
// Strategy are optional per-job overrides of the service configuration.
type Job struct {
	ID       string        `json:"id"`
	Points   Polyline      `json:"points"`
	Closed   bool          `json:"closed"`
	Strategy string        `json:"strategy,omitempty"`
	Tuning   *TuningConfig `json:"tuning,omitempty"`
}

// JobResult is the reply published for every received job. Jobs the
// pipeline cannot process report Processed=false with a reason and echo the
// original points back, so no outline is ever silently dropped.
type JobResult struct {
	ID        string   `json:"id"`
	Points    Polyline `json:"points"`
	Closed    bool     `json:"closed"`
	Processed bool     `json:"processed"`
	Reason    string   `json:"reason,omitempty"`
	Strategy  Strategy `json:"strategy"`
	Timestamp int64    `json:"timestamp"`
}

// ResultHandler is called after each processed job, with the result that was
// (or would have been) published
type ResultHandler func(result *JobResult)

// Service subscribes to a job topic, runs the pipeline on every received
// outline, and publishes the results.
type Service struct {
	client        mqtt.Client
	config        *Config
	topicPrefix   string
	resultHandler ResultHandler
	isConnected   bool
	mu            sync.RWMutex
}

// NewService initializes the MQTT service with the provided configuration.
// If neither the MQTT_BROKER env var nor config.MQTT.Broker is set, MQTT is
// disabled and this returns nil.
func NewService(config *Config, handler ResultHandler) (*Service, error) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" && config != nil && config.MQTT.Broker != "" {
		broker = config.MQTT.Broker
	}

	if broker == "" {
		log.Println("MQTT disabled: MQTT_BROKER not set")
		return nil, nil
	}

	if config == nil {
		return nil, fmt.Errorf("MQTT enabled but no configuration provided")
	}
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("MQTT service config: %w", err)
	}

	svc := &Service{
		config:        config,
		topicPrefix:   config.MQTT.TopicPrefixOrDefault(),
		resultHandler: handler,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)

	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" && config.MQTT.ClientID != "" {
		clientID = config.MQTT.ClientID
	}
	if clientID == "" {
		clientID = "orthotrace"
	}
	opts.SetClientID(clientID)

	username := os.Getenv("MQTT_USERNAME")
	if username == "" && config.MQTT.Username != "" {
		username = config.MQTT.Username
	}
	if username != "" {
		opts.SetUsername(username)
		password := os.Getenv("MQTT_PASSWORD")
		if password == "" && config.MQTT.Password != "" {
			password = config.MQTT.Password
		}
		opts.SetPassword(password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(false) // preserve the job subscription across reconnects
	opts.SetOrderMatters(false) // jobs are independent, allow concurrent processing

	opts.SetOnConnectHandler(svc.onConnect)
	opts.SetConnectionLostHandler(svc.onConnectionLost)
	opts.SetReconnectingHandler(svc.onReconnecting)

	svc.client = mqtt.NewClient(opts)

	go svc.connectWithRetry()

	return svc, nil
}

// newServiceWithClient creates a Service with a provided mqtt.Client.
// This is used for testing with mock clients.
func newServiceWithClient(client mqtt.Client, config *Config, handler ResultHandler) *Service {
	return &Service{
		client:        client,
		config:        config,
		topicPrefix:   config.MQTT.TopicPrefixOrDefault(),
		resultHandler: handler,
	}
}

// JobTopic returns the topic the service consumes jobs from
func (s *Service) JobTopic() string {
	return fmt.Sprintf("%s/jobs", s.topicPrefix)
}

// connectWithRetry attempts to connect to the MQTT broker with exponential backoff
func (s *Service) connectWithRetry() {
	retryDelay := 1 * time.Second
	maxRetryDelay := 60 * time.Second

	for {
		log.Println("Connecting to MQTT broker...")

		token := s.client.Connect()
		if token.WaitTimeout(10 * time.Second) {
			if token.Error() == nil {
				log.Println("Successfully connected to MQTT broker")
				s.setConnected(true)
				return
			}
			log.Printf("MQTT connection failed: %v", token.Error())
		} else {
			log.Println("MQTT connection timeout")
		}

		log.Printf("Retrying MQTT connection in %v...", retryDelay)
		time.Sleep(retryDelay)
		retryDelay *= 2
		if retryDelay > maxRetryDelay {
			retryDelay = maxRetryDelay
		}
	}
}

// onConnect is called when the MQTT connection is established
func (s *Service) onConnect(client mqtt.Client) {
	s.setConnected(true)

	topic := s.JobTopic()
	log.Printf("MQTT connected, subscribing to %s", topic)

	token := client.Subscribe(topic, 1, s.handleJobMessage)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		log.Printf("Error subscribing to %s: %v", topic, token.Error())
	} else {
		log.Printf("Successfully subscribed to %s", topic)
	}
}

// onConnectionLost is called when the MQTT connection is lost.
// Auto-reconnect is enabled, so this is typically a transient event.
func (s *Service) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("MQTT connection interrupted (%v), auto-reconnect will retry", err)
	s.setConnected(false)
}

// onReconnecting is called when the client attempts to reconnect
func (s *Service) onReconnecting(client mqtt.Client, opts *mqtt.ClientOptions) {
	log.Println("MQTT reconnecting...")
}

// handleJobMessage decodes a job payload, processes it, and publishes the result
func (s *Service) handleJobMessage(client mqtt.Client, msg mqtt.Message) {
	payload := msg.Payload()
	log.Printf("Received job (topic: %s, size: %d bytes)", msg.Topic(), len(payload))

	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		log.Printf("Error decoding job payload: %v", err)
		return
	}

	result := s.ProcessJob(&job)
	s.publishResult(result)

	if s.resultHandler != nil {
		s.resultHandler(result)
	}
}

// ProcessJob runs the pipeline for one job against the service configuration
func (s *Service) ProcessJob(job *Job) *JobResult {
	return RunJob(s.config, job)
}

// RunJob runs the pipeline for one job, applying per-job strategy and
// tuning overrides on top of the base configuration. A job carrying invalid
// overrides is reported as not processed rather than rejected with an
// error, matching the treatment of degenerate geometry.
func RunJob(config *Config, job *Job) *JobResult {
	result := &JobResult{
		ID:        job.ID,
		Points:    job.Points,
		Closed:    job.Closed,
		Timestamp: time.Now().Unix(),
	}

	strategyStr := job.Strategy
	if strategyStr == "" {
		strategyStr = config.Strategy
	}
	strategy, err := ParseStrategy(strategyStr)
	if err != nil {
		result.Reason = err.Error()
		return result
	}
	result.Strategy = strategy

	tuning := config.Tuning
	if job.Tuning != nil {
		tuning = *job.Tuning
	}
	opts := tuning.Options()
	if err := opts.Validate(); err != nil {
		result.Reason = err.Error()
		return result
	}

	res := RunPipeline(EngineFor(strategy), job.Points, job.Closed, opts)
	if !res.Processed() {
		result.Reason = fmt.Sprintf("degenerate after %s stage", res.Stage)
		return result
	}

	result.Points = res.Points
	result.Processed = true
	return result
}

// publishResult publishes a job result to the shared results topic and to a
// per-job topic
func (s *Service) publishResult(result *JobResult) {
	if s.client == nil || !s.client.IsConnected() {
		log.Printf("MQTT client not connected, dropping result for job %s", result.ID)
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		log.Printf("Error marshaling result for job %s: %v", result.ID, err)
		return
	}

	topics := []string{fmt.Sprintf("%s/results", s.topicPrefix)}
	if result.ID != "" {
		topics = append(topics, fmt.Sprintf("%s/results/%s", s.topicPrefix, result.ID))
	}

	for _, topic := range topics {
		token := s.client.Publish(topic, 1, false, payload)
		if token.WaitTimeout(2*time.Second) && token.Error() != nil {
			log.Printf("Error publishing result to %s: %v", topic, token.Error())
		}
	}

	log.Printf("Published result for job %s (processed=%v, %d points)",
		result.ID, result.Processed, len(result.Points))
}

// IsConnected returns true if the MQTT client is connected
func (s *Service) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// setConnected updates the connection status
func (s *Service) setConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isConnected = connected
}

// Disconnect gracefully closes the MQTT connection
func (s *Service) Disconnect() {
	if s.client != nil && s.client.IsConnected() {
		log.Println("Disconnecting from MQTT broker...")
		s.client.Disconnect(250)
		s.setConnected(false)
	}
}
