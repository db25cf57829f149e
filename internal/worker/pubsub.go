package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/ottplanner/ottplanner/internal/otp"
)

// Job types carried in trigger messages.
const (
	JobFareRefresh = "fare_refresh"
	JobHealthCheck = "health_check"
)

var (
	// ErrMalformedMessage is returned for a message body that is not a job.
	ErrMalformedMessage = errors.New("malformed job message")

	// ErrUnknownJob is returned for a job type the worker does not run.
	ErrUnknownJob = errors.New("unknown job type")
)

// healthCheckTimeout bounds the engine probe of a health check job.
const healthCheckTimeout = 10 * time.Second

// JobMessage is the body of a trigger message.
type JobMessage struct {
	JobType string `json:"job_type"`
}

// EngineProbe is a cheap engine call used by health checks. It is
// implemented by *otp.Client.
type EngineProbe interface {
	Routes(ctx context.Context) ([]otp.Fragment, error)
}

// DispatcherConfig holds configuration for a Dispatcher.
type DispatcherConfig struct {
	RefreshJob *RefreshJob
	Probe      EngineProbe
	Logger     zerolog.Logger

	// Collector counts handled jobs (optional).
	Collector *Collector
}

// Dispatcher runs the job a message asks for.
type Dispatcher struct {
	refreshJob *RefreshJob
	probe      EngineProbe
	logger     zerolog.Logger
	collector  *Collector
}

// NewDispatcher creates a new job dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		refreshJob: cfg.RefreshJob,
		probe:      cfg.Probe,
		logger:     cfg.Logger,
		collector:  cfg.Collector,
	}
}

// Handle decodes a message body and runs its job.
func (d *Dispatcher) Handle(ctx context.Context, data []byte) error {
	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		err = fmt.Errorf("%w: %w", ErrMalformedMessage, err)
		d.collector.observeJob("", err)
		return err
	}

	err := d.run(ctx, msg.JobType)
	d.collector.observeJob(msg.JobType, err)
	return err
}

func (d *Dispatcher) run(ctx context.Context, jobType string) error {
	switch jobType {
	case JobFareRefresh:
		return d.handleFareRefresh(ctx)
	case JobHealthCheck:
		return d.handleHealthCheck(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJob, jobType)
	}
}

func (d *Dispatcher) handleFareRefresh(ctx context.Context) error {
	if d.refreshJob == nil {
		return errors.New("no refresh job configured")
	}

	result := d.refreshJob.Run(ctx)
	if !result.FaresRefreshed && d.refreshJob.config.RefreshFares && d.refreshJob.fares != nil {
		return fmt.Errorf("fare refresh failed: %w", result.Err())
	}
	if result.Failed > result.Successful {
		return fmt.Errorf("too many refresh failures: %d of %d", result.Failed, result.Failed+result.Successful)
	}
	return nil
}

func (d *Dispatcher) handleHealthCheck(ctx context.Context) error {
	if d.probe == nil {
		return nil
	}

	d.logger.Debug().Msg("running health check")

	probeCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if _, err := d.probe.Routes(probeCtx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	d.logger.Debug().Msg("health check passed")
	return nil
}

// PubSubHandler feeds Pub/Sub trigger messages to a Dispatcher.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	dispatcher       *Dispatcher
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Dispatcher       *Dispatcher
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// One job at a time per instance.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 1
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		dispatcher:       cfg.Dispatcher,
		logger:           cfg.Logger,
	}, nil
}

// Start processes messages until ctx is done.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	err := h.dispatcher.Handle(ctx, msg.Data)
	if Ack(err) {
		msg.Ack()
	} else {
		msg.Nack()
	}

	switch {
	case errors.Is(err, ErrUnknownJob):
		logger.Warn().Err(err).Msg("ignoring message")
	case err != nil:
		logger.Error().Err(err).Msg("job failed")
	default:
		logger.Info().Dur("duration", time.Since(startTime)).Msg("job completed successfully")
	}
}

// Ack reports whether a message whose job ended with err should be acknowledged.
// Unknown jobs are acknowledged so they are not redelivered.
func Ack(err error) bool {
	return err == nil || errors.Is(err, ErrUnknownJob)
}
