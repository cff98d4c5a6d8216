// Package workflow is the top-level state machine composing classifier,
// router, and tools into one run, with a guaranteed terminal reply and
// whole-run exception containment.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"chat-agent/internal/agent/classifier"
	apperrors "chat-agent/internal/common/errors"
	"chat-agent/internal/common/logger"
	"chat-agent/internal/common/metrics"
	"chat-agent/internal/common/observability"
	"chat-agent/internal/models"
)

type Classifier interface {
	Execute(ctx context.Context, input *classifier.Input) (*classifier.Output, error)
}

type Router interface {
	Execute(ctx context.Context, query string) models.Route
}

// Tool is the shared non-throwing contract of both tool adapters.
type Tool interface {
	Invoke(ctx context.Context, query string) string
}

// ReplySender delivers the terminal reply by email.
type ReplySender interface {
	SendReply(ctx context.Context, to, subject, body string) (string, error)
}

// Notifier raises an operator alert when a run hits the containment path.
type Notifier interface {
	PublishAlert(ctx context.Context, subject, message string) error
}

type Handler struct {
	config     *Config
	classifier Classifier
	router     Router
	sqlTool    Tool
	webTool    Tool
	sender     ReplySender
	notifier   Notifier
	obs        *observability.Observability
	logger     logger.Logger
}

// NewHandler wires a workflow. sender, notifier, and obs may be nil; the
// corresponding side effects are skipped.
func NewHandler(config *Config, cls Classifier, rtr Router, sqlTool, webTool Tool, sender ReplySender, notifier Notifier, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		classifier: cls,
		router:     rtr,
		sqlTool:    sqlTool,
		webTool:    webTool,
		sender:     sender,
		notifier:   notifier,
		obs:        obs,
		logger:     log,
	}
}

// Run drives one request through the state machine and always returns a
// state with a populated reply, never an error. Any failure that escapes the
// stage-local recovery layers is contained here and rendered as the summary.
func (h *Handler) Run(ctx context.Context, rawInput, replyTo string) *models.ConversationState {
	state := &models.ConversationState{
		RunID:    uuid.NewString(),
		RawInput: rawInput,
		ReplyTo:  replyTo,
		Route:    models.RouteUnset,
	}
	log := h.logger.WithFields(map[string]interface{}{"runId": state.RunID})

	start := time.Now()
	metrics.WorkflowRunsActive.Inc()
	defer metrics.WorkflowRunsActive.Dec()

	ctx, cancel := context.WithTimeout(ctx, h.config.StageTimeout)
	defer cancel()

	if err := h.advance(ctx, state, log); err != nil {
		h.contain(ctx, state, err, log)
	}
	h.finalize(ctx, state, log)

	metrics.WorkflowRunsCompleted.WithLabelValues(string(state.Route)).Inc()
	if h.obs != nil {
		h.obs.RecordRun(ctx, string(state.Route))
		h.obs.RecordRunDuration(ctx, time.Since(start), string(state.Route))
	}
	return state
}

// advance walks the forward transitions. The deferred recover turns a stage
// panic into a fatal error for the containment path instead of letting it
// unwind past the workflow.
func (h *Handler) advance(ctx context.Context, state *models.ConversationState, log logger.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewWorkflowFatalError(fmt.Errorf("panic: %v", r))
		}
	}()

	// parse_email
	stageStart := time.Now()
	out, err := h.classifier.Execute(ctx, &classifier.Input{RawInput: state.RawInput})
	metrics.StageDuration.WithLabelValues(StateParseEmail).Observe(time.Since(stageStart).Seconds())
	if err != nil {
		return err
	}
	state.ResolvedQuery = out.ResolvedQuery

	// select_tool
	stageStart = time.Now()
	state.Route = h.router.Execute(ctx, state.ResolvedQuery)
	metrics.StageDuration.WithLabelValues(StateSelectTool).Observe(time.Since(stageStart).Seconds())
	log.Info("route selected", map[string]interface{}{
		"route": string(state.Route),
		"query": state.ResolvedQuery,
	})

	// Exactly one tool stage per run; the terminal route carries whatever
	// summary is already present.
	switch state.Route {
	case models.RouteStructuredQuery:
		stageStart = time.Now()
		state.Summary = h.sqlTool.Invoke(ctx, state.ResolvedQuery)
		metrics.StageDuration.WithLabelValues(StateSQLAgent).Observe(time.Since(stageStart).Seconds())
	case models.RouteWebAnalysis:
		stageStart = time.Now()
		state.Summary = h.webTool.Invoke(ctx, state.ResolvedQuery)
		metrics.StageDuration.WithLabelValues(StateWebAnalysis).Observe(time.Since(stageStart).Seconds())
	}
	return nil
}

// contain is the last line of defense: it renders the error as the summary,
// forces the terminal route, and keeps resolved_query as far as it got.
func (h *Handler) contain(ctx context.Context, state *models.ConversationState, err error, log logger.Logger) {
	code := apperrors.Code(err)
	log.Error("run contained at workflow boundary", map[string]interface{}{
		"errorCode": string(code),
		"error":     err.Error(),
	})
	metrics.WorkflowRunsFailed.WithLabelValues(StateTerminal, string(code)).Inc()

	state.Summary = apperrors.UserMessage(err)
	state.Route = models.RouteTerminal

	if h.notifier != nil {
		if alertErr := h.notifier.PublishAlert(ctx, "chat-agent workflow failure", alertMessage(state.RunID, string(code), err.Error())); alertErr != nil {
			log.Warn("operator alert failed", map[string]interface{}{
				"error": alertErr.Error(),
			})
		}
	}
}

// finalize is the terminal state: format the reply and optionally deliver it.
// Delivery failures are logged, never propagated.
func (h *Handler) finalize(ctx context.Context, state *models.ConversationState, log logger.Logger) {
	state.ReplyBody = formatReply(state.Summary, h.config.ReplySignature)

	if h.config.ReplyEnabled && h.sender != nil && state.ReplyTo != "" {
		messageID, err := h.sender.SendReply(ctx, state.ReplyTo, replySubject, state.ReplyBody)
		if err != nil {
			sendErr := apperrors.NewNotificationSendFailedError("ses", err)
			log.Warn("reply delivery failed", map[string]interface{}{
				"errorCode": string(apperrors.Code(sendErr)),
				"error":     sendErr.Error(),
			})
			return
		}
		log.Info("reply delivered", map[string]interface{}{
			"messageId": messageID,
			"to":        state.ReplyTo,
		})
	}
}
