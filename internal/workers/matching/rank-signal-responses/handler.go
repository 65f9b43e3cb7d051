// internal/workers/matching/rank-signal-responses/handler.go
package ranksignalresponses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "marketplace-workers/internal/common/errors"
	"marketplace-workers/internal/common/logger"
	"marketplace-workers/internal/common/metrics"
	"marketplace-workers/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "rank-signal-responses"

	// poolSourceName tags the inline response array in the run meta.
	poolSourceName = "signal-responses"
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	taskLogger := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       taskLogger,
		errorHandler: apperrors.NewErrorHandler(taskLogger),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	start := time.Now()
	output, err := h.execute(ctx, &input)
	metrics.MatchRunDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())

	if err != nil {
		var verr *matching.ValidationError
		if errors.As(err, &verr) {
			metrics.MatchRunsTotal.WithLabelValues(TaskType, "invalid").Inc()
			h.failJob(client, job, "CRITERIA_VALIDATION_FAILED", verr.Error())
			return
		}
		metrics.MatchRunsTotal.WithLabelValues(TaskType, "error").Inc()
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewRankingFailedError(err))
		return
	}

	metrics.MatchRunsTotal.WithLabelValues(TaskType, "success").Inc()
	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	sourceResults := []matching.SourceResult{
		{Name: poolSourceName, Candidates: input.Responses},
	}

	result, err := matching.Rank(&input.RawRequest, sourceResults, input.Options, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	for _, s := range result.Meta.Successes {
		metrics.MatchCandidatesScored.WithLabelValues(s.Name).Add(float64(s.Count))
	}
	if result.Meta.Skipped > 0 {
		metrics.MatchCandidatesSkipped.Add(float64(result.Meta.Skipped))
	}

	h.logger.Info("signal responses ranked", map[string]interface{}{
		"signalId":  input.SignalID,
		"responses": len(input.Responses),
		"results":   len(result.Results),
		"skipped":   result.Meta.Skipped,
	})

	return &Output{
		Results:      result.Results,
		Meta:         result.Meta,
		TotalMatches: len(result.Results),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
