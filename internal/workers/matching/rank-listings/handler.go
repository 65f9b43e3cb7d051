// internal/workers/matching/rank-listings/handler.go
package ranklistings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "marketplace-workers/internal/common/errors"
	"marketplace-workers/internal/common/logger"
	"marketplace-workers/internal/common/metrics"
	"marketplace-workers/internal/matching"
	"marketplace-workers/internal/matching/sources"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "rank-listings"
)

// requestSchema is a shape check only. Semantic rules (weight signs,
// price range ordering, required commodity/quantity) belong to the
// engine's normalizer.
var requestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"criteria": map[string]interface{}{"type": "object"},
		"options": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"limit":         map[string]interface{}{"type": "integer", "minimum": 0},
				"maxCandidates": map[string]interface{}{"type": "integer", "minimum": 0},
			},
		},
		"commodityType": map[string]interface{}{"type": "string"},
		"productType":   map[string]interface{}{"type": "string"},
		"region":        map[string]interface{}{"type": "string"},
		"priceMin":      map[string]interface{}{"type": "number"},
		"priceMax":      map[string]interface{}{"type": "number"},
		"quantity":      map[string]interface{}{"type": "number"},
		"userId":        map[string]interface{}{"type": "string"},
	},
}

type Handler struct {
	config       *Config
	sources      []sources.Source
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, es *elasticsearch.Client, log logger.Logger) *Handler {
	listings := sources.NewListingSource(db, config.ListingStatus)
	srcs := []sources.Source{
		sources.NewCachedSource(listings, rdb, config.PoolCacheTTL),
		sources.NewSignalResponseSource(es, config.SignalResponseIndex, config.SignalResponseSize),
	}
	taskLogger := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		sources:      srcs,
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

	if err := validateRequest(job.Variables); err != nil {
		h.failJob(client, job, "CRITERIA_VALIDATION_FAILED", err.Error())
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	sourceResults := sources.FanOut(ctx, h.sources, h.config.SourceTimeout)

	opts := input.Options
	if opts.Limit <= 0 {
		opts.Limit = h.config.DefaultLimit
	}
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = h.config.MaxCandidates
	}

	result, err := matching.Rank(&input.RawRequest, sourceResults, opts, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	h.recordRunMeta(result.Meta)

	h.logger.Info("ranking complete", map[string]interface{}{
		"userId":   input.UserID,
		"results":  len(result.Results),
		"failures": len(result.Meta.Failures),
		"skipped":  result.Meta.Skipped,
	})

	return &Output{
		Results:      result.Results,
		Meta:         result.Meta,
		TotalMatches: len(result.Results),
	}, nil
}

func (h *Handler) recordRunMeta(meta matching.RunMeta) {
	for _, s := range meta.Successes {
		metrics.MatchCandidatesScored.WithLabelValues(s.Name).Add(float64(s.Count))
	}
	for _, f := range meta.Failures {
		metrics.SourceFetchFailures.WithLabelValues(f.Name).Inc()
		h.logger.Warn("candidate source failed", map[string]interface{}{
			"source": f.Name,
			"error":  f.Error,
		})
	}
	if meta.Skipped > 0 {
		metrics.MatchCandidatesSkipped.Add(float64(meta.Skipped))
	}
}

func validateRequest(raw string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(requestSchema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
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
