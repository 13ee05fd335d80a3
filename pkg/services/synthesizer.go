package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/streamsynth-io/streamsynth-engine/pkg/apperrors"
	"github.com/streamsynth-io/streamsynth-engine/pkg/llm"
	"github.com/streamsynth-io/streamsynth-engine/pkg/models"
)

const (
	sinkStreamPrefix    = "kafka_external_"
	connectorViewPrefix = "mv_"
	topicSuffix         = "_topic"
)

// ddlInstruction is the fixed system prompt for source-stream DDL
// generation. The model must answer with exactly one fenced code block
// containing only the DDL.
const ddlInstruction = `You are a Timeplus SQL expert. Given a description of a desired
data stream, write the DDL for a random stream that produces matching
synthetic rows.

Rules:
- Use CREATE RANDOM STREAM with the exact stream name the user supplies.
- Choose column names and types that fit the description, and give every
  column a DEFAULT expression built from rand() or the rand_* helpers so
  the stream emits plausible values.
- Return exactly one fenced code block containing only the DDL. No
  explanation outside the block.`

// nameInstruction is the fixed system prompt for pipeline name synthesis.
const nameInstruction = "use no more than three words to summarize the input description, return snake case result such as word1_word2_word3 as result"

// Synthesizer turns a human question into a provisionable pipeline
// descriptor, and summarizes descriptions into candidate stream names.
// It performs no engine I/O.
type Synthesizer interface {
	// SynthesizeName summarizes description into a short snake_case name.
	// The trimmed model response is returned verbatim; callers must
	// tolerate malformed output.
	SynthesizeName(ctx context.Context, description string) (string, error)

	// Synthesize generates the source-stream DDL for name satisfying
	// question and derives the sink stream and connector view from it.
	Synthesize(ctx context.Context, name string, question string) (*models.PipelineDescriptor, error)
}

type synthesizer struct {
	client  llm.Client
	brokers string
	logger  *zap.Logger
}

// NewSynthesizer creates a Synthesizer that derives Kafka sink settings
// from the given broker list.
func NewSynthesizer(client llm.Client, brokers string, logger *zap.Logger) Synthesizer {
	return &synthesizer{
		client:  client,
		brokers: brokers,
		logger:  logger.Named("synthesizer"),
	}
}

// SynthesizeName implements Synthesizer.
func (s *synthesizer) SynthesizeName(ctx context.Context, description string) (string, error) {
	s.logger.Info("synthesizing pipeline name")

	response, err := s.client.Generate(ctx, nameInstruction, description)
	if err != nil {
		return "", fmt.Errorf("generate name: %w", err)
	}

	return strings.TrimSpace(response), nil
}

// Synthesize implements Synthesizer.
func (s *synthesizer) Synthesize(ctx context.Context, name string, question string) (*models.PipelineDescriptor, error) {
	s.logger.Info("synthesizing pipeline",
		zap.String("name", name),
		zap.String("model", s.client.GetModel()))

	prompt := fmt.Sprintf("%s, ONLY return the random stream DDL, and the stream name is %s", question, name)

	response, err := s.client.Generate(ctx, ddlInstruction, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate DDL: %w", err)
	}

	blocks := llm.ExtractCodeBlocks(response)
	if len(blocks) == 0 {
		s.logger.Error("model response contained no code blocks",
			zap.Int("response_len", len(response)))
		return nil, fmt.Errorf("synthesize %s: %w", name, apperrors.ErrEmptyGeneration)
	}

	// Only the first block is used; additional blocks are ignored.
	ddl := blocks[0].Content
	if ddl == "" {
		return nil, fmt.Errorf("synthesize %s: %w", name, apperrors.ErrMalformedGeneration)
	}

	descriptor := &models.PipelineDescriptor{
		SourceStream: models.StreamObject{
			Name: name,
			DDL:  ddl,
		},
		SinkStream: s.deriveSinkStream(name),
		Question:   question,
	}
	descriptor.ConnectorView = deriveConnectorView(name, descriptor.SinkStream.Name)

	s.logger.Info("pipeline synthesized",
		zap.String("source", descriptor.SourceStream.Name),
		zap.String("sink", descriptor.SinkStream.Name),
		zap.String("view", descriptor.ConnectorView.Name))

	return descriptor, nil
}

// deriveSinkStream builds the Kafka external stream writing to the topic
// derived from the source stream name.
func (s *synthesizer) deriveSinkStream(sourceName string) models.StreamObject {
	sinkName := sinkStreamPrefix + sourceName
	ddl := fmt.Sprintf(`CREATE EXTERNAL STREAM %s (value string)
SETTINGS type = 'kafka', brokers = '%s', topic = '%s'`,
		sinkName, s.brokers, sourceName+topicSuffix)

	return models.StreamObject{Name: sinkName, DDL: ddl}
}

// deriveConnectorView builds the materialized view streaming a JSON
// encoding of every source column into the sink.
func deriveConnectorView(sourceName, sinkName string) models.StreamObject {
	viewName := connectorViewPrefix + sinkName
	ddl := fmt.Sprintf(`CREATE MATERIALIZED VIEW %s
    INTO %s
AS
    SELECT json_encode(*) AS value
    FROM %s`,
		viewName, sinkName, sourceName)

	return models.StreamObject{Name: viewName, DDL: ddl}
}

// Ensure synthesizer implements Synthesizer at compile time.
var _ Synthesizer = (*synthesizer)(nil)
