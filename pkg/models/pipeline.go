package models

import "time"

// StreamObject is a single engine object: its name and the DDL that
// creates it.
type StreamObject struct {
	Name string `json:"name"`
	DDL  string `json:"ddl"`
}

// PipelineDescriptor is the unit of provisioning: a random source stream,
// a Kafka-backed external sink stream, and the materialized view connecting
// them. The JSON field names match the wire format metadata records are
// stored in.
type PipelineDescriptor struct {
	SourceStream  StreamObject `json:"random_stream"`
	SinkStream    StreamObject `json:"kafka_external_stream"`
	ConnectorView StreamObject `json:"write_to_kafka_mv"`
	Question      string       `json:"question"`
}

// PipelineRecord is the persisted unit. WriteCount is refreshed from the
// live engine on every get and never written back; WriteCountValid is false
// when the statistic query failed, so a zero count is distinguishable from
// an unavailable one.
type PipelineRecord struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Descriptor      PipelineDescriptor `json:"pipeline"`
	CreatedAt       time.Time          `json:"created_at"`
	WriteCount      uint64             `json:"write_count"`
	WriteCountValid bool               `json:"write_count_valid"`
}

// PipelineSummary is the listing projection of a record.
type PipelineSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"created_at"`
}
