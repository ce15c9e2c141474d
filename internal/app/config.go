package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	FlakeRef       string
	System         string
	AttributePath  string
	Offline        bool
	RuntimeOnly    bool
	IncludeNarInfo bool
	BinaryCaches   []string
	Workers        int

	// OutputPath receives the extracted documents; empty or "-" means
	// stdout. Pretty switches from NDJSON to indented JSON documents.
	OutputPath string
	Pretty     bool

	// OutputSchema prints the JSON Schema of the extraction document and
	// exits without extracting anything.
	OutputSchema bool

	// Progress mirrors traversal lifecycle events into the log.
	Progress bool

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.FlakeRef == "" {
		return nil, errors.New("FlakeRef is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
