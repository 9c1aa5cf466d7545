package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds every setting the ingestion run needs. It is loaded once at
// startup and passed explicitly into the pipeline and the store; nothing reads
// project or table names from ambient globals.
type Config struct {
	// BigQuery destination for reconciled transactions.
	Project   string `mapstructure:"project"`
	Dataset   string `mapstructure:"dataset"`
	Table     string `mapstructure:"table"`
	RunsTable string `mapstructure:"runs_table"`

	// DataDir is scanned for raw exports; ManifestPath is where the scan
	// result lives and where the ingest run reads it from.
	DataDir      string `mapstructure:"data_dir"`
	ManifestPath string `mapstructure:"manifest_path"`

	// RulesPath points at the ordered keyword-to-category rules file.
	RulesPath string `mapstructure:"rules_path"`

	// CreditMarker flags a raw export filename as a credit-account export.
	CreditMarker string `mapstructure:"credit_marker"`

	// CreditExclusions are dropped from credit exports when any of them is a
	// substring of the raw description. Matching is case-sensitive.
	CreditExclusions []string `mapstructure:"credit_exclusions"`

	// Columns describes the positional layout of a raw export row.
	Columns []Column `mapstructure:"columns"`

	// DateLayout is the Go reference layout for the raw date column.
	DateLayout string `mapstructure:"date_layout"`

	// IDSeed seeds the per-run identifier sequence.
	IDSeed int64 `mapstructure:"id_seed"`
}

// Column is one positional field of a raw export row. Type is one of
// "date", "float", "string" or "skip".
type Column struct {
	Name string `mapstructure:"name"`
	Type string `mapstructure:"type"`
}

// Load reads configuration from the given file plus environment overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	v.SetDefault("dataset", "transactions")
	v.SetDefault("table", "f_unified_transactions")
	v.SetDefault("runs_table", "ingestion_runs")
	v.SetDefault("data_dir", "data")
	v.SetDefault("manifest_path", "data_paths.json")
	v.SetDefault("rules_path", "mappings.yaml")
	v.SetDefault("credit_marker", "cc")
	v.SetDefault("credit_exclusions", []string{
		"ONLINE PAYMENT THANK YOU",
		"AUTOMATIC PAYMENT - THANK YOU",
	})
	v.SetDefault("date_layout", "01/02/2006")
	v.SetDefault("id_seed", 42)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("Load: reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("Load: unmarshal config: %w", err)
	}

	if len(cfg.Columns) == 0 {
		cfg.Columns = DefaultColumns()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultColumns is the layout of the bank's export files: date, amount, two
// filler columns the bank emits but we never use, then the description.
func DefaultColumns() []Column {
	return []Column{
		{Name: "d_date", Type: "date"},
		{Name: "amount", Type: "float"},
		{Name: "drop_f", Type: "skip"},
		{Name: "drop_z", Type: "skip"},
		{Name: "raw_reason", Type: "string"},
	}
}

// Validate checks required fields and the column descriptor.
func (c *Config) Validate() error {
	if c.Project == "" {
		return fmt.Errorf("Validate: project is required")
	}
	if c.Dataset == "" {
		return fmt.Errorf("Validate: dataset is required")
	}
	if c.Table == "" {
		return fmt.Errorf("Validate: table is required")
	}

	var dates, floats, strs int
	for i, col := range c.Columns {
		switch col.Type {
		case "date":
			dates++
		case "float":
			floats++
		case "string":
			strs++
		case "skip":
		default:
			return fmt.Errorf("Validate: column %d (%s): unknown type %q", i, col.Name, col.Type)
		}
	}
	if dates != 1 || floats != 1 || strs != 1 {
		return fmt.Errorf("Validate: columns must contain exactly one date, one float and one string field, got %d/%d/%d", dates, floats, strs)
	}

	return nil
}
