package models

// Config is the root configuration loaded from ~/.driftcap/config.yaml
type Config struct {
	SQLServer SQLServer `yaml:"sqlserver"`
	Storage   Storage   `yaml:"storage"`
	Capture   Capture   `yaml:"capture"`
	Tables    []Table   `yaml:"tables"`
	Publisher Publisher `yaml:"publisher"`
	Generator Generator `yaml:"generator"`
	Grants    Grants    `yaml:"grants"`
}

// SQLServer holds source database connection settings. Password may be left
// empty and resolved through the OS keyring or DRIFTCAP_SQL_PASSWORD.
type SQLServer struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Schema   string `yaml:"schema"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Encrypt  bool   `yaml:"encrypt"`
	Timeout  string `yaml:"timeout"` // e.g. "5m"
}

// Storage selects where baselines, change logs and run summaries live.
type Storage struct {
	Backend string       `yaml:"backend"` // "local" or "s3"
	Local   LocalStorage `yaml:"local"`
	S3      S3Storage    `yaml:"s3"`
}

// LocalStorage keeps blobs under a directory on disk.
type LocalStorage struct {
	Dir string `yaml:"dir"`
}

// S3Storage keeps blobs in an S3 (or S3-compatible) bucket.
type S3Storage struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`   // optional, for MinIO and friends
	PathStyle bool   `yaml:"path_style"` // required by most S3 emulators
}

// Capture tunes the change-capture run.
type Capture struct {
	Workers    int `yaml:"workers"`     // concurrent tables, default 1
	MaxRetries int `yaml:"max_retries"` // snapshot read retries, default 3
}

// Table registers a monitored source table.
type Table struct {
	Name            string   `yaml:"name"`
	PrimaryKey      string   `yaml:"primary_key"`
	VolatileColumns []string `yaml:"volatile_columns"` // excluded from hashing
}

// Publisher configures optional Kafka change-event publishing.
type Publisher struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Generator configures the synthetic dataset generator.
type Generator struct {
	Seed          int64  `yaml:"seed"`
	OutputDir     string `yaml:"output_dir"`
	Patients      int    `yaml:"patients"`
	YearsOfData   int    `yaml:"years_of_data"`
	QualityIssues bool   `yaml:"quality_issues"`
	Pseudonymise  bool   `yaml:"pseudonymise"`
	Salt          string `yaml:"salt"`
}

// Grants configures the read-only analyst access provisioning.
type Grants struct {
	LoginName     string `yaml:"login_name"`
	UserName      string `yaml:"user_name"`
	RoleName      string `yaml:"role_name"`
	DefaultSchema string `yaml:"default_schema"`
}
