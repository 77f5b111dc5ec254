// Package sqlserver provides read access to the source SQL Server database
// for snapshotting and administrative statement execution.
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"driftcap/internal/capture"
	"driftcap/pkg/errors"
	"driftcap/pkg/models"
)

// Service provides SQL Server database operations
type Service struct {
	db             *sql.DB
	config         Config
	connected      bool
	errorHandler   *errors.ErrorHandler
	circuitBreaker *errors.CircuitBreaker
}

// Config holds SQL Server connection configuration
type Config struct {
	Server   string
	Port     int
	Database string
	Schema   string
	Username string
	Password string
	Encrypt  bool
	Timeout  time.Duration
}

// ConfigFromModel converts the YAML config form.
func ConfigFromModel(m models.SQLServer) (Config, error) {
	timeout := 5 * time.Minute
	if m.Timeout != "" {
		parsed, err := time.ParseDuration(m.Timeout)
		if err != nil {
			return Config{}, errors.ConfigError("invalid timeout duration", "sqlserver.timeout")
		}
		timeout = parsed
	}

	cfg := Config{
		Server:   m.Server,
		Port:     m.Port,
		Database: m.Database,
		Schema:   m.Schema,
		Username: m.Username,
		Password: m.Password,
		Encrypt:  m.Encrypt,
		Timeout:  timeout,
	}
	if cfg.Port == 0 {
		cfg.Port = 1433
	}
	if cfg.Schema == "" {
		cfg.Schema = "dbo"
	}
	return cfg, nil
}

// NewService creates a new SQL Server service
func NewService(config Config) *Service {
	return &Service{
		config:         config,
		errorHandler:   errors.GetGlobalErrorHandler(),
		circuitBreaker: errors.NewCircuitBreaker("sqlserver", 5, 30*time.Second),
	}
}

// ValidateConfig checks that required connection settings are present
func ValidateConfig(config Config) error {
	if config.Server == "" {
		return fmt.Errorf("server is required")
	}
	if config.Database == "" {
		return fmt.Errorf("database is required")
	}
	if config.Username == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}

// Connect establishes a connection to SQL Server
func (s *Service) Connect() error {
	if s.connected {
		return nil
	}

	if err := ValidateConfig(s.config); err != nil {
		return errors.ConfigError(err.Error(), "sqlserver")
	}

	return s.circuitBreaker.Execute(context.Background(), func() error {
		return errors.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
			db, err := sql.Open("sqlserver", s.dsn())
			if err != nil {
				return errors.ConnectionError("Failed to open SQL Server connection", err).
					WithContext("server", s.config.Server).
					WithContext("database", s.config.Database)
			}

			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(10 * time.Minute)

			connCtx, cancel := s.getContext()
			defer cancel()

			if err := db.PingContext(connCtx); err != nil {
				db.Close()

				if strings.Contains(err.Error(), "Login failed") {
					return errors.New(errors.ErrCodeAuthenticationFailed, "Authentication failed").
						WithContext("user", s.config.Username).
						WithSuggestions(
							"Verify your username and password",
							"Check the login is enabled on the server",
						)
				}

				return errors.ConnectionError("Failed to connect to SQL Server", err).
					WithContext("server", s.config.Server).
					AsRecoverable()
			}

			s.db = db
			s.connected = true
			return nil
		})
	})
}

// Close closes the database connection
func (s *Service) Close() error {
	if !s.connected {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	s.connected = false
	return nil
}

// Snapshot reads all rows of a monitored table. Implements
// capture.Snapshotter.
func (s *Service) Snapshot(ctx context.Context, table models.Table) (*capture.Snapshot, error) {
	if !s.connected {
		return nil, errors.New(errors.ErrCodeConnectionFailed, "Not connected to database").
			WithSuggestions("Call Connect() before reading snapshots")
	}

	if err := ValidateIdentifier(table.Name); err != nil {
		return nil, err
	}
	if err := ValidateIdentifier(table.PrimaryKey); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT * FROM [%s].[%s]", s.config.Schema, table.Name)

	queryCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(queryCtx, query)
	if err != nil {
		return nil, errors.SQLError(
			fmt.Sprintf("Failed to snapshot table %s", table.Name), query, err,
		).WithContext("table", table.Name).AsRecoverable()
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.SQLError("Failed to read result columns", query, err)
	}

	snap := &capture.Snapshot{Table: table.Name, Columns: columns}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		scanTargets := make([]interface{}, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}

		if err := rows.Scan(scanTargets...); err != nil {
			return nil, errors.SQLError("Failed to scan row", query, err).
				WithContext("table", table.Name)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		snap.Rows = append(snap.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.SQLError("Snapshot read interrupted", query, err).
			WithContext("table", table.Name).AsRecoverable()
	}

	return snap, nil
}

// ExecStatements executes administrative statements in order inside a
// transaction, rolling back on the first failure.
func (s *Service) ExecStatements(ctx context.Context, statements []string) error {
	if !s.connected {
		return errors.New(errors.ErrCodeConnectionFailed, "Not connected to database").
			WithSuggestions("Call Connect() before executing SQL")
	}

	execCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(execCtx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to begin transaction")
	}

	txHandler := s.errorHandler.NewTransactionHandler(tx.Rollback)

	return txHandler.Execute(func() error {
		for _, stmt := range statements {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := tx.ExecContext(execCtx, stmt); err != nil {
				return errors.SQLError("Failed to execute statement", stmt, err)
			}
		}
		return tx.Commit()
	})
}

func (s *Service) getContext() (context.Context, context.CancelFunc) {
	return s.withTimeout(context.Background())
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *Service) dsn() string {
	u := url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(s.config.Username, s.config.Password),
		Host:   fmt.Sprintf("%s:%d", s.config.Server, s.config.Port),
	}

	q := url.Values{}
	q.Set("database", s.config.Database)
	q.Set("encrypt", fmt.Sprintf("%t", s.config.Encrypt))
	u.RawQuery = q.Encode()

	return u.String()
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier rejects names that cannot be safely interpolated into
// bracketed SQL identifiers.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return errors.ValidationError("identifier", name, "must contain only letters, digits and underscores")
	}
	return nil
}
