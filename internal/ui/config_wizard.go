package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"driftcap/pkg/models"
)

// ConfigWizard provides an interactive configuration setup
type ConfigWizard struct {
	currentStep int
	totalSteps  int
}

// NewConfigWizard creates a new configuration wizard
func NewConfigWizard() *ConfigWizard {
	return &ConfigWizard{
		currentStep: 1,
		totalSteps:  5,
	}
}

// Run executes the configuration wizard
func (w *ConfigWizard) Run() (*models.Config, error) {
	ShowHeader("driftcap - Configuration Setup")

	config := &models.Config{}

	steps := []func(*models.Config) error{
		w.configureDatabaseStep,
		w.configureTablesStep,
		w.configureStorageStep,
		w.configureCaptureStep,
	}
	for _, step := range steps {
		if err := step(config); err != nil {
			if err == terminal.InterruptErr {
				return nil, fmt.Errorf("configuration cancelled")
			}
			return nil, err
		}
	}

	if err := w.reviewConfiguration(config); err != nil {
		return nil, err
	}

	return config, nil
}

func (w *ConfigWizard) configureDatabaseStep(config *models.Config) error {
	w.showProgress("SQL Server Connection")

	questions := []*survey.Question{
		{
			Name: "server",
			Prompt: &survey.Input{
				Message: "Server:",
				Help:    "SQL Server hostname (e.g., warehouse.internal)",
			},
			Validate: survey.Required,
		},
		{
			Name: "port",
			Prompt: &survey.Input{
				Message: "Port:",
				Default: "1433",
			},
		},
		{
			Name: "database",
			Prompt: &survey.Input{
				Message: "Database:",
				Help:    "Source database to monitor for changes",
			},
			Validate: survey.Required,
		},
		{
			Name: "schema",
			Prompt: &survey.Input{
				Message: "Schema:",
				Default: "dbo",
			},
		},
		{
			Name: "username",
			Prompt: &survey.Input{
				Message: "Username:",
			},
			Validate: survey.Required,
		},
		{
			Name: "password",
			Prompt: &survey.Password{
				Message: "Password:",
				Help:    "Stored encrypted; leave blank to use the OS keyring or DRIFTCAP_SQL_PASSWORD",
			},
		},
		{
			Name: "encrypt",
			Prompt: &survey.Confirm{
				Message: "Encrypt the connection?",
				Default: true,
			},
		},
	}

	answers := struct {
		Server   string
		Port     string
		Database string
		Schema   string
		Username string
		Password string
		Encrypt  bool
	}{}

	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	port, err := strconv.Atoi(answers.Port)
	if err != nil || port <= 0 {
		port = 1433
	}

	config.SQLServer = models.SQLServer{
		Server:   answers.Server,
		Port:     port,
		Database: answers.Database,
		Schema:   answers.Schema,
		Username: answers.Username,
		Password: answers.Password,
		Encrypt:  answers.Encrypt,
	}

	w.currentStep++
	return nil
}

func (w *ConfigWizard) configureTablesStep(config *models.Config) error {
	w.showProgress("Monitored Tables")

	for {
		answers := struct {
			Name       string
			PrimaryKey string
			Volatile   string
		}{}

		questions := []*survey.Question{
			{
				Name: "name",
				Prompt: &survey.Input{
					Message: "Table name:",
				},
				Validate: survey.Required,
			},
			{
				Name: "primaryKey",
				Prompt: &survey.Input{
					Message: "Primary key column:",
					Help:    "Column that uniquely identifies a row",
				},
				Validate: survey.Required,
			},
			{
				Name: "volatile",
				Prompt: &survey.Input{
					Message: "Volatile columns (comma separated):",
					Help:    "Columns excluded from change hashing, e.g. load timestamps",
				},
			},
		}

		if err := survey.Ask(questions, &answers); err != nil {
			return err
		}

		table := models.Table{
			Name:       strings.TrimSpace(answers.Name),
			PrimaryKey: strings.TrimSpace(answers.PrimaryKey),
		}
		for _, col := range strings.Split(answers.Volatile, ",") {
			if col = strings.TrimSpace(col); col != "" {
				table.VolatileColumns = append(table.VolatileColumns, col)
			}
		}
		config.Tables = append(config.Tables, table)

		more := false
		if err := survey.AskOne(&survey.Confirm{Message: "Add another table?", Default: false}, &more); err != nil {
			return err
		}
		if !more {
			break
		}
	}

	w.currentStep++
	return nil
}

func (w *ConfigWizard) configureStorageStep(config *models.Config) error {
	w.showProgress("Baseline Storage")

	backend := ""
	prompt := &survey.Select{
		Message: "Storage backend:",
		Options: []string{"local", "s3"},
		Default: "local",
		Help:    "Where baselines, change logs and run summaries are kept",
	}
	if err := survey.AskOne(prompt, &backend); err != nil {
		return err
	}
	config.Storage.Backend = backend

	if backend == "local" {
		dir := ""
		if err := survey.AskOne(&survey.Input{
			Message: "Directory:",
			Default: "cdc_data",
		}, &dir); err != nil {
			return err
		}
		config.Storage.Local.Dir = dir
		w.currentStep++
		return nil
	}

	answers := struct {
		Bucket   string
		Prefix   string
		Region   string
		Endpoint string
	}{}
	questions := []*survey.Question{
		{
			Name:     "bucket",
			Prompt:   &survey.Input{Message: "Bucket:"},
			Validate: survey.Required,
		},
		{
			Name:   "prefix",
			Prompt: &survey.Input{Message: "Key prefix:", Default: "cdc"},
		},
		{
			Name:   "region",
			Prompt: &survey.Input{Message: "Region:", Default: "eu-west-2"},
		},
		{
			Name:   "endpoint",
			Prompt: &survey.Input{Message: "Custom endpoint (optional):", Help: "For MinIO or other S3-compatible stores"},
		},
	}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	config.Storage.S3 = models.S3Storage{
		Bucket:    answers.Bucket,
		Prefix:    answers.Prefix,
		Region:    answers.Region,
		Endpoint:  answers.Endpoint,
		PathStyle: answers.Endpoint != "",
	}

	w.currentStep++
	return nil
}

func (w *ConfigWizard) configureCaptureStep(config *models.Config) error {
	w.showProgress("Capture Settings")

	answers := struct {
		Workers string
		Retries string
		Publish bool
	}{}

	questions := []*survey.Question{
		{
			Name: "workers",
			Prompt: &survey.Input{
				Message: "Concurrent tables:",
				Default: "1",
				Help:    "How many tables to snapshot in parallel",
			},
		},
		{
			Name: "retries",
			Prompt: &survey.Input{
				Message: "Snapshot retries:",
				Default: "3",
			},
		},
		{
			Name: "publish",
			Prompt: &survey.Confirm{
				Message: "Publish change events to Kafka?",
				Default: false,
			},
		},
	}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	if n, err := strconv.Atoi(answers.Workers); err == nil && n > 0 {
		config.Capture.Workers = n
	}
	if n, err := strconv.Atoi(answers.Retries); err == nil && n >= 0 {
		config.Capture.MaxRetries = n
	}

	if answers.Publish {
		kafka := struct {
			Brokers string
			Topic   string
		}{}
		kafkaQuestions := []*survey.Question{
			{
				Name:     "brokers",
				Prompt:   &survey.Input{Message: "Brokers (comma separated):", Default: "localhost:9092"},
				Validate: survey.Required,
			},
			{
				Name:     "topic",
				Prompt:   &survey.Input{Message: "Topic:", Default: "cdc-changes"},
				Validate: survey.Required,
			},
		}
		if err := survey.Ask(kafkaQuestions, &kafka); err != nil {
			return err
		}
		config.Publisher.Enabled = true
		config.Publisher.Topic = kafka.Topic
		for _, b := range strings.Split(kafka.Brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				config.Publisher.Brokers = append(config.Publisher.Brokers, b)
			}
		}
	}

	w.currentStep++
	return nil
}

func (w *ConfigWizard) reviewConfiguration(config *models.Config) error {
	w.showProgress("Review Configuration")

	printConfigSummary(config)

	confirm := false
	prompt := &survey.Confirm{
		Message: "Save this configuration?",
		Default: true,
	}

	if err := survey.AskOne(prompt, &confirm); err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("configuration cancelled")
	}

	return nil
}

func printConfigSummary(config *models.Config) {
	fmt.Println("\n" + ColorInfo("Configuration Summary:"))
	fmt.Println(strings.Repeat("─", 50))

	fmt.Println(ColorBold("\nSQL Server:"))
	fmt.Printf("  Server:    %s:%d\n", config.SQLServer.Server, config.SQLServer.Port)
	fmt.Printf("  Database:  %s.%s\n", config.SQLServer.Database, config.SQLServer.Schema)
	fmt.Printf("  Username:  %s\n", config.SQLServer.Username)

	fmt.Println(ColorBold("\nMonitored Tables:"))
	for _, t := range config.Tables {
		fmt.Printf("  %s (key: %s)\n", t.Name, t.PrimaryKey)
	}

	fmt.Println(ColorBold("\nStorage:"))
	if config.Storage.Backend == "s3" {
		fmt.Printf("  s3://%s/%s (%s)\n", config.Storage.S3.Bucket, config.Storage.S3.Prefix, config.Storage.S3.Region)
	} else {
		fmt.Printf("  local: %s\n", config.Storage.Local.Dir)
	}

	if config.Publisher.Enabled {
		fmt.Println(ColorBold("\nPublisher:"))
		fmt.Printf("  Kafka topic %s via %s\n", config.Publisher.Topic, strings.Join(config.Publisher.Brokers, ", "))
	}

	fmt.Println(strings.Repeat("─", 50))
}

func (w *ConfigWizard) showProgress(step string) {
	fmt.Printf("\n%s [Step %d/%d] %s\n\n",
		ColorProgress("►"),
		w.currentStep,
		w.totalSteps,
		ColorBold(step),
	)
}
