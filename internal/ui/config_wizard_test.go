package ui

import (
	"strings"
	"testing"

	"driftcap/pkg/models"
)

func TestNewConfigWizard(t *testing.T) {
	wizard := NewConfigWizard()

	if wizard.currentStep != 1 {
		t.Errorf("Expected currentStep to be 1, got %d", wizard.currentStep)
	}

	if wizard.totalSteps != 5 {
		t.Errorf("Expected totalSteps to be 5, got %d", wizard.totalSteps)
	}
}

func TestConfigWizard_showProgress(t *testing.T) {
	wizard := NewConfigWizard()

	output := captureStdout(t, func() {
		wizard.showProgress("Test Step")
	})
	if output == "" {
		t.Error("showProgress should print the step banner")
	}

	// showProgress itself must not advance the step counter
	wizard.currentStep = 3
	captureStdout(t, func() {
		wizard.showProgress("Another Step")
	})
	if wizard.currentStep != 3 {
		t.Errorf("Expected currentStep to remain 3, got %d", wizard.currentStep)
	}
}

func TestConfigWizard_reviewConfigurationOutput(t *testing.T) {
	// The survey confirm prompt cannot run without a terminal, but the
	// summary rendering that precedes it is worth checking in isolation.
	config := &models.Config{
		SQLServer: models.SQLServer{
			Server:   "warehouse.internal",
			Port:     1433,
			Database: "clinical_dw",
			Schema:   "dbo",
			Username: "cdc_service",
		},
		Tables: []models.Table{
			{Name: "patients", PrimaryKey: "patient_id"},
		},
		Storage: models.Storage{
			Backend: "local",
			Local:   models.LocalStorage{Dir: "cdc_data"},
		},
	}

	output := captureStdout(t, func() {
		printConfigSummary(config)
	})

	for _, want := range []string{"warehouse.internal:1433", "clinical_dw.dbo", "patients (key: patient_id)", "local: cdc_data"} {
		if !strings.Contains(output, want) {
			t.Errorf("Summary missing %q in output:\n%s", want, output)
		}
	}
}
