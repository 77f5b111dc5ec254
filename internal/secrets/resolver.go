// Package secrets resolves connection secrets outside the config file. The
// resolution order mirrors the pipeline's vault-first convention: OS keyring,
// then environment variable, then the config file value.
package secrets

import (
	"os"

	"github.com/zalando/go-keyring"

	"driftcap/pkg/errors"
)

const keyringService = "driftcap"

// Known secret names.
const (
	NameSQLPassword = "sql-password"
)

// envVars maps secret names to their environment fallbacks.
var envVars = map[string]string{
	NameSQLPassword: "DRIFTCAP_SQL_PASSWORD",
}

// Resolver resolves named secrets.
type Resolver struct {
	// lookupEnv and keyringGet are swappable for tests.
	lookupEnv  func(string) (string, bool)
	keyringGet func(service, name string) (string, error)
	keyringSet func(service, name, value string) error
	keyringDel func(service, name string) error
}

// NewResolver creates a resolver backed by the OS keyring and environment.
func NewResolver() *Resolver {
	return &Resolver{
		lookupEnv:  os.LookupEnv,
		keyringGet: keyring.Get,
		keyringSet: keyring.Set,
		keyringDel: keyring.Delete,
	}
}

// Resolve returns a secret's value. configValue is the value from the YAML
// config, used as the last resort; an empty result is an error.
func (r *Resolver) Resolve(name, configValue string) (string, error) {
	if value, err := r.keyringGet(keyringService, name); err == nil && value != "" {
		return value, nil
	}

	if envVar, ok := envVars[name]; ok {
		if value, ok := r.lookupEnv(envVar); ok && value != "" {
			return value, nil
		}
	}

	if configValue != "" {
		return configValue, nil
	}

	return "", errors.New(errors.ErrCodeSecretUnresolved, "secret not found: "+name).
		WithContext("secret", name).
		WithSuggestions(
			"Store it with 'driftcap setup'",
			"Set the "+envVars[name]+" environment variable",
		)
}

// Store writes a secret to the OS keyring.
func (r *Resolver) Store(name, value string) error {
	if err := r.keyringSet(keyringService, name, value); err != nil {
		return errors.Wrap(err, errors.ErrCodeSecretUnresolved, "failed to store secret in keyring").
			WithContext("secret", name).
			WithSuggestions("Keep the password in the config file instead, encrypted with 'driftcap encrypt-config'")
	}
	return nil
}

// Delete removes a secret from the OS keyring.
func (r *Resolver) Delete(name string) error {
	if err := r.keyringDel(keyringService, name); err != nil && err != keyring.ErrNotFound {
		return errors.Wrap(err, errors.ErrCodeSecretUnresolved, "failed to delete secret from keyring").
			WithContext("secret", name)
	}
	return nil
}
