package backend

import (
	"errors"
	"fmt"

	"dompet/internal/config"
)

// FromAppConfig picks the store-related settings out of the application
// config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		SheetsReferenceTTL:       appConfig.SheetsReferenceTTL,

		DataDirectory: appConfig.MemorySeedDir,
	}, nil
}

// Validate reports every missing setting for the selected store at once.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	var errs []error
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			errs = append(errs, errors.New("SQLite database path is required for sqlite backend"))
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, errors.New("Google Spreadsheet ID is required for sheets backend"))
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errs = append(errs, errors.New("either GoogleServiceAccountJSON or GoogleServiceAccountFile must be provided for sheets backend"))
		}
		if c.SheetsReferenceTTL < 0 {
			errs = append(errs, fmt.Errorf("sheets reference TTL %s must not be negative", c.SheetsReferenceTTL))
		}
	}
	return errors.Join(errs...)
}

// Types lists the selectable stores in DATA_BACKEND order of preference.
func Types() []BackendType {
	return []BackendType{SQLiteBackend, SheetsBackend, MemoryBackend}
}

// ClaimsExecutions reports whether the store guards recurring rules with a
// per-month claim. The spreadsheet relies on each rule's last-executed marker.
func (bt BackendType) ClaimsExecutions() bool {
	return bt == SQLiteBackend || bt == MemoryBackend
}
