// Package logging builds the application zap logger.
package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New returns a console logger in development and a JSON production logger
// otherwise.
func New(env string) (*zap.Logger, error) {
	if strings.EqualFold(strings.TrimSpace(env), "development") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
