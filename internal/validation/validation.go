package validation

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/zfogg/cadence/internal/logger"
	"go.uber.org/zap"
)

// Check probes one backing service
type Check func(ctx context.Context) error

// KnownServices lists the services a deployment can mark as required
var KnownServices = []string{"database", "s3", "redis"}

// ServiceValidator handles validation of optional services
type ServiceValidator struct {
	requiredServices []string
	checks           map[string]Check
	timeout          time.Duration
}

// NewServiceValidator creates a validator that runs checks for the required services
func NewServiceValidator(required []string, checks map[string]Check) *ServiceValidator {
	return &ServiceValidator{
		requiredServices: required,
		checks:           checks,
		timeout:          10 * time.Second,
	}
}

// ValidateServices runs the check of every required service and fails on the first error
func (sv *ServiceValidator) ValidateServices(ctx context.Context) error {
	if len(sv.requiredServices) == 0 {
		logger.Log.Info("No required services configured for validation")
		return nil
	}

	logger.Log.Info("Validating required services", zap.Strings("services", sv.requiredServices))

	for _, serviceName := range sv.requiredServices {
		check, ok := sv.checks[serviceName]
		if !ok {
			logger.Log.Warn("Unknown service type in validation", zap.String("service", serviceName))
			continue
		}

		timeoutCtx, cancel := context.WithTimeout(ctx, sv.timeout)
		err := check(timeoutCtx)
		cancel()
		if err != nil {
			logger.Log.Error("Required service validation failed",
				zap.String("service", serviceName),
				zap.Error(err),
			)
			return fmt.Errorf("required service %q validation failed: %w", serviceName, err)
		}

		logger.Log.Info("Service validated successfully", zap.String("service", serviceName))
	}

	return nil
}

// RequiredFromEnv returns the services enabled by CADENCE_REQUIRE_<SERVICE>
func RequiredFromEnv() []string {
	var required []string
	for _, service := range KnownServices {
		envVar := fmt.Sprintf("CADENCE_REQUIRE_%s", strings.ToUpper(service))
		if isTruthy(os.Getenv(envVar)) {
			required = append(required, service)
		}
	}
	return required
}

// isTruthy checks if a string value represents a truthy value
func isTruthy(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}
