package logging

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	projectIDOnce   sync.Once
	cachedProjectID string
)

// traceFields links log entries to the active span so Cloud Logging groups them
// under the request trace.
func traceFields(ctx context.Context, projectID string) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() || projectID == "" {
		return nil
	}
	return []zap.Field{
		zap.String("logging.googleapis.com/trace", traceResource(projectID, sc.TraceID().String())),
		zap.String("logging.googleapis.com/spanId", sc.SpanID().String()),
		zap.Bool("logging.googleapis.com/trace_sampled", sc.IsSampled()),
	}
}

func traceResource(projectID, traceID string) string {
	return fmt.Sprintf("projects/%s/traces/%s", projectID, traceID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func resolveProjectID() string {
	projectIDOnce.Do(func() {
		cachedProjectID = firstNonEmpty(
			os.Getenv("FIREBASE_PROJECT_ID"),
			os.Getenv("GOOGLE_CLOUD_PROJECT"),
			os.Getenv("GCP_PROJECT"),
			os.Getenv("PROJECT_ID"),
		)
	})
	return cachedProjectID
}
