package logging

import (
	"os"
	"regexp"
	"sync"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// W3C traceparent: version-traceid-parentid-flags,
// e.g. 00-ab42124a3c573678d4d8b21ba52df3bf-d21f7bc17caa5aba-01
var traceparentRe = regexp.MustCompile(`^([0-9a-fA-F]{2})-([0-9a-fA-F]{32})-([0-9a-fA-F]{16})-([0-9a-fA-F]{2})$`)

// projectIDEnv lists where the GCP project id may come from, in priority order.
var projectIDEnv = []string{
	"FIREBASE_PROJECT_ID",
	"GOOGLE_CLOUD_PROJECT",
	"GCP_PROJECT",
	"GCLOUD_PROJECT",
	"PROJECT_ID",
}

var projectID = sync.OnceValue(resolveProjectID)

func resolveProjectID() string {
	for _, key := range projectIDEnv {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

type traceContext struct {
	traceID string
	spanID  string
	sampled bool
}

func parseTraceparent(header string) (traceContext, bool) {
	m := traceparentRe.FindStringSubmatch(header)
	if m == nil {
		return traceContext{}, false
	}
	return traceContext{traceID: m[2], spanID: m[3], sampled: m[4] == "01"}, true
}

// resource is the Cloud Logging trace resource name for tc.
func (tc traceContext) resource(project string) string {
	return "projects/" + project + "/traces/" + tc.traceID
}

// requestFields builds the Cloud Logging correlation fields for one request.
// Trace fields need both a valid traceparent and a project id.
func requestFields(header, project, requestID string) []zap.Field {
	var fields []zap.Field
	if tc, ok := parseTraceparent(header); ok && project != "" {
		fields = append(fields,
			zap.String("logging.googleapis.com/trace", tc.resource(project)),
			zap.String("logging.googleapis.com/spanId", tc.spanID),
			zap.Bool("logging.googleapis.com/trace_sampled", tc.sampled),
		)
	}
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
	}
	return fields
}

// correlationID prefers the trace resource and falls back to the request id.
func correlationID(header, project, requestID string) string {
	if tc, ok := parseTraceparent(header); ok && project != "" {
		return tc.resource(project)
	}
	return requestID
}
