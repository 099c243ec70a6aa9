package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Surveillance
	FieldCameraID = "camera_id"
	FieldViewerID = "viewer_id"
	FieldSegment  = "segment"
	FieldSession  = "session_state"

	// Service
	FieldService = "service"
)
