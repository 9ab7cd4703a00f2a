package domain

// ChatRequest represents an incoming chat request
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse represents the outgoing chat response
type ChatResponse struct {
	Content string `json:"content"`
}

// LoadTestParams represents the query parameters of a load-test request.
// All three values are required and must be strictly positive; gin's
// query binding enforces that before a run is ever started.
type LoadTestParams struct {
	Users     int     `form:"users" binding:"required,gt=0"`
	SpawnRate float64 `form:"spawn_rate" binding:"required,gt=0"`
	TestTime  float64 `form:"test_time" binding:"required,gt=0"`
}

// ResponseTimeStats contains latency statistics for a load test run,
// in milliseconds.
type ResponseTimeStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	P95  float64 `json:"p95"`
	P99  float64 `json:"p99"`
}

// ErrorDetail describes one class of failed request and how often it occurred
type ErrorDetail struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// LoadTestSummary represents the aggregate result of one load test run.
// It is derived once from the run's recorded outcomes and never mutated
// afterward. ConcurrentUsers echoes the requested user count (the
// configured ceiling for the run), not an instantaneous measurement.
type LoadTestSummary struct {
	TestDuration       float64           `json:"test_duration"`
	TotalRequests      int64             `json:"total_requests"`
	SuccessfulRequests int64             `json:"successful_requests"`
	FailedRequests     int64             `json:"failed_requests"`
	RequestsPerSecond  float64           `json:"requests_per_second"`
	ConcurrentUsers    int               `json:"concurrent_users"`
	ResponseTime       ResponseTimeStats `json:"response_time"`
	Errors             []ErrorDetail     `json:"errors,omitempty"`
}
