package model

import "time"

// APILog records a single outbound API call made on behalf of a user.
// Written asynchronously so external fetches never block on logging.
type APILog struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id,omitempty"`
	Endpoint       string    `json:"endpoint"`
	Method         string    `json:"method"`
	StatusCode     int       `json:"status_code"`
	ResponseTimeMS float64   `json:"response_time_ms"`
	CreatedOn      time.Time `json:"created_on"`
}

// EndpointUsage aggregates api_log rows per endpoint.
type EndpointUsage struct {
	Endpoint        string  `json:"endpoint"`
	RequestCount    int     `json:"request_count"`
	AvgResponseTime float64 `json:"avg_response_time"`
}
