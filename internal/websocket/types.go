package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeAssessmentCompleted is sent after a project has been assessed
	EventTypeAssessmentCompleted EventType = "assessment_completed"
	// EventTypeReportGenerated is sent after a compliance report has been built
	EventTypeReportGenerated EventType = "report_generated"
	// EventTypeSystemStatus represents a system status event
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
	// EventTypePong answers a client ping
	EventTypePong EventType = "pong"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
	ProjectID string      `json:"project_id,omitempty"`
}

// RegulationScore is the per-regulation outcome carried by assessment events
type RegulationScore struct {
	RegulationID string `json:"regulation_id"`
	Score        int    `json:"score"`
	Status       string `json:"status"`
	Gaps         int    `json:"gaps"`
}

// AssessmentCompletedEvent summarizes an assessment run
type AssessmentCompletedEvent struct {
	RequestID    string            `json:"request_id"`
	ProjectID    string            `json:"project_id,omitempty"`
	Results      []RegulationScore `json:"results"`
	TotalGaps    int               `json:"total_gaps"`
	CriticalGaps int               `json:"critical_gaps"`
	Cached       bool              `json:"cached"`
	ProcessingMS float64           `json:"processing_ms"`
}

// ReportGeneratedEvent summarizes a generated report
type ReportGeneratedEvent struct {
	ReportID     string `json:"report_id,omitempty"`
	ProjectID    string `json:"project_id"`
	OverallScore int    `json:"overall_score"`
	CriticalGaps int    `json:"critical_gaps"`
	Timeline     string `json:"timeline"`
	NoData       bool   `json:"no_data"`
	Persisted    bool   `json:"persisted"`
}

// SystemStatusEvent represents system status information
type SystemStatusEvent struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	TotalRequests    int64  `json:"total_requests"`
	TotalAssessments int64  `json:"total_assessments"`
	TotalReports     int64  `json:"total_reports"`
	Regulations      int    `json:"regulations"`
	ConnectedClients int    `json:"connected_clients"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action    string `json:"action"` // "connected", "disconnected"
	ClientID  string `json:"client_id"`
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type string               `json:"type"`
	Data *SubscriptionRequest `json:"data,omitempty"`
}

// SubscriptionRequest represents a client subscription request
type SubscriptionRequest struct {
	Events []EventType  `json:"events"`
	Filter *EventFilter `json:"filter,omitempty"`
}

// EventFilter narrows the events a client receives
type EventFilter struct {
	ProjectIDs []string `json:"project_ids,omitempty"`
}

// Client represents a WebSocket client connection
type Client struct {
	ID           string
	conn         *websocket.Conn
	send         chan Event
	subscription *SubscriptionRequest
	ConnectedAt  time.Time
	IP           string
	UserAgent    string
}

// HubStats tracks WebSocket hub statistics
type HubStats struct {
	TotalConnections   int64     `json:"total_connections"`
	ActiveConnections  int64     `json:"active_connections"`
	TotalMessages      int64     `json:"total_messages"`
	TotalBroadcasts    int64     `json:"total_broadcasts"`
	DroppedEvents      int64     `json:"dropped_events"`
	LastConnectionTime time.Time `json:"last_connection_time"`
	LastDisconnectTime time.Time `json:"last_disconnect_time"`
	LastBroadcastTime  time.Time `json:"last_broadcast_time"`
}
