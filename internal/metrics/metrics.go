package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Shift clock metrics
	TicksTotal        int64
	lastTickDuration  time.Duration
	driversOnShift    int
	nightShifts       int
	shiftAlertsActive int

	// Shift event metrics
	ShiftEventsReceived int64
	ShiftEventErrors    int64

	// Revenue metrics
	WeekReportsBuiltTotal int64
	WeekCacheHitsTotal    int64
	WeekCacheMissesTotal  int64
	LedgerErrorsTotal     int64
	RevenueEntriesSaved   int64
	lastWeekBuildDuration time.Duration

	// WebSocket metrics
	WebSocketConnectionsTotal    int64
	WebSocketDisconnectionsTotal int64
	WebSocketMessagesTotal       int64
	activeConnections            int64

	// HTTP metrics
	httpRequestsTotal map[string]map[int]int64 // endpoint -> status -> count

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New creates a standalone metrics instance
func New() *Metrics {
	return &Metrics{
		httpRequestsTotal: make(map[string]map[int]int64),
		startTime:         time.Now(),
	}
}

// RecordTick records one shift clock recomputation
func (m *Metrics) RecordTick(duration time.Duration, drivers, nights, alerts int) {
	m.mu.Lock()
	m.TicksTotal++
	m.lastTickDuration = duration
	m.driversOnShift = drivers
	m.nightShifts = nights
	m.shiftAlertsActive = alerts
	m.mu.Unlock()
}

// RecordShiftEvent increments the received shift events counter
func (m *Metrics) RecordShiftEvent() {
	m.mu.Lock()
	m.ShiftEventsReceived++
	m.mu.Unlock()
}

// RecordShiftEventError increments the rejected shift events counter
func (m *Metrics) RecordShiftEventError() {
	m.mu.Lock()
	m.ShiftEventErrors++
	m.mu.Unlock()
}

// RecordWeekBuilt records a freshly built week report
func (m *Metrics) RecordWeekBuilt(duration time.Duration) {
	m.mu.Lock()
	m.WeekReportsBuiltTotal++
	m.lastWeekBuildDuration = duration
	m.mu.Unlock()
}

// RecordWeekCache records a week cache lookup
func (m *Metrics) RecordWeekCache(hit bool) {
	m.mu.Lock()
	if hit {
		m.WeekCacheHitsTotal++
	} else {
		m.WeekCacheMissesTotal++
	}
	m.mu.Unlock()
}

// RecordLedgerError increments the ledger error counter
func (m *Metrics) RecordLedgerError() {
	m.mu.Lock()
	m.LedgerErrorsTotal++
	m.mu.Unlock()
}

// RecordRevenueSaved increments the saved revenue entries counter
func (m *Metrics) RecordRevenueSaved() {
	m.mu.Lock()
	m.RevenueEntriesSaved++
	m.mu.Unlock()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.mu.Lock()
	m.WebSocketConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordWebSocketDisconnect increments disconnection counter
func (m *Metrics) RecordWebSocketDisconnect() {
	m.mu.Lock()
	m.WebSocketDisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// RecordWebSocketMessage increments message counter
func (m *Metrics) RecordWebSocketMessage() {
	m.mu.Lock()
	m.WebSocketMessagesTotal++
	m.mu.Unlock()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpRequestsTotal[endpoint] == nil {
		m.httpRequestsTotal[endpoint] = make(map[int]int64)
	}
	m.httpRequestsTotal[endpoint][statusCode]++
}

// GetActiveConnections returns current WebSocket connections
func (m *Metrics) GetActiveConnections() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeConnections
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		// Helper to write metric
		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("fleetpulse_uptime_seconds", time.Since(m.startTime).Seconds())

		// Shift clock metrics
		write("fleetpulse_ticks_total", m.TicksTotal)
		write("fleetpulse_tick_duration_seconds", m.lastTickDuration.Seconds())
		write("fleetpulse_drivers_on_shift", m.driversOnShift)
		write("fleetpulse_drivers_on_shift_by_type", m.nightShifts, "shift", "night")
		write("fleetpulse_drivers_on_shift_by_type", m.driversOnShift-m.nightShifts, "shift", "day")
		write("fleetpulse_shift_alerts_active", m.shiftAlertsActive)

		// Shift event metrics
		write("fleetpulse_shift_events_received_total", m.ShiftEventsReceived)
		write("fleetpulse_shift_event_errors_total", m.ShiftEventErrors)

		// Revenue metrics
		write("fleetpulse_week_reports_built_total", m.WeekReportsBuiltTotal)
		write("fleetpulse_week_build_duration_seconds", m.lastWeekBuildDuration.Seconds())
		write("fleetpulse_week_cache_hits_total", m.WeekCacheHitsTotal)
		write("fleetpulse_week_cache_misses_total", m.WeekCacheMissesTotal)
		write("fleetpulse_ledger_errors_total", m.LedgerErrorsTotal)
		write("fleetpulse_revenue_entries_saved_total", m.RevenueEntriesSaved)

		// WebSocket metrics
		write("fleetpulse_websocket_connections_total", m.WebSocketConnectionsTotal)
		write("fleetpulse_websocket_disconnections_total", m.WebSocketDisconnectionsTotal)
		write("fleetpulse_websocket_active_connections", m.activeConnections)
		write("fleetpulse_websocket_messages_total", m.WebSocketMessagesTotal)

		// HTTP metrics
		for endpoint, statusCodes := range m.httpRequestsTotal {
			for status, count := range statusCodes {
				write("fleetpulse_http_requests_total", count, "endpoint", endpoint, "status", strconv.Itoa(status))
			}
		}
	}
}
