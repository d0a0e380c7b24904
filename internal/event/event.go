package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Event types emitted by the BNG accounting pipeline.
const (
	TypeSessionStart  = "SESSION_START"
	TypeSessionStop   = "SESSION_STOP"
	TypeSessionUpdate = "SESSION_UPDATE"
	TypePolicyApply   = "POLICY_APPLY"
)

// Counter is an int64 that tolerates JSON string encoding. The OSS feed
// serializes octet and packet counters as strings when they exceed the
// safe-integer range.
type Counter int64

// UnmarshalJSON accepts either a JSON number or a numeric string.
func (c *Counter) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*c = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*c = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("counter value %q is not numeric: %w", s, err)
		}
		*c = Counter(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = Counter(n)
	return nil
}

// LifecycleEvent is one immutable accounting fact about a subscriber session.
// Records come from the OSS session_events feed and are never mutated here.
type LifecycleEvent struct {
	BNGID         string    `json:"bng_id"`
	BNGInstanceID string    `json:"bng_instance_id"`
	Seq           Counter   `json:"seq"`
	EventType     string    `json:"event_type"`
	TS            time.Time `json:"ts"`
	SessionID     string    `json:"session_id"`
	NASIP         string    `json:"nas_ip"`
	CircuitID     string    `json:"circuit_id"`
	RemoteID      string    `json:"remote_id"`
	MACAddress    string    `json:"mac_address"`
	IPAddress     string    `json:"ip_address"`
	Username      string    `json:"username"`
	InputOctets   Counter   `json:"input_octets"`
	OutputOctets  Counter   `json:"output_octets"`
	InputPackets  Counter   `json:"input_packets"`
	OutputPackets Counter   `json:"output_packets"`
	Status        string    `json:"status"`
	AuthState     string    `json:"auth_state"`
	TermCause     string    `json:"terminate_cause"`
}

// ServiceKey returns the identifier that partitions the event log into
// independent per-service timelines.
func (e LifecycleEvent) ServiceKey() string {
	if e.Username != "" {
		return e.Username
	}
	if e.CircuitID != "" {
		return e.CircuitID
	}
	return "unknown"
}
