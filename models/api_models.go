// models/api_models.go
package models

// SwitchRouteRequest is the expected JSON body for POST /api/routes/switch.
type SwitchRouteRequest struct {
	OutputNumber int    `json:"output_number"`
	InputNumber  int    `json:"input_number"`
	Source       string `json:"source"`               // one of the RouteSource values
	ChangedBy    string `json:"changed_by,omitempty"` // bartender name/badge, scheduler id, ...
}

// SwitchRouteResponse reports the outcome of a route switch. The override
// fields are only populated for manual sources.
type SwitchRouteResponse struct {
	Success  bool              `json:"success"`
	Override *OverrideDecision `json:"override,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// TuneNotification is the expected JSON body for POST /api/channels/tuned,
// sent by the tuning subsystem whenever a box changes channel.
type TuneNotification struct {
	InputNumber   int    `json:"input_number"`
	ChannelNumber string `json:"channel_number"`
	ChannelName   string `json:"channel_name,omitempty"`
	DeviceType    string `json:"device_type,omitempty"`
}
