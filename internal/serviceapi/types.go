package serviceapi

// NodeResponse is one queried node's liveness/response record for a cycle.
type NodeResponse struct {
	UID     int64 `json:"uid"`
	Success bool  `json:"success"`
}

// ValidateRequest carries the cycle's node responses for server-side scoring.
type ValidateRequest struct {
	UIDs      []int64        `json:"uids"`
	Responses []NodeResponse `json:"responses"`
}

// ValidateResult returns one raw reward value per UID. The two slices are
// parallel; the validator checks they mirror the request before trusting them.
type ValidateResult struct {
	UIDs   []int64   `json:"uids"`
	Values []float64 `json:"values"`
	Error  string    `json:"error,omitempty"`
}
