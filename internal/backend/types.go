package backend

// Preset is one processing mode offered by the backend.
type Preset struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ProcessRequest is the job creation payload.
type ProcessRequest struct {
	Source       string `json:"source"`
	SkipDownload bool   `json:"skip_download"`
	PresetName   string `json:"preset_name"`
	CustomPrompt string `json:"custom_prompt"`
}

// ProcessResponse is the job creation reply. Only TaskID is required.
type ProcessResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status,omitempty"`
}

// StatusResult carries the payload of a finished job.
type StatusResult struct {
	Summary string `json:"summary"`
}

// StatusResponse is the job status reply.
type StatusResponse struct {
	Status string        `json:"status"`
	Result *StatusResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}
