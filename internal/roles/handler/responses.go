package handler

// statusResponse acknowledges an applied admin operation.
type statusResponse struct {
	Status  string `json:"status"`
	Address string `json:"address,omitempty"`
}
