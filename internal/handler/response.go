package handler

// Response is the envelope used by non-entity endpoints such as the
// health check. Data stays null unless an endpoint has a string payload
// to attach.
type Response struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Data    *string `json:"data"`
}
