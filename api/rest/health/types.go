package health

const (
	ServiceName = "academy"
	Version     = "1.0.0"
)

type Response struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
	Store   string `json:"store,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}
