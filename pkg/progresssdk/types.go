package progresssdk

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks is only present on /readyz.
type HealthChecks struct {
	Store string `json:"store"`
	State string `json:"state"`
}

// Update is one reading-progress report. Page is optional and defaults to 0.
type Update struct {
	Manga   string `json:"manga"`
	Source  string `json:"source"`
	Chapter uint32 `json:"chapter"`
	Page    uint32 `json:"page,omitempty"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
