package panel

import "encoding/json"

// Pterodactyl application-API envelopes: single objects arrive as
// {object, attributes}, lists as {object:"list", data:[{object, attributes}]}.
type objectEnvelope struct {
	Object     string          `json:"object"`
	Attributes json.RawMessage `json:"attributes"`
}

type listEnvelope struct {
	Object string           `json:"object"`
	Data   []objectEnvelope `json:"data"`
}

type userAttributes struct {
	ID         int    `json:"id"`
	ExternalID string `json:"external_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

type serverAttributes struct {
	ID          int    `json:"id"`
	ExternalID  string `json:"external_id"`
	Identifier  string `json:"identifier"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type eggAttributes struct {
	ID      int    `json:"id"`
	Startup string `json:"startup"`
}

// NewUser is the input to CreateUser. ExternalID is optional; users are not
// keyed by order (only servers are).
type NewUser struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Language   string `json:"language"`
	Password   string `json:"password"`
	ExternalID string `json:"external_id,omitempty"`
}

// ServerSpec is the input to CreateServer; the client fills in the egg,
// docker image, environment and deployment constants.
type ServerSpec struct {
	ExternalID  string
	Name        string
	Description string
	UserID      int
	Startup     string
	Memory      int
	Disk        int
	CPU         int
}

type serverLimits struct {
	Memory int `json:"memory"`
	Swap   int `json:"swap"`
	Disk   int `json:"disk"`
	IO     int `json:"io"`
	CPU    int `json:"cpu"`
}

type serverFeatureLimits struct {
	Databases   int `json:"databases"`
	Backups     int `json:"backups"`
	Allocations int `json:"allocations"`
}

type serverDeploy struct {
	Locations   []int    `json:"locations"`
	DedicatedIP bool     `json:"dedicated_ip"`
	PortRange   []string `json:"port_range"`
}

type createServerRequest struct {
	ExternalID    string              `json:"external_id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	User          int                 `json:"user"`
	Egg           int                 `json:"egg"`
	DockerImage   string              `json:"docker_image"`
	Startup       string              `json:"startup"`
	Environment   map[string]string   `json:"environment"`
	Limits        serverLimits        `json:"limits"`
	FeatureLimits serverFeatureLimits `json:"feature_limits"`
	Deploy        serverDeploy        `json:"deploy"`
}
