package chi

// ErrorCode is the machine-readable error kind of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeSessionNotFound    ErrorCode = "session_not_found"
	ErrorCodeSessionClosed      ErrorCode = "session_closed"
	ErrorCodeNoSelection        ErrorCode = "no_selection"
	ErrorCodeUnknownAction      ErrorCode = "unknown_action"
	ErrorCodeSearchBackendError ErrorCode = "search_backend_error"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ProcessedQuery mirrors domain.ProcessedQuery on the wire.
type ProcessedQuery struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	Final      string `json:"final"`
	Suggestion string `json:"suggestion,omitempty"`
	Expanded   string `json:"expanded"`
}

// NavEntry is a navigable menu entry.
type NavEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Path        string `json:"path"`
	Icon        string `json:"icon,omitempty"`
	ParentTitle string `json:"parent_title,omitempty"`
}

// NavSearchResponse is the body of GET /v1/nav.
type NavSearchResponse struct {
	Query ProcessedQuery `json:"query"`
	Role  string         `json:"role"`
	Items []NavEntry     `json:"items"`
}

// FilterRequest is the body of POST /v1/filter.
type FilterRequest struct {
	Query string   `json:"query"`
	Rows  []string `json:"rows"`
}

// FilterResponse is the body of a filter result.
type FilterResponse struct {
	Query ProcessedQuery `json:"query"`
	Rows  []string       `json:"rows"`
}

// RemoteItem is one server search hit.
type RemoteItem struct {
	ID       string `json:"id"`
	Domain   string `json:"domain"`
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	TitleHL  string `json:"titleHL,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
}

// DomainGroup is the bucket of hits for one domain.
type DomainGroup struct {
	Domain string       `json:"domain"`
	Items  []RemoteItem `json:"items"`
}

// PaletteItem is one selectable row of the palette.
type PaletteItem struct {
	Kind     string      `json:"kind"`
	Key      string      `json:"key"`
	Title    string      `json:"title"`
	Nav      *NavEntry   `json:"nav,omitempty"`
	Remote   *RemoteItem `json:"remote,omitempty"`
	Actions  []string    `json:"actions"`
	Favorite bool        `json:"favorite,omitempty"`
}

// Snapshot is the palette view state.
type Snapshot struct {
	ID          string         `json:"id"`
	Status      string         `json:"status"`
	Query       ProcessedQuery `json:"query"`
	RemoteState string         `json:"remote_state"`
	Local       []NavEntry     `json:"local"`
	Remote      []DomainGroup  `json:"remote"`
	Favorites   []NavEntry     `json:"favorites"`
	Recents     []NavEntry     `json:"recents"`
	Items       []PaletteItem  `json:"items"`
	Cursor      int            `json:"cursor"`
	Error       string         `json:"error,omitempty"`
	FocusInput  bool           `json:"focus_input"`
}

// Activation describes what the client should do after an action.
type Activation struct {
	Action   string      `json:"action"`
	Path     string      `json:"path,omitempty"`
	Favorite *bool       `json:"favorite,omitempty"`
	Item     PaletteItem `json:"item"`
}

// CreateSessionRequest is the body of POST /v1/palette/sessions.
type CreateSessionRequest struct {
	User string `json:"user"`
	Role string `json:"role"`
}

// QueryRequest is the body of POST /v1/palette/sessions/{id}/query.
type QueryRequest struct {
	Q string `json:"q"`
}

// KeyRequest is the body of POST /v1/palette/sessions/{id}/keys.
type KeyRequest struct {
	Key string `json:"key"`
}

// KeyResponse carries the snapshot and, for Enter, the activation.
type KeyResponse struct {
	Snapshot   Snapshot    `json:"snapshot"`
	Activation *Activation `json:"activation,omitempty"`
}
