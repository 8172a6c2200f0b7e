package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/susp3kt93/myfleet-sub000/internal/events"
)

// Filters narrows the events a client receives. Empty means everything the
// client is entitled to.
type Filters struct {
	Types []events.Type `json:"types,omitempty"`
}

func (f Filters) allows(t events.Type) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, want := range f.Types {
		if want == t {
			return true
		}
	}
	return false
}

// Client is one dashboard connection bound to a company.
type Client struct {
	ID        string
	CompanyID string
	UserID    string
	// AllEvents is set for admins; drivers only see events concerning them.
	AllEvents bool
	Conn      *websocket.Conn
	Filters   Filters
	Send      chan events.Event
	LastPing  time.Time
	IsActive  bool
}

func (c *Client) wants(e events.Event) bool {
	if e.CompanyID != c.CompanyID || !c.Filters.allows(e.Type) {
		return false
	}
	return c.AllEvents || e.Concerns(c.UserID)
}

type ClientStats struct {
	TotalClients    int `json:"totalClients"`
	ActiveClients   int `json:"activeClients"`
	InactiveClients int `json:"inactiveClients"`
}

// Message types for WebSocket communication
const (
	MessageTypeEvent         = "event"
	MessageTypeUpdateFilters = "update_filters"
	MessageTypeError         = "error"
)
