package server

import (
	"slices"

	"github.com/felixgeelhaar/mcp-todo/protocol"
)

// Info contains server metadata exposed to clients.
type Info struct {
	Name              string
	Version           string
	ProtocolVersion   string
	SupportedVersions []string
}

// DefaultInfo returns the identity the server advertises out of the box.
func DefaultInfo() Info {
	return Info{
		Name:              "mcp-todo-server",
		Version:           "1.0.0",
		ProtocolVersion:   protocol.MCPVersion,
		SupportedVersions: slices.Clone(protocol.SupportedVersions),
	}
}

// Supports reports whether a client may offer the given protocol version.
func (i Info) Supports(version string) bool {
	return version == i.ProtocolVersion || slices.Contains(i.SupportedVersions, version)
}

// Capabilities declares what features the server supports.
type Capabilities struct {
	Tools     *ToolsCapability     `json:"tools,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
	Logging   *LoggingCapability   `json:"logging,omitempty"`
}

// ToolsCapability describes tool support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// ResourcesCapability describes resource support.
type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}

// LoggingCapability is advertised as an empty object.
type LoggingCapability struct{}

// DefaultCapabilities returns the capabilities advertised by initialize.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		Tools:     &ToolsCapability{ListChanged: true},
		Resources: &ResourcesCapability{Subscribe: true, ListChanged: true},
		Logging:   &LoggingCapability{},
	}
}

// Implementation names the server in the initialize result.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult is the payload of a successful initialize.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    Capabilities   `json:"capabilities"`
	ServerInfo      Implementation `json:"serverInfo"`
}
