package protocol

// MCP protocol version advertised by the server.
const MCPVersion = "2025-06-18"

// SupportedVersions lists the protocol versions a client may offer.
var SupportedVersions = []string{"2025-06-18", "2025-03-26"}

// MCP method names.
const (
	MethodInitialize    = "initialize"
	MethodInitialized   = "notifications/initialized"
	MethodToolsList     = "tools/list"
	MethodToolsCall     = "tools/call"
	MethodResourcesList = "resources/list"
	MethodResourcesRead = "resources/read"
)
