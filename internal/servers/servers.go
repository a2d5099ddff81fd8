// Package servers manages MCP server definitions as opaque keyed JSON
// documents. agentsync never interprets a server config beyond the fields
// that carry identity (command/args/url) and the env block scanned for
// secrets.
package servers

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/agentsync/agentsync/internal/fingerprint"
	"github.com/agentsync/agentsync/internal/mapping"
)

// Server is one managed MCP server definition.
type Server struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Module    mapping.Module  `json:"module"`
	CreatedAt time.Time       `json:"createdAt"`
	Config    json.RawMessage `json:"config"`
}

// Entity projects the server into the duplicate-detection shape.
func (s Server) Entity() fingerprint.Entity {
	return fingerprint.Entity{
		ID:          s.ID,
		Name:        s.Name,
		Fingerprint: fingerprint.Server(s.Config),
		CreatedAt:   s.CreatedAt,
	}
}

// New builds a server entry with a fresh id and timestamp.
func New(name string, module mapping.Module, config json.RawMessage) Server {
	return Server{
		ID:        uuid.NewString(),
		Name:      name,
		Module:    module,
		CreatedAt: time.Now().UTC(),
		Config:    config,
	}
}

// Store persists the managed server list as servers.json.
type Store struct {
	Path string
}

// NewStore returns a store over the given file path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

type storeDoc struct {
	Version int      `json:"version"`
	Servers []Server `json:"servers"`
}

// Load reads all servers. A missing file is an empty list.
func (s *Store) Load() ([]Server, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading servers: %w", err)
	}
	var doc storeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing servers: %w", err)
	}
	return doc.Servers, nil
}

// Save writes the full server list.
func (s *Store) Save(list []Server) error {
	data, err := json.MarshalIndent(storeDoc{Version: 1, Servers: list}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling servers: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("creating sync dir: %w", err)
	}
	return os.WriteFile(s.Path, append(data, '\n'), 0644)
}

// Add appends servers to the store.
func (s *Store) Add(add ...Server) error {
	list, err := s.Load()
	if err != nil {
		return err
	}
	return s.Save(append(list, add...))
}

// Delete removes servers by id. Unknown ids are ignored.
func (s *Store) Delete(ids map[string]bool) error {
	list, err := s.Load()
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, srv := range list {
		if !ids[srv.ID] {
			kept = append(kept, srv)
		}
	}
	return s.Save(kept)
}

// ReadMCPConfigFile reads an .mcp.json file. The usual format wraps servers
// under a top-level "mcpServers" key; a direct map is accepted as fallback.
// A missing file is an empty map.
func ReadMCPConfigFile(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("reading MCP config: %w", err)
	}

	var wrapper struct {
		MCPServers map[string]json.RawMessage `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		var direct map[string]json.RawMessage
		if err2 := json.Unmarshal(data, &direct); err2 != nil {
			return nil, fmt.Errorf("parsing MCP config: %w", err)
		}
		return direct, nil
	}
	if wrapper.MCPServers == nil {
		return map[string]json.RawMessage{}, nil
	}
	return wrapper.MCPServers, nil
}

// MarshalMCPConfig renders server configs in the wrapped .mcp.json format.
func MarshalMCPConfig(mcp map[string]json.RawMessage) ([]byte, error) {
	wrapper := map[string]any{"mcpServers": mcp}
	data, err := json.MarshalIndent(wrapper, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling MCP config: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteMCPConfigFile writes server configs to the given path.
func WriteMCPConfigFile(path string, mcp map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for MCP config: %w", err)
	}
	data, err := MarshalMCPConfig(mcp)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigMap renders the servers of one module as a name-keyed config map.
func ConfigMap(list []Server, module mapping.Module) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage)
	for _, srv := range list {
		if srv.Module == module {
			out[srv.Name] = srv.Config
		}
	}
	return out
}
