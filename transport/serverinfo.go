package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/blang/semver"
)

// ServerInfo is the subset of GET /api/server/info this client inspects.
// The server reports more fields; they pass through in Extra.
type ServerInfo struct {
	Cores       string `json:"Cores"`
	DVIDVersion string `json:"DVID Version"`
	Host        string `json:"Host"`

	Extra map[string]interface{} `json:"-"`
}

// minServerVersion is the oldest server this client has been validated
// against.  Older servers lack the nd raw endpoints the voxel accessor uses.
var minServerVersion = semver.MustParse("0.8.0")

// GetServerInfo fetches and parses /api/server/info over the given connection.
func GetServerInfo(ctx context.Context, conn Connection) (*ServerInfo, error) {
	client := NewClient(conn, RetryPolicy{})
	resp, err := client.Do(ctx, &Request{Method: "GET", Path: "/api/server/info"})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read server info: %w", err)
	}
	var info ServerInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, fmt.Errorf("could not parse server info: %w", err)
	}
	if err := json.Unmarshal(b, &info.Extra); err != nil {
		return nil, fmt.Errorf("could not parse server info: %w", err)
	}
	return &info, nil
}

// Version parses the server's reported version.  Servers report strings like
// "0.9.12" or "0.9.12 (git describe suffix)"; only the leading token counts.
func (info *ServerInfo) Version() (semver.Version, error) {
	token := strings.Fields(info.DVIDVersion)
	if len(token) == 0 {
		return semver.Version{}, fmt.Errorf("server reported no version")
	}
	v, err := semver.ParseTolerant(token[0])
	if err != nil {
		return semver.Version{}, fmt.Errorf("could not parse server version %q: %w", info.DVIDVersion, err)
	}
	return v, nil
}

// CheckVersion returns an error if the server is older than the oldest
// version this client supports.
func (info *ServerInfo) CheckVersion() error {
	v, err := info.Version()
	if err != nil {
		return err
	}
	if v.LT(minServerVersion) {
		return fmt.Errorf("server version %s is older than minimum supported %s", v, minServerVersion)
	}
	return nil
}
