// Package policy screens tool commands before they reach the host shell.
// File deletion stays restricted even for elevated sessions.
package policy

import (
	"strings"
	"sync"

	contractx "github.com/opsloop-ai/opsloop/agent/contract"
)

// RefusalText is returned to the model in place of output when a protected
// command is blocked.
const RefusalText = "This operation is restricted to protect system files."

// Requirement tags attached to a verdict. They are advisory; only Protected
// blocks execution.
const (
	RequirementElevation = "elevation_required"
	RequirementNetwork   = "network_required"
)

// protectedKeywords match destructive file operations. Matching is
// case-insensitive substring, same for every list below.
var protectedKeywords = []string{
	"rm ",
	"rm\t",
	"rmdir",
	"del ",
	"erase",
	"format",
	"mkfs",
	"remove-item",
	"remove-directory",
	"clear-content",
	"-rf",
	"shred",
	"truncate -s 0",
	"> /dev/sd",
}

var elevationKeywords = []string{
	"sudo",
	"su -",
	"systemctl",
	"iptables",
	"reg ",
	"sc ",
	"netsh",
	"net user",
	"net localgroup",
}

var networkKeywords = []string{
	"nmap",
	"curl",
	"wget",
	"ping ",
	"ssh ",
	"nc ",
	"netcat",
	"tcpdump",
}

// Session tracks elevation for one interactive conversation. Grant widens
// what requirement tags mean to the caller; it never unlocks protected
// operations.
type Session struct {
	mu       sync.Mutex
	elevated bool
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Grant() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elevated = true
}

func (s *Session) Revoke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elevated = false
}

func (s *Session) Elevated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elevated
}

// Guard is the command screen. The zero value is not usable; build with
// NewGuard.
type Guard struct {
	session *Session
}

func NewGuard(session *Session) *Guard {
	if session == nil {
		session = NewSession()
	}
	return &Guard{session: session}
}

func (g *Guard) Session() *Session { return g.session }

// Check classifies one command string. Protected means the command must not
// run; Requirements list what the command would need from the environment.
func (g *Guard) Check(command string) contractx.Verdict {
	lowered := strings.ToLower(strings.TrimSpace(command))
	if lowered == "" {
		return contractx.Verdict{}
	}

	verdict := contractx.Verdict{
		Protected: matchesAny(lowered, protectedKeywords),
	}

	if !g.session.Elevated() && matchesAny(lowered, elevationKeywords) {
		verdict.Requirements = append(verdict.Requirements, RequirementElevation)
	}
	if matchesAny(lowered, networkKeywords) {
		verdict.Requirements = append(verdict.Requirements, RequirementNetwork)
	}
	return verdict
}

func matchesAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
		// keyword written with a trailing separator also matches at end of line
		trimmed := strings.TrimRight(kw, " \t")
		if trimmed != kw && lowered == trimmed {
			return true
		}
	}
	return false
}
