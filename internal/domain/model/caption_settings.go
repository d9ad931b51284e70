package model

import (
	"fmt"
	"strings"
)

// Role selects the persona prompt sent to the captioning backend.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type Role string

// Backend selects the model the captioning backend runs.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type Backend string

const (
	RoleArtist    Role = "artist"
	RoleCaption   Role = "caption"
	RoleComedian  Role = "comedian"
	RoleCritic    Role = "critic"
	RoleGeneral   Role = "general"
	RoleEcommerce Role = "ecommerce"
	RoleInspector Role = "inspector"
	RolePromoter  Role = "promoter"
	RolePrompt    Role = "prompt"
	RoleRealtor   Role = "realtor"
	RoleTweet     Role = "tweet"

	// DefaultRole is used when a shop has not chosen a persona.
	DefaultRole = RoleEcommerce
)

const (
	BackendLLaVA    Backend = "llava"
	BackendBakLLaVA Backend = "bakllava"
	BackendJinaAI   Backend = "jinaai"
	BackendGemini   Backend = "gemini"
	BackendClaude   Backend = "claude"
	BackendOpenAI   Backend = "openai"

	// DefaultBackend is used when a shop has not chosen a model.
	DefaultBackend = BackendGemini
)

// Roles lists every supported persona.
func Roles() []Role {
	return []Role{
		RoleArtist, RoleCaption, RoleComedian, RoleCritic, RoleGeneral, RoleEcommerce,
		RoleInspector, RolePromoter, RolePrompt, RoleRealtor, RoleTweet,
	}
}

// Backends lists every backend that can produce descriptions.
func Backends() []Backend {
	return []Backend{BackendLLaVA, BackendBakLLaVA, BackendJinaAI, BackendGemini, BackendClaude, BackendOpenAI}
}

// Valid returns true if the role is known.
func (r Role) Valid() bool {
	for _, v := range Roles() {
		if r == v {
			return true
		}
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	v := Role(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid role: %q", v)
	}
	*r = v
	return nil
}

// Valid returns true if the backend is known.
func (b Backend) Valid() bool {
	for _, v := range Backends() {
		if b == v {
			return true
		}
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Backend) UnmarshalText(text []byte) error {
	v := Backend(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid backend: %q", v)
	}
	*b = v
	return nil
}

// CaptionSettings are the per-shop captioning preferences plus the last
// credit balance reported by the backend.
type CaptionSettings struct {
	ShopID       string  `json:"shop_id"                 db:"shop_id"`
	Backend      Backend `json:"backend"                 db:"backend"`
	Role         Role    `json:"role"                    db:"role"`
	CustomPrompt *string `json:"custom_prompt,omitempty" db:"custom_prompt"`
	Credits      *int    `json:"credits,omitempty"       db:"credits"`
	// APIKey overrides the process-wide captioning key for this shop.
	APIKey *string `json:"-" db:"api_key"`
}

// EffectiveRole returns the configured role or DefaultRole.
func (s *CaptionSettings) EffectiveRole() Role {
	if s == nil || s.Role == "" {
		return DefaultRole
	}
	return s.Role
}

// EffectiveBackend returns the configured backend or DefaultBackend.
func (s *CaptionSettings) EffectiveBackend() Backend {
	if s == nil || s.Backend == "" {
		return DefaultBackend
	}
	return s.Backend
}

// EffectiveCustomPrompt returns the trimmed custom prompt, or "" when unset.
func (s *CaptionSettings) EffectiveCustomPrompt() string {
	if s == nil || s.CustomPrompt == nil {
		return ""
	}
	return strings.TrimSpace(*s.CustomPrompt)
}
