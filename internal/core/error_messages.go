package core

// error_messages.go maps technical errors to messages an operator can act on.
//
// # Error Codes
//
//	CONV001 - A bound numeric column holds a value that is not a number
//	          Patterns: "invalid number"
//	PRF001  - Profile not found
//	          Patterns: "profile not found"
//	PRF002  - Profile binding names an unknown attribute or empty column
//	          Patterns: "invalid binding"
//	SRC001  - Source file not found
//	          Patterns: "source not found"
//	SRC002  - Source file exceeds the size limit
//	          Patterns: "source file too large"
//	SRC003  - Source name escapes the source root
//	          Patterns: "invalid source name"
//	PFB001  - Prefab name has no catalog entry
//	          Patterns: "prefab not found"
//	PFB002  - Prefab saved without a name
//	          Patterns: "invalid prefab"
//	PFB003  - Catalog cannot be listed or edited
//	          Patterns: "catalog is read-only"
//	SCN001  - No placed instance has the requested name
//	          Patterns: "scene node not found"
//	SPN001  - Another spawn holds every slot
//	          Patterns: "too many concurrent spawns"
//	BRK001  - Message broker rejected or timed out a publish
//	          Patterns: "publish to", "broker connection"
//	DB004   - Catalog database unreachable
//	          Patterns: "connection refused"
//	UPL004  - Request cancelled
//	          Patterns: "context canceled"
//	UPL005  - Request timed out
//	          Patterns: "context deadline exceeded"
//	ERR000  - Anything else; check the server log for the original error
//
// An entry matches when errors.Is finds its sentinel in the chain or, for
// errors that crossed a process boundary as text, when its pattern appears in
// the lowercased message. The first matching entry wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/scenecsv/internal/catalog"
	"github.com/JonMunkholm/scenecsv/internal/placement"
	"github.com/JonMunkholm/scenecsv/internal/scene"
	"github.com/JonMunkholm/scenecsv/internal/source"
)

// UserMessage is the operator-facing form of an error.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type errorPattern struct {
	sentinel error
	pattern  string
	msg      UserMessage
}

func (ep errorPattern) matches(err error, lowered string) bool {
	if ep.sentinel != nil && errors.Is(err, ep.sentinel) {
		return true
	}
	return strings.Contains(lowered, ep.pattern)
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Data (CONV, PRF)
	// =========================================================================
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "A position or rotation column contains a value that is not a number",
			Action:  "Fix the value in the source file or set the profile policy to skip",
			Code:    "CONV001",
		},
	},
	{
		sentinel: ErrProfileNotFound,
		pattern:  "profile not found",
		msg: UserMessage{
			Message: "Profile not found",
			Action:  "Check the profile name against the profiles directory",
			Code:    "PRF001",
		},
	},
	{
		sentinel: placement.ErrInvalidBinding,
		pattern:  "invalid binding",
		msg: UserMessage{
			Message: "The profile has an invalid column binding",
			Action:  "Each binding needs a known attribute and a column name",
			Code:    "PRF002",
		},
	},

	// =========================================================================
	// Sources (SRC)
	// =========================================================================
	{
		sentinel: source.ErrSourceNotFound,
		pattern:  "source not found",
		msg: UserMessage{
			Message: "Source file not found",
			Action:  "Check the profile source name and the source directory",
			Code:    "SRC001",
		},
	},
	{
		sentinel: source.ErrSourceTooLarge,
		pattern:  "source file too large",
		msg: UserMessage{
			Message: "Source file exceeds the size limit",
			Action:  "Split the file or raise SOURCE_MAX_SIZE",
			Code:    "SRC002",
		},
	},
	{
		sentinel: source.ErrInvalidName,
		pattern:  "invalid source name",
		msg: UserMessage{
			Message: "Source name points outside the source directory",
			Action:  "Use a relative name without '..'",
			Code:    "SRC003",
		},
	},

	// =========================================================================
	// Placement (PFB, SPN, BRK)
	// =========================================================================
	{
		sentinel: catalog.ErrPrefabNotFound,
		pattern:  "prefab not found",
		msg: UserMessage{
			Message: "Prefab not found in the catalog",
			Action:  "Register the prefab or fix the name in the source file",
			Code:    "PFB001",
		},
	},
	{
		sentinel: catalog.ErrInvalidPrefab,
		pattern:  "invalid prefab",
		msg: UserMessage{
			Message: "The prefab is missing a name",
			Action:  "Send a JSON body with a non-empty name",
			Code:    "PFB002",
		},
	},
	{
		sentinel: ErrCatalogReadOnly,
		pattern:  "catalog is read-only",
		msg: UserMessage{
			Message: "The prefab catalog cannot be edited",
			Action:  "Use the in-memory or Postgres catalog",
			Code:    "PFB003",
		},
	},
	{
		sentinel: scene.ErrNodeNotFound,
		pattern:  "scene node not found",
		msg: UserMessage{
			Message: "No object with that name is in the scene",
			Action:  "Check the name against GET /api/scene",
			Code:    "SCN001",
		},
	},
	{
		sentinel: ErrTooManySpawns,
		pattern:  "too many concurrent spawns",
		msg: UserMessage{
			Message: "Another spawn is in progress",
			Action:  "Please wait a moment and try again",
			Code:    "SPN001",
		},
	},
	{
		pattern: "publish to",
		msg: UserMessage{
			Message: "Scene update could not be published",
			Action:  "Check that the message broker is reachable",
			Code:    "BRK001",
		},
	},
	{
		pattern: "broker connection",
		msg: UserMessage{
			Message: "Unable to connect to the message broker",
			Action:  "Check BROKER_URL and that the broker is running",
			Code:    "BRK001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the catalog database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},

	// =========================================================================
	// Request lifecycle (UPL)
	// =========================================================================
	{
		sentinel: context.Canceled,
		pattern:  "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		sentinel: context.DeadlineExceeded,
		pattern:  "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller source file or raise SPAWN_TIMEOUT",
			Code:    "UPL005",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the server log",
	Code:    "ERR000",
}

// MapError returns the message for the first pattern err matches, or the
// ERR000 fallback. A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var conv *placement.ConversionError
	if errors.As(err, &conv) {
		return errorPatterns[0].msg
	}

	lowered := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if ep.matches(err, lowered) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
