// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library reads a user's owned games and projects them into cards.

Responsibilities:

  - Query: recent entries and owner-scoped title search, capped at 30 rows.
  - Projection: drop entries whose game is missing, parse platform and status.
  - Screens: the list ("/") and search ("/games/search") handlers.

Nothing in this package writes library data.
*/
package library

import (
	"strings"

	"golang.org/x/text/cases"
)

// # Platforms

// Platform is a parsed platform identifier.
//
// Known platforms carry their canonical name. Anything else is kept as
// [PlatformOther] with the raw value preserved for logging.
type Platform struct {
	name  string
	raw   string
	known bool
}

// Canonical platform names.
const (
	PlatformSwitch = "Switch"
	PlatformPS5    = "PS5"
	PlatformPS4    = "PS4"
	PlatformPC     = "PC"
	PlatformXbox   = "Xbox"
	PlatformMobile = "Mobile"
	PlatformOther  = "Other"
)

// knownPlatforms is keyed by the case-folded identifier.
var knownPlatforms = map[string]string{
	"switch": PlatformSwitch,
	"ps5":    PlatformPS5,
	"ps4":    PlatformPS4,
	"pc":     PlatformPC,
	"xbox":   PlatformXbox,
	"mobile": PlatformMobile,
	"other":  PlatformOther,
}

// ParsePlatform validates a stored platform identifier. Identifiers compare
// case-insensitively, so "switch" and "SWITCH" land in the Switch bucket.
func ParsePlatform(raw string) Platform {
	key := cases.Fold().String(strings.TrimSpace(raw))
	if name, ok := knownPlatforms[key]; ok {
		return Platform{name: name, raw: raw, known: true}
	}
	return Platform{name: PlatformOther, raw: raw}
}

// Name is the display bucket. Unknown identifiers display as "Other".
func (platform Platform) Name() string { return platform.name }

// Raw is the stored value, before validation.
func (platform Platform) Raw() string { return platform.raw }

// Known reports whether the stored value was a recognized platform.
func (platform Platform) Known() bool { return platform.known }

// # Statuses

// Status is a parsed play status.
type Status struct {
	label string
	raw   string
	known bool
}

// Play status labels, as stored.
const (
	StatusUnplayed   = "未プレイ"
	StatusPlaying    = "プレイ中"
	StatusCleared    = "クリア"
	StatusBacklogged = "積み中"
	StatusSuspended  = "中断"

	// StatusUnknownLabel is displayed for anything unrecognized.
	StatusUnknownLabel = "不明"
)

// ParseStatus validates a stored status.
func ParseStatus(raw string) Status {
	switch raw {
	case StatusUnplayed, StatusPlaying, StatusCleared, StatusBacklogged, StatusSuspended:
		return Status{label: raw, raw: raw, known: true}
	default:
		return Status{label: StatusUnknownLabel, raw: raw}
	}
}

// Label is the display text.
func (status Status) Label() string { return status.label }

// Raw is the stored value, before validation.
func (status Status) Raw() string { return status.raw }

// Known reports whether the stored value was a recognized status.
func (status Status) Known() bool { return status.known }

// Tone maps the status to a presentation token. It is total.
func (status Status) Tone() Tone {
	switch status.raw {
	case StatusCleared:
		return ToneSuccess
	case StatusPlaying:
		return ToneInfo
	case StatusUnplayed:
		return ToneNeutral
	case StatusBacklogged:
		return ToneWarning
	case StatusSuspended:
		return ToneDanger
	default:
		return ToneNeutral
	}
}

// # Tones

// Tone is a presentation token. The render layer decides what it looks like.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneInfo    Tone = "info"
	ToneNeutral Tone = "neutral"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

func (tone Tone) String() string { return string(tone) }

// # Display Shape

// GameListItem is one card on a list or search screen.
type GameListItem struct {
	ID       string
	Title    string
	Platform Platform
	Count    int
	Status   Status
}
