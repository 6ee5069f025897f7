package activity

import (
	"fmt"
	"strings"
)

// Version is the bridge release, reported in the Playing branding caption.
const Version = "1.3.0"

// Category is the presentation kind of an activity, controlling how the
// host renders it. Values match the host's numeric activity type codes.
type Category int

const (
	CategoryPlaying   Category = 0
	CategoryStreaming Category = 1
	CategoryListening Category = 2
	CategoryWatching  Category = 3
	CategoryCompeting Category = 5
)

// String returns the lowercase name of the category.
func (c Category) String() string {
	switch c {
	case CategoryPlaying:
		return "playing"
	case CategoryStreaming:
		return "streaming"
	case CategoryListening:
		return "listening"
	case CategoryWatching:
		return "watching"
	case CategoryCompeting:
		return "competing"
	default:
		return "unknown"
	}
}

// ParseCategory converts a config string into a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "playing":
		return CategoryPlaying, nil
	case "listening":
		return CategoryListening, nil
	case "watching":
		return CategoryWatching, nil
	case "competing":
		return CategoryCompeting, nil
	default:
		return CategoryPlaying, fmt.Errorf("unknown category %q", s)
	}
}

// FlagInstance marks the activity as a single game instance.
const FlagInstance = 1

// Timestamps carries an optional epoch-second range. A zero value means
// the bound is absent.
type Timestamps struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
}

// RawAssets is the untrusted inbound asset envelope: named keys plus
// optional captions for the two image slots.
type RawAssets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

// Metadata is the optional envelope carrying button link targets.
type Metadata struct {
	ButtonURLs []string `json:"button_urls,omitempty"`
}

// RawActivity is the untrusted inbound activity payload.
type RawActivity struct {
	ApplicationID string      `json:"application_id"`
	State         string      `json:"state,omitempty"`
	Details       string      `json:"details,omitempty"`
	Timestamps    *Timestamps `json:"timestamps,omitempty"`
	Assets        *RawAssets  `json:"assets,omitempty"`
	Buttons       []string    `json:"buttons,omitempty"`
	Metadata      *Metadata   `json:"metadata,omitempty"`
}

// Assets holds resolved host-displayable image references with captions.
type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

func (a *Assets) empty() bool {
	return a == nil || (a.LargeImage == "" && a.LargeText == "" && a.SmallImage == "" && a.SmallText == "")
}

// Activity is the synthesized outbound payload. Every field is pruned when
// empty except Type: the host treats a structurally absent category as an
// invalid payload, so the zero code (Playing) must still be emitted.
type Activity struct {
	ApplicationID string      `json:"application_id,omitempty"`
	Name          string      `json:"name,omitempty"`
	State         string      `json:"state,omitempty"`
	Details       string      `json:"details,omitempty"`
	Type          Category    `json:"type"`
	Flags         int         `json:"flags,omitempty"`
	Assets        *Assets     `json:"assets,omitempty"`
	Timestamps    *Timestamps `json:"timestamps,omitempty"`
	Buttons       []string    `json:"buttons,omitempty"`
	Metadata      *Metadata   `json:"metadata,omitempty"`
}

// prune drops empty substructures so omitempty removes them entirely.
func (a *Activity) prune() {
	if a.Assets.empty() {
		a.Assets = nil
	}
	if a.Timestamps != nil && a.Timestamps.Start == 0 && a.Timestamps.End == 0 {
		a.Timestamps = nil
	}
	if len(a.Buttons) == 0 {
		a.Buttons = nil
	}
	if a.Metadata != nil && len(a.Metadata.ButtonURLs) == 0 {
		a.Metadata = nil
	}
}

// Descriptor is cached application metadata: identity plus the inferred
// presentation category, immutable after creation.
type Descriptor struct {
	ID          string
	Name        string
	Icon        string
	Category    Category
	HasCategory bool
	HasAssets   bool
}
