package model

import (
	"strings"
	"time"
)

// Aspect ratios accepted by the image provider.
const (
	AspectSquare    = "1:1"
	AspectPortrait  = "9:16"
	AspectLandscape = "16:9"
)

const (
	DefaultStyle   = "Realistic"
	DefaultQuality = "Standard"
)

// Styles lists the style labels offered to users.
var Styles = []string{"Aesthetic", "Cartoon", "Portrait", "Animated", "3D Render", "Realistic"}

// Qualities lists the quality labels offered to users.
var Qualities = []string{"Standard", "HDR", "4K", "8K", "16K"}

// ValidAspectRatio reports whether ar is one of the supported ratios.
func ValidAspectRatio(ar string) bool {
	switch ar {
	case AspectSquare, AspectPortrait, AspectLandscape:
		return true
	}
	return false
}

// ValidStyle reports whether s is a known style.
func ValidStyle(s string) bool { return contains(Styles, s) }

// ValidQuality reports whether q is a known quality.
func ValidQuality(q string) bool { return contains(Qualities, q) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// DerivePrompt builds the text sent to the provider: "<prompt>, <style>, <quality>".
func DerivePrompt(prompt, style, quality string) string {
	parts := []string{strings.TrimSpace(prompt)}
	if style != "" {
		parts = append(parts, style)
	}
	if quality != "" {
		parts = append(parts, quality)
	}
	return strings.Join(parts, ", ")
}

// Favorite is an image a user bookmarked.  (UserID, ImageURL) is unique.
type Favorite struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	ImageURL  string    `json:"image_url"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerationHistoryItem records one successful generation.
type GenerationHistoryItem struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	UserName    string    `json:"user_name,omitempty"`
	Prompt      string    `json:"prompt"`
	Style       string    `json:"style"`
	Quality     string    `json:"quality"`
	AspectRatio string    `json:"aspect_ratio"`
	CreatedAt   time.Time `json:"created_at"`
}

// GeneratedImage is returned to the caller of a generation.
type GeneratedImage struct {
	ImageURL         string                `json:"image_url"`
	Prompt           string                `json:"prompt"`
	History          GenerationHistoryItem `json:"history"`
	RemainingCredits int64                 `json:"remaining_credits"`
	UnlimitedCredits bool                  `json:"unlimited_credits"`
}
