// Package model defines the core data structures for miwok.
package model

import (
	"errors"
	"fmt"
)

// AudioRef is an opaque reference to a pronunciation asset.
// It is resolved by the audio player, usually against the asset directory.
type AudioRef string

// ImageRef is an opaque reference to an image for an entry.
type ImageRef string

// NoImage marks an entry that has no image.
const NoImage ImageRef = ""

// Entry is a single vocabulary word: the word in a language the learner
// already knows, the word in the language being learned, and its assets.
// Entries are values; a catalog hands out copies and never mutates them.
type Entry struct {
	Native string   `yaml:"native" json:"native"`
	Target string   `yaml:"target" json:"target"`
	Audio  AudioRef `yaml:"audio" json:"audio"`
	Image  ImageRef `yaml:"image,omitempty" json:"image,omitempty"`
}

// Validation errors.
var (
	ErrEmptyNative = errors.New("native label cannot be empty")
	ErrEmptyTarget = errors.New("target label cannot be empty")
	ErrEmptyAudio  = errors.New("audio reference cannot be empty")
)

// NewEntry creates an entry without an image.
func NewEntry(native, target string, audio AudioRef) Entry {
	return Entry{
		Native: native,
		Target: target,
		Audio:  audio,
		Image:  NoImage,
	}
}

// NewEntryWithImage creates an entry with an image.
func NewEntryWithImage(native, target string, image ImageRef, audio AudioRef) Entry {
	return Entry{
		Native: native,
		Target: target,
		Audio:  audio,
		Image:  image,
	}
}

// HasImage reports whether an image was provided for this entry.
func (e Entry) HasImage() bool {
	return e.Image != NoImage
}

// Validate checks that the entry has all required fields.
func (e Entry) Validate() error {
	if e.Native == "" {
		return ErrEmptyNative
	}
	if e.Target == "" {
		return ErrEmptyTarget
	}
	if e.Audio == "" {
		return ErrEmptyAudio
	}
	return nil
}

// String returns a compact representation used in log lines.
func (e Entry) String() string {
	return fmt.Sprintf("Entry{native=%q target=%q audio=%s image=%q}",
		e.Native, e.Target, e.Audio, e.Image)
}
