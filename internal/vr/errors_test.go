package vr

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOfNil(t *testing.T) {
	if got := CodeOf(nil); got != LoadErrNone {
		t.Errorf("CodeOf(nil): got %v, want none", got)
	}
}

func TestCodeOfLoading(t *testing.T) {
	if got := CodeOf(ErrLoading); got != LoadErrLoading {
		t.Errorf("CodeOf(ErrLoading): got %v, want loading", got)
	}
	// Wrapped sentinel still classifies as transient.
	wrapped := fmt.Errorf("poll: %w", ErrLoading)
	if got := CodeOf(wrapped); got != LoadErrLoading {
		t.Errorf("CodeOf(wrapped ErrLoading): got %v, want loading", got)
	}
	if !LoadErrLoading.Transient() {
		t.Error("loading must be transient")
	}
}

func TestCodeOfLoadError(t *testing.T) {
	err := &LoadError{Code: LoadErrInvalidModel, Name: "tracker_1"}
	if got := CodeOf(err); got != LoadErrInvalidModel {
		t.Errorf("CodeOf: got %v, want invalid model", got)
	}
}

func TestCodeOfUnknown(t *testing.T) {
	if got := CodeOf(errors.New("boom")); got != LoadErrUnknown {
		t.Errorf("CodeOf(unknown): got %v, want unknown", got)
	}
}

func TestSilentClassification(t *testing.T) {
	// Only the missing-texcoords code fails without logging.
	for c := LoadErrNone; c <= LoadErrUnknown; c++ {
		want := c == LoadErrNotEnoughTexCoords
		if got := c.Silent(); got != want {
			t.Errorf("%v.Silent(): got %v, want %v", c, got, want)
		}
	}
}

func TestOnlyLoadingIsTransient(t *testing.T) {
	for c := LoadErrNone; c <= LoadErrUnknown; c++ {
		want := c == LoadErrLoading
		if got := c.Transient(); got != want {
			t.Errorf("%v.Transient(): got %v, want %v", c, got, want)
		}
	}
}
