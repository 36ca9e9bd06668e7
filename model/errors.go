package model

import (
	"errors"
	"fmt"
)

// ErrItemExists is returned when creating a template whose ID is already registered.
var ErrItemExists = errors.New("item already exists")

// MissingPriceError means a new item has no entry in the price table.
type MissingPriceError struct {
	ItemID string
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("missing price for item %s", e.ItemID)
}

// MissingLocaleError means a new item has no localized text for a required locale.
type MissingLocaleError struct {
	ItemID string
	Locale string
}

func (e *MissingLocaleError) Error() string {
	return fmt.Sprintf("missing %s locale for item %s", e.Locale, e.ItemID)
}

// RefKind names what a dangling reference was supposed to point at.
type RefKind string

const (
	RefItem       RefKind = "item"
	RefTrader     RefKind = "trader"
	RefSlot       RefKind = "slot"
	RefConflict   RefKind = "conflicting item"
	RefCompatible RefKind = "compatible item"
	RefCurrency   RefKind = "currency"
	RefRequired   RefKind = "required item"
	RefPreset     RefKind = "preset item"
)

// DanglingReferenceError means OwnerID refers to RefID, which exists nowhere
// it is required to.
type DanglingReferenceError struct {
	Kind    RefKind
	OwnerID string
	RefID   string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling %s reference %s from %s", e.Kind, e.RefID, e.OwnerID)
}

// ConfigurationError means input files or options are unusable. It aborts the
// whole run before the catalog is touched.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
