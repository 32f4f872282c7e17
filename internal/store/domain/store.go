package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
)

// Keys used by the engine.
const (
	KeyVenues            = "streetsignal_courts"
	KeyFavorites         = "streetsignal_favorites"
	KeyBalance           = "streetsignal_user_karma"
	KeyJournal           = "streetsignal_karma_journal"
	KeyUser              = "streetsignal_user"
	KeySignals           = "streetsignal_signals"
	KeyRatingHistory     = "streetsignal_elo_history"
	KeyOnboarded         = "streetsignal_onboarded"
	KeyTutorialCompleted = "streetsignal_tutorial_completed"
)

// AllKeys lists every key owned by the engine, used when resetting demo data.
var AllKeys = []string{
	KeyVenues,
	KeyFavorites,
	KeyBalance,
	KeyJournal,
	KeyUser,
	KeySignals,
	KeyRatingHistory,
	KeyOnboarded,
	KeyTutorialCompleted,
}

var (
	ErrEmptyKey    = errors.New("empty_key")
	ErrInvalidDest = errors.New("invalid_destination")
	ErrNullValue   = errors.New("null_value")
)

// Store is a JSON key/value store. Get reports false when the key is absent
// or its stored value cannot be decoded; dst is left untouched in that case.
type Store interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

// Decode unmarshals raw into dst without partially overwriting dst on failure.
// A stored JSON null counts as absent and leaves dst untouched.
func Decode(raw []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrInvalidDest
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ErrNullValue
	}
	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(raw, fresh.Interface()); err != nil {
		return err
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}
