package tracing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsRedactedKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/venues/:id"),
		attribute.String("player.name", "Sarah B."),
		attribute.Int("http.status_code", 200),
	)

	assert.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
	assert.Equal(t, attribute.Key("http.status_code"), attrs[1].Key)
}

func TestSafeAttributesTruncatesLongValues(t *testing.T) {
	attrs := SafeAttributes(attribute.String("http.route", strings.Repeat("a", 400)))
	assert.Len(t, attrs[0].Value.AsString(), maxAttributeLength)
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	assert.EqualError(t, SafeError(errors.New("first line\nsecond line")), "first line")
	assert.Nil(t, SafeError(errors.New("   ")))
}
