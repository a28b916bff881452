//go:build !integration

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithTraceID(context.Background(), "tr-1")
	ctx = WithUserID(ctx, "user-1")
	ctx = WithECardID(ctx, "card-1")
	ctx = WithPaymentID(ctx, "pay-1")

	With(ctx, &base).Info().Msg("x")

	out := buf.String()
	for _, want := range []string{
		`"trace_id":"tr-1"`,
		`"user_id":"user-1"`,
		`"ecard_id":"card-1"`,
		`"payment_id":"pay-1"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %s", out, want)
		}
	}
}

func TestWithEmptyContext(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	With(context.Background(), &base).Info().Msg("x")

	out := buf.String()
	for _, field := range []string{"trace_id", "user_id", "ecard_id", "payment_id"} {
		if strings.Contains(out, field) {
			t.Errorf("log line %q carries unset field %s", out, field)
		}
	}
}
