package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func TestAggregator_Check(t *testing.T) {
	tests := []struct {
		name     string
		required map[string]CheckerFunc
		optional map[string]CheckerFunc
		want     Status
	}{
		{name: "no checks", want: StatusHealthy},
		{
			name:     "all healthy",
			required: map[string]CheckerFunc{"database": ok, "redis": ok},
			want:     StatusHealthy,
		},
		{
			name: "required failing",
			required: map[string]CheckerFunc{
				"database": ok,
				"redis":    func(context.Context) error { return errors.New("connection refused") },
			},
			want: StatusUnhealthy,
		},
		{
			name:     "optional failing",
			required: map[string]CheckerFunc{"database": ok},
			optional: map[string]CheckerFunc{"cache": func(context.Context) error { return errors.New("down") }},
			want:     StatusDegraded,
		},
		{
			name:     "panicking check",
			required: map[string]CheckerFunc{"database": func(context.Context) error { panic("boom") }},
			want:     StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(time.Second)
			for name, c := range tt.required {
				agg.Register(name, c)
			}
			for name, c := range tt.optional {
				agg.RegisterOptional(name, c)
			}

			resp := agg.Check(context.Background())
			assert.Equal(t, tt.want, resp.Status)
			assert.Len(t, resp.Checks, len(tt.required)+len(tt.optional))
		})
	}
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(20 * time.Millisecond)
	agg.Register("slow", CheckerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	resp := agg.Check(context.Background())
	require.Contains(t, resp.Checks, "slow")
	assert.Equal(t, StatusUnhealthy, resp.Checks["slow"].Status)
	assert.Contains(t, resp.Checks["slow"].Error, "deadline exceeded")
}

func TestAggregator_Metadata(t *testing.T) {
	agg := NewAggregator(0)
	agg.SetMetadata("service", "demo")
	agg.Register("b", CheckerFunc(ok))
	agg.Register("a", CheckerFunc(ok))

	resp := agg.Check(context.Background())
	assert.True(t, resp.IsHealthy())
	assert.Equal(t, "demo", resp.Metadata["service"])
	assert.Equal(t, []string{"a", "b"}, agg.Names())
}
