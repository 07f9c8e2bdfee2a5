package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"

	"github.com/ritujaab/workout-planner/internal/config"
)

type nopClient struct{}

func (nopClient) Start(context.Context) error                                  { return nil }
func (nopClient) Stop(context.Context) error                                   { return nil }
func (nopClient) UploadTraces(context.Context, []*tracepb.ResourceSpans) error { return nil }

func preserveGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	prevExp, prevRes := newOTLPExporter, newServiceResource
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
		newOTLPExporter, newServiceResource = prevExp, prevRes
	})
}

func enabledConfig() config.OTelConfig {
	return config.OTelConfig{
		Enabled:     true,
		Endpoint:    "localhost:4317",
		Insecure:    true,
		ServiceName: "workout-planner-test",
		SampleRatio: 1,
	}
}

func TestSetupOTel_Disabled(t *testing.T) {
	preserveGlobals(t)
	before := otel.GetTracerProvider()

	shutdown, err := SetupOTel(context.Background(), config.OTelConfig{Enabled: false}, "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestSetupOTel_Enabled(t *testing.T) {
	preserveGlobals(t)
	newOTLPExporter = func(ctx context.Context, _ ...otlptracegrpc.Option) (*otlptrace.Exporter, error) {
		return otlptrace.New(ctx, nopClient{})
	}

	for _, insecure := range []bool{true, false} {
		cfg := enabledConfig()
		cfg.Insecure = insecure

		shutdown, err := SetupOTel(context.Background(), cfg, "test")
		require.NoError(t, err)
		_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
		assert.True(t, ok)
		assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
		assert.NoError(t, shutdown(context.Background()))
	}
}

func TestSetupOTel_ExporterError(t *testing.T) {
	preserveGlobals(t)
	newOTLPExporter = func(context.Context, ...otlptracegrpc.Option) (*otlptrace.Exporter, error) {
		return nil, errors.New("dial failed")
	}

	_, err := SetupOTel(context.Background(), enabledConfig(), "test")
	assert.ErrorContains(t, err, "dial failed")
}

func TestSetupOTel_ResourceError(t *testing.T) {
	preserveGlobals(t)
	newOTLPExporter = func(ctx context.Context, _ ...otlptracegrpc.Option) (*otlptrace.Exporter, error) {
		return otlptrace.New(ctx, nopClient{})
	}
	newServiceResource = func(context.Context, string, string) (*resource.Resource, error) {
		return nil, errors.New("bad resource")
	}

	_, err := SetupOTel(context.Background(), enabledConfig(), "test")
	assert.ErrorContains(t, err, "bad resource")
}
