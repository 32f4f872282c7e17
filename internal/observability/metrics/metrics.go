package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes engine-level instruments.
type Metrics struct {
	reconciliations metric.Int64Counter
	signals         metric.Int64Counter
	ledgerOps       metric.Int64Counter
	ambienceRatings metric.Int64Counter
	staleResults    metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "streetsignal"
	}
	meter := provider.Meter(name)

	reconciliations, err := meter.Int64Counter("streetsignal_reconciliations_total")
	if err != nil {
		return nil, err
	}
	signals, err := meter.Int64Counter("streetsignal_signals_total")
	if err != nil {
		return nil, err
	}
	ledgerOps, err := meter.Int64Counter("streetsignal_ledger_operations_total")
	if err != nil {
		return nil, err
	}
	ambienceRatings, err := meter.Int64Counter("streetsignal_ambience_ratings_total")
	if err != nil {
		return nil, err
	}
	staleResults, err := meter.Int64Counter("streetsignal_stale_catalog_results_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		reconciliations: reconciliations,
		signals:         signals,
		ledgerOps:       ledgerOps,
		ambienceRatings: ambienceRatings,
		staleResults:    staleResults,
	}, nil
}

// RecordReconciliation counts registry reconciliations by outcome (catalog, empty_region, kept, demo).
func (m *Metrics) RecordReconciliation(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.reconciliations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordStaleResult counts catalog responses discarded because a newer location superseded them.
func (m *Metrics) RecordStaleResult(ctx context.Context) {
	if m == nil {
		return
	}
	m.staleResults.Add(ctx, 1)
}

func (m *Metrics) RecordSignal(ctx context.Context, signalType string, applied bool) {
	if m == nil {
		return
	}
	outcome := "noop"
	if applied {
		outcome = "applied"
	}
	attrs := FilterAttributes(
		attribute.String("signal_type", strings.TrimSpace(signalType)),
		attribute.String("outcome", outcome),
	)
	m.signals.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordLedgerOperation(ctx context.Context, operation, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("operation", strings.TrimSpace(operation)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.ledgerOps.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordAmbienceRating(ctx context.Context) {
	if m == nil {
		return
	}
	m.ambienceRatings.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// Venue and actor ids are unbounded and never become labels.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"outcome":     {},
	"signal_type": {},
	"operation":   {},
	"endpoint":    {},
	"status_code": {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
