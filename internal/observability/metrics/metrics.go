package metrics

import (
	"context"
	"fmt"
	"strconv"
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

// Metrics exposes ledger-level instruments.
type Metrics struct {
	ledgerMutations metric.Int64Counter
	billsCreated    metric.Int64Counter
	returnsCreated  metric.Int64Counter
	paymentsPosted  metric.Int64Counter
	stockRejections metric.Int64Counter
	undoResults     metric.Int64Counter
	httpRequests    metric.Int64Counter
	httpDuration    metric.Float64Histogram
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
				if log != nil {
					log.Info("shutting down meter provider")
				}
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

// New configures the ledger metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "rythudepot"
	}
	meter := provider.Meter(name)

	ledgerMutations, err := meter.Int64Counter("depot_ledger_mutations_total")
	if err != nil {
		return nil, err
	}
	billsCreated, err := meter.Int64Counter("depot_bills_created_total")
	if err != nil {
		return nil, err
	}
	returnsCreated, err := meter.Int64Counter("depot_returns_created_total")
	if err != nil {
		return nil, err
	}
	paymentsPosted, err := meter.Int64Counter("depot_payments_posted_total")
	if err != nil {
		return nil, err
	}
	stockRejections, err := meter.Int64Counter("depot_stock_rejections_total")
	if err != nil {
		return nil, err
	}
	undoResults, err := meter.Int64Counter("depot_undo_total")
	if err != nil {
		return nil, err
	}
	httpRequests, err := meter.Int64Counter("depot_http_requests_total")
	if err != nil {
		return nil, err
	}
	httpDuration, err := meter.Float64Histogram("depot_http_request_duration_seconds", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ledgerMutations: ledgerMutations,
		billsCreated:    billsCreated,
		returnsCreated:  returnsCreated,
		paymentsPosted:  paymentsPosted,
		stockRejections: stockRejections,
		undoResults:     undoResults,
		httpRequests:    httpRequests,
		httpDuration:    httpDuration,
	}, nil
}

// RecordMutation counts a committed ledger operation.
func (m *Metrics) RecordMutation(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("operation", strings.TrimSpace(operation)))
	m.ledgerMutations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordBillCreated counts bills by payment mode and derived status.
func (m *Metrics) RecordBillCreated(ctx context.Context, paymentMode, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("payment_mode", strings.TrimSpace(paymentMode)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.billsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordReturnCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.returnsCreated.Add(ctx, 1)
}

// RecordPaymentPosted counts payment postings by method.
func (m *Metrics) RecordPaymentPosted(ctx context.Context, paymentMode string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("payment_mode", strings.TrimSpace(paymentMode)))
	m.paymentsPosted.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordStockRejection counts stock movements refused for going negative.
func (m *Metrics) RecordStockRejection(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("operation", strings.TrimSpace(operation)))
	m.stockRejections.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordUndo counts undo attempts by outcome.
func (m *Metrics) RecordUndo(ctx context.Context, result string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("result", strings.TrimSpace(result)))
	m.undoResults.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordHTTPRequest counts a handled request by route template and status.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, endpoint string, statusCode int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status_code", strconv.Itoa(statusCode)),
	)
	m.httpRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
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

var allowedLabelKeys = map[attribute.Key]struct{}{
	"operation":    {},
	"payment_mode": {},
	"status":       {},
	"result":       {},
	"endpoint":     {},
	"status_code":  {},
	"reason":       {},
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
