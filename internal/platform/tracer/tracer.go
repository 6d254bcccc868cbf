package tracer

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const exporterSetupTimeout = 10 * time.Second

// InitTracer installs the W3C propagators and a global provider. Spans are
// only exported when an OTLP endpoint is set; any setup failure degrades to a
// provider that drops everything rather than failing startup.
func InitTracer(cfg config.TracingConfig, env string, log logger.Logger) *sdktrace.TracerProvider {
	log = log.Named("Tracer")
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	if cfg.OTLPEndpoint == "" {
		log.Info("tracing disabled, no OTLP endpoint")
		return sdktrace.NewTracerProvider()
	}

	ctx, cancel := context.WithTimeout(context.Background(), exporterSetupTimeout)
	defer cancel()

	conn, err := grpc.NewClient(cfg.OTLPEndpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Errorf("OTLP client for %s: %v", cfg.OTLPEndpoint, err)
		return sdktrace.NewTracerProvider()
	}
	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		log.Errorf("OTLP exporter: %v", err)
		_ = conn.Close()
		return sdktrace.NewTracerProvider()
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(env),
	))
	if err != nil {
		log.Warnf("resource merge failed, using defaults: %v", err)
		res = resource.Default()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	log.Infof("exporting %s spans to %s (ratio %.2f)", cfg.ServiceName, cfg.OTLPEndpoint, cfg.SampleRatio)
	return tp
}
