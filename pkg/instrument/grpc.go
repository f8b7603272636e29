package instrument

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"auriga-hq/tracewire/pkg/config"
	"auriga-hq/tracewire/pkg/correlation"
	"auriga-hq/tracewire/pkg/tracing"
)

// UnaryServerInterceptor returns a gRPC interceptor that resolves the
// correlation ID from incoming metadata, stamps it on the active span,
// and bridges it onto the context so outbound calls can forward it.
// Enrichment failures degrade the call to untraced, never fail it.
func UnaryServerInterceptor(cfg *config.Config, logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	corr := correlation.NewManager(cfg.Tracing.Correlation)

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = enrichServerContext(ctx, corr, logger)
		return handler(ctx, req)
	}
}

// enrichServerContext resolves the correlation ID from the call's
// metadata and records it on the active span and context. The result
// is seeded with the incoming context so a recovered panic degrades
// the call to untraced rather than handing the handler a nil context.
func enrichServerContext(ctx context.Context, corr *correlation.Manager, logger *slog.Logger) (out context.Context) {
	out = ctx
	defer func() {
		if p := recover(); p != nil {
			logger.Warn("grpc correlation enrichment failed", "panic", p)
		}
	}()

	md, _ := metadata.FromIncomingContext(ctx)
	id, ok := corr.Resolve(metadataHeader(md))
	if !ok {
		return ctx
	}

	rec := tracing.NewSpanRecord(trace.SpanFromContext(ctx))
	rec.SetAttributes(
		attribute.String(tracing.AttrCorrelationID, id),
		attribute.String(tracing.AttrCorrelationIDDotted, id),
	)
	return tracing.ContextWithRecord(ctx, rec)
}

// UnaryClientInterceptor returns a gRPC interceptor that forwards the
// active correlation ID as outgoing metadata. Metadata the caller set
// explicitly is left alone.
func UnaryClientInterceptor(cfg *config.Config, logger *slog.Logger) grpc.UnaryClientInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	corr := correlation.NewManager(cfg.Tracing.Correlation)

	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if id := tracing.CorrelationIDFromContext(ctx); id != "" {
			md, _ := metadata.FromOutgoingContext(ctx)
			md = md.Copy()
			for name, value := range corr.PropagationHeaders(id) {
				if len(md.Get(name)) == 0 {
					md.Set(name, value)
				}
			}
			ctx = metadata.NewOutgoingContext(ctx, md)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// metadataHeader views gRPC metadata as an http.Header so the same
// priority-ordered extraction applies to both transports.
func metadataHeader(md metadata.MD) http.Header {
	h := http.Header{}
	for key, values := range md {
		for _, v := range values {
			h.Add(key, v)
		}
	}
	return h
}
