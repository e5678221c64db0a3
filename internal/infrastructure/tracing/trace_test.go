package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/object"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/shared/id"
)

var cmdTick = object.MustRegisterCommand(0x400, "tick")

func newObservedTracer(t *testing.T) (*Tracer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return New("test", zap.New(core)), logs
}

func field(entry observer.LoggedEntry, key string) any {
	return entry.ContextMap()[key]
}

func TestStartSpanContinuesTrace(t *testing.T) {
	tracer, _ := newObservedTracer(t)
	defer tracer.Close()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	assert.NotEmpty(t, root.TraceID)
	assert.Empty(t, root.ParentID)
	assert.Equal(t, root.TraceID, GetTraceID(ctx))
	assert.Equal(t, root.SpanID, GetSpanID(ctx))

	child, _ := tracer.StartSpan(ctx, "child")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.NotEqual(t, root.SpanID, child.SpanID)
}

func TestSubmitAndClose(t *testing.T) {
	tracer, logs := newObservedTracer(t)

	span, _ := tracer.StartSpan(context.Background(), "ok")
	span.SetTag("k", "v")
	span.Log("note", map[string]any{"n": 1})
	span.Finish()
	tracer.Submit(span)

	failed, _ := tracer.StartSpan(context.Background(), "failed")
	failed.SetError(errors.New("boom"))
	failed.Finish()
	tracer.Submit(failed)

	tracer.Close()
	tracer.Close()
	tracer.Submit(span) // dropped after close

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "span completed", entries[0].Message)
	assert.Equal(t, "ok", field(entries[0], "operation"))
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", field(entries[1], "error"))
}

func TestSubmitDropsWhenFull(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := &Tracer{
		service: "test",
		logger:  zap.New(core),
		spans:   make(chan *Span), // no collector, no buffer
		done:    make(chan struct{}),
	}

	span, _ := tracer.StartSpan(context.Background(), "dropped")
	tracer.Submit(span)
	assert.Equal(t, 1, logs.FilterMessage("span buffer full, dropping span").Len())
}

func TestTraceHeaders(t *testing.T) {
	traceID, spanID := id.NewTraceID(), id.NewSpanID()
	ctx := WithTrace(context.Background(), traceID, spanID)

	headers := map[string]string{}
	InjectTraceContext(ctx, headers)
	gotTrace, gotSpan := ExtractTraceContext(headers)
	assert.Equal(t, traceID, gotTrace)
	assert.Equal(t, spanID, gotSpan)

	assert.Contains(t, FormatTrace(traceID, spanID), traceID.String())
	assert.Empty(t, GetTraceID(WithTrace(context.Background(), "", "")))
}

type svc struct{ object.Registry }

type failing struct{ object.Object }

func (*failing) ExecuteCommand(context.Context, object.Managed, object.Command, ...any) error {
	return errors.New("refused")
}

func TestBroadcastObserver(t *testing.T) {
	tracer, logs := newObservedTracer(t)
	object.SetObserver(NewBroadcastObserver(tracer))
	t.Cleanup(func() { object.SetObserver(nil) })

	s := object.Alloc(&svc{})
	c := object.Alloc(&failing{})
	s.RegisterClient(c)

	traceID := id.NewTraceID()
	ctx := WithTrace(context.Background(), traceID, "")
	require.Error(t, s.Broadcast(ctx, cmdTick, object.BroadcastOptions{}))

	s.DeregisterClient(c)
	c.Release()
	s.Release()
	tracer.Close()

	entries := logs.FilterMessage("span completed with error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "broadcast tick", field(entries[0], "operation"))
	assert.Equal(t, traceID.String(), field(entries[0], "trace_id"))

	tags, ok := field(entries[0], "tags").(map[string]string)
	require.True(t, ok)
	assert.Equal(t, s.ID().String(), tags["service_id"])
	assert.Equal(t, "1", tags["failures"])
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := newObservedTracer(t)

	r := gin.New()
	r.Use(HTTPMiddleware(tracer))
	r.GET("/debug/objects", func(c *gin.Context) {
		assert.NotEmpty(t, GetTraceID(c.Request.Context()))
		c.Status(http.StatusNoContent)
	})

	traceID := id.NewTraceID()
	req := httptest.NewRequest(http.MethodGet, "/debug/objects", nil)
	req.Header.Set("X-Trace-ID", traceID.String())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	tracer.Close()

	assert.Equal(t, traceID.String(), rec.Header().Get("X-Trace-ID"))
	entries := logs.FilterMessage("span completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/debug/objects", field(entries[0], "operation"))
}
