package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	if fields == nil {
		fields = map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "coursegen.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	// Ensure WithContext/WithFields do not panic.
	ctx := context.Background()
	logger = logger.WithContext(ctx)
	logger = logger.(interfaces.FieldsLogger).WithFields(map[string]any{"foo": "bar"})
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	logger := ModuleLogger(provider, compilerModule)

	if len(provider.requested) != 1 || provider.requested[0] != compilerModule {
		t.Fatalf("expected module %s, got %v", compilerModule, provider.requested)
	}

	if len(rec.fields) != 1 {
		t.Fatalf("expected module fields to be applied once, got %d", len(rec.fields))
	}

	if got, ok := rec.fields[0]["module"]; !ok || got != compilerModule {
		t.Fatalf("expected module field %s, got %v", compilerModule, rec.fields[0]["module"])
	}

	logger.Info("with provider")
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
	if rec.fields[0]["module"] != rootModule {
		t.Fatalf("expected module field %s, got %v", rootModule, rec.fields[0]["module"])
	}
}

func TestNamespacedLoggersRequestTheirModules(t *testing.T) {
	cases := map[string]func(interfaces.LoggerProvider) interfaces.Logger{
		compilerModule: CompilerLogger,
		markdownModule: MarkdownLogger,
		emitterModule:  EmitterLogger,
		metadataModule: MetadataLogger,
	}
	for module, build := range cases {
		provider := &stubProvider{logger: &recordingLogger{}}
		_ = build(provider)
		if len(provider.requested) == 0 || provider.requested[0] != module {
			t.Fatalf("expected %s module request, got %v", module, provider.requested)
		}
	}
}

func TestWithUnitContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}
	_ = WithUnitContext(rec, "01-intro", " ", "01-welcome.md")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	fields := rec.fields[0]
	if fields[fieldChapter] != "01-intro" || fields[fieldUnit] != "01-welcome.md" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if _, ok := fields[fieldSection]; ok {
		t.Fatalf("expected blank section to be skipped, got %v", fields)
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"run_id": "a"})
	ctx = ContextWithFields(ctx, map[string]any{"chapter": "01"})

	fields := ContextFields(ctx)
	if fields["run_id"] != "a" || fields["chapter"] != "01" {
		t.Fatalf("expected merged fields, got %v", fields)
	}
	fields["run_id"] = "mutated"
	if ContextFields(ctx)["run_id"] != "a" {
		t.Fatal("expected ContextFields to return a copy")
	}
}
