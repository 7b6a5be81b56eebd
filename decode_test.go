package conflayer

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDecodePrimitives(t *testing.T) {
	m := NewMapping()
	m.Set("name", "svc")
	m.Set("port", "8080")
	m.Set("ratio", "0.75")
	m.Set("debug", "true")
	m.Set("timeout", "1m30s")

	var cfg struct {
		Name    string
		Port    int
		Ratio   float64
		Debug   bool
		Timeout time.Duration
	}
	if err := NodeOf(m).Decode(&cfg); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if cfg.Name != "svc" || cfg.Port != 8080 || cfg.Ratio != 0.75 || !cfg.Debug {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if cfg.Timeout != 90*time.Second {
		t.Fatalf("expected 90s timeout, got %v", cfg.Timeout)
	}
}

func TestDecodeUnparsableLeafIsFormatError(t *testing.T) {
	m := NewMapping()
	m.Set("port", "abc")
	var cfg struct{ Port int }
	err := NodeOf(m).Decode(&cfg)
	var format *FormatError
	if !errors.As(err, &format) {
		t.Fatalf("expected *FormatError, got %v", err)
	}
	if format.Raw != "abc" || !strings.EqualFold(format.Key, "port") {
		t.Fatalf("expected raw text and key recorded, got %+v", format)
	}
}

func TestDecodeMissingFieldsKeepDefaults(t *testing.T) {
	m := NewMapping()
	m.Set("host", "db")
	cfg := struct {
		Host string
		Port int
	}{Port: 5432}
	if err := NodeOf(m).Decode(&cfg); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if cfg.Host != "db" || cfg.Port != 5432 {
		t.Fatalf("expected preset default to survive, got %+v", cfg)
	}
}

func TestDecodeNestedStructAndTag(t *testing.T) {
	m := NewMapping()
	m.Set("db:primary:host", "a")
	m.Set("db:primary:max-conns", "10")
	var cfg struct {
		DB struct {
			Primary struct {
				Host     string
				MaxConns int `conf:"max-conns"`
			}
		}
	}
	if err := NodeOf(m).Decode(&cfg); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if cfg.DB.Primary.Host != "a" || cfg.DB.Primary.MaxConns != 10 {
		t.Fatalf("unexpected values: %+v", cfg)
	}
}

func TestDecodeSliceInMappingOrder(t *testing.T) {
	m := NewMapping()
	m.Set("hosts:0", "a")
	m.Set("hosts:1", "b")
	m.Set("hosts:2", "c")
	var cfg struct{ Hosts []string }
	if err := NodeOf(m).Decode(&cfg); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if !reflect.DeepEqual(cfg.Hosts, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected slice: %v", cfg.Hosts)
	}
}

func TestDecodeMapUsesChildKeys(t *testing.T) {
	m := NewMapping()
	m.Set("limits:cpu", "2")
	m.Set("limits:mem", "512")
	var cfg struct{ Limits map[string]int }
	if err := NodeOf(m).Decode(&cfg); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	want := map[string]int{"cpu": 2, "mem": 512}
	if !reflect.DeepEqual(cfg.Limits, want) {
		t.Fatalf("expected %v, got %v", want, cfg.Limits)
	}
}

func TestDecodeMapOfStructs(t *testing.T) {
	m := NewMapping()
	m.Set("endpoints:auth:url", "https://auth")
	m.Set("endpoints:auth:retries", "3")
	m.Set("endpoints:billing:url", "https://billing")
	type endpoint struct {
		URL     string
		Retries int
	}
	var cfg struct{ Endpoints map[string]endpoint }
	if err := NodeOf(m).Decode(&cfg); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if cfg.Endpoints["auth"].Retries != 3 || cfg.Endpoints["billing"].URL != "https://billing" {
		t.Fatalf("unexpected map: %+v", cfg.Endpoints)
	}
}

func TestDecodePointerAllocatedOnlyWhenPresent(t *testing.T) {
	m := NewMapping()
	m.Set("inner:v", "x")
	var cfg struct {
		Inner  *struct{ V string }
		Absent *struct{ V string }
	}
	if err := NodeOf(m).Decode(&cfg); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if cfg.Inner == nil || cfg.Inner.V != "x" {
		t.Fatalf("expected inner allocated and bound, got %+v", cfg.Inner)
	}
	if cfg.Absent != nil {
		t.Fatal("expected absent pointer to stay nil")
	}
}

func TestDecodeTextUnmarshaler(t *testing.T) {
	m := NewMapping()
	m.Set("level", "WARN")
	var cfg struct{ Level logLevel }
	if err := NodeOf(m).Decode(&cfg); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if cfg.Level != levelWarn {
		t.Fatalf("expected warn, got %v", cfg.Level)
	}
}

func TestDecodeUnsupportedKind(t *testing.T) {
	m := NewMapping()
	m.Set("ch", "v")
	var cfg struct{ Ch chan int }
	err := NodeOf(m).Decode(&cfg)
	var unsupported *UnsupportedShapeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected *UnsupportedShapeError, got %v", err)
	}
}

func TestDecodeRejectsNonPointerTarget(t *testing.T) {
	var cfg struct{}
	if err := NodeOf(NewMapping()).Decode(cfg); err == nil {
		t.Fatal("expected error for non-pointer target")
	}
	if err := NodeOf(NewMapping()).Decode(nil); err == nil {
		t.Fatal("expected error for nil target")
	}
}

func TestDecodeTime(t *testing.T) {
	m := NewMapping()
	m.Set("since", "2024-05-01T10:00:00Z")
	var cfg struct{ Since time.Time }
	if err := NodeOf(m).Decode(&cfg); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if !cfg.Since.Equal(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Since)
	}
}
