package conflayer

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildErrorAggregation(t *testing.T) {
	var group *BuildError
	if group.Has() {
		t.Fatal("nil group should report no failures")
	}
	appendBuildFailure(&group, &SourceLoadError{Source: "a", Err: errors.New("x")})
	appendBuildFailure(&group, &SourceLoadError{Source: "b", Err: errors.New("y")})
	appendBuildFailure(&group, nil)
	if !group.Has() || len(group.Failures()) != 2 {
		t.Fatalf("expected two failures, got %v", group.Failures())
	}
	msg := group.Error()
	if !strings.Contains(msg, `"a"`) || !strings.Contains(msg, `"b"`) {
		t.Fatalf("expected both sources named, got %q", msg)
	}
}

func TestSourceLoadErrorUnwraps(t *testing.T) {
	cause := errors.New("network down")
	err := &SourceLoadError{Source: "vault", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to unwrap")
	}
	if !strings.Contains(err.Error(), "vault") {
		t.Fatalf("expected source identity in message, got %q", err.Error())
	}
}

func TestFormatErrorMessageNamesRawAndTarget(t *testing.T) {
	err := &FormatError{Key: "port", Raw: "abc", Target: "int"}
	msg := err.Error()
	if !strings.Contains(msg, `"abc"`) || !strings.Contains(msg, "int") || !strings.Contains(msg, "port") {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestKeyTransformErrorUnwraps(t *testing.T) {
	cause := errors.New("empty key")
	err := &KeyTransformError{Source: "env", Key: "BAD", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to unwrap")
	}
	if !strings.Contains(err.Error(), "BAD") {
		t.Fatalf("expected offending key in message, got %q", err.Error())
	}
}
