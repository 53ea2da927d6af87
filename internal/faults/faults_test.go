package faults

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestWrapPassesThroughExistingFault(t *testing.T) {
	inner := New(CodeConnectionLost, "dropped mid-write")
	outer := Wrap(CodePrintSendFailed, fmt.Errorf("send: %w", inner), "ignored")
	if outer != inner {
		t.Fatalf("already-bridged causes must pass through unchanged")
	}
}

func TestWrapBridgesPlainError(t *testing.T) {
	cause := errors.New("connection refused")
	f := Wrap(CodeConnectionFailed, cause, "dial %s", "10.0.0.5")
	if f.Code != CodeConnectionFailed || f.Category != CategoryConnection {
		t.Fatalf("unexpected classification: %+v", f)
	}
	if !errors.Is(f, cause) {
		t.Fatalf("wrapped fault must unwrap to its cause")
	}
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	a := New(CodePrintNotReady, "paper out")
	b := New(CodePrintNotReady, "head open")
	if !errors.Is(a, b) {
		t.Fatalf("faults with equal codes must match under errors.Is")
	}
	c := New(CodeDataEmpty, "empty")
	if errors.Is(a, c) {
		t.Fatalf("different codes must not match")
	}
}

func TestFromNil(t *testing.T) {
	if From(nil) != nil {
		t.Fatalf("From(nil) must stay nil")
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(New(CodeOperationTimeout, "slow")) {
		t.Fatalf("operation timeout fault must classify as timeout")
	}
	if !IsTimeout(context.DeadlineExceeded) {
		t.Fatalf("deadline exceeded must classify as timeout")
	}
	if IsTimeout(New(CodeDataInvalid, "bad")) {
		t.Fatalf("data fault must not classify as timeout")
	}
}

func TestDefaultRecoveryAndHints(t *testing.T) {
	if New(CodeConnectionFailed, "x").Recovery != Recoverable {
		t.Fatalf("connection failures default to recoverable")
	}
	if New(CodeDataEmpty, "x").Recovery != NonRecoverable {
		t.Fatalf("empty payloads are not recoverable")
	}
	if HintFor(CodeNotConnected) == "" {
		t.Fatalf("expected a hint for not-connected")
	}
}
