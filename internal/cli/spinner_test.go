package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func quietSpinner(ctx context.Context, msg string) (*Spinner, *bytes.Buffer) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(ctx, msg)
	s.w = &buf
	return s, &buf
}

func TestSpinnerBasic(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "Testing...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "Testing...") {
		t.Errorf("spinner output %q should contain the message", buf.String())
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s, _ := quietSpinner(ctx, "Testing with context...")
	s.Start()

	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s, _ := quietSpinner(ctx, "Testing with timeout...")
	s.Start()

	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Testing idempotent stop...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "never started")
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a spinner that was never started")
	}
}

func TestSpinnerSetMessage(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "first")
	s.Start()
	s.SetMessage("waiting for recommendations")
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "waiting for recommendations") {
		t.Errorf("spinner output %q should contain the new message", buf.String())
	}
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	var out bytes.Buffer
	setUIOut(t, &out)

	s, _ := quietSpinner(context.Background(), "Testing success...")
	s.Start()
	s.StopWithSuccess("Done!")

	if !strings.Contains(out.String(), "Done!") {
		t.Errorf("output = %q", out.String())
	}
}

func TestSpinnerStopWithError(t *testing.T) {
	var out bytes.Buffer
	setUIOut(t, &out)

	s, _ := quietSpinner(context.Background(), "Testing error...")
	s.Start()
	s.StopWithError("Failed!")

	if !strings.Contains(out.String(), "Failed!") {
		t.Errorf("output = %q", out.String())
	}
}
