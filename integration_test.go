//go:build integration

package datasvc_test

import (
	"errors"
	"testing"
	"time"

	"github.com/perivale/datasvc"
)

// TestIntegration_FullFlow drives every endpoint through one fully
// optioned client: throttled transport, custom user agent, default
// headers, and an overall timeout.
func TestIntegration_FullFlow(t *testing.T) {
	test := mockServer(t,
		datasvc.WithThrottle(50, 5),
		datasvc.WithUserAgent("datasvc-integration/1.0"),
		datasvc.WithHeader("Authorization", "Bearer integ-token"),
		datasvc.WithTimeout(10*time.Second),
	)
	defer test.teardown()

	ctx := t.Context()

	cfg, err := test.Config(ctx)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.NamespaceUserField != "owner" {
		t.Fatalf("exp user field %q, got %q", "owner", cfg.NamespaceUserField)
	}

	folder, err := test.UserFolder(ctx, cfg)
	if err != nil {
		t.Fatalf("user folder: %v", err)
	}
	if folder != "alice" {
		t.Errorf("exp folder %q, got %q", "alice", folder)
	}

	props, err := test.Props(ctx, "docs/report.pdf")
	if err != nil {
		t.Fatalf("props: %v", err)
	}
	if props.Security == nil || props.Security.Owner != "alice" {
		t.Errorf("exp structured security owned by alice, got %+v", props.Security)
	}

	s, err := test.StreamFileList(ctx, "docs")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer s.Close()

	var names []string
	for s.Next() {
		name, _ := s.Item().Fields["name"].(string)
		names = append(names, name)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("stream err: %v", err)
	}
	if len(names) != 3 || names[0] != "a.txt" {
		t.Errorf("exp 3 streamed names starting with a.txt, got %v", names)
	}

	echoed, err := test.WriteFolder(ctx, []datasvc.Metadata{
		{Fields: map[string]any{"name": folder, "type": "folder"}},
	})
	if err != nil {
		t.Fatalf("write folder: %v", err)
	}
	if echoed.Fields["revision"] != float64(1) {
		t.Errorf("exp echoed revision 1, got %v", echoed.Fields["revision"])
	}

	if got := test.header("Authorization"); got != "Bearer integ-token" {
		t.Errorf("exp Authorization header on every request, got %q", got)
	}
	if got := test.header("User-Agent"); got != "datasvc-integration/1.0" {
		t.Errorf("exp User-Agent header on every request, got %q", got)
	}
}

// TestIntegration_ThrottlePacing verifies that a low rate limit slows a
// burst of sequential calls.
func TestIntegration_ThrottlePacing(t *testing.T) {
	test := mockServer(t, datasvc.WithThrottle(10, 2))
	defer test.teardown()

	start := time.Now()
	for range 6 {
		if _, err := test.Self(t.Context()); err != nil {
			t.Fatalf("self: %v", err)
		}
	}
	duration := time.Since(start)

	// 4 of 6 calls exceed the burst: (6-2) / 10 RPS = 0.4 seconds.
	minDuration := time.Duration(float64(time.Second) * float64(6-2) / float64(10))
	if duration < minDuration {
		t.Errorf("exp throttle to pace calls (>= %v), took %v", minDuration, duration)
	}
}

// TestIntegration_StreamBackpressure checks that a stream abandoned
// early does not poison later calls on the same client.
func TestIntegration_StreamBackpressure(t *testing.T) {
	test := mockServer(t)
	defer test.teardown()

	s, err := test.StreamFileList(t.Context(), "docs")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}

	if !s.Next() {
		t.Fatalf("exp first element, got none (err: %v)", s.Err())
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := test.Self(t.Context()); err != nil {
		t.Fatalf("self after abandoned stream: %v", err)
	}

	var streamErr *datasvc.StreamError
	if errors.As(s.Err(), &streamErr) {
		t.Errorf("exp no decode err after deliberate close, got: %v", s.Err())
	}
}
